package application

// The hiring workflow is deliberately permissive: an admin may move an
// application between any non-terminal statuses, forward or backward, so
// candidates can be fast-tracked or bounced back. Two rules are absolute:
// New is the entry status and never a target, and Hired, Rejected and
// Withdrawn are absorbing. Withdrawn is reachable only through the
// applicant's Withdraw operation, never by an admin status change.

var adminTargets = []Status{
	StatusUnderReview,
	StatusShortlisted,
	StatusForInterview,
	StatusInterviewed,
	StatusForJobOffer,
	StatusHired,
	StatusRejected,
}

var allowedTransitions = buildTransitionTable()

func buildTransitionTable() map[Status]map[Status]bool {
	nonTerminal := []Status{
		StatusNew,
		StatusUnderReview,
		StatusShortlisted,
		StatusForInterview,
		StatusInterviewed,
		StatusForJobOffer,
	}

	table := make(map[Status]map[Status]bool, len(nonTerminal)+3)
	for _, from := range nonTerminal {
		targets := make(map[Status]bool, len(adminTargets))
		for _, to := range adminTargets {
			if to == from {
				continue
			}
			targets[to] = true
		}
		table[from] = targets
	}

	table[StatusHired] = map[Status]bool{}
	table[StatusRejected] = map[Status]bool{}
	table[StatusWithdrawn] = map[Status]bool{}
	return table
}

func IsValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

func IsTerminal(s Status) bool {
	switch s {
	case StatusHired, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// CanTransition reports whether an admin status change from one status to
// another is permitted.
func CanTransition(from, to Status) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// CanWithdraw reports whether the owning applicant may still withdraw.
func CanWithdraw(from Status) bool {
	return !IsTerminal(from)
}
