package matching

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is the matching view of a profile. Skill names are compared
// case-insensitively after trimming; empty title or industry never matches.
type Candidate struct {
	Title    string
	Industry string
	Skills   []string
}

// Posting is the matching view of a job.
type Posting struct {
	ID             uuid.UUID
	Title          string
	Company        string
	Industry       string
	RequiredSkills []string
	PostedAt       *time.Time
}

type RankedPosting struct {
	Posting Posting
	Score   int
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// overlaps reports a substring relationship in either direction between two
// already-normalized non-empty strings.
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func skillOverlap(required, offered string) bool {
	return overlaps(normalize(required), normalize(offered))
}

// Matches is the lenient boolean filter used for the "matched applicants"
// admin view: any skill, title or industry substring overlap qualifies.
func Matches(p Posting, c Candidate) bool {
	for _, req := range p.RequiredSkills {
		for _, off := range c.Skills {
			if skillOverlap(req, off) {
				return true
			}
		}
	}
	if overlaps(normalize(p.Title), normalize(c.Title)) {
		return true
	}
	if overlaps(normalize(p.Industry), normalize(c.Industry)) {
		return true
	}
	return false
}

// Score computes the ranked match percentage: one point per overlapping
// required skill (a required skill contributes at most once no matter how
// many applicant skills it overlaps), one for title overlap, one for
// industry overlap, normalized against the maximum a candidate could reach
// for this posting and rounded to the nearest integer.
func Score(p Posting, c Candidate) int {
	points := 0
	max := 0

	for _, req := range p.RequiredSkills {
		if normalize(req) == "" {
			continue
		}
		max++
		for _, off := range c.Skills {
			if skillOverlap(req, off) {
				points++
				break
			}
		}
	}

	if normalize(p.Title) != "" {
		max++
		if overlaps(normalize(p.Title), normalize(c.Title)) {
			points++
		}
	}
	if normalize(p.Industry) != "" {
		max++
		if overlaps(normalize(p.Industry), normalize(c.Industry)) {
			points++
		}
	}

	if max == 0 {
		return 0
	}
	return int(math.Round(float64(points) / float64(max) * 100))
}

// Rank scores every posting against the candidate and returns those with a
// nonzero score ordered by score descending, most recently posted first,
// then posting id for determinism.
func Rank(postings []Posting, c Candidate) []RankedPosting {
	out := make([]RankedPosting, 0, len(postings))
	for _, p := range postings {
		s := Score(p, c)
		if s <= 0 {
			continue
		}
		out = append(out, RankedPosting{Posting: p, Score: s})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		pi, pj := out[i].Posting.PostedAt, out[j].Posting.PostedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return out[i].Posting.ID.String() < out[j].Posting.ID.String()
	})

	return out
}
