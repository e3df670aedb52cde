package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
	"hireflow/internal/pkg/keylock"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultInterviewLocation = "To be determined"
	interviewPendingWarning  = "interview scheduling is pending"
)

// InterviewScheduler is the external scheduling collaborator. It is invoked
// after the status change is committed; a failure here never rolls the
// change back.
type InterviewScheduler interface {
	Schedule(ctx context.Context, applicationID uuid.UUID, date time.Time, location string) error
}

// StatusListener receives committed status changes (conversation
// notifications, websocket push).
type StatusListener interface {
	StatusChanged(ctx context.Context, a application.Application)
}

// MatchInvalidator drops cached ranked matches that an application change
// made stale.
type MatchInvalidator interface {
	InvalidateForUser(ctx context.Context, userID uuid.UUID)
}

type ApplyInput struct {
	UserID             uuid.UUID
	JobID              uuid.UUID
	ResumeURL          string
	CoverLetter        string
	ExpectedSalary     *int64
	AvailableStartDate *time.Time
}

// StatusChangeResult carries the updated application plus a warning when a
// side-effect dispatch failed after the primary change was committed.
type StatusChangeResult struct {
	Application application.Application
	Warning     string
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, in ApplyInput) (application.Application, error)
	Get(ctx context.Context, id uuid.UUID) (application.Application, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, next application.Status, actingAdmin string) (StatusChangeResult, error)
	Withdraw(ctx context.Context, id, requestingUserID uuid.UUID) (application.Application, error)
	ScheduleInterview(ctx context.Context, id uuid.UUID, date time.Time, location, notes string) (application.Application, error)
	AddNote(ctx context.Context, id uuid.UUID, author, content string) (application.Application, error)
}

type ApplicationService struct {
	apps       repository.ApplicationRepository
	jobs       repository.JobRepository
	interviews InterviewScheduler
	listener   StatusListener
	matches    MatchInvalidator
	logger     *zap.Logger

	interviewLead time.Duration
	locks         *keylock.KeyedMutex
	now           func() time.Time
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	interviews InterviewScheduler,
	listener StatusListener,
	matches MatchInvalidator,
	interviewLead time.Duration,
	logger *zap.Logger,
) *ApplicationService {
	if interviewLead <= 0 {
		interviewLead = 7 * 24 * time.Hour
	}
	return &ApplicationService{
		apps:          apps,
		jobs:          jobs,
		interviews:    interviews,
		listener:      listener,
		matches:       matches,
		logger:        logger,
		interviewLead: interviewLead,
		locks:         keylock.New(),
		now:           time.Now,
	}
}

func (s *ApplicationService) Apply(ctx context.Context, in ApplyInput) (application.Application, error) {
	if in.UserID == uuid.Nil || in.JobID == uuid.Nil || in.ResumeURL == "" {
		return application.Application{}, ErrInvalidInput
	}

	j, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}
	if j.Status != job.StatusActive {
		return application.Application{}, fmt.Errorf("%w: job is not accepting applications", ErrConflict)
	}

	exists, err := s.apps.HasActiveByUserAndJob(ctx, in.UserID, in.JobID)
	if err != nil {
		return application.Application{}, err
	}
	if exists {
		return application.Application{}, ErrDuplicateApplication
	}

	now := s.now().UTC()
	a := application.Application{
		ID:                 uuid.New(),
		UserID:             in.UserID,
		JobID:              in.JobID,
		Status:             application.StatusNew,
		AppliedAt:          now,
		ResumeURL:          in.ResumeURL,
		CoverLetter:        in.CoverLetter,
		ExpectedSalary:     in.ExpectedSalary,
		AvailableStartDate: in.AvailableStartDate,
		Notes: []application.Note{{
			Author:    application.SystemAuthor,
			Content:   "Application submitted",
			CreatedAt: now,
		}},
		UpdatedAt: now,
	}

	if err := s.apps.Create(ctx, a); err != nil {
		// A concurrent apply may have won the partial unique index race.
		if again, exErr := s.apps.HasActiveByUserAndJob(ctx, in.UserID, in.JobID); exErr == nil && again {
			return application.Application{}, ErrDuplicateApplication
		}
		return application.Application{}, err
	}

	if err := s.jobs.IncrementApplicationCount(ctx, in.JobID); err != nil && s.logger != nil {
		s.logger.Warn("application counter update failed", zap.String("job_id", in.JobID.String()), zap.Error(err))
	}
	s.invalidateMatches(ctx, in.UserID)

	return a, nil
}

func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (s *ApplicationService) ChangeStatus(ctx context.Context, id uuid.UUID, next application.Status, actingAdmin string) (StatusChangeResult, error) {
	if !application.IsValidStatus(next) {
		return StatusChangeResult{}, ErrInvalidInput
	}

	updated, interview, warning, err := s.commitStatusChange(ctx, id, next, actingAdmin)
	if err != nil {
		return StatusChangeResult{}, err
	}

	// The lock is released by now. Collaborator dispatch must never hold
	// the application lock: a slow scheduler or listener would wedge every
	// other writer on this application.
	if interview != nil && s.interviews != nil {
		if err := s.interviews.Schedule(ctx, id, interview.Date, interview.Location); err != nil {
			if s.logger != nil {
				s.logger.Warn("interview scheduler dispatch failed", zap.String("application_id", id.String()), zap.Error(err))
			}
			warning = interviewPendingWarning
		}
	}

	s.notifyStatusChanged(ctx, updated)
	s.invalidateMatches(ctx, updated.UserID)

	return StatusChangeResult{Application: updated, Warning: warning}, nil
}

// commitStatusChange performs the validated CAS update under the
// per-application lock and returns the re-read state. For ForInterview it
// also writes the default interview sub-record; the returned interview is
// non-nil when the external scheduler still needs to be called.
func (s *ApplicationService) commitStatusChange(ctx context.Context, id uuid.UUID, next application.Status, actingAdmin string) (application.Application, *application.Interview, string, error) {
	key := "application:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	a, err := s.Get(ctx, id)
	if err != nil {
		return application.Application{}, nil, "", err
	}

	if !application.CanTransition(a.Status, next) {
		return application.Application{}, nil, "", newStateConflict(ErrInvalidTransition, a)
	}

	author := actingAdmin
	if author == "" {
		author = application.SystemAuthor
	}
	now := s.now().UTC()
	note := application.Note{
		Author:    author,
		Content:   fmt.Sprintf("Status changed from %s to %s", a.Status, next),
		CreatedAt: now,
	}

	if err := s.apps.UpdateStatus(ctx, id, a.Status, next, note); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Lost the race: report the state that actually won.
			current, getErr := s.Get(ctx, id)
			if getErr != nil {
				return application.Application{}, nil, "", getErr
			}
			return application.Application{}, nil, "", newStateConflict(ErrConflict, current)
		}
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, nil, "", ErrNotFound
		}
		return application.Application{}, nil, "", err
	}

	warning := ""
	var interview *application.Interview
	if next == application.StatusForInterview {
		iv := application.Interview{Date: now.Add(s.interviewLead), Location: defaultInterviewLocation}
		if err := s.apps.SetInterview(ctx, id, iv); err != nil {
			if s.logger != nil {
				s.logger.Warn("default interview record write failed", zap.String("application_id", id.String()), zap.Error(err))
			}
			warning = interviewPendingWarning
		} else {
			interview = &iv
		}
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return application.Application{}, nil, "", err
	}
	return updated, interview, warning, nil
}

func (s *ApplicationService) Withdraw(ctx context.Context, id, requestingUserID uuid.UUID) (application.Application, error) {
	updated, err := s.commitWithdraw(ctx, id, requestingUserID)
	if err != nil {
		return application.Application{}, err
	}

	s.notifyStatusChanged(ctx, updated)
	s.invalidateMatches(ctx, updated.UserID)

	return updated, nil
}

// commitWithdraw holds the per-application lock only for the ownership
// check, the CAS update and the re-read.
func (s *ApplicationService) commitWithdraw(ctx context.Context, id, requestingUserID uuid.UUID) (application.Application, error) {
	key := "application:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	a, err := s.Get(ctx, id)
	if err != nil {
		return application.Application{}, err
	}

	if a.UserID != requestingUserID {
		return application.Application{}, ErrUnauthorized
	}
	if !application.CanWithdraw(a.Status) {
		return application.Application{}, newStateConflict(ErrConflict, a)
	}

	note := application.Note{
		Author:    application.SystemAuthor,
		Content:   "Application withdrawn by applicant",
		CreatedAt: s.now().UTC(),
	}
	if err := s.apps.UpdateStatus(ctx, id, a.Status, application.StatusWithdrawn, note); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			current, getErr := s.Get(ctx, id)
			if getErr != nil {
				return application.Application{}, getErr
			}
			return application.Application{}, newStateConflict(ErrConflict, current)
		}
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}

	return s.Get(ctx, id)
}

func (s *ApplicationService) ScheduleInterview(ctx context.Context, id uuid.UUID, date time.Time, location, notes string) (application.Application, error) {
	if date.IsZero() {
		return application.Application{}, ErrInvalidInput
	}
	if location == "" {
		location = defaultInterviewLocation
	}

	key := "application:" + id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.apps.SetInterview(ctx, id, application.Interview{Date: date, Location: location, Notes: notes}); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}

	note := application.Note{
		Author:    application.SystemAuthor,
		Content:   fmt.Sprintf("Interview scheduled for %s at %s", date.Format(time.RFC3339), location),
		CreatedAt: s.now().UTC(),
	}
	if err := s.apps.AppendNote(ctx, id, note); err != nil && s.logger != nil {
		s.logger.Warn("interview audit note failed", zap.String("application_id", id.String()), zap.Error(err))
	}

	return s.Get(ctx, id)
}

func (s *ApplicationService) AddNote(ctx context.Context, id uuid.UUID, author, content string) (application.Application, error) {
	if content == "" {
		return application.Application{}, ErrInvalidInput
	}
	if author == "" {
		author = application.SystemAuthor
	}

	note := application.Note{Author: author, Content: content, CreatedAt: s.now().UTC()}
	if err := s.apps.AppendNote(ctx, id, note); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrNotFound
		}
		return application.Application{}, err
	}
	return s.Get(ctx, id)
}

func (s *ApplicationService) notifyStatusChanged(ctx context.Context, a application.Application) {
	if s.listener == nil {
		return
	}
	s.listener.StatusChanged(ctx, a)
}

func (s *ApplicationService) invalidateMatches(ctx context.Context, userID uuid.UUID) {
	if s.matches == nil {
		return
	}
	s.matches.InvalidateForUser(ctx, userID)
}
