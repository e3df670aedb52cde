package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

type memAppRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]application.Application
}

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: make(map[uuid.UUID]application.Application)}
}

func (r *memAppRepo) Create(_ context.Context, a application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.UserID == a.UserID && existing.JobID == a.JobID && existing.Status != application.StatusWithdrawn {
			return errors.New("unique violation")
		}
	}
	r.apps[a.ID] = a
	return nil
}

func (r *memAppRepo) GetByID(_ context.Context, id uuid.UUID) (application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return application.Application{}, repository.ErrApplicationNotFound
	}
	return a, nil
}

func (r *memAppRepo) HasActiveByUserAndJob(_ context.Context, userID, jobID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.UserID == userID && a.JobID == jobID && a.Status != application.StatusWithdrawn {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAppRepo) ListActiveJobIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uuid.UUID, 0)
	for _, a := range r.apps {
		if a.UserID == userID && a.Status != application.StatusWithdrawn {
			out = append(out, a.JobID)
		}
	}
	return out, nil
}

func (r *memAppRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]application.Application, 0)
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAppRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected, next application.Status, note application.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	if a.Status != expected {
		return repository.ErrStatusConflict
	}
	a.Status = next
	a.Notes = append(a.Notes, note)
	r.apps[id] = a
	return nil
}

func (r *memAppRepo) AppendNote(_ context.Context, id uuid.UUID, note application.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	a.Notes = append(a.Notes, note)
	r.apps[id] = a
	return nil
}

func (r *memAppRepo) SetInterview(_ context.Context, id uuid.UUID, iv application.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	a.Interview = &iv
	r.apps[id] = a
	return nil
}

type memJobRepo struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]job.Job
	applied int
}

func newMemJobRepo(jobs ...job.Job) *memJobRepo {
	m := &memJobRepo{jobs: make(map[uuid.UUID]job.Job)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (r *memJobRepo) Create(_ context.Context, j job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return job.Job{}, repository.ErrJobNotFound
	}
	return j, nil
}

func (r *memJobRepo) ListByStatus(_ context.Context, status job.Status) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]job.Job, 0)
	for _, j := range r.jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memJobRepo) IncrementApplicationCount(_ context.Context, _ uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied++
	return nil
}

func (r *memJobRepo) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return repository.ErrJobNotFound
	}
	j.ViewCount++
	r.jobs[id] = j
	return nil
}

type recordingScheduler struct {
	mu       sync.Mutex
	calls    int
	date     time.Time
	location string
	err      error
}

func (s *recordingScheduler) Schedule(_ context.Context, _ uuid.UUID, date time.Time, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.date = date
	s.location = location
	return s.err
}

func activeJob() job.Job {
	return job.Job{ID: uuid.New(), Title: "Backend Engineer", Status: job.StatusActive}
}

func newAppService(apps *memAppRepo, jobs *memJobRepo, sched InterviewScheduler) *ApplicationService {
	return NewApplicationService(apps, jobs, sched, nil, nil, 7*24*time.Hour, nil)
}

func mustApply(t *testing.T, svc *ApplicationService, userID, jobID uuid.UUID) application.Application {
	t.Helper()
	a, err := svc.Apply(context.Background(), ApplyInput{UserID: userID, JobID: jobID, ResumeURL: "https://cdn/resume.pdf"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	return a
}

func TestApply_CreatesNewApplicationWithAuditNote(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)

	a := mustApply(t, svc, uuid.New(), j.ID)
	if a.Status != application.StatusNew {
		t.Fatalf("expected status New, got %s", a.Status)
	}
	if len(a.Notes) != 1 || a.Notes[0].Author != application.SystemAuthor {
		t.Fatalf("expected one system audit note, got %+v", a.Notes)
	}
}

func TestApply_DuplicateRejected(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	userID := uuid.New()

	mustApply(t, svc, userID, j.ID)
	_, err := svc.Apply(context.Background(), ApplyInput{UserID: userID, JobID: j.ID, ResumeURL: "r"})
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}
}

func TestApply_AllowedAgainAfterWithdraw(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	userID := uuid.New()

	first := mustApply(t, svc, userID, j.ID)
	if _, err := svc.Withdraw(context.Background(), first.ID, userID); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	second := mustApply(t, svc, userID, j.ID)
	if second.ID == first.ID {
		t.Fatalf("expected a fresh application record")
	}

	// The withdrawn record is retained for audit.
	old, err := svc.Get(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("expected withdrawn application to remain, got %v", err)
	}
	if old.Status != application.StatusWithdrawn {
		t.Fatalf("expected Withdrawn, got %s", old.Status)
	}
}

func TestApply_InactiveJobRejected(t *testing.T) {
	j := activeJob()
	j.Status = job.StatusClosed
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)

	_, err := svc.Apply(context.Background(), ApplyInput{UserID: uuid.New(), JobID: j.ID, ResumeURL: "r"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApply_UnknownJob(t *testing.T) {
	svc := newAppService(newMemAppRepo(), newMemJobRepo(), nil)
	_, err := svc.Apply(context.Background(), ApplyInput{UserID: uuid.New(), JobID: uuid.New(), ResumeURL: "r"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChangeStatus_AppendsAuditNote(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	res, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusUnderReview, "Jane Admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Application.Status != application.StatusUnderReview {
		t.Fatalf("expected UnderReview, got %s", res.Application.Status)
	}
	notes := res.Application.Notes
	if len(notes) != 2 || notes[1].Author != "Jane Admin" {
		t.Fatalf("expected admin audit note, got %+v", notes)
	}
}

func TestChangeStatus_TerminalIsAbsorbing(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	if _, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusRejected, "Admin"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusUnderReview, "Admin")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of Rejected, got %v", err)
	}

	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %T", err)
	}
	if conflict.Current.Status != application.StatusRejected {
		t.Fatalf("expected conflict to carry persisted state, got %s", conflict.Current.Status)
	}
}

func TestChangeStatus_IntoNewRejected(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	if _, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusShortlisted, "Admin"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusNew, "Admin")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition into New, got %v", err)
	}
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	_, err := svc.ChangeStatus(context.Background(), a.ID, application.Status("Pending"), "Admin")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChangeStatus_ForInterviewSchedulesDefaultInterview(t *testing.T) {
	j := activeJob()
	sched := &recordingScheduler{}
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), sched)

	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a := mustApply(t, svc, uuid.New(), j.ID)
	res, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusForInterview, "Admin")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Warning != "" {
		t.Fatalf("expected no warning, got %q", res.Warning)
	}

	if sched.calls != 1 {
		t.Fatalf("expected one scheduler call, got %d", sched.calls)
	}
	if !sched.date.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected interview 7 days out, got %v", sched.date)
	}
	if sched.location != defaultInterviewLocation {
		t.Fatalf("expected default location, got %q", sched.location)
	}
	if res.Application.Interview == nil || res.Application.Interview.Location != defaultInterviewLocation {
		t.Fatalf("expected default interview sub-record, got %+v", res.Application.Interview)
	}
}

func TestChangeStatus_SchedulerFailureIsWarningOnly(t *testing.T) {
	j := activeJob()
	sched := &recordingScheduler{err: errors.New("scheduler unreachable")}
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), sched)

	a := mustApply(t, svc, uuid.New(), j.ID)
	res, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusForInterview, "Admin")
	if err != nil {
		t.Fatalf("expected success despite scheduler failure, got %v", err)
	}
	if res.Warning == "" {
		t.Fatalf("expected a warning on scheduler failure")
	}
	if res.Application.Status != application.StatusForInterview {
		t.Fatalf("status change must not roll back, got %s", res.Application.Status)
	}
}

// stallScheduler signals when Schedule is entered and then blocks until
// released, standing in for a slow external calendar service.
type stallScheduler struct {
	entered chan struct{}
	release chan struct{}
}

func (s *stallScheduler) Schedule(_ context.Context, _ uuid.UUID, _ time.Time, _ string) error {
	close(s.entered)
	<-s.release
	return nil
}

func TestChangeStatus_SlowSchedulerDoesNotBlockWithdraw(t *testing.T) {
	j := activeJob()
	sched := &stallScheduler{entered: make(chan struct{}), release: make(chan struct{})}
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), sched)
	userID := uuid.New()
	a := mustApply(t, svc, userID, j.ID)

	changed := make(chan error, 1)
	go func() {
		_, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusForInterview, "Admin")
		changed <- err
	}()

	select {
	case <-sched.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler was never invoked")
	}

	// The status change is committed; a concurrent withdraw must not be
	// serialized behind the still-running scheduler call.
	withdrawn := make(chan error, 1)
	go func() {
		_, err := svc.Withdraw(context.Background(), a.ID, userID)
		withdrawn <- err
	}()
	select {
	case err := <-withdrawn:
		if err != nil {
			t.Fatalf("withdraw failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("withdraw stalled behind the interview scheduler")
	}

	close(sched.release)
	if err := <-changed; err != nil {
		t.Fatalf("status change failed: %v", err)
	}
}

func TestWithdraw_NonOwnerUnauthorized(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	_, err := svc.Withdraw(context.Background(), a.ID, uuid.New())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestWithdraw_HiredConflict(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	userID := uuid.New()
	a := mustApply(t, svc, userID, j.ID)

	if _, err := svc.ChangeStatus(context.Background(), a.ID, application.StatusHired, "Admin"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err := svc.Withdraw(context.Background(), a.ID, userID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	var conflict *StateConflictError
	if !errors.As(err, &conflict) || conflict.Current.Status != application.StatusHired {
		t.Fatalf("expected conflict carrying Hired state, got %v", err)
	}
}

func TestConcurrent_ChangeStatusVsWithdraw_ExactlyOneWins(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	userID := uuid.New()
	a := mustApply(t, svc, userID, j.ID)

	var wg sync.WaitGroup
	wg.Add(2)
	var rejectErr, withdrawErr error
	go func() {
		defer wg.Done()
		_, rejectErr = svc.ChangeStatus(context.Background(), a.ID, application.StatusRejected, "Admin")
	}()
	go func() {
		defer wg.Done()
		_, withdrawErr = svc.Withdraw(context.Background(), a.ID, userID)
	}()
	wg.Wait()

	successes := 0
	if rejectErr == nil {
		successes++
	}
	if withdrawErr == nil {
		successes++
	}
	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d (reject=%v withdraw=%v)", successes, rejectErr, withdrawErr)
	}

	loser := rejectErr
	if loser == nil {
		loser = withdrawErr
	}
	if !errors.Is(loser, ErrConflict) && !errors.Is(loser, ErrInvalidTransition) {
		t.Fatalf("expected loser to observe conflict, got %v", loser)
	}
	var conflict *StateConflictError
	if !errors.As(loser, &conflict) {
		t.Fatalf("expected loser error to carry the persisted state, got %T", loser)
	}

	final, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if final.Status != application.StatusRejected && final.Status != application.StatusWithdrawn {
		t.Fatalf("expected terminal state, got %s", final.Status)
	}
	if conflict.Current.Status != final.Status {
		t.Fatalf("loser saw %s but persisted state is %s", conflict.Current.Status, final.Status)
	}
}

func TestAddNote_WithoutStatusChange(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	updated, err := svc.AddNote(context.Background(), a.ID, "Jane Admin", "Strong take-home submission")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != application.StatusNew {
		t.Fatalf("note must not change status, got %s", updated.Status)
	}
	if len(updated.Notes) != 2 || updated.Notes[1].Content != "Strong take-home submission" {
		t.Fatalf("expected appended note, got %+v", updated.Notes)
	}
}

func TestScheduleInterview_SetsSubRecord(t *testing.T) {
	j := activeJob()
	svc := newAppService(newMemAppRepo(), newMemJobRepo(j), nil)
	a := mustApply(t, svc, uuid.New(), j.ID)

	date := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	updated, err := svc.ScheduleInterview(context.Background(), a.ID, date, "HQ, Room 4", "bring portfolio")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Interview == nil || !updated.Interview.Date.Equal(date) || updated.Interview.Location != "HQ, Room 4" {
		t.Fatalf("unexpected interview record: %+v", updated.Interview)
	}
}
