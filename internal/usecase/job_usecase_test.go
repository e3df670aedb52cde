package usecase

import (
	"context"
	"errors"
	"testing"

	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

func TestJobGet_RecordsView(t *testing.T) {
	j := activeJob()
	repo := newMemJobRepo(j)
	svc := NewJobService(repo, nil)

	got, err := svc.Get(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("expected view count 1, got %d", got.ViewCount)
	}

	got, err = svc.Get(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ViewCount != 2 {
		t.Fatalf("expected view count 2 after second fetch, got %d", got.ViewCount)
	}

	stored, err := repo.GetByID(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stored.ViewCount != 2 {
		t.Fatalf("expected persisted view count 2, got %d", stored.ViewCount)
	}
}

func TestJobGet_UnknownJob(t *testing.T) {
	svc := NewJobService(newMemJobRepo(), nil)

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type viewCountFailJobRepo struct {
	*memJobRepo
}

func (r *viewCountFailJobRepo) IncrementViewCount(_ context.Context, _ uuid.UUID) error {
	return errors.New("write unavailable")
}

func TestJobGet_ViewCountFailureDoesNotHideJob(t *testing.T) {
	j := activeJob()
	svc := NewJobService(&viewCountFailJobRepo{memJobRepo: newMemJobRepo(j)}, nil)

	got, err := svc.Get(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("expected job despite counter failure, got %v", err)
	}
	if got.ID != j.ID || got.ViewCount != 0 {
		t.Fatalf("expected stored state unchanged, got %+v", got)
	}
}

func TestJobListActive_FiltersClosed(t *testing.T) {
	active := activeJob()
	closed := job.Job{ID: uuid.New(), Title: "Archived", Status: job.StatusClosed}
	svc := NewJobService(newMemJobRepo(active, closed), nil)

	jobs, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != active.ID {
		t.Fatalf("expected only the active posting, got %+v", jobs)
	}
}
