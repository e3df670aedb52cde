package usecase

import (
	"context"
	"errors"

	"hireflow/internal/domain/job"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobUsecase interface {
	Get(ctx context.Context, id uuid.UUID) (job.Job, error)
	ListActive(ctx context.Context) ([]job.Job, error)
}

type JobService struct {
	jobs   repository.JobRepository
	logger *zap.Logger
}

func NewJobService(jobs repository.JobRepository, logger *zap.Logger) *JobService {
	return &JobService{jobs: jobs, logger: logger}
}

// Get fetches a posting and records the view. The counter update is
// best-effort: a failed increment never hides the posting.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, err
	}

	if err := s.jobs.IncrementViewCount(ctx, id); err != nil {
		if s.logger != nil {
			s.logger.Warn("job view count update failed", zap.String("job_id", id.String()), zap.Error(err))
		}
		return j, nil
	}
	j.ViewCount++
	return j, nil
}

func (s *JobService) ListActive(ctx context.Context) ([]job.Job, error) {
	return s.jobs.ListByStatus(ctx, job.StatusActive)
}
