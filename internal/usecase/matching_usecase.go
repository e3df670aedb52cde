package usecase

import (
	"context"
	"errors"
	"time"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/matching"
	"hireflow/internal/domain/user"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const matchCacheTTL = 5 * time.Minute

// MatchCache is the slice of the Redis cache the matching usecase needs.
type MatchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type JobMatch struct {
	Job   job.Job `json:"job"`
	Score int     `json:"score"`
}

type ApplicantMatch struct {
	Application application.Application `json:"application"`
	Profile     user.Profile            `json:"profile"`
}

type MatchingUsecase interface {
	RankJobsForProfile(ctx context.Context, userID uuid.UUID) ([]JobMatch, error)
	FilterApplicantsForJob(ctx context.Context, jobID uuid.UUID) ([]ApplicantMatch, error)
	InvalidateForUser(ctx context.Context, userID uuid.UUID)
}

type MatchingService struct {
	jobs     repository.JobRepository
	apps     repository.ApplicationRepository
	profiles repository.ProfileRepository
	cache    MatchCache
	logger   *zap.Logger
}

func NewMatchingService(
	jobs repository.JobRepository,
	apps repository.ApplicationRepository,
	profiles repository.ProfileRepository,
	cache MatchCache,
	logger *zap.Logger,
) *MatchingService {
	return &MatchingService{jobs: jobs, apps: apps, profiles: profiles, cache: cache, logger: logger}
}

func matchCacheKey(userID uuid.UUID) string {
	return "matches:user:" + userID.String()
}

// RankJobsForProfile scores every active job the user has not already
// applied to against their profile. Pure function of current data; the
// Redis entry is only a short-lived memo.
func (s *MatchingService) RankJobsForProfile(ctx context.Context, userID uuid.UUID) ([]JobMatch, error) {
	if s.cache != nil {
		var cached []JobMatch
		if hit, err := s.cache.GetJSON(ctx, matchCacheKey(userID), &cached); err == nil && hit {
			return cached, nil
		}
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	active, err := s.jobs.ListByStatus(ctx, job.StatusActive)
	if err != nil {
		return nil, err
	}

	appliedIDs, err := s.apps.ListActiveJobIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	applied := make(map[uuid.UUID]bool, len(appliedIDs))
	for _, id := range appliedIDs {
		applied[id] = true
	}

	byID := make(map[uuid.UUID]job.Job, len(active))
	postings := make([]matching.Posting, 0, len(active))
	for _, j := range active {
		if applied[j.ID] {
			continue
		}
		byID[j.ID] = j
		postings = append(postings, posting(j))
	}

	ranked := matching.Rank(postings, candidate(p))

	out := make([]JobMatch, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, JobMatch{Job: byID[r.Posting.ID], Score: r.Score})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, matchCacheKey(userID), out, matchCacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("match cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return out, nil
}

// FilterApplicantsForJob returns the job's non-withdrawn applications whose
// owner has a profile matching the lenient boolean predicate. Applications
// without a resolved profile are skipped, not errored.
func (s *MatchingService) FilterApplicantsForJob(ctx context.Context, jobID uuid.UUID) ([]ApplicantMatch, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		userIDs = append(userIDs, a.UserID)
	}
	profiles, err := s.profiles.GetByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	p := posting(j)
	out := make([]ApplicantMatch, 0, len(apps))
	for _, a := range apps {
		if a.Status == application.StatusWithdrawn {
			continue
		}
		prof, ok := profiles[a.UserID]
		if !ok {
			continue
		}
		if matching.Matches(p, candidate(prof)) {
			out = append(out, ApplicantMatch{Application: a, Profile: prof})
		}
	}
	return out, nil
}

func (s *MatchingService) InvalidateForUser(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, matchCacheKey(userID)); err != nil && s.logger != nil {
		s.logger.Warn("match cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func posting(j job.Job) matching.Posting {
	return matching.Posting{
		ID:             j.ID,
		Title:          j.Title,
		Company:        j.Company,
		Industry:       j.Industry,
		RequiredSkills: j.RequiredSkillNames(),
		PostedAt:       j.PostedAt,
	}
}

func candidate(p user.Profile) matching.Candidate {
	return matching.Candidate{
		Title:    p.Title,
		Industry: p.Industry,
		Skills:   p.SkillNames(),
	}
}
