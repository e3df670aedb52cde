package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/user"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]user.Profile
}

func newMemProfileRepo(profiles ...user.Profile) *memProfileRepo {
	m := &memProfileRepo{profiles: make(map[uuid.UUID]user.Profile)}
	for _, p := range profiles {
		m.profiles[p.UserID] = p
	}
	return m
}

func (r *memProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return user.Profile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

func (r *memProfileRepo) GetByUserIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]user.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *memProfileRepo) Upsert(_ context.Context, p user.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
	return nil
}

type memMatchCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	sets    int
	deletes int
}

func newMemMatchCache() *memMatchCache {
	return &memMatchCache{entries: make(map[string][]byte)}
}

func (c *memMatchCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, out)
}

func (c *memMatchCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *memMatchCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes++
	return nil
}

func goProfile(userID uuid.UUID) user.Profile {
	return user.Profile{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    "Backend Engineer",
		Industry: "Fintech",
		Skills:   []user.Skill{{Name: "Go", Proficiency: 4}, {Name: "PostgreSQL", Proficiency: 3}},
	}
}

func postedJob(title string, postedAt time.Time, skills ...string) job.Job {
	req := make([]job.RequiredSkill, 0, len(skills))
	for _, s := range skills {
		req = append(req, job.RequiredSkill{Name: s, Level: 3})
	}
	return job.Job{
		ID:             uuid.New(),
		Title:          title,
		Company:        "Acme",
		Industry:       "Fintech",
		Status:         job.StatusActive,
		RequiredSkills: req,
		PostedAt:       &postedAt,
	}
}

func TestRankJobsForProfile_ExcludesZeroScoreJobs(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	goJob := postedJob("Backend Engineer", now, "Go")
	rustJob := postedJob("Systems Engineer", now, "Rust")
	rustJob.Industry = "Gaming"

	svc := NewMatchingService(newMemJobRepo(goJob, rustJob), newMemAppRepo(), newMemProfileRepo(goProfile(userID)), nil, nil)

	matches, err := svc.RankJobsForProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(matches) != 1 || matches[0].Job.ID != goJob.ID {
		t.Fatalf("expected only the Go job, got %+v", matches)
	}
	if matches[0].Score <= 0 || matches[0].Score > 100 {
		t.Fatalf("score out of range: %d", matches[0].Score)
	}
}

func TestRankJobsForProfile_ExcludesAppliedJobs(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	applied := postedJob("Backend Engineer", now, "Go")
	open := postedJob("Platform Engineer", now, "Go")

	apps := newMemAppRepo()
	a := application.Application{ID: uuid.New(), UserID: userID, JobID: applied.ID, Status: application.StatusNew}
	if err := apps.Create(context.Background(), a); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	svc := NewMatchingService(newMemJobRepo(applied, open), apps, newMemProfileRepo(goProfile(userID)), nil, nil)

	matches, err := svc.RankJobsForProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(matches) != 1 || matches[0].Job.ID != open.ID {
		t.Fatalf("expected the applied job to be excluded, got %+v", matches)
	}
}

func TestRankJobsForProfile_WithdrawnJobReappears(t *testing.T) {
	userID := uuid.New()
	j := postedJob("Backend Engineer", time.Now(), "Go")

	apps := newMemAppRepo()
	a := application.Application{ID: uuid.New(), UserID: userID, JobID: j.ID, Status: application.StatusWithdrawn}
	apps.mu.Lock()
	apps.apps[a.ID] = a
	apps.mu.Unlock()

	svc := NewMatchingService(newMemJobRepo(j), apps, newMemProfileRepo(goProfile(userID)), nil, nil)

	matches, err := svc.RankJobsForProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected withdrawn job back in results, got %+v", matches)
	}
}

func TestRankJobsForProfile_MissingProfile(t *testing.T) {
	svc := NewMatchingService(newMemJobRepo(), newMemAppRepo(), newMemProfileRepo(), nil, nil)
	_, err := svc.RankJobsForProfile(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRankJobsForProfile_CachesResult(t *testing.T) {
	userID := uuid.New()
	j := postedJob("Backend Engineer", time.Now(), "Go")
	cache := newMemMatchCache()
	svc := NewMatchingService(newMemJobRepo(j), newMemAppRepo(), newMemProfileRepo(goProfile(userID)), cache, nil)

	first, err := svc.RankJobsForProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	second, err := svc.RankJobsForProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected the second call to hit the cache, got %d hits", cache.hits)
	}
	if len(second) != len(first) || second[0].Score != first[0].Score {
		t.Fatalf("cached result diverged: %+v vs %+v", second, first)
	}

	svc.InvalidateForUser(context.Background(), userID)
	if cache.deletes != 1 {
		t.Fatalf("expected invalidation to delete the entry, got %d deletes", cache.deletes)
	}
}

func TestFilterApplicantsForJob_SkipsWithdrawnAndProfileless(t *testing.T) {
	j := postedJob("Backend Engineer", time.Now(), "Go")
	jobs := newMemJobRepo(j)

	matchedUser := uuid.New()
	withdrawnUser := uuid.New()
	profilelessUser := uuid.New()
	unmatchedUser := uuid.New()

	unmatchedProfile := user.Profile{
		ID:       uuid.New(),
		UserID:   unmatchedUser,
		Title:    "Accountant",
		Industry: "Finance",
		Skills:   []user.Skill{{Name: "Excel", Proficiency: 5}},
	}
	profiles := newMemProfileRepo(goProfile(matchedUser), goProfile(withdrawnUser), unmatchedProfile)

	apps := newMemAppRepo()
	seed := func(userID uuid.UUID, status application.Status) {
		a := application.Application{ID: uuid.New(), UserID: userID, JobID: j.ID, Status: status}
		apps.mu.Lock()
		apps.apps[a.ID] = a
		apps.mu.Unlock()
	}
	seed(matchedUser, application.StatusUnderReview)
	seed(withdrawnUser, application.StatusWithdrawn)
	seed(profilelessUser, application.StatusNew)
	seed(unmatchedUser, application.StatusNew)

	svc := NewMatchingService(jobs, apps, profiles, nil, nil)

	out, err := svc.FilterApplicantsForJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 1 || out[0].Application.UserID != matchedUser {
		t.Fatalf("expected only the matching active applicant, got %+v", out)
	}
}

func TestFilterApplicantsForJob_UnknownJob(t *testing.T) {
	svc := NewMatchingService(newMemJobRepo(), newMemAppRepo(), newMemProfileRepo(), nil, nil)
	_, err := svc.FilterApplicantsForJob(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
