package seeder

import (
	"context"
	"errors"
	"time"

	"hireflow/internal/domain/job"
	"hireflow/internal/domain/user"
	"hireflow/internal/repository"

	"github.com/google/uuid"
)

// DemoDataSeeder loads a small applicant/job fixture for development
// environments. Idempotent; it keys off the demo applicant's email.
type DemoDataSeeder struct {
	Users    repository.UserRepository
	Profiles repository.ProfileRepository
	Jobs     repository.JobRepository
}

func (DemoDataSeeder) Name() string { return "demo_data" }

func (s DemoDataSeeder) Run(ctx context.Context) error {
	const demoEmail = "demo.applicant@hireflow.dev"

	if _, err := s.Users.GetByEmail(ctx, demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	applicant := user.User{
		ID:       uuid.New(),
		Username: "demo.applicant",
		Email:    demoEmail,
		Role:     user.RoleApplicant,
	}
	if err := s.Users.Create(ctx, applicant); err != nil {
		return err
	}

	profile := user.Profile{
		ID:              uuid.New(),
		UserID:          applicant.ID,
		Title:           "Backend Engineer",
		Industry:        "Software",
		YearsExperience: 4,
		Skills: []user.Skill{
			{Name: "Go", Proficiency: 4},
			{Name: "PostgreSQL", Proficiency: 3},
			{Name: "Redis", Proficiency: 3},
		},
	}
	if err := s.Profiles.Upsert(ctx, profile); err != nil {
		return err
	}

	now := time.Now()
	jobs := []job.Job{
		{
			ID:       uuid.New(),
			Title:    "Senior Backend Engineer",
			Company:  "Nimbus Labs",
			Industry: "Software",
			Status:   job.StatusActive,
			RequiredSkills: []job.RequiredSkill{
				{Name: "Go", Level: 4},
				{Name: "PostgreSQL", Level: 3},
			},
			PostedAt: &now,
		},
		{
			ID:       uuid.New(),
			Title:    "Data Platform Engineer",
			Company:  "Nimbus Labs",
			Industry: "Software",
			Status:   job.StatusActive,
			RequiredSkills: []job.RequiredSkill{
				{Name: "Python", Level: 4},
				{Name: "Kafka", Level: 3},
			},
			PostedAt: &now,
		},
	}
	for _, j := range jobs {
		if err := s.Jobs.Create(ctx, j); err != nil {
			return err
		}
	}
	return nil
}
