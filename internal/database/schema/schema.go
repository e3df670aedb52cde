package schema

import (
	"context"
	"fmt"

	"hireflow/internal/database"
)

// Ensure creates the tables this service owns when they do not exist yet.
// OTP sessions are not listed here: they live in Redis under a TTL key.
func Ensure(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'applicant',
			password_hash TEXT NOT NULL DEFAULT '',
			oauth_provider TEXT,
			oauth_subject TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users(id),
			title TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			years_experience INT NOT NULL DEFAULT 0,
			education TEXT NOT NULL DEFAULT '',
			resume_url TEXT NOT NULL DEFAULT '',
			skills JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'Draft',
			required_skills JSONB NOT NULL DEFAULT '[]',
			view_count BIGINT NOT NULL DEFAULT 0,
			application_count BIGINT NOT NULL DEFAULT 0,
			posted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			job_id UUID NOT NULL REFERENCES jobs(id),
			status TEXT NOT NULL DEFAULT 'New',
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			resume_url TEXT NOT NULL DEFAULT '',
			cover_letter TEXT NOT NULL DEFAULT '',
			expected_salary BIGINT,
			available_start_date TIMESTAMPTZ,
			notes JSONB NOT NULL DEFAULT '[]',
			interview_date TIMESTAMPTZ,
			interview_location TEXT,
			interview_notes TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// One active application per (user, job); withdrawn rows stay for audit
		// and do not block a re-application.
		`CREATE UNIQUE INDEX IF NOT EXISTS applications_active_user_job
			ON applications (user_id, job_id)
			WHERE status <> 'Withdrawn'`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			admin_id UUID NOT NULL REFERENCES users(id),
			application_id UUID REFERENCES applications(id),
			job_id UUID REFERENCES jobs(id),
			user_unread INT NOT NULL DEFAULT 0,
			admin_unread INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, admin_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id),
			seq BIGINT GENERATED ALWAYS AS IDENTITY,
			sender_id UUID NOT NULL,
			sender_type TEXT NOT NULL,
			content TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS messages_conversation_seq
			ON messages (conversation_id, seq)`,
		`CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id)`,
		`CREATE INDEX IF NOT EXISTS applications_user_idx ON applications (user_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
