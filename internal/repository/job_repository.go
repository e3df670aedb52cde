package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository interface {
	Create(ctx context.Context, j job.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	ListByStatus(ctx context.Context, status job.Status) ([]job.Job, error)
	IncrementApplicationCount(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, title, company, industry, status, required_skills, view_count, application_count, posted_at, created_at`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) error {
	skills, err := json.Marshal(j.RequiredSkills)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO jobs (id, title, company, industry, status, required_skills, view_count, application_count, posted_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		j.ID, j.Title, j.Company, j.Industry, string(j.Status), skills,
		j.ViewCount, j.ApplicationCount, j.PostedAt, time.Now().UTC(),
	)
	return err
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) ListByStatus(ctx context.Context, status job.Status) ([]job.Job, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = $1 ORDER BY posted_at DESC NULLS LAST`,
		string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) IncrementApplicationCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE jobs SET application_count = application_count + 1 WHERE id = $1`, id,
	)
	return err
}

func (r *PostgresJobRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE jobs SET view_count = view_count + 1 WHERE id = $1`, id,
	)
	return err
}

func scanJob(row database.Row) (job.Job, error) {
	var j job.Job
	var status string
	var skills []byte
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Industry, &status, &skills,
		&j.ViewCount, &j.ApplicationCount, &j.PostedAt, &j.CreatedAt)
	if err != nil {
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &j.RequiredSkills); err != nil {
			return job.Job{}, err
		}
	}
	return j, nil
}
