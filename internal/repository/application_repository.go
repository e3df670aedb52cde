package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	// ErrStatusConflict means the compare-and-swap status update lost a race:
	// the row exists but its status no longer matches the expected one.
	ErrStatusConflict = errors.New("application status conflict")
)

type ApplicationRepository interface {
	Create(ctx context.Context, a application.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (application.Application, error)
	HasActiveByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	ListActiveJobIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]application.Application, error)

	// UpdateStatus flips the status only when the stored status still equals
	// expected, appending the audit note in the same statement.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next application.Status, note application.Note) error
	AppendNote(ctx context.Context, id uuid.UUID, note application.Note) error
	SetInterview(ctx context.Context, id uuid.UUID, iv application.Interview) error
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationColumns = `id, user_id, job_id, status, applied_at, resume_url, cover_letter,
	expected_salary, available_start_date, notes, interview_date, interview_location, interview_notes, updated_at`

func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) error {
	notes, err := json.Marshal(a.Notes)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO applications
			(id, user_id, job_id, status, applied_at, resume_url, cover_letter,
			 expected_salary, available_start_date, notes, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.UserID, a.JobID, string(a.Status), a.AppliedAt, a.ResumeURL, a.CoverLetter,
		a.ExpectedSalary, a.AvailableStartDate, notes, a.UpdatedAt,
	)
	return err
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) HasActiveByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2 AND status <> $3)`,
		userID, jobID, string(application.StatusWithdrawn),
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresApplicationRepository) ListActiveJobIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT job_id FROM applications WHERE user_id = $1 AND status <> $2`,
		userID, string(application.StatusWithdrawn),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]application.Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next application.Status, note application.Note) error {
	noteJSON, err := json.Marshal([]application.Note{note})
	if err != nil {
		return err
	}

	affected, err := r.db.Exec(ctx,
		`UPDATE applications
		 SET status = $1, notes = notes || $2::jsonb, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		string(next), noteJSON, time.Now().UTC(), id, string(expected),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id)
		if scanErr := row.Scan(&exists); scanErr != nil {
			return scanErr
		}
		if !exists {
			return ErrApplicationNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *PostgresApplicationRepository) AppendNote(ctx context.Context, id uuid.UUID, note application.Note) error {
	noteJSON, err := json.Marshal([]application.Note{note})
	if err != nil {
		return err
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE applications SET notes = notes || $1::jsonb, updated_at = $2 WHERE id = $3`,
		noteJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *PostgresApplicationRepository) SetInterview(ctx context.Context, id uuid.UUID, iv application.Interview) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE applications
		 SET interview_date = $1, interview_location = $2, interview_notes = $3, updated_at = $4
		 WHERE id = $5`,
		iv.Date, iv.Location, iv.Notes, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func scanApplication(row database.Row) (application.Application, error) {
	var a application.Application
	var status string
	var notes []byte
	var ivDate *time.Time
	var ivLocation, ivNotes *string

	err := row.Scan(&a.ID, &a.UserID, &a.JobID, &status, &a.AppliedAt, &a.ResumeURL, &a.CoverLetter,
		&a.ExpectedSalary, &a.AvailableStartDate, &notes, &ivDate, &ivLocation, &ivNotes, &a.UpdatedAt)
	if err != nil {
		return application.Application{}, err
	}

	a.Status = application.Status(status)
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &a.Notes); err != nil {
			return application.Application{}, err
		}
	}
	if ivDate != nil {
		iv := application.Interview{Date: *ivDate}
		if ivLocation != nil {
			iv.Location = *ivLocation
		}
		if ivNotes != nil {
			iv.Notes = *ivNotes
		}
		a.Interview = &iv
	}
	return a, nil
}
