package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]user.Profile, error)
	Upsert(ctx context.Context, p user.Profile) error
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `id, user_id, title, industry, years_experience, education, resume_url, skills, created_at, updated_at`

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID,
	)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Profile{}, ErrProfileNotFound
		}
		return user.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	out := make(map[uuid.UUID]user.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1)`, userIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) Upsert(ctx context.Context, p user.Profile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.db.Exec(ctx,
		`INSERT INTO profiles (id, user_id, title, industry, years_experience, education, resume_url, skills, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
			title = EXCLUDED.title,
			industry = EXCLUDED.industry,
			years_experience = EXCLUDED.years_experience,
			education = EXCLUDED.education,
			resume_url = EXCLUDED.resume_url,
			skills = EXCLUDED.skills,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.UserID, p.Title, p.Industry, p.YearsExperience, p.Education, p.ResumeURL, skills, now,
	)
	return err
}

func scanProfile(row database.Row) (user.Profile, error) {
	var p user.Profile
	var skills []byte
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Industry, &p.YearsExperience, &p.Education, &p.ResumeURL, &skills, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return user.Profile{}, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &p.Skills); err != nil {
			return user.Profile{}, err
		}
	}
	return p, nil
}
