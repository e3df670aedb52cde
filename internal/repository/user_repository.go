package repository

import (
	"context"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, email, role, password_hash, oauth_provider, oauth_subject, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		u.ID, u.Username, u.Email, string(u.Role), u.PasswordHash, u.OAuthProvider, u.OAuthSubject, now,
	)
	return err
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUserRepository) get(ctx context.Context, where string, arg any) (user.User, error) {
	var u user.User
	var role string
	row := r.db.QueryRow(ctx,
		`SELECT id, username, email, role, password_hash, oauth_provider, oauth_subject, created_at, updated_at
		 FROM users `+where, arg,
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.PasswordHash, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	return u, nil
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
