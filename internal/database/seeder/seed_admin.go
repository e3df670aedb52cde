package seeder

import (
	"context"
	"fmt"

	"hireflow/internal/domain/user"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminSeeder provisions the bootstrap admin account. Admins authenticate
// with a password; the OTP flow is for applicants only.
type AdminSeeder struct {
	Users    repository.UserRepository
	Email    string
	Password string
}

func (AdminSeeder) Name() string { return "admin" }

func (s AdminSeeder) Run(ctx context.Context) error {
	if s.Email == "" || s.Password == "" {
		return nil
	}

	exists, err := s.Users.ExistsByEmail(ctx, s.Email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return s.Users.Create(ctx, user.User{
		ID:           uuid.New(),
		Username:     "admin",
		Email:        s.Email,
		Role:         user.RoleAdmin,
		PasswordHash: string(hash),
	})
}
