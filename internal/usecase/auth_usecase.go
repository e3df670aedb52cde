package usecase

import (
	"context"
	"errors"
	"strings"

	"hireflow/internal/domain/user"
	"hireflow/internal/pkg/jwt"
	"hireflow/internal/repository"
	"hireflow/internal/usecase/otp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthUsecase fronts the OTP session manager: request/resend issue codes,
// verify consumes one and mints a token pair for the session the caller
// creates. Signup verification provisions the applicant account.
type AuthUsecase interface {
	RequestOTP(ctx context.Context, address, purpose string) error
	ResendOTP(ctx context.Context, address, purpose string) error
	VerifyOTP(ctx context.Context, address, purpose, code string) (user.User, TokenPair, error)
	LoginAdmin(ctx context.Context, email, password string) (user.User, TokenPair, error)
}

type AuthService struct {
	codes otp.Usecase
	users repository.UserRepository
	jwt   jwt.Service
}

func NewAuthService(codes otp.Usecase, users repository.UserRepository, jwtSvc jwt.Service) *AuthService {
	return &AuthService{codes: codes, users: users, jwt: jwtSvc}
}

func (s *AuthService) RequestOTP(ctx context.Context, address, purpose string) error {
	_, err := s.codes.RequestCode(ctx, address, purpose)
	return err
}

func (s *AuthService) ResendOTP(ctx context.Context, address, purpose string) error {
	_, err := s.codes.ResendCode(ctx, address, purpose)
	return err
}

func (s *AuthService) VerifyOTP(ctx context.Context, address, purpose, code string) (user.User, TokenPair, error) {
	if err := s.codes.VerifyCode(ctx, address, purpose, code); err != nil {
		return user.User{}, TokenPair{}, err
	}

	email := strings.ToLower(strings.TrimSpace(address))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, TokenPair{}, err
		}
		if purpose != otp.PurposeSignup {
			return user.User{}, TokenPair{}, ErrNotFound
		}
		u = user.User{
			ID:       uuid.New(),
			Username: usernameFromEmail(email),
			Email:    email,
			Role:     user.RoleApplicant,
		}
		if err := s.users.Create(ctx, u); err != nil {
			// A concurrent signup verification may have created the account.
			if existing, getErr := s.users.GetByEmail(ctx, email); getErr == nil {
				u = existing
			} else {
				return user.User{}, TokenPair{}, err
			}
		}
	}

	access, err := s.jwt.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	u.PasswordHash = ""
	return u, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// LoginAdmin authenticates the password-provisioned admin accounts. The
// applicant flow is OTP only; admins never receive codes.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (user.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return user.User{}, TokenPair{}, ErrInvalidInput
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, TokenPair{}, ErrUnauthorized
		}
		return user.User{}, TokenPair{}, err
	}
	if u.Role != user.RoleAdmin || u.PasswordHash == "" {
		return user.User{}, TokenPair{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, TokenPair{}, ErrUnauthorized
	}

	access, err := s.jwt.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	u.PasswordHash = ""
	return u, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
