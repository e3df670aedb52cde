package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"hireflow/internal/pkg/keylock"

	"go.uber.org/zap"
)

const (
	PurposeLogin  = "login"
	PurposeSignup = "signup"

	codeDigits = 6
)

var (
	ErrInvalidAddress  = errors.New("invalid contact address")
	ErrInvalidPurpose  = errors.New("invalid purpose")
	ErrNotFound        = errors.New("verification session not found")
	ErrExpired         = errors.New("verification code expired")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

// Notifier dispatches the plaintext code to the user over email or SMS.
// Delivery failure does not fail the request; the session is already live.
type Notifier interface {
	SendCode(ctx context.Context, address, purpose, code string) error
}

type Usecase interface {
	RequestCode(ctx context.Context, address, purpose string) (Session, error)
	VerifyCode(ctx context.Context, address, purpose, code string) error
	ResendCode(ctx context.Context, address, purpose string) (Session, error)
}

type Service struct {
	store    SessionStore
	notifier Notifier
	logger   *zap.Logger

	ttl         time.Duration
	maxAttempts int

	locks *keylock.KeyedMutex
	now   func() time.Time
}

func NewService(store SessionStore, notifier Notifier, ttl time.Duration, maxAttempts int, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		store:       store,
		notifier:    notifier,
		logger:      logger,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		locks:       keylock.New(),
		now:         time.Now,
	}
}

// RequestCode issues a fresh code for (address, purpose), replacing any
// previous session for the key and resetting the attempt count.
func (s *Service) RequestCode(ctx context.Context, address, purpose string) (Session, error) {
	address, purpose, err := normalizeKey(address, purpose)
	if err != nil {
		return Session{}, err
	}

	code, err := generateCode()
	if err != nil {
		return Session{}, err
	}

	now := s.now().UTC()
	sess := Session{
		Address:   address,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Attempts:  0,
	}

	key := SessionKey(address, purpose)
	s.locks.Lock(key)
	err = s.store.Put(ctx, sess)
	s.locks.Unlock(key)
	if err != nil {
		return Session{}, err
	}

	// Dispatch after the session is persisted and the key lock is released;
	// a slow delivery channel must not stall verification attempts for this
	// address. The code itself never goes through the logger.
	if s.notifier != nil {
		if err := s.notifier.SendCode(ctx, address, purpose, code); err != nil && s.logger != nil {
			s.logger.Warn("verification code dispatch failed",
				zap.String("address", address),
				zap.String("purpose", purpose),
				zap.Error(err),
			)
		}
	}

	return sess, nil
}

// ResendCode supersedes the current session. The resend cool-down is a
// client-side display concern; the server does not rate-limit here.
func (s *Service) ResendCode(ctx context.Context, address, purpose string) (Session, error) {
	return s.RequestCode(ctx, address, purpose)
}

// VerifyCode checks the submitted code and consumes the session on the first
// match. A session that was consumed, superseded or invalidated reports
// ErrNotFound so an unauthenticated caller cannot probe for live sessions.
func (s *Service) VerifyCode(ctx context.Context, address, purpose, code string) error {
	address, purpose, err := normalizeKey(address, purpose)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)

	key := SessionKey(address, purpose)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	sess, ok, err := s.store.Get(ctx, address, purpose)
	if err != nil {
		return err
	}
	if !ok || sess.Consumed {
		return ErrNotFound
	}

	now := s.now().UTC()
	if now.After(sess.ExpiresAt) {
		if err := s.store.Delete(ctx, address, purpose); err != nil {
			return err
		}
		return ErrExpired
	}

	if sess.Attempts >= s.maxAttempts {
		if err := s.store.Delete(ctx, address, purpose); err != nil {
			return err
		}
		return ErrTooManyAttempts
	}

	if code == "" || code != sess.Code {
		sess.Attempts++
		if err := s.store.Put(ctx, sess); err != nil {
			return err
		}
		return ErrInvalidCode
	}

	sess.Consumed = true
	if err := s.store.Put(ctx, sess); err != nil {
		return err
	}
	return nil
}

func normalizeKey(address, purpose string) (string, string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || !strings.ContainsAny(address, "@0123456789") {
		return "", "", ErrInvalidAddress
	}
	purpose = strings.TrimSpace(purpose)
	if purpose != PurposeLogin && purpose != PurposeSignup {
		return "", "", ErrInvalidPurpose
	}
	return address, purpose, nil
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
