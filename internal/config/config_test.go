package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "hireflow")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing env vars")
	}
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
	if !strings.Contains(err.Error(), "HTTP_PORT") {
		t.Fatalf("expected HTTP_PORT in error, got %v", err)
	}
}

func TestLoad_OTPDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTP_TTL_SECONDS", "")
	t.Setenv("OTP_MAX_ATTEMPTS", "")
	t.Setenv("OTP_RESEND_COOLDOWN_SECONDS", "")
	t.Setenv("INTERVIEW_LEAD_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.OTP.TTL != 10*time.Minute {
		t.Fatalf("expected default OTP TTL 10m, got %v", cfg.OTP.TTL)
	}
	if cfg.OTP.MaxAttempts != 5 {
		t.Fatalf("expected default max attempts 5, got %d", cfg.OTP.MaxAttempts)
	}
	if cfg.OTP.ResendCooldown != 60*time.Second {
		t.Fatalf("expected default cooldown 60s, got %v", cfg.OTP.ResendCooldown)
	}
	if cfg.Hiring.InterviewLeadTime != 7*24*time.Hour {
		t.Fatalf("expected default interview lead 7d, got %v", cfg.Hiring.InterviewLeadTime)
	}
}

func TestLoad_OTPOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTP_TTL_SECONDS", "300")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("INTERVIEW_LEAD_DAYS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.OTP.TTL != 5*time.Minute {
		t.Fatalf("expected OTP TTL 5m, got %v", cfg.OTP.TTL)
	}
	if cfg.OTP.MaxAttempts != 3 {
		t.Fatalf("expected max attempts 3, got %d", cfg.OTP.MaxAttempts)
	}
	if cfg.Hiring.InterviewLeadTime != 3*24*time.Hour {
		t.Fatalf("expected interview lead 3d, got %v", cfg.Hiring.InterviewLeadTime)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTP_MAX_ATTEMPTS", "zero")
	t.Setenv("OTP_TTL_SECONDS", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.OTP.MaxAttempts != 5 {
		t.Fatalf("expected fallback max attempts 5, got %d", cfg.OTP.MaxAttempts)
	}
	if cfg.OTP.TTL != 10*time.Minute {
		t.Fatalf("expected fallback TTL 10m, got %v", cfg.OTP.TTL)
	}
}
