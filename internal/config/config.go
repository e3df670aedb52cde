package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Hiring   HiringConfig
	Seed     SeedConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogLevel    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
	PoolMinConns   int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// OTPConfig carries the verification-code policy values. ResendCooldown is
// advertised to clients only; the server does not rate-limit resends beyond
// the attempt cap.
type OTPConfig struct {
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

type HiringConfig struct {
	InterviewLeadTime time.Duration
}

// SeedConfig holds the bootstrap admin credentials. Empty values skip the
// admin seeder.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	DemoData      bool
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogLevel:    opt("LOG_LEVEL"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         opt("DB_HOST"),
		DBPort:         opt("DB_PORT"),
		DBName:         opt("DB_NAME"),
		DBUser:         opt("DB_USER"),
		DBPassword:     opt("DB_PASSWORD"),
		DBSSLMode:      opt("DB_SSL_MODE"),
		ConnectTimeout: durationEnv("DB_CONNECT_TIMEOUT_SECONDS", 5*time.Second),
		PoolMaxConns:   int32Env("DB_POOL_MAX_CONNS", 0),
		PoolMinConns:   int32Env("DB_POOL_MIN_CONNS", 0),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  durationEnv("JWT_ACCESS_EXPIRES_SECONDS", 15*time.Minute),
		RefreshExpiresIn: durationEnv("JWT_REFRESH_EXPIRES_SECONDS", 7*24*time.Hour),
	}

	cfg.OTP = OTPConfig{
		TTL:            durationEnv("OTP_TTL_SECONDS", 10*time.Minute),
		MaxAttempts:    intEnv("OTP_MAX_ATTEMPTS", 5),
		ResendCooldown: durationEnv("OTP_RESEND_COOLDOWN_SECONDS", 60*time.Second),
	}

	cfg.Hiring = HiringConfig{
		InterviewLeadTime: durationEnv("INTERVIEW_LEAD_DAYS", 7*24*time.Hour),
	}

	cfg.Seed = SeedConfig{
		AdminEmail:    opt("SEED_ADMIN_EMAIL"),
		AdminPassword: opt("SEED_ADMIN_PASSWORD"),
		DemoData:      strings.EqualFold(opt("SEED_DEMO_DATA"), "true"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func int32Env(key string, def int32) int32 {
	return int32(intEnv(key, int(def)))
}

// durationEnv interprets the env value by the unit the key name ends with.
func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if strings.HasSuffix(key, "_DAYS") {
		return time.Duration(v) * 24 * time.Hour
	}
	return time.Duration(v) * time.Second
}
