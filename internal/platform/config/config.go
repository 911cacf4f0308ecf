package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	Environment        string
	DatabaseURL        string
	DataEncryptionKey  string
	MigrationsDir      string
	JWTSecret          string
	TokenTTL           time.Duration
	AdminEmail         string
	AdminPassword      string
	AdminUserID        string
	AdminTOTPSecret    string
	AuthRequired       bool
	FrontendDir        string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	SeedData           bool
	AuditCapacity      int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("env file load failed", "err", err)
	}
	return fromEnv()
}

func fromEnv() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", ""),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 12*time.Hour),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin"),
		AdminUserID:        getEnv("ADMIN_USER_ID", "user-1"),
		AdminTOTPSecret:    getEnv("ADMIN_TOTP_SECRET", ""),
		AuthRequired:       getEnvBool("AUTH_REQUIRED", true),
		FrontendDir:        getEnv("FRONTEND_DIR", "frontend/dist"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		SeedData:           getEnvBool("SEED_DATA", true),
		AuditCapacity:      getEnvInt("AUDIT_CAPACITY", 1000),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == "dev-secret" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.AdminPassword == "admin" {
			return fmt.Errorf("ADMIN_PASSWORD must be changed in production")
		}
		if !c.AuthRequired {
			return fmt.Errorf("AUTH_REQUIRED cannot be disabled in production")
		}
		if c.DatabaseURL != "" && strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.AuthRequired && strings.TrimSpace(c.AdminEmail) == "" {
		return fmt.Errorf("ADMIN_EMAIL is required when AUTH_REQUIRED is true")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.AuditCapacity <= 0 {
		return fmt.Errorf("AUDIT_CAPACITY must be positive")
	}
	return nil
}
