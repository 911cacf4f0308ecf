package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("AUTH_REQUIRED", "")

	cfg := fromEnv()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected default ttl, got %v", cfg.TokenTTL)
	}
	if !cfg.AuthRequired {
		t.Fatal("expected auth required by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("RATE_LIMIT_PER_MINUTE=7\nSEED_DATA=false\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// t.Setenv registers cleanup; unset so godotenv may fill the values.
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("SEED_DATA", "")
	os.Unsetenv("RATE_LIMIT_PER_MINUTE")
	os.Unsetenv("SEED_DATA")

	cfg := Load(path)
	if cfg.RateLimitPerMinute != 7 {
		t.Fatalf("expected 7 from env file, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.SeedData {
		t.Fatal("expected SEED_DATA=false from env file")
	}
}

func TestLoadToleratesMissingEnvFile(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.Addr == "" {
		t.Fatal("expected config to load without env file")
	}
}

func TestValidateProductionRules(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("DATABASE_URL", "")

	cfg := fromEnv()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default secret to be rejected in production")
	}

	cfg.JWTSecret = "a-long-production-secret"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default admin password to be rejected in production")
	}

	cfg.AdminPassword = "changed"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}

	cfg.DatabaseURL = "postgres://localhost/roster"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a database without encryption key to be rejected in production")
	}
	cfg.DataEncryptionKey = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config with database, got %v", err)
	}

	cfg.AuthRequired = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected disabled auth to be rejected in production")
	}
}

func TestValidateLimits(t *testing.T) {
	cfg := fromEnv()
	cfg.MaxBodyBytes = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected small body limit to be rejected")
	}
	cfg = fromEnv()
	cfg.RateLimitPerMinute = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero rate limit to be rejected")
	}
}
