package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: "user-1", Email: "admin@example.com"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != claims.UserID || parsed.Email != claims.Email || parsed.Subject != claims.UserID {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("one", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("two", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestAuthenticatorLogin(t *testing.T) {
	op, err := NewOperator(" Admin@Example.com ", "pass-123", "user-1", "")
	if err != nil {
		t.Fatalf("operator error: %v", err)
	}
	authn := NewAuthenticator("secret", time.Hour, op)

	token, user, err := authn.Login("admin@example.com", "pass-123", "")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if user.UserID != "user-1" || user.Email != "admin@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	claims, err := ParseToken("secret", token)
	if err != nil || claims.UserID != "user-1" {
		t.Fatalf("unexpected token claims %+v %v", claims, err)
	}

	if _, _, err := authn.Login("admin@example.com", "nope", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := authn.Login("ghost@example.com", "pass-123", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticatorLoginWithTOTP(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "Roster", AccountName: "admin@example.com"})
	if err != nil {
		t.Fatalf("totp error: %v", err)
	}
	op, err := NewOperator("admin@example.com", "pass-123", "user-1", key.Secret())
	if err != nil {
		t.Fatalf("operator error: %v", err)
	}
	authn := NewAuthenticator("secret", time.Hour, op)

	if _, _, err := authn.Login("admin@example.com", "pass-123", ""); !errors.Is(err, ErrMFARequired) {
		t.Fatalf("expected ErrMFARequired, got %v", err)
	}
	if _, _, err := authn.Login("admin@example.com", "pass-123", "000000x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("code error: %v", err)
	}
	if _, _, err := authn.Login("admin@example.com", "pass-123", code); err != nil {
		t.Fatalf("expected login with valid code, got %v", err)
	}
}
