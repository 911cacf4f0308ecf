package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMFARequired        = errors.New("mfa code required")
)

// Operator is an account allowed to sign in to the admin API.
type Operator struct {
	Email        string
	PasswordHash string
	UserID       string
	TOTPSecret   string
}

// NewOperator hashes the plain password once at start-up.
func NewOperator(email, password, userID, totpSecret string) (Operator, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Operator{}, err
	}
	return Operator{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		UserID:       userID,
		TOTPSecret:   strings.TrimSpace(totpSecret),
	}, nil
}

type Authenticator struct {
	Secret    string
	TTL       time.Duration
	operators map[string]Operator
}

func NewAuthenticator(secret string, ttl time.Duration, operators ...Operator) *Authenticator {
	byEmail := make(map[string]Operator, len(operators))
	for _, op := range operators {
		byEmail[NormalizeEmail(op.Email)] = op
	}
	return &Authenticator{Secret: secret, TTL: ttl, operators: byEmail}
}

// Login checks the password and, for operators with a TOTP secret, the
// one-time code. It returns a signed access token.
func (a *Authenticator) Login(email, password, code string) (string, UserContext, error) {
	op, ok := a.operators[NormalizeEmail(email)]
	if !ok {
		return "", UserContext{}, ErrInvalidCredentials
	}
	if err := CheckPassword(op.PasswordHash, password); err != nil {
		return "", UserContext{}, ErrInvalidCredentials
	}
	if op.TOTPSecret != "" {
		if strings.TrimSpace(code) == "" {
			return "", UserContext{}, ErrMFARequired
		}
		if !totp.Validate(strings.TrimSpace(code), op.TOTPSecret) {
			return "", UserContext{}, ErrInvalidCredentials
		}
	}

	user := UserContext{UserID: op.UserID, Email: op.Email}
	token, err := GenerateToken(a.Secret, Claims{UserID: user.UserID, Email: user.Email}, a.TTL)
	if err != nil {
		return "", UserContext{}, err
	}
	return token, user, nil
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
