package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"roster/internal/transport/http/api"
	"roster/internal/transport/http/shared"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// Limiter is a fixed-window counter per key.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	count int
	reset time.Time
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

// Allow counts one request against key. A non-positive limit disables the
// limiter.
func (l *Limiter) Allow(key string) Decision {
	if l.limit <= 0 {
		return Decision{Allowed: true}
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.reset) {
		b = &bucket{reset: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return Decision{
		Allowed:   b.count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-b.count, 0),
		ResetIn:   b.reset.Sub(now),
	}
}

// sweep drops expired buckets at most once per window.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.window {
		return
	}
	for key, b := range l.buckets {
		if !now.Before(b.reset) {
			delete(l.buckets, key)
		}
	}
	l.swept = now
}

func (l *Limiter) enforce(w http.ResponseWriter, r *http.Request, key string) bool {
	d := l.Allow(key)
	if d.Limit == 0 {
		return true
	}
	resetSec := ceilSeconds(d.ResetIn)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if d.Allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", d.Limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// RateLimit throttles every request per operator, or per client IP for
// anonymous calls.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	limiter := NewLimiter(limit, window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.enforce(w, r, actorKey(r)) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type sensitiveScope int

const (
	scopeNone sensitiveScope = iota
	scopeLogin
	scopeActor
)

type sensitiveRule struct {
	method string
	prefix string
	scope  sensitiveScope
}

// Paths are relative to /api/v1. Prefixes ending in "/" only match a
// specific record.
var sensitiveRules = []sensitiveRule{
	{http.MethodPost, "/auth/login", scopeLogin},
	{http.MethodDelete, "/users/", scopeActor},
	{http.MethodDelete, "/roles/", scopeActor},
	{http.MethodPost, "/roles", scopeActor},
	{http.MethodPut, "/roles/", scopeActor},
	{http.MethodPatch, "/roles/", scopeActor},
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	for _, rule := range sensitiveRules {
		if r.Method == rule.method && strings.HasPrefix(path, rule.prefix) {
			return rule.scope
		}
	}
	return scopeNone
}

// SensitiveMutationRateLimit adds tighter limits on top of RateLimit. Login
// attempts get a quarter of the base limit, counted both per client IP and
// per submitted email. Deletes and role writes get half, per operator.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginByIP := NewLimiter(max(baseLimit/4, 1), window)
	loginByEmail := NewLimiter(max(baseLimit/4, 1), window)
	byActor := NewLimiter(max(baseLimit/2, 1), window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case scopeLogin:
				if !loginByIP.enforce(w, r, "ip:"+shared.ClientIP(r)) {
					return
				}
				if email := loginEmail(r); email != "" && !loginByEmail.enforce(w, r, "email:"+email) {
					return
				}
			case scopeActor:
				if !byActor.enforce(w, r, actorKey(r)) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actorKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return "ip:" + shared.ClientIP(r)
}

// loginEmail peeks at the login payload and restores the body for the
// handler.
func loginEmail(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}
