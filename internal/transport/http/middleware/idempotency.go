package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"roster/internal/transport/http/api"
)

const IdempotencyKeyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

type storedResponse struct {
	requestHash string
	status      int
	contentType string
	body        []byte
	expires     time.Time
}

// IdempotencyStore remembers successful create responses per operator,
// endpoint and key so that retried POSTs do not create duplicates.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]storedResponse
	now     func() time.Time
	swept   time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		entries: map[string]storedResponse{},
		now:     time.Now,
	}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) check(key, requestHash string) (storedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[key]
	if !ok {
		return storedResponse{}, false, nil
	}
	if s.now().After(stored.expires) {
		delete(s.entries, key)
		return storedResponse{}, false, nil
	}
	if stored.requestHash != requestHash {
		return storedResponse{}, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *IdempotencyStore) save(key string, resp storedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	resp.expires = now.Add(s.ttl)
	s.entries[key] = resp
}

// sweep drops expired entries at most once a minute. Callers hold mu.
func (s *IdempotencyStore) sweep(now time.Time) {
	if now.Sub(s.swept) < time.Minute {
		return
	}
	for key, stored := range s.entries {
		if now.After(stored.expires) {
			delete(s.entries, key)
		}
	}
	s.swept = now
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

// Idempotent replays the stored response for a repeated POST carrying the
// same Idempotency-Key and body. Reusing a key with a different body is a
// conflict. Requests without the header pass through.
func Idempotent(store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if store == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "could not read request body", GetRequestID(r.Context()))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			scope := r.URL.Path + "|" + key
			if user, ok := GetUser(r.Context()); ok {
				scope = user.UserID + "|" + scope
			}
			hash := RequestHash(raw)

			stored, found, err := store.check(scope, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), GetRequestID(r.Context()))
				return
			}
			if found {
				w.Header().Set("Content-Type", stored.contentType)
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.status)
				_, _ = w.Write(stored.body)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status >= 200 && capture.status < 300 {
				store.save(scope, storedResponse{
					requestHash: hash,
					status:      capture.status,
					contentType: capture.Header().Get("Content-Type"),
					body:        capture.body.Bytes(),
				})
			}
		})
	}
}
