package middleware

import (
	"context"
	"net/http"
	"strings"

	"roster/internal/domain/auth"
)

// Auth attaches the operator named by a valid bearer token. When fallback is
// non-nil, requests without a valid token run as that operator instead.
func Auth(secret string, fallback *auth.UserContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := bearerUser(secret, r.Header.Get("Authorization"))
			if !ok {
				if fallback == nil {
					next.ServeHTTP(w, r)
					return
				}
				user = *fallback
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerUser(secret, header string) (auth.UserContext, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return auth.UserContext{}, false
	}
	claims, err := auth.ParseToken(secret, parts[1])
	if err != nil {
		return auth.UserContext{}, false
	}
	return auth.UserContext{UserID: claims.UserID, Email: claims.Email}, true
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
