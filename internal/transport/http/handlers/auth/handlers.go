package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"roster/internal/domain/audit"
	"roster/internal/domain/auth"
	"roster/internal/domain/directory"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

type Handler struct {
	Auth      *auth.Authenticator
	Directory *directory.Store
	Audit     *audit.Service
}

func NewHandler(authn *auth.Authenticator, store *directory.Store, auditService *audit.Service) *Handler {
	return &Handler{Auth: authn, Directory: store, Audit: auditService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	token, user, err := h.Auth.Login(payload.Email, payload.Password, payload.MFACode)
	switch {
	case errors.Is(err, auth.ErrMFARequired):
		api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.record(r, "", "auth.login.failed", auth.NormalizeEmail(payload.Email))
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	case err != nil:
		slog.Warn("token issue failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	h.record(r, user.UserID, "auth.login", user.Email)
	api.Success(w, map[string]any{
		"token":     token,
		"expiresAt": time.Now().Add(h.Auth.TTL).UTC(),
		"user":      map[string]string{"id": user.UserID, "email": user.Email},
	}, requestID)
}

// HandleLogout only acknowledges; tokens are stateless and expire on their own.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		h.record(r, user.UserID, "auth.logout", user.Email)
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	out := map[string]any{
		"user":        map[string]string{"id": user.UserID, "email": user.Email},
		"permissions": []string{},
	}
	if record, found := h.Directory.User(user.UserID); found {
		roles := directory.ResolveRoles(record, h.Directory.Roles())
		out["profile"] = record
		out["roles"] = roles
		out["permissions"] = directory.EffectivePermissions(record, roles)
	}
	api.Success(w, out, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, email string) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "operator",
		EntityID:   strings.ToLower(email),
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
