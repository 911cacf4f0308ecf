package directoryhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/audit"
	"roster/internal/domain/directory"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

var (
	statusValues  = []string{string(directory.StatusActive), string(directory.StatusInactive)}
	payTypeValues = []string{string(directory.PayTypeHourly), string(directory.PayTypeSalary)}
)

type Handler struct {
	Service     *directory.Service
	Audit       *audit.Service
	Perms       middleware.PermissionStore
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *directory.Service, auditService *audit.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Audit: auditService, Perms: service.Store, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(directory.PermUserView, h.Perms)).Get("/permissions", h.handleListPermissions)

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(directory.PermUserView, h.Perms)).Get("/", h.handleListUsers)
		r.With(
			middleware.RequirePermission(directory.PermUserCreate, h.Perms),
			middleware.Idempotent(h.Idempotency),
		).Post("/", h.handleCreateUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(directory.PermUserView, h.Perms)).Get("/", h.handleGetUser)
			r.With(middleware.RequirePermission(directory.PermUserEdit, h.Perms)).Put("/", h.handleReplaceUser)
			r.With(middleware.RequirePermission(directory.PermUserEdit, h.Perms)).Patch("/", h.handlePatchUser)
			r.With(middleware.RequirePermission(directory.PermUserDelete, h.Perms)).Delete("/", h.handleDeleteUser)
		})
	})

	r.Route("/roles", func(r chi.Router) {
		r.With(middleware.RequirePermission(directory.PermUserView, h.Perms)).Get("/", h.handleListRoles)
		r.With(
			middleware.RequirePermission(directory.PermUserRoles, h.Perms),
			middleware.Idempotent(h.Idempotency),
		).Post("/", h.handleCreateRole)
		r.Route("/{roleID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(directory.PermUserView, h.Perms)).Get("/", h.handleGetRole)
			r.With(middleware.RequirePermission(directory.PermUserRoles, h.Perms)).Put("/", h.handleReplaceRole)
			r.With(middleware.RequirePermission(directory.PermUserRoles, h.Perms)).Patch("/", h.handlePatchRole)
			r.With(middleware.RequirePermission(directory.PermUserRoles, h.Perms)).Delete("/", h.handleDeleteRole)
		})
	})
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.Service.Permissions()
	api.Success(w, map[string]any{
		"permissions": perms,
		"groups":      directory.PermissionsByCategory(perms),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	v := shared.NewValidator()
	status := query.Get("status")
	v.OneOf("status", status, append([]string{directory.FilterAll}, statusValues...)...)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	users := h.Service.ListUsers(directory.UserFilter{
		Search: query.Get("search"),
		Status: status,
		Role:   query.Get("role"),
	})
	page := shared.ParsePagination(r, 100, 500)
	w.Header().Set("X-Total-Count", strconv.Itoa(len(users)))
	api.Success(w, shared.Window(users, page), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, roles, err := h.Service.UserDetails(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{
		"user":        user,
		"roles":       roles,
		"permissions": directory.EffectivePermissions(user, roles),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	in := directory.NewUserInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectUserInput(w, r, in) {
		return
	}

	user, err := h.Service.SaveUser(r.Context(), "", in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "directory.user.create", "user", user.ID, nil, user)
	api.Created(w, user, middleware.GetRequestID(r.Context()))
}

// handleReplaceUser overwrites every form field; omitted fields take the
// blank-form defaults.
func (h *Handler) handleReplaceUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	existing, ok := h.Service.Store.User(userID)
	if !ok {
		writeError(w, r, directory.ErrUserNotFound)
		return
	}

	in := directory.NewUserInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectUserInput(w, r, in) {
		return
	}

	user, err := h.Service.SaveUser(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "directory.user.update", "user", user.ID, existing, user)
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	existing, ok := h.Service.Store.User(userID)
	if !ok {
		writeError(w, r, directory.ErrUserNotFound)
		return
	}

	var patch directory.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	if patch.Status != nil {
		v.OneOf("status", string(*patch.Status), statusValues...)
	}
	if patch.PayType != nil {
		v.OneOf("payType", string(*patch.PayType), payTypeValues...)
	}
	if patch.StartDate != nil {
		v.Date("startDate", *patch.StartDate)
	}
	if patch.EndDate != nil {
		v.Date("endDate", *patch.EndDate)
	}
	v.Form(directory.ValidateUserForm(directory.InputFromUser(patch.Apply(existing))))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Service.PatchUser(r.Context(), userID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "directory.user.update", "user", user.ID, existing, user)
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	existing, ok := h.Service.Store.User(userID)
	if !ok {
		writeError(w, r, directory.ErrUserNotFound)
		return
	}

	removed, err := h.Service.DeleteUser(r.Context(), userID, shared.Confirmed(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if removed {
		h.record(r, "directory.user.delete", "user", userID, existing, nil)
	}
	api.Success(w, map[string]any{"id": userID, "deleted": removed}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.ListRoles(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	role, ok := h.Service.Store.Role(roleID)
	if !ok {
		writeError(w, r, directory.ErrRoleNotFound)
		return
	}
	api.Success(w, directory.RoleSummary{
		Role:      role,
		UserCount: directory.CountUsersForRole(h.Service.Store.Users(), roleID),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	in := directory.NewRoleInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectRoleInput(w, r, in) {
		return
	}

	role, err := h.Service.SaveRole(r.Context(), "", in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "directory.role.create", "role", role.ID, nil, role)
	api.Created(w, role, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	existing, ok := h.Service.Store.Role(roleID)
	if !ok {
		writeError(w, r, directory.ErrRoleNotFound)
		return
	}

	in := directory.NewRoleInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectRoleInput(w, r, in) {
		return
	}

	role, err := h.Service.SaveRole(r.Context(), roleID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "directory.role.update", "role", role.ID, existing, role)
	api.Success(w, role, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePatchRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	existing, ok := h.Service.Store.Role(roleID)
	if !ok {
		writeError(w, r, directory.ErrRoleNotFound)
		return
	}

	var patch directory.RolePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectRoleInput(w, r, directory.InputFromRole(patch.Apply(existing))) {
		return
	}

	role, err := h.Service.PatchRole(r.Context(), roleID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record(r, "directory.role.update", "role", role.ID, existing, role)
	api.Success(w, role, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	existing, ok := h.Service.Store.Role(roleID)
	if !ok {
		writeError(w, r, directory.ErrRoleNotFound)
		return
	}

	removed, affected, err := h.Service.DeleteRole(r.Context(), roleID, shared.Confirmed(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	affectedIDs := make([]string, 0, len(affected))
	for _, u := range affected {
		affectedIDs = append(affectedIDs, u.ID)
	}
	if removed {
		h.record(r, "directory.role.delete", "role", roleID, existing, map[string]any{"strippedFrom": affectedIDs})
	}
	api.Success(w, map[string]any{
		"id":            roleID,
		"deleted":       removed,
		"affectedUsers": affectedIDs,
	}, middleware.GetRequestID(r.Context()))
}

// rejectUserInput checks the wire-level constraints and the form rules
// together so the client sees every field issue at once.
func rejectUserInput(w http.ResponseWriter, r *http.Request, in directory.UserInput) bool {
	v := shared.NewValidator()
	v.OneOf("status", string(in.Status), statusValues...)
	v.OneOf("payType", string(in.PayType), payTypeValues...)
	v.Date("startDate", in.StartDate)
	v.Date("endDate", in.EndDate)
	v.Form(directory.ValidateUserForm(in))
	return v.Reject(w, middleware.GetRequestID(r.Context()))
}

func rejectRoleInput(w http.ResponseWriter, r *http.Request, in directory.RoleInput) bool {
	v := shared.NewValidator()
	for _, perm := range in.Permissions {
		if _, ok := directory.LookupPermission(perm); !ok {
			v.Add("permissions", "unknown permission "+perm)
		}
	}
	v.Form(directory.ValidateRoleForm(in))
	return v.Reject(w, middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var fieldErrs directory.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		v := shared.NewValidator()
		v.Form(fieldErrs)
		shared.FailValidation(w, requestID, v.Issues())
	case errors.Is(err, directory.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, directory.ErrRoleNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "role not found", requestID)
	case errors.Is(err, directory.ErrConfirmationRequired):
		api.Fail(w, http.StatusPreconditionRequired, "confirmation_required", "repeat the request with ?confirm=true to delete", requestID)
	default:
		slog.Warn("directory request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

func (h *Handler) record(r *http.Request, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	actorID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actorID = user.UserID
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
