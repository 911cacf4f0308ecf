package reportshandler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/directory"
	"roster/internal/domain/reports"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(directory.PermReportsView, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(directory.PermReportsExport, h.Perms)).Get("/roster.pdf", h.handleRosterPDF)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Summary(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRosterPDF(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := directory.UserFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
		Role:   query.Get("role"),
	}

	var buf bytes.Buffer
	if err := h.Service.RosterPDF(&buf, filter); err != nil {
		slog.Warn("roster pdf failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render roster", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "roster.pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("roster pdf write failed", "err", err)
	}
}
