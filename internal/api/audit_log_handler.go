package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

// AdminHandler serves the admin dashboard: counters and the audit trail.
type AdminHandler struct {
	users  domain.UserService
	audit  domain.AuditLogService
	auth   *Authenticator
	logger logger.Logger
}

func NewAdminHandler(users domain.UserService, audit domain.AuditLogService, auth *Authenticator, logger logger.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		audit:  audit,
		auth:   auth,
		logger: logger,
	}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.AdminStats(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) GetAllLogs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 50)
	if page < 1 || pageSize < 1 || pageSize > 100 {
		writeError(w, r, h.logger, &domain.Error{
			Kind:    domain.KindInvalid,
			Message: "page must be >= 1 and page_size between 1 and 100",
		})
		return
	}

	logs, err := h.audit.GetAllLogs(r.Context(), currentUser(r), page, pageSize)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *AdminHandler) GetEntityLogs(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(chi.URLParam(r, "type"))
	switch entityType {
	case domain.EntityTypeUser, domain.EntityTypeRecipe, domain.EntityTypeComment:
	default:
		writeError(w, r, h.logger, &domain.Error{
			Kind:    domain.KindInvalid,
			Message: "entity type must be one of user, recipe, comment",
		})
		return
	}

	logs, err := h.audit.GetEntityLogs(r.Context(), currentUser(r), entityType, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.auth.RequireRole(domain.RoleAdmin))
		r.Get("/stats", h.Stats)
		r.Get("/audit-logs", h.GetAllLogs)
		r.Get("/audit-logs/{type}/{id}", h.GetEntityLogs)
	})
}
