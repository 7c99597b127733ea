package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type CommentHandler struct {
	service domain.CommentService
	auth    *Authenticator
	logger  logger.Logger
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func NewCommentHandler(service domain.CommentService, auth *Authenticator, logger logger.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), currentUser(r), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteComment(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/recipes/{id}/comments", h.ListComments)
	r.With(h.auth.Require).Post("/api/recipes/{id}/comments", h.CreateComment)
	r.With(h.auth.Require).Delete("/api/comments/{id}", h.DeleteComment)
}
