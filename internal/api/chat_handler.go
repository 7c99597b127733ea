package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type ChatHandler struct {
	service domain.ChatService
	auth    *Authenticator
	logger  logger.Logger
}

type chatRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	SessionID string `json:"session_id"`
}

func NewChatHandler(service domain.ChatService, auth *Authenticator, logger logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reply, err := h.service.Send(r.Context(), currentUser(r), req.SessionID, req.Message)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.History(r.Context(), currentUser(r), r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.Sessions(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteSession(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Use(h.auth.Require)
		r.Post("/", h.Send)
		r.Get("/history", h.History)
		r.Get("/sessions", h.Sessions)
		r.Delete("/session/{id}", h.DeleteSession)
	})
}
