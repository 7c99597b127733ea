package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/cache"
	"cookingsecret/pkg/logger"
)

// CacheHandler exposes admin controls over the response cache.
type CacheHandler struct {
	cacheManager  *cache.CacheManager
	warmUpManager *cache.WarmUpManager
	auth          *Authenticator
	logger        logger.Logger
}

type warmUpRequest struct {
	Type     string `json:"type" validate:"required,oneof=recipe popular"`
	RecipeID string `json:"recipe_id" validate:"required_if=Type recipe"`
	Limit    int    `json:"limit" validate:"min=0,max=500"`
}

type invalidateRequest struct {
	Prefix string   `json:"prefix" validate:"omitempty,oneof=user recipe"`
	Keys   []string `json:"keys"`
}

func NewCacheHandler(cacheManager *cache.CacheManager, warmUpManager *cache.WarmUpManager, auth *Authenticator, logger logger.Logger) *CacheHandler {
	return &CacheHandler{
		cacheManager:  cacheManager,
		warmUpManager: warmUpManager,
		auth:          auth,
		logger:        logger,
	}
}

func (h *CacheHandler) WarmUp(w http.ResponseWriter, r *http.Request) {
	var req warmUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response := map[string]interface{}{
		"status":    "success",
		"type":      req.Type,
		"timestamp": time.Now().UTC(),
	}

	switch req.Type {
	case "recipe":
		if err := h.warmUpManager.WarmUpRecipe(r.Context(), req.RecipeID); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		response["recipe_id"] = req.RecipeID
	case "popular":
		limit := req.Limit
		if limit == 0 {
			limit = 20
		}
		queued, err := h.warmUpManager.WarmUpPopular(r.Context(), limit)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		response["queued"] = queued
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Prefix == "" && len(req.Keys) == 0 {
		writeError(w, r, h.logger, &domain.Error{Kind: domain.KindInvalid, Message: "prefix or keys must be provided"})
		return
	}

	if req.Prefix != "" {
		if err := h.cacheManager.InvalidatePrefix(r.Context(), req.Prefix); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	if len(req.Keys) > 0 {
		h.cacheManager.Invalidate(r.Context(), req.Keys...)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"prefix":    req.Prefix,
		"keys":      len(req.Keys),
		"timestamp": time.Now().UTC(),
	})
}

func (h *CacheHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.cacheManager.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *CacheHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cache", func(r chi.Router) {
		r.Use(h.auth.RequireRole(domain.RoleAdmin))
		r.Post("/warmup", h.WarmUp)
		r.Post("/invalidate", h.Invalidate)
		r.Get("/health", h.Health)
	})
}
