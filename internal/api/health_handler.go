package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/concurrent"
	"cookingsecret/pkg/logger"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	dbStats func() map[string]interface{}
	cache   Pinger
	pool    *concurrent.WorkerPool
	logger  logger.Logger
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
	Version   string                 `json:"version"`
}

// NewHealthHandler builds the health check. dbStats and pool may be nil.
func NewHealthHandler(db Pinger, dbStats func() map[string]interface{}, cache Pinger, pool *concurrent.WorkerPool, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		dbStats: dbStats,
		cache:   cache,
		pool:    pool,
		logger:  logger,
	}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	services := map[string]interface{}{
		"database": h.check(ctx, "database", h.db),
		"cache":    h.check(ctx, "cache", h.cache),
	}
	if h.dbStats != nil {
		services["connection_pool"] = h.dbStats()
	}
	if h.pool != nil {
		services["worker_pool"] = h.pool.GetStats()
	}

	status := "healthy"
	for _, name := range []string{"database", "cache"} {
		if services[name].(map[string]interface{})["status"] != "healthy" {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   "1.0.0",
	})
}

func (h *HealthHandler) check(ctx context.Context, name string, p Pinger) map[string]interface{} {
	if p == nil {
		return map[string]interface{}{"status": "unhealthy", "error": name + " is not configured"}
	}
	if err := p.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Health check failed", map[string]interface{}{
			"service": name,
			"error":   err.Error(),
		})
		return map[string]interface{}{"status": "unhealthy", "error": err.Error()}
	}
	return map[string]interface{}{"status": "healthy"}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
}
