package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cookingsecret/internal/api/middleware"
	"cookingsecret/internal/config"
)

// RouteRegistrar is implemented by every handler.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// NewRouter builds the HTTP handler: global middleware, then every handler's
// routes, then /metrics.
func NewRouter(cfg *config.Config, handlers ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RateLimit.Requests > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.MetricsMiddleware)

	for _, h := range handlers {
		h.RegisterRoutes(r)
	}

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Cooking Secret API"})
	})

	return r
}
