package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookingsecret_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookingsecret_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookingsecret_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "entity"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookingsecret_database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "entity"},
	)

	RelationToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookingsecret_relation_toggles_total",
			Help: "Relation toggles by kind and resulting state",
		},
		[]string{"kind", "state"},
	)

	RelationConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookingsecret_relation_conflicts_total",
			Help: "Relation toggles that lost a race on the natural key",
		},
		[]string{"kind"},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookingsecret_chat_requests_total",
			Help: "Chat provider calls by outcome",
		},
		[]string{"outcome"},
	)

	BackgroundJobs = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookingsecret_background_job_duration_seconds",
			Help:    "Worker pool job duration by outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cookingsecret_cache_hits_total",
			Help: "Cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cookingsecret_cache_misses_total",
			Help: "Cache misses",
		},
	)
)

func RecordHttpRequest(method, endpoint, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordDatabaseOperation(operation, entity string, duration time.Duration) {
	DatabaseOperationsTotal.WithLabelValues(operation, entity).Inc()
	DatabaseOperationDuration.WithLabelValues(operation, entity).Observe(duration.Seconds())
}

func RecordToggle(kind string, active bool) {
	state := "inactive"
	if active {
		state = "active"
	}
	RelationToggles.WithLabelValues(kind, state).Inc()
}

func RecordConflict(kind string) {
	RelationConflicts.WithLabelValues(kind).Inc()
}

func RecordChat(outcome string) {
	ChatRequests.WithLabelValues(outcome).Inc()
}

func RecordBackgroundJob(outcome string, duration time.Duration) {
	BackgroundJobs.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}
