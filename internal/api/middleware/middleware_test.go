package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"cookingsecret/pkg/metrics"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Get("/api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "teapot" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte("ok"))
	})
	return r
}

func TestMetricsAreLabelledByRoutePattern(t *testing.T) {
	router := newTestRouter()
	counter := metrics.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/api/recipes/{id}", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipes/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
	assert.Zero(t, testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/api/recipes/a", "200")))
}

func TestMetricsRecordWrittenStatus(t *testing.T) {
	router := newTestRouter()
	counter := metrics.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/api/recipes/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipes/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, rw.statusCode)
}
