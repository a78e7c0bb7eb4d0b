package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMetric snapshots a single metric into its protobuf form.
func writeMetric(t *testing.T, m prometheus.Metric) *dto.Metric {
	t.Helper()
	out := &dto.Metric{}
	require.NoError(t, m.Write(out))
	return out
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-route"))
	r.Delete("/api/v1/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"s1:p1", "s1:p2", "s2:p1"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/listings/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	counter := httpRequestsTotal.WithLabelValues("metrics-route", http.MethodDelete, "/api/v1/listings/{id}", "204")
	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-route")))

	observer := httpRequestDuration.WithLabelValues("metrics-route", http.MethodDelete, "/api/v1/listings/{id}", "204")
	histogram := writeMetric(t, observer.(prometheus.Metric)).GetHistogram()
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(3), histogram.GetSampleCount())
	assert.Len(t, histogram.GetBucket(), 10)
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-default"))
	r.Get("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	counter := httpRequestsTotal.WithLabelValues("metrics-default", http.MethodGet, "/api/v1/search", "200")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_InFlightDuringRequest(t *testing.T) {
	var seen float64
	handler := PrometheusMetrics("metrics-inflight")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-inflight"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, float64(1), seen)
	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-inflight")))
}

func TestRoutePattern_Unmatched(t *testing.T) {
	assert.Equal(t, "unmatched", routePattern(httptest.NewRequest(http.MethodGet, "/nope", nil)))
}
