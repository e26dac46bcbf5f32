package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.DocumentCreated("vendor_bill")
	m.Settlement("send", "ok")
	m.NumberConflict("vendor_bill")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics()
	m.DocumentCreated("vendor_bill")
	m.DocumentCreated("vendor_bill")
	m.Settlement("receive", "already_settled")
	m.NumberConflict("sales_bill")

	require.Equal(t, 2.0, testutil.ToFloat64(m.documentsCreated.WithLabelValues("vendor_bill")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("receive", "already_settled")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.numberConflicts.WithLabelValues("sales_bill")))
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/vendor-bills/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/vendor-bills/7", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.True(t, strings.Contains(body, `books_http_requests_total{code="404",route="/vendor-bills/{id}"} 1`), body)
}
