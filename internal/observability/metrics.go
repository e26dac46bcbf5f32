// Package observability exposes Prometheus metrics for the HTTP surface and
// the bookkeeping workflows.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	documentsCreated *prometheus.CounterVec
	settlements      *prometheus.CounterVec
	numberConflicts  *prometheus.CounterVec
}

// NewMetrics initialises the registry and all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "books_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "books_http_request_duration_seconds",
		Help:    "HTTP request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "books_documents_created_total",
		Help: "Orders, bills and payments created by document series.",
	}, []string{"series"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "books_settlements_total",
		Help: "Bill settlements by payment direction and outcome.",
	}, []string{"direction", "outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "books_number_conflicts_total",
		Help: "Document inserts rejected by the unique number constraint.",
	}, []string{"series"})
	registry.MustRegister(requests, duration, documents, settlements, conflicts)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		documentsCreated: documents,
		settlements:      settlements,
		numberConflicts:  conflicts,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// DocumentCreated counts a committed document of the given series.
func (m *Metrics) DocumentCreated(series string) {
	if m == nil {
		return
	}
	m.documentsCreated.WithLabelValues(series).Inc()
}

// Settlement counts a settlement attempt. outcome is "ok" or an error class.
func (m *Metrics) Settlement(direction, outcome string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(direction, outcome).Inc()
}

// NumberConflict counts a duplicate-number rejection.
func (m *Metrics) NumberConflict(series string) {
	if m == nil {
		return
	}
	m.numberConflicts.WithLabelValues(series).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
