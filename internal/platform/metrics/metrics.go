package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	GremiosCreated   prometheus.Counter
	RegistrosCreated prometheus.Counter
	GeoFetches       *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		GremiosCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "multigremial_gremios_created_total",
			Help: "Total number of gremios created",
		}),
		RegistrosCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "multigremial_registros_created_total",
			Help: "Total number of self-registration records created",
		}),
		GeoFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "multigremial_geo_fetches_total",
			Help: "Upstream geo API fetches by category and outcome",
		}, []string{"category", "outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "multigremial_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// IncrementGremiosCreated increments the gremios created counter by 1.
func (m *Metrics) IncrementGremiosCreated() {
	if m != nil {
		m.GremiosCreated.Inc()
	}
}

// IncrementRegistrosCreated increments the registros created counter by 1.
func (m *Metrics) IncrementRegistrosCreated() {
	if m != nil {
		m.RegistrosCreated.Inc()
	}
}

// ObserveGeoFetch records one upstream geo fetch.
func (m *Metrics) ObserveGeoFetch(category string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.GeoFetches.WithLabelValues(category, outcome).Inc()
}

// Latency wraps next and records request duration.
func (m *Metrics) Latency(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
