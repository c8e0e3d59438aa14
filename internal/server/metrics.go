package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serverMetrics holds the Prometheus collectors for one handler. Each handler
// owns its registry so tests can build several without colliding.
type serverMetrics struct {
	registry        *prometheus.Registry
	comparisons     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newServerMetrics() *serverMetrics {
	m := &serverMetrics{
		registry: prometheus.NewRegistry(),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategy_compare_comparisons_total",
				Help: "Total number of comparisons by assessment",
			},
			[]string{"assessment"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strategy_compare_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"endpoint", "status"},
		),
	}

	m.registry.MustRegister(
		m.comparisons,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *serverMetrics) recordComparison(a tradeoff.Assessment) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(string(a)).Inc()
}

// instrument times next and records the duration under endpoint.
func (m *serverMetrics) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		m.requestDuration.
			WithLabelValues(endpoint, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
