// Package metrics holds the Prometheus collectors for batch runs and the
// HTTP service. Each Metrics owns its registry so tests and multiple
// servers in one process never collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"primerqc/core/qcerr"
)

const namespace = "primerqc"

// Metrics is safe for concurrent use.
type Metrics struct {
	Operations   *prometheus.CounterVec   // op, status
	Duration     *prometheus.HistogramVec // op
	Candidates   prometheus.Histogram
	HTTPRequests *prometheus.CounterVec // route, code

	reg *prometheus.Registry
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Primers scored or tuned, by operation and outcome",
		}, []string{"op", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent per primer operation",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
		Candidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tune_candidates",
			Help:      "Candidate primers scored per tuning search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		reg: reg,
	}
}

// Status labels an outcome: ok, invalid (a validation error) or error.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case qcerr.KindOf(err) != 0:
		return "invalid"
	default:
		return "error"
	}
}

// Observe records one operation.
func (m *Metrics) Observe(op string, elapsed time.Duration, err error) {
	m.Operations.WithLabelValues(op, Status(err)).Inc()
	m.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveTune records the size of one tuning search.
func (m *Metrics) ObserveTune(evaluated int) {
	m.Candidates.Observe(float64(evaluated))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
