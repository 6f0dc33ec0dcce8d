// Package metrics holds the Prometheus collectors for Sonagi.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Sonagi metrics. A nil *Registry is valid and records
// nothing, so services can run without metrics in tests.
type Registry struct {
	reg *prometheus.Registry

	AIRequests      *prometheus.CounterVec
	AIDuration      *prometheus.HistogramVec
	QuotaDenials    prometheus.Counter
	QuotaIncrements prometheus.Counter
	ReportsSaved    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewRegistry creates the collectors on a private registry together with
// the Go runtime and process collectors.
func NewRegistry() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),

		AIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sonagi_ai_requests_total",
				Help: "AI completion calls by analysis kind and result",
			},
			[]string{"kind", "result"},
		),

		AIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sonagi_ai_request_duration_seconds",
				Help:    "AI completion latency in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
			},
			[]string{"kind"},
		),

		QuotaDenials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sonagi_quota_denials_total",
				Help: "AI calls blocked by the monthly usage limit",
			},
		),

		QuotaIncrements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sonagi_quota_increments_total",
				Help: "Successful usage counter increments",
			},
		),

		ReportsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sonagi_reports_saved_total",
				Help: "Reports persisted by subject type",
			},
			[]string{"subject_type"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sonagi_http_requests_total",
				Help: "HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sonagi_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AIRequests,
		m.AIDuration,
		m.QuotaDenials,
		m.QuotaIncrements,
		m.ReportsSaved,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Registry) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Gatherer exposes the underlying registry for tests.
func (m *Registry) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.reg
}

// ObserveAI records one AI call.
func (m *Registry) ObserveAI(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.AIRequests.WithLabelValues(kind, result).Inc()
	m.AIDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// QuotaDenied records a call blocked by the usage limit.
func (m *Registry) QuotaDenied() {
	if m == nil {
		return
	}
	m.QuotaDenials.Inc()
}

// QuotaIncremented records a usage increment.
func (m *Registry) QuotaIncremented() {
	if m == nil {
		return
	}
	m.QuotaIncrements.Inc()
}

// ReportSaved records a persisted report.
func (m *Registry) ReportSaved(subjectType string) {
	if m == nil {
		return
	}
	m.ReportsSaved.WithLabelValues(subjectType).Inc()
}

// ObserveHTTP records one served request.
func (m *Registry) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}
