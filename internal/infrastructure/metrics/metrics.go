// Package metrics provides Prometheus metrics for the document vault.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/docvault/docvault/internal/domain/docerr"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Lifecycle metrics
	TransitionsTotal          *prometheus.CounterVec
	ESignatureFailuresTotal   prometheus.Counter
	LockConflictsTotal        prometheus.Counter
	ConcurrencyConflictsTotal prometheus.Counter

	// Notification metrics
	NotificationsTotal  *prometheus.CounterVec
	SSEClientsConnected prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{}

	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvault_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvault_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	m.TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_version_transitions_total",
			Help: "Total number of version workflow transitions",
		},
		[]string{"action", "outcome"},
	)

	m.ESignatureFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_esignature_failures_total",
			Help: "Total number of failed e-signature verifications",
		},
	)

	m.LockConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_lock_conflicts_total",
			Help: "Total number of rejected edit lock acquisitions",
		},
	)

	m.ConcurrencyConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docvault_concurrency_conflicts_total",
			Help: "Total number of content saves rejected by the fingerprint check",
		},
	)

	m.NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvault_notifications_total",
			Help: "Total number of notifications by event and final status",
		},
		[]string{"event", "status"},
	)

	m.SSEClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvault_sse_clients_connected",
			Help: "Number of connected SSE clients",
		},
	)

	return m
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTransition records one workflow transition attempt.
func (m *Metrics) RecordTransition(action, outcome string) {
	m.TransitionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordSaveConflict bumps the conflict counter matching a failed content
// save, when the failure is a lock or fingerprint conflict.
func (m *Metrics) RecordSaveConflict(err error) {
	switch docerr.KindOf(err) {
	case docerr.KindLockConflict, docerr.KindLockExpired:
		m.LockConflictsTotal.Inc()
	case docerr.KindConcurrencyConflict:
		m.ConcurrencyConflictsTotal.Inc()
	}
}

// RecordESignatureFailure bumps the failed signature counter.
func (m *Metrics) RecordESignatureFailure() {
	m.ESignatureFailuresTotal.Inc()
}
