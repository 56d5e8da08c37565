package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	transitions  *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	stale        *prometheus.CounterVec
	auditWritten *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_view_transitions_total",
				Help: "View model phase transitions",
			},
			[]string{"view", "phase"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_fetch_errors_total",
				Help: "Failed upstream fetches by failure kind",
			},
			[]string{"view", "kind"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		),
		stale: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_stale_results_total",
				Help: "Results dropped because a newer request was issued or the view was unmounted",
			},
			[]string{"view"},
		),
		auditWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_audit_events_written_total",
				Help: "Fetch events written to the audit backend",
			},
			[]string{"backend"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_errors_total",
				Help: "Total number of internal errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordTransition records a view entering phase.
func (r *Recorder) RecordTransition(view, phase string) {
	r.transitions.WithLabelValues(view, phase).Inc()
}

// RecordFetchError records a failed fetch.
func (r *Recorder) RecordFetchError(view, kind string) {
	r.fetchErrors.WithLabelValues(view, kind).Inc()
}

// RecordFetchLatency records fetch latency in seconds.
func (r *Recorder) RecordFetchLatency(view string, seconds float64) {
	r.fetchLatency.WithLabelValues(view).Observe(seconds)
}

// RecordStale records a dropped result.
func (r *Recorder) RecordStale(view string) {
	r.stale.WithLabelValues(view).Inc()
}

// RecordAuditWritten records n events written to backend.
func (r *Recorder) RecordAuditWritten(backend string, n int) {
	r.auditWritten.WithLabelValues(backend).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
