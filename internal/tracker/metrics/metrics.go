package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for tracker import validation.
type Metrics struct {
	// Validation latency by pass ("default", "rule_engine")
	ValidateLatency *prometheus.HistogramVec

	// Findings by severity and code
	Findings *prometheus.CounterVec

	// Persistable records by kind
	Persistable *prometheus.CounterVec

	// Dependency rejections raised by the persistability filter, by kind
	DependencyRejections *prometheus.CounterVec

	FailFastAborts    prometheus.Counter
	ValidationSkipped prometheus.Counter

	// Storage existence lookups by kind and source ("cache", "store")
	ExistenceLookups *prometheus.CounterVec
	PreheatLatency   prometheus.Histogram
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ValidateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_validation_duration_seconds",
			Help:    "Duration of a validation pass including the persistability filter",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"pass"}),

		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_validation_findings_total",
			Help: "Validation errors and warnings by severity and code",
		}, []string{"severity", "code"}),

		Persistable: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_validation_persistable_total",
			Help: "Records found persistable by kind",
		}, []string{"kind"}),

		DependencyRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_validation_dependency_rejections_total",
			Help: "Records rejected because a parent was not persistable, by kind",
		}, []string{"kind"}),

		FailFastAborts: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracker_validation_fail_fast_aborts_total",
			Help: "Validation passes stopped early in fail-fast mode",
		}),

		ValidationSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracker_validation_skipped_total",
			Help: "Imports whose validation was skipped by a superuser",
		}),

		ExistenceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_preheat_existence_lookups_total",
			Help: "Identities looked up during preheat by kind and source",
		}, []string{"kind", "source"}),

		PreheatLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_preheat_duration_seconds",
			Help:    "Duration of loading the storage existence snapshot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveValidateLatency records the duration of one validation pass.
func (m *Metrics) ObserveValidateLatency(pass string, d time.Duration) {
	if m != nil {
		m.ValidateLatency.WithLabelValues(pass).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementFinding(severity, code string) {
	if m != nil {
		m.Findings.WithLabelValues(severity, code).Inc()
	}
}

func (m *Metrics) AddPersistable(kind string, n int) {
	if m != nil && n > 0 {
		m.Persistable.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) IncrementDependencyRejection(kind string) {
	if m != nil {
		m.DependencyRejections.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementFailFast() {
	if m != nil {
		m.FailFastAborts.Inc()
	}
}

func (m *Metrics) IncrementSkipped() {
	if m != nil {
		m.ValidationSkipped.Inc()
	}
}

func (m *Metrics) AddExistenceLookups(kind, source string, n int) {
	if m != nil && n > 0 {
		m.ExistenceLookups.WithLabelValues(kind, source).Add(float64(n))
	}
}

func (m *Metrics) ObservePreheatLatency(d time.Duration) {
	if m != nil {
		m.PreheatLatency.Observe(d.Seconds())
	}
}
