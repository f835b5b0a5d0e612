package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the guarded audit sink.
type Metrics struct {
	Written             *prometheus.CounterVec
	Sampled             prometheus.Counter
	FallbackWrites      prometheus.Counter
	SinkFailures        prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers the metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Written: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_audit_events_written_total",
			Help: "Audit events written to the sink by category",
		}, []string{"category"}),
		Sampled: f.NewCounter(prometheus.CounterOpts{
			Name: "tracker_audit_events_sampled_out_total",
			Help: "Operational audit events dropped by sampling",
		}),
		FallbackWrites: f.NewCounter(prometheus.CounterOpts{
			Name: "tracker_audit_events_fallback_total",
			Help: "Audit events logged instead of written because the sink failed or the circuit was open",
		}),
		SinkFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "tracker_audit_sink_failures_total",
			Help: "Failed audit sink writes",
		}),
		CircuitBreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_audit_circuit_breaker_state",
			Help: "Audit sink circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) incWritten(category string) {
	if m != nil {
		m.Written.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) incSampled() {
	if m != nil {
		m.Sampled.Inc()
	}
}

func (m *Metrics) incFallback() {
	if m != nil {
		m.FallbackWrites.Inc()
	}
}

func (m *Metrics) incSinkFailure() {
	if m != nil {
		m.SinkFailures.Inc()
	}
}

func (m *Metrics) setCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
