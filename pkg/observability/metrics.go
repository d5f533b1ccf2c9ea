package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/inferschema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets are the decode duration buckets, in seconds. Decoding is
// in-memory, so they start well below a millisecond.
var DefaultBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// Metrics holds the collectors fed by catalog hooks.
type Metrics struct {
	gatherer prometheus.Gatherer

	decodes    *prometheus.CounterVec
	violations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	changes    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		gatherer: prometheus.DefaultGatherer,
		decodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inferschema_decodes_total",
				Help: "Total number of decode calls by record and outcome",
			},
			[]string{"record", "outcome"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inferschema_violations_total",
				Help: "Total number of field violations reported by decode",
			},
			[]string{"record"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inferschema_decode_duration_seconds",
				Help:    "Duration of decode calls",
				Buckets: DefaultBuckets,
			},
			[]string{"record"},
		),
		changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inferschema_record_changes_total",
				Help: "Total number of changes to registered records",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.decodes, m.violations, m.duration, m.changes)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Hooks returns catalog hooks that record into m.
func (m *Metrics) Hooks() inferschema.Hooks {
	return inferschema.Hooks{
		OnDecode: func(_ context.Context, e *inferschema.DecodeEvent) {
			m.decodes.WithLabelValues(e.Record, string(e.Outcome)).Inc()
			m.duration.WithLabelValues(e.Record).Observe(e.Duration.Seconds())
			if e.Violations > 0 {
				m.violations.WithLabelValues(e.Record).Add(float64(e.Violations))
			}
		},
		OnChange: func(_ context.Context, e *inferschema.ChangeEvent) {
			m.changes.WithLabelValues(string(e.Kind)).Inc()
		},
	}
}

// Handler serves the registry m was registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
