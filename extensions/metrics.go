package extensions

import (
	"github.com/prometheus/client_golang/prometheus"

	statemesh "github.com/firatkiral/statemesh"
)

// Metrics exports cell activity as Prometheus counters, labeled by
// cell name. Attach it with statemesh.Observe; unnamed cells share the
// pointer-derived label, so name the cells you care about.
type Metrics struct {
	statemesh.BaseObserver

	invalidations *prometheus.CounterVec
	changes       *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		BaseObserver: statemesh.NewBaseObserver("metrics"),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statemesh",
				Name:      "invalidations_total",
				Help:      "Valid-to-invalid transitions per cell.",
			},
			[]string{"cell"},
		),
		changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statemesh",
				Name:      "changes_total",
				Help:      "Change notifications delivered per cell.",
			},
			[]string{"cell"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "statemesh",
				Name:      "recompute_failures_total",
				Help:      "Recompute failures observed during notification per cell.",
			},
			[]string{"cell"},
		),
	}

	for _, c := range []prometheus.Collector{m.invalidations, m.changes, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) OnInvalidate(cell statemesh.AnyCell) {
	m.invalidations.WithLabelValues(cellLabel(cell)).Inc()
}

func (m *Metrics) OnChange(cell statemesh.AnyCell, value any) {
	m.changes.WithLabelValues(cellLabel(cell)).Inc()
}

func (m *Metrics) OnError(cell statemesh.AnyCell, err error) {
	m.failures.WithLabelValues(cellLabel(cell)).Inc()
}
