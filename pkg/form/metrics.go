package form

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts form activity. A nil *Metrics records nothing.
type Metrics struct {
	Updates *prometheus.CounterVec
	Submits *prometheus.CounterVec
}

// NewMetrics registers the form collectors on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formstate",
				Name:      "updates_total",
				Help:      "Field updates by side and outcome",
			},
			[]string{"kind", "result"},
		),
		Submits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formstate",
				Name:      "submits_total",
				Help:      "Submit attempts by outcome",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) update(kind, result string) {
	if m == nil {
		return
	}
	m.Updates.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) submit(result string) {
	if m == nil {
		return
	}
	m.Submits.WithLabelValues(result).Inc()
}
