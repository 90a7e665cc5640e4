package middleware

import "github.com/prometheus/client_golang/prometheus"

// LabelSourceError is the outcome label for bodies the readers rejected.
const LabelSourceError = "source_error"

// Metrics counts handled requests by outcome.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics creates the formskema_outcomes_total counter and registers it
// with reg. A nil reg leaves the counter unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formskema_outcomes_total",
			Help: "Total number of validated forms by outcome",
		},
		[]string{"outcome"},
	)
	if reg != nil {
		if err := reg.Register(outcomes); err != nil {
			return nil, err
		}
	}
	return &Metrics{outcomes: outcomes}, nil
}

// Outcomes exposes the underlying counter.
func (m *Metrics) Outcomes() *prometheus.CounterVec { return m.outcomes }

func (m *Metrics) observe(label string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(label).Inc()
}
