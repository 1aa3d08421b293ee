package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Adjustments *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Adjustments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verdict_reputation_adjustments_total",
			Help: "Total number of reputation adjustments, by direction",
		}, []string{"direction"}),
	}
}

// IncrementAdjustment records an adjustment; direction is "up" or "down".
func (m *Metrics) IncrementAdjustment(direction string) {
	m.Adjustments.WithLabelValues(direction).Inc()
}
