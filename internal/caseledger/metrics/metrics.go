package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CasesCreated  prometheus.Counter
	CasesClosed   *prometheus.CounterVec
	CasesRejected prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_cases_created_total",
			Help: "Total number of legal cases created",
		}),
		CasesClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verdict_cases_closed_total",
			Help: "Total number of cases closed, by trigger",
		}, []string{"trigger"}),
		CasesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_cases_rejected_total",
			Help: "Total number of case creations rejected by validation",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.CasesCreated.Inc()
}

// IncrementClosed records a close; trigger is "judge" or "deadline".
func (m *Metrics) IncrementClosed(trigger string) {
	m.CasesClosed.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncrementRejected() {
	m.CasesRejected.Inc()
}
