package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	VotesCast     prometheus.Counter
	VotesRejected *prometheus.CounterVec
	CasesRevealed prometheus.Counter

	// RepeatedCommitments counts commitment replays observed by the
	// bookkeeping layer. Informational only; replays are not core failures.
	RepeatedCommitments prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_votes_cast_total",
			Help: "Total number of votes accepted",
		}),
		VotesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verdict_votes_rejected_total",
			Help: "Total number of votes rejected, by reason",
		}, []string{"reason"}),
		CasesRevealed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_cases_revealed_total",
			Help: "Total number of cases revealed",
		}),
		RepeatedCommitments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_repeated_commitments_total",
			Help: "Total number of repeated vote commitments observed",
		}),
	}
}

func (m *Metrics) IncrementCast() {
	m.VotesCast.Inc()
}

func (m *Metrics) IncrementRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementRevealed() {
	m.CasesRevealed.Inc()
}

func (m *Metrics) IncrementRepeatedCommitment() {
	m.RepeatedCommitments.Inc()
}
