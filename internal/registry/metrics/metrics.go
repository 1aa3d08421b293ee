package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JurorsCertified      prometheus.Counter
	JurorsAuthorized     prometheus.Counter
	AuthorizationsDenied prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		JurorsCertified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_registry_jurors_certified_total",
			Help: "Total number of jurors certified",
		}),
		JurorsAuthorized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_registry_jurors_authorized_total",
			Help: "Total number of per-case juror authorizations granted",
		}),
		AuthorizationsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_registry_authorizations_denied_total",
			Help: "Total number of rejected authorization attempts",
		}),
	}
}

func (m *Metrics) IncrementCertified() {
	m.JurorsCertified.Inc()
}

func (m *Metrics) IncrementAuthorized() {
	m.JurorsAuthorized.Inc()
}

func (m *Metrics) IncrementDenied() {
	m.AuthorizationsDenied.Inc()
}
