package jwtauth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gate outcomes and issued tokens. A nil *Metrics is a no-op.
type Metrics struct {
	gateDecisions *prometheus.CounterVec
	tokensIssued  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafe_auth",
			Name:      "gate_decisions_total",
			Help:      "Gate chain outcomes by result and failure reason.",
		}, []string{"result", "reason"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafe_auth",
			Name:      "tokens_issued_total",
			Help:      "Signed tokens by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.gateDecisions, m.tokensIssued} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) gateAllowed() {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues("allowed", "").Inc()
}

func (m *Metrics) gateRejected(err error) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues("rejected", getErrorCode(err)).Inc()
}

func (m *Metrics) tokenIssued(kind TokenKind) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(string(kind)).Inc()
}
