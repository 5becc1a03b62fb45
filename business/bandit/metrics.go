package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BanditDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_decisions_total",
			Help: "Count of bandit decisions by bandit, variant and policy.",
		},
		[]string{"bandit", "variant", "policy"},
	)

	BanditAttributionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_attributions_total",
			Help: "Count of outcome attribution attempts by bandit, outcome and result.",
		},
		[]string{"bandit", "outcome", "result"},
	)
)

func init() {
	prometheus.MustRegister(BanditDecisionsTotal, BanditAttributionsTotal)
}
