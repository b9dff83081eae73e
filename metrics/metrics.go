// Package metrics exposes Prometheus counters for the protocol's key
// decision points.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CredentialsMinted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "algogate_credentials_minted_total",
		Help: "Entry credentials successfully minted.",
	})

	Admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "algogate_admissions_total",
		Help: "Credential verification outcomes, labeled by result.",
	}, []string{"result"})

	PurchaseGroupsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "algogate_purchase_groups_built_total",
		Help: "Unsigned atomic purchase groups handed out for signing.",
	})
)
