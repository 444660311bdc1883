// Package metrics holds the Prometheus instruments for the charge pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChargesAuthorized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debitgate_charges_authorized_total",
		Help: "Debits applied to an account balance.",
	})

	ChargesDeclined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debitgate_charges_declined_total",
		Help: "Debits declined for insufficient funds.",
	})

	ChargesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "debitgate_charges_failed_total",
		Help: "Charge attempts that failed before a decision was made.",
	}, []string{"kind"})

	Resets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debitgate_resets_total",
		Help: "Account balance resets.",
	})
)
