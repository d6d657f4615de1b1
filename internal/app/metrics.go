/**
 * @description
 * Prometheus instrumentation for the payment bridge. The webhook boundary
 * deliberately acknowledges every delivery, so these counters are the only
 * place processing failures remain visible to operators.
 */

package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geosentinel_payments_created_total",
		Help: "Number of payments successfully created with the provider.",
	})

	webhookTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosentinel_payment_webhook_transitions_total",
		Help: "Payment status transitions applied from webhook reconciliation.",
	}, []string{"to"})

	webhookDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geosentinel_payment_webhook_duplicates_total",
		Help: "Webhook deliveries ignored because the record was already terminal.",
	})

	webhookFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geosentinel_payment_webhook_failures_total",
		Help: "Webhook processing failures, by stage. The boundary still acks 200.",
	}, []string{"stage"})

	nearbyQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geosentinel_nearby_queries_total",
		Help: "Nearby-risk queries served.",
	})
)
