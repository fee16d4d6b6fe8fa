// Package metrics holds the Prometheus collectors of the payment workflow.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_payment_orders_created_total",
			Help: "Total number of gateway orders created, by currency",
		},
		[]string{"currency"},
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_payment_verifications_total",
			Help: "Total number of gateway callbacks, by asserted status and outcome",
		},
		[]string{"status", "outcome"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_payment_notifications_total",
			Help: "Total number of payment mails attempted, by template and result",
		},
		[]string{"template", "result"},
	)

	PendingChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_payment_pending_checks_total",
			Help: "Total number of deferred pending checks handled, by result",
		},
		[]string{"result"},
	)

	ReceiptPDFDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventdesk_receipt_pdf_duration_seconds",
			Help:    "Duration of receipt PDF rendering",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(OrdersCreatedTotal)
		prometheus.MustRegister(VerificationsTotal)
		prometheus.MustRegister(NotificationsTotal)
		prometheus.MustRegister(PendingChecksTotal)
		prometheus.MustRegister(ReceiptPDFDuration)
	})
}
