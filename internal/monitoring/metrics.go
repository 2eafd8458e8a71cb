// Package monitoring exposes Prometheus metrics for ledger operations.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by name and outcome",
		},
		[]string{"operation", "status"},
	)

	ticketsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_tickets_sold_total",
			Help: "Tickets issued by successful purchases",
		},
	)

	centsWithdrawn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_cents_withdrawn_total",
			Help: "Total cents paid out to organizers",
		},
	)
)

// RecordOperation counts one ledger operation with its outcome
// ("ok" or the rejection reason class).
func RecordOperation(operation, status string) {
	ledgerOperations.WithLabelValues(operation, status).Inc()
}

// RecordSale counts one issued ticket.
func RecordSale() { ticketsSold.Inc() }

// RecordWithdrawal adds a completed payout amount.
func RecordWithdrawal(amountCents uint64) { centsWithdrawn.Add(float64(amountCents)) }
