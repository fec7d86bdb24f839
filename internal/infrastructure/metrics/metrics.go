package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsOpened prometheus.Counter
	LedgerEntries  *prometheus.CounterVec

	// Order book metrics
	OrdersCreated prometheus.Counter

	// Payment metrics
	PaymentsSettled prometheus.Counter
	PaymentErrors   *prometheus.CounterVec
	PaymentAmount   prometheus.Histogram

	// Snapshot metrics
	SnapshotsSaved  *prometheus.CounterVec
	SnapshotsLoaded *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marketledger_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		LedgerEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketledger_ledger_entries_total",
				Help: "Total ledger entries appended by kind",
			},
			[]string{"kind"},
		),
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marketledger_orders_created_total",
			Help: "Total number of orders created",
		}),
		PaymentsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marketledger_payments_settled_total",
			Help: "Total number of payments settled",
		}),
		PaymentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketledger_payment_errors_total",
				Help: "Total number of rejected payments by reason",
			},
			[]string{"reason"},
		),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketledger_payment_amount",
			Help:    "Settled payment amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		SnapshotsSaved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketledger_snapshots_saved_total",
				Help: "Total snapshot saves by target",
			},
			[]string{"target"},
		),
		SnapshotsLoaded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketledger_snapshots_loaded_total",
				Help: "Total snapshot loads by target",
			},
			[]string{"target"},
		),
	}
}
