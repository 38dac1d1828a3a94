package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Deposit metrics
	DepositsProcessed prometheus.Counter
	DepositsCredited  *prometheus.CounterVec
	DepositErrors     *prometheus.CounterVec

	// Withdrawal metrics
	WithdrawalsSubmitted *prometheus.CounterVec
	WithdrawalErrors     *prometheus.CounterVec

	// Reconciler metrics
	ReconcilerTicks     prometheus.Counter
	ReconcilerSettled   *prometheus.CounterVec
	PendingTransactions prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Chain RPC metrics
	ChainRequests *prometheus.CounterVec
	ChainErrors   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		DepositsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chainvault_deposits_processed_total",
			Help: "Total number of inbound transactions processed",
		}),
		DepositsCredited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_deposits_credited_total",
				Help: "Total number of deposit credits by asset",
			},
			[]string{"asset"},
		),
		DepositErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_deposit_errors_total",
				Help: "Total number of deposit processing errors by type",
			},
			[]string{"error_type"},
		),

		WithdrawalsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_withdrawals_submitted_total",
				Help: "Total number of withdrawals broadcast by asset",
			},
			[]string{"asset"},
		),
		WithdrawalErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_withdrawal_errors_total",
				Help: "Total number of withdrawal errors by type",
			},
			[]string{"error_type"},
		),

		ReconcilerTicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chainvault_reconciler_ticks_total",
			Help: "Total number of reconciler polling ticks",
		}),
		ReconcilerSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_reconciler_settled_total",
				Help: "Total number of settled outgoing transfers by outcome",
			},
			[]string{"outcome"},
		),
		PendingTransactions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chainvault_pending_transactions",
			Help: "Current size of the reconciler working set",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chainvault_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ChainRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_chain_requests_total",
				Help: "Total chain RPC requests",
			},
			[]string{"method"},
		),
		ChainErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainvault_chain_errors_total",
				Help: "Total chain RPC errors",
			},
			[]string{"method"},
		),
	}
}
