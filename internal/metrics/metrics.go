package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwapsTotal counts finished swaps by route and outcome
	SwapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_swaps_total",
			Help: "Total number of swaps that reached a terminal state",
		},
		[]string{"route", "outcome"},
	)

	// SwapDuration tracks time from submission to terminal state
	SwapDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propeller_swap_duration_seconds",
			Help:    "Swap duration in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"route"},
	)

	// SwapState exposes the state of the in-flight swap (1 for the current state)
	SwapState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "propeller_swap_state",
			Help: "Current swap state, 1 for the active state",
		},
		[]string{"state"},
	)

	// SwapsRejected counts swaps rejected before any on-chain call
	SwapsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_swaps_rejected_total",
			Help: "Total number of swap attempts rejected up front",
		},
		[]string{"reason"},
	)

	// ApprovalsSent counts allowance approvals submitted
	ApprovalsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_approvals_sent_total",
			Help: "Total number of allowance approvals sent",
		},
		[]string{"chain"},
	)

	// TransactionsSent counts transactions sent to each chain
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_transactions_sent_total",
			Help: "Total number of transactions sent",
		},
		[]string{"chain", "kind", "status"},
	)

	// EventsDetected counts memo events detected on each chain
	EventsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_events_detected_total",
			Help: "Total number of memo events detected",
		},
		[]string{"chain", "final"},
	)

	// SubscriptionsActive tracks live memo subscriptions
	SubscriptionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "propeller_subscriptions_active",
			Help: "Number of active memo subscriptions by chain",
		},
		[]string{"chain"},
	)

	// ConversionOutput tracks the canonical output of liquidity conversions
	ConversionOutput = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propeller_conversion_output",
			Help:    "Atomic canonical amount produced by liquidity conversions",
			Buckets: prometheus.ExponentialBuckets(1_000, 10, 8),
		},
		[]string{"chain"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// GasUsed tracks gas used for EVM transactions
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propeller_gas_used",
			Help:    "Gas used for EVM transactions",
			Buckets: []float64{21000, 50000, 100000, 200000, 300000, 500000},
		},
		[]string{"operation"},
	)

	// VAARequests counts signed message lookups
	VAARequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propeller_vaa_requests_total",
			Help: "Total number of signed message lookups",
		},
		[]string{"status"},
	)
)
