// Package metrics exposes Prometheus collectors for the settlement core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payminute_http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CallsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_calls_finalized_total",
			Help: "Finalized calls by billing outcome",
		},
		[]string{"billed"},
	)

	CallRevenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_call_revenue_minor_units_total",
			Help: "Charged call value split between streamer and platform",
		},
		[]string{"side"},
	)

	WithdrawalsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_withdrawals_requested_total",
			Help: "Withdrawal requests by anticipation",
		},
		[]string{"anticipated"},
	)

	WithdrawalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_withdrawal_transitions_total",
			Help: "Withdrawal status transitions",
		},
		[]string{"from", "to"},
	)

	RechargesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payminute_recharges_completed_total",
			Help: "Recharges that credited a balance",
		},
	)

	KYCReviews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_kyc_reviews_total",
			Help: "KYC reviews by outcome",
		},
		[]string{"status"},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payminute_webhook_deliveries_total",
			Help: "Provider callbacks by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
)
