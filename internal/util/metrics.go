package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of successful checkouts",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Latency of the checkout transaction",
		Buckets: prometheus.DefBuckets,
	})

	IdempotencyHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idempotency_hits_total",
		Help: "Total number of checkout requests served from the idempotency cache",
	})

	IdempotencyErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idempotency_errors_total",
		Help: "Total number of idempotency cache failures (failed open)",
	})

	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fawry_webhooks_received_total",
		Help: "Total number of Fawry webhook callbacks received",
	}, []string{"status"})

	WebhooksRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fawry_webhooks_rejected_total",
		Help: "Total number of Fawry webhooks rejected for invalid signature",
	})

	OrdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Total number of orders confirmed by payment",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of orders cancelled by payment failure",
	})

	OrdersRefundedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_refunded_total",
		Help: "Total number of orders refunded",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of operator notifications dispatched",
	}, []string{"result"})

	GatewayChargeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fawry_charge_latency_seconds",
		Help:    "Latency of server-to-server charge calls to Fawry",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
