package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the checkout flow.
type BusinessMetrics struct {
	// Checkout funnel
	CheckoutStarted   *prometheus.CounterVec // labels: mode (live|mock)
	CheckoutCompleted *prometheus.CounterVec // labels: trigger (reconcile|webhook)

	// Orders
	OrdersCreated *prometheus.CounterVec // labels: source (checkout|reconcile|mock)
	OrderValue    prometheus.Histogram   // cents

	// Webhooks
	WebhookReceived  *prometheus.CounterVec   // labels: event_type
	WebhookProcessed *prometheus.CounterVec   // labels: event_type
	WebhookDropped   *prometheus.CounterVec   // labels: reason
	WebhookFailed    *prometheus.CounterVec   // labels: event_type, reason
	WebhookLatency   *prometheus.HistogramVec // labels: event_type
}

// Business is the process-wide business metrics instance. Callers must
// nil-check it so code paths stay usable in tests without registration.
var Business *BusinessMetrics

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "skylark"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		CheckoutStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_started_total",
			Help:      "Payment sessions created",
		}, []string{"mode"}),
		CheckoutCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_completed_total",
			Help:      "Orders observed paid, by trigger",
		}, []string{"trigger"}),
		OrdersCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_created_total",
			Help:      "Orders inserted into the ledger, by source",
		}, []string{"source"}),
		OrderValue: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_value_cents",
			Help:      "Order totals in cents",
			Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		}),
		WebhookReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_received_total",
			Help:      "Webhook events received",
		}, []string{"event_type"}),
		WebhookProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_processed_total",
			Help:      "Webhook events processed successfully",
		}, []string{"event_type"}),
		WebhookDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_dropped_total",
			Help:      "Webhook events dropped without mutation",
		}, []string{"reason"}),
		WebhookFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_failed_total",
			Help:      "Webhook events that failed processing",
		}, []string{"event_type", "reason"}),
		WebhookLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "webhook_latency_seconds",
			Help:      "Webhook handling latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}

	Business = m
	return m
}
