package prometheus

import (
	"time"

	"storefront-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Tenant resolution metrics
	TenantResolutionCounter     prometheus.CounterVec
	TenantContextMissingCounter prometheus.Counter

	// Order metrics
	OrdersCreatedCounter  prometheus.Counter
	OrdersRejectedCounter prometheus.CounterVec
	StockConflictCounter  prometheus.Counter

	// Notification metrics
	NotificationsCounter prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Tenant resolution metrics, labeled by outcome:
	// resolved, none, not_found
	TenantResolutionCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_resolution_total",
			Help: "Total number of tenant resolution attempts by outcome",
		},
		[]string{"outcome"},
	)

	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	// Order metrics
	OrdersCreatedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	OrdersRejectedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_orders_rejected_total",
			Help: "Total number of rejected orders by reason",
		},
		[]string{"reason"},
	)

	StockConflictCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_stock_conflicts_total",
			Help: "Total number of orders aborted by concurrent stock exhaustion",
		},
	)

	// Notification metrics, labeled by sink and outcome
	NotificationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_total",
			Help: "Total number of notification dispatch attempts by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordTenantResolution increments the resolution counter for an outcome
func RecordTenantResolution(outcome string) {
	TenantResolutionCounter.WithLabelValues(outcome).Inc()
}

// RecordOrderRejected increments the rejected-order counter for a reason
func RecordOrderRejected(reason string) {
	OrdersRejectedCounter.WithLabelValues(reason).Inc()
}

// RecordNotification increments the notification counter for a sink and outcome
func RecordNotification(sink, outcome string) {
	NotificationsCounter.WithLabelValues(sink, outcome).Inc()
}
