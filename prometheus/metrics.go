package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "estetica_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "estetica_register_total",
			Help: "Total number of client registrations",
		},
	)

	// Tenant signup counter
	SignupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "estetica_tenant_signup_total",
			Help: "Total number of public tenant signups",
		},
	)

	// Booking operation counter
	BookingOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estetica_booking_operations_total",
			Help: "Total number of booking operations",
		},
		[]string{"operation"}, // "create", "update", "cancel", "complete", "reschedule", "delete"
	)

	// Slot conflict counter
	SlotConflictCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "estetica_booking_slot_conflicts_total",
			Help: "Total number of booking writes rejected by slot conflicts",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estetica_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estetica_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_token", "missing_token", "role_denied" etc.
	)

	// Tenant guard rejections
	TenantGuardCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estetica_tenant_guard_rejections_total",
			Help: "Total number of requests rejected by the tenant guard",
		},
		[]string{"reason"},
	)

	// Notification dispatch counter
	NotificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estetica_notifications_total",
			Help: "Total number of outbound notifications by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	// Billing webhook counter
	BillingEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estetica_billing_events_total",
			Help: "Total number of processed billing webhook events",
		},
		[]string{"type"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estetica_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estetica_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tenants
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "estetica_active_tenants",
			Help: "Number of tenants with an active subscription",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "estetica_info",
			Help: "Information about the booking API",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(SignupCounter)
	prometheus.MustRegister(BookingOperationCounter)
	prometheus.MustRegister(SlotConflictCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(TenantGuardCounter)
	prometheus.MustRegister(NotificationCounter)
	prometheus.MustRegister(BillingEventCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTenantsGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordBookingOperation records a booking operation
func RecordBookingOperation(operation string) {
	BookingOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordSignup records a completed tenant signup
func RecordSignup() {
	SignupCounter.Inc()
}

// RecordTenantGuardRejection records a request rejected by the tenant guard
func RecordTenantGuardRejection(reason string) {
	TenantGuardCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordNotification records an outbound notification attempt
func RecordNotification(channel, outcome string) {
	NotificationCounter.With(prometheus.Labels{"channel": channel, "outcome": outcome}).Inc()
}

// RecordBillingEvent records a processed billing webhook event
func RecordBillingEvent(eventType string) {
	BillingEventCounter.With(prometheus.Labels{"type": eventType}).Inc()
}

// UpdateActiveTenants updates the active tenants gauge
func UpdateActiveTenants(count int) {
	ActiveTenantsGauge.Set(float64(count))
}
