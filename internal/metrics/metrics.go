package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	// HTTPRequestsTotal counts handled requests by route name, method and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// RateLimitedTotal counts requests rejected by the per-client limiter
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter by route",
		},
		[]string{"route"},
	)
)

// Mail Metrics
var (
	// MailSendTotal counts delivery attempts by provider and result (sent, failed, rejected)
	MailSendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_send_total",
			Help: "Mail delivery attempts by provider and result",
		},
		[]string{"provider", "result"},
	)

	// MailSendDuration tracks relay latency in seconds
	MailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mail_send_duration_seconds",
			Help:    "Mail delivery duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider"},
	)

	// CircuitBreakerState tracks the mail breaker (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Waitlist Metrics
var (
	// WaitlistTransitionsTotal counts committed waitlist state changes by operation
	WaitlistTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_transitions_total",
			Help: "Committed waitlist operations (join, invite, mark_joined, remove)",
		},
		[]string{"operation"},
	)

	// NotificationsQueuedTotal counts notifications written to the outbox by kind
	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_queued_total",
			Help: "Undelivered notifications written to the outbox by kind",
		},
		[]string{"kind"},
	)

	// NotificationRetriesTotal counts outbox retry outcomes (sent, pending, failed)
	NotificationRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_retries_total",
			Help: "Outbox retry outcomes",
		},
		[]string{"result"},
	)
)
