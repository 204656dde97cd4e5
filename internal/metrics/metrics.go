// Package metrics provides Prometheus metrics for the site backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "energee"

var (
	// FormSubmissionsTotal tracks lead form submissions by outcome
	FormSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total number of lead form submissions by outcome",
		},
		[]string{"outcome"},
	)

	// AnalyticsEventsTotal tracks stored analytics events by type
	AnalyticsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Total number of analytics events stored by event type",
		},
		[]string{"event_type"},
	)

	// CRMJobsTotal tracks CRM delivery attempts by result
	CRMJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crm",
			Name:      "jobs_total",
			Help:      "Total number of CRM delivery attempts by result",
		},
		[]string{"result"},
	)

	// CRMDeadLettersTotal tracks CRM jobs that exhausted their attempts
	CRMDeadLettersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crm",
			Name:      "dead_letters_total",
			Help:      "Total number of CRM jobs moved to the dead state",
		},
	)

	// CRMRequestDuration tracks outbound CRM request duration
	CRMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crm",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound CRM requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// ContentRefreshTotal tracks content snapshot refreshes by result
	ContentRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "refresh_total",
			Help:      "Total number of content snapshot refreshes by result",
		},
		[]string{"result"},
	)

	// RateLimitHits tracks requests rejected by the rate limiter
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "hits_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)

// RecordSubmission records a lead submission outcome
func RecordSubmission(outcome string) {
	FormSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordAnalyticsEvent records a stored analytics event
func RecordAnalyticsEvent(eventType string) {
	AnalyticsEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordCRMAttempt records a CRM delivery attempt and its duration
func RecordCRMAttempt(result string, durationSeconds float64) {
	CRMJobsTotal.WithLabelValues(result).Inc()
	CRMRequestDuration.Observe(durationSeconds)
}

// RecordCRMDeadLetter records a CRM job moved to the dead state
func RecordCRMDeadLetter() {
	CRMDeadLettersTotal.Inc()
}

// RecordContentRefresh records a content snapshot refresh
func RecordContentRefresh(result string) {
	ContentRefreshTotal.WithLabelValues(result).Inc()
}

// RecordRateLimitHit records a rejected request
func RecordRateLimitHit(scope string) {
	RateLimitHits.WithLabelValues(scope).Inc()
}
