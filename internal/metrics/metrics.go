// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Score ledger
	ScoreEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feelnote_score_entries_total",
			Help: "Ledger entries appended, by score type and action",
		},
		[]string{"type", "action"},
	)

	ServiceOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feelnote_service_op_duration_seconds",
			Help:    "Duration of service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "result"},
	)

	// Recommendation workflow
	RecommendationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feelnote_recommendation_transitions_total",
			Help: "Recommendation state transitions by target status",
		},
		[]string{"status"},
	)

	RecommendationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feelnote_recommendation_conflicts_total",
			Help: "Respond calls that lost the compare-and-swap on a pending recommendation",
		},
	)

	// Achievements
	TitlesUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feelnote_titles_unlocked_total",
			Help: "Achievement titles unlocked by grade",
		},
		[]string{"grade"},
	)

	// Notifications
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feelnote_notifications_total",
			Help: "Notification dispatch outcomes (published, delivered, failed, dropped)",
		},
		[]string{"result"},
	)

	// Cache
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feelnote_cache_requests_total",
			Help: "Aggregate cache lookups by outcome (hit, miss, error)",
		},
		[]string{"cache", "result"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feelnote_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feelnote_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// ObserveOp records the duration of a service operation since start.
func ObserveOp(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ServiceOpDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}
