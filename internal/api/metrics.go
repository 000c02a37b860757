package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report outcomes.
const (
	outcomeOK        = "ok"
	outcomeDegraded  = "degraded"
	outcomeNotFound  = "not_found"
	outcomeCancelled = "cancelled"
)

var (
	reportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analytics_reports_total",
			Help: "Analytics reports served, by outcome",
		},
		[]string{"outcome"},
	)

	reportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proposal_analytics_report_duration_seconds",
			Help:    "Time to build an analytics report in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	successRate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proposal_analytics_success_rate",
			Help:    "Distribution of estimated success rates",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposal_analytics_rate_limited_total",
			Help: "Requests rejected by the per-company rate limit",
		},
	)
)
