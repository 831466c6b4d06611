package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts notifications created by trigger kind.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notifications_created_total",
		Help: "Total number of notifications created by trigger",
	}, []string{"trigger"})

	// ReportsFiled counts moderation reports by target type.
	ReportsFiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_reports_filed_total",
		Help: "Total number of moderation reports filed by target type",
	}, []string{"target"})

	// FeedQueryLatency records feed query latency.
	FeedQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ripple_feed_query_latency_seconds",
		Help:    "Feed listing query latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
