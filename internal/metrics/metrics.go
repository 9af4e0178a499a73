// Package metrics provides Prometheus metrics for the blog server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal counts markdown sync runs by outcome.
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdblog",
			Name:      "sync_runs_total",
			Help:      "Total number of markdown sync runs",
		},
		[]string{"status"},
	)

	// SyncActionsTotal counts applied sync actions.
	SyncActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdblog",
			Name:      "sync_actions_total",
			Help:      "Total number of articles deleted, inserted or updated by sync",
		},
		[]string{"action"},
	)

	// ArticleViewsTotal counts single-article page views.
	ArticleViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mdblog",
			Name:      "article_views_total",
			Help:      "Total number of article page views",
		},
	)

	// HTTPRequestsTotal counts handled requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdblog",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mdblog",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordSyncRun records the outcome of one sync run.
func RecordSyncRun(status string) {
	SyncRunsTotal.WithLabelValues(status).Inc()
}

// RecordSyncAction records one applied sync action.
func RecordSyncAction(action string) {
	SyncActionsTotal.WithLabelValues(action).Inc()
}

// RecordView records one article view.
func RecordView() {
	ArticleViewsTotal.Inc()
}

// RecordRequest records a finished HTTP request.
func RecordRequest(method, route, code string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
