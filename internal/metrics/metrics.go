// Package metrics provides Prometheus metrics for the Treeify server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ALiangTech/treeify/internal/tree"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treeify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treeify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	treeBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treeify_tree_builds_total",
			Help: "Total number of tree builds by input source",
		},
		[]string{"source"},
	)

	treeBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treeify_tree_build_duration_seconds",
			Help:    "Time spent walking and building a tree",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)

	treeNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treeify_tree_nodes",
			Help:    "Number of nodes in built trees",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	recordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treeify_records_skipped_total",
			Help: "Records that did not produce a file node, by reason",
		},
		[]string{"reason"},
	)

	visibilityTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treeify_visibility_toggles_total",
			Help: "Visibility changes by result",
		},
		[]string{"result"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "treeify_sessions_active",
			Help: "Number of sessions held in memory",
		},
	)

	wsConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "treeify_ws_connections_active",
			Help: "Number of open websocket connections",
		},
	)

	wsMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treeify_ws_messages_total",
			Help: "Websocket messages pushed to clients",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordBuild records one tree build.
func RecordBuild(source string, forest []*tree.Node, stats tree.Stats, duration time.Duration) {
	treeBuildsTotal.WithLabelValues(source).Inc()
	treeBuildDuration.Observe(duration.Seconds())
	treeNodes.Observe(float64(tree.CountNodes(forest)))
	if stats.Excluded > 0 {
		recordsSkippedTotal.WithLabelValues("excluded").Add(float64(stats.Excluded))
	}
	if stats.DepthLimited > 0 {
		recordsSkippedTotal.WithLabelValues("depth").Add(float64(stats.DepthLimited))
	}
	if stats.Conflicts > 0 {
		recordsSkippedTotal.WithLabelValues("conflict").Add(float64(stats.Conflicts))
	}
}

// RecordToggle records a visibility change attempt.
func RecordToggle(result string) {
	visibilityTogglesTotal.WithLabelValues(result).Inc()
}

// SetSessionsActive records the number of stored sessions.
func SetSessionsActive(count int) {
	sessionsActive.Set(float64(count))
}

// WSConnected records a websocket client joining or leaving.
func WSConnected(delta int) {
	wsConnectionsActive.Add(float64(delta))
}

// RecordWSMessage records a pushed websocket message.
func RecordWSMessage(msgType string) {
	wsMessagesTotal.WithLabelValues(msgType).Inc()
}

// Middleware returns gin middleware that records request metrics. Paths are labelled by
// route template to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
