// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Source Metrics
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_source_fetch_duration_seconds",
			Help:    "Duration of source page fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_source_fetch_errors_total",
			Help: "Total number of failed source page fetches",
		},
		[]string{"source", "error_type"}, // error_type: "upstream", "malformed", "other"
	)

	SourceStaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_source_stale_responses_total",
			Help: "Responses dropped because the query was deactivated or reset",
		},
		[]string{"source"},
	)

	// Page Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_cache_hits_total",
			Help: "Total number of page cache hits",
		},
		[]string{"source"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_cache_misses_total",
			Help: "Total number of page cache misses",
		},
		[]string{"source"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_cache_invalidations_total",
			Help: "Total number of page cache entries invalidated",
		},
		[]string{"source", "reason"},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_cache_entries",
			Help: "Current number of cached source pages",
		},
	)

	// Clustering Metrics
	ClusteringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waypoint_clustering_duration_seconds",
			Help:    "Time spent computing cluster items",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	ClusteringOutputSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waypoint_clustering_output_items",
			Help:    "Number of cluster items produced per computation",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	ClusteringMemoHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_clustering_memo_hits_total",
			Help: "Clustering requests answered from the memo",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waypoint_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Map Session Metrics
	MapSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_map_sessions_active",
			Help: "Current number of live map sessions",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
		[]string{"type"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Invalidation Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_invalidation_events_published_total",
			Help: "Total number of invalidation events published",
		},
		[]string{"source"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_invalidation_events_handled_total",
			Help: "Total number of invalidation events handled",
		},
		[]string{"source", "result"}, // result: "ok", "malformed"
	)

	// Maintenance Metrics
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "result"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waypoint_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSourceFetch records one source page fetch.
func RecordSourceFetch(source string, duration time.Duration, err error) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceFetchErrors.WithLabelValues(source, errorType(err)).Inc()
	}
}

// RecordCacheLookup records a page cache hit or miss.
func RecordCacheLookup(source string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(source).Inc()
	} else {
		CacheMisses.WithLabelValues(source).Inc()
	}
}

// RecordClustering records one clustering computation.
func RecordClustering(duration time.Duration, items int) {
	ClusteringDuration.Observe(duration.Seconds())
	ClusteringOutputSize.Observe(float64(items))
}

// RecordBreakerResult records a request that went through a breaker.
func RecordBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordMaintenance records one maintenance job run.
func RecordMaintenance(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	MaintenanceRuns.WithLabelValues(job, result).Inc()
}

// errorType buckets an error message into a low-cardinality label.
func errorType(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "upstream"):
		return "upstream"
	case strings.Contains(msg, "malformed"):
		return "malformed"
	default:
		return "other"
	}
}
