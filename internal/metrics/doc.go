// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package metrics provides Prometheus metrics for Waypoint.

All collectors are registered with the default registry through promauto and
exposed at /metrics by promhttp.

# Available Metrics

API:
  - waypoint_api_requests_total (method, endpoint, status_code)
  - waypoint_api_request_duration_seconds (method, endpoint)
  - waypoint_api_active_requests

Sources and cache:
  - waypoint_source_fetch_duration_seconds (source)
  - waypoint_source_fetch_errors_total (source, error_type)
  - waypoint_source_stale_responses_total (source)
  - waypoint_cache_hits_total / waypoint_cache_misses_total (source)
  - waypoint_cache_invalidations_total (source, reason)
  - waypoint_cache_entries

Clustering:
  - waypoint_clustering_duration_seconds
  - waypoint_clustering_output_items
  - waypoint_clustering_memo_hits_total

Upstream circuit breaker:
  - waypoint_circuit_breaker_state (name): 0=closed, 1=half-open, 2=open
  - waypoint_circuit_breaker_requests_total (name, result)
  - waypoint_circuit_breaker_state_transitions_total (name, from_state, to_state)

Map sessions and events:
  - waypoint_map_sessions_active
  - waypoint_websocket_messages_sent_total
  - waypoint_websocket_messages_received_total (type)
  - waypoint_websocket_errors_total (error_type)
  - waypoint_invalidation_events_published_total (source)
  - waypoint_invalidation_events_handled_total (source, result)
  - waypoint_maintenance_runs_total (job, result)

# Example Queries

Cache hit ratio per source:

	sum by (source) (rate(waypoint_cache_hits_total[5m]))
	  / (sum by (source) (rate(waypoint_cache_hits_total[5m])) + sum by (source) (rate(waypoint_cache_misses_total[5m])))

P95 clustering latency:

	histogram_quantile(0.95, rate(waypoint_clustering_duration_seconds_bucket[5m]))
*/
package metrics
