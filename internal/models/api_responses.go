// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint returns.
//
// Example success:
//
//	{
//	  "status": "success",
//	  "data": {"data": [...], "isLoading": false, "isError": false, "clusteredData": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 12, "cached": true}
//	}
//
// Example error:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "source must be one of: ..."},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error code plus a human message.
//
// Codes in use: VALIDATION_ERROR, BAD_REQUEST, UNAUTHORIZED, FORBIDDEN,
// NOT_FOUND, PAYLOAD_TOO_LARGE, UPSTREAM_ERROR, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MarkersResponse is the map payload: the aggregated candidates, the flags
// proxied from the active source, and the clustered markers when a region
// was supplied.
type MarkersResponse struct {
	Data          []MapMarkerCandidate `json:"data"`
	IsLoading     bool                 `json:"isLoading"`
	IsError       bool                 `json:"isError"`
	ClusteredData []ClusterItem        `json:"clusteredData,omitempty"`
	Source        string               `json:"source"`
	HasMore       bool                 `json:"hasMore"`
}

// ClusterRequest is the body of POST /api/v1/map/cluster.
type ClusterRequest struct {
	Candidates []MapMarkerCandidate `json:"candidates" validate:"max=5000"`
	Region     Region               `json:"region"`
}

// HealthStatus is returned by GET /api/v1/health.
type HealthStatus struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	Uptime         float64   `json:"uptime_seconds"`
	LibraryOK      bool      `json:"library_ok"`
	SnapshotsOK    bool      `json:"snapshots_ok"`
	UpstreamState  string    `json:"upstream_breaker_state"`
	ActiveSessions int       `json:"active_sessions"`
	CheckedAt      time.Time `json:"checked_at"`
}
