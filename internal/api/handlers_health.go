// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health reports dependency status.
//
// @Summary Get service health
// @Description Checks the library and snapshot stores and reports the upstream circuit breaker state and the number of live map sessions. A missing or failing store marks the service degraded.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		Uptime:        time.Since(h.startTime).Seconds(),
		LibraryOK:     h.library != nil && h.library.Ping(ctx) == nil,
		SnapshotsOK:   h.snapshots != nil && h.snapshots.Ping(ctx) == nil,
		UpstreamState: "unknown",
		CheckedAt:     time.Now().UTC(),
	}
	if h.upstream != nil {
		status.UpstreamState = h.upstream.State()
	}
	if h.sessions != nil {
		status.ActiveSessions = h.sessions.Count()
	}
	if !status.LibraryOK || !status.SnapshotsOK || status.UpstreamState == "open" {
		status.Status = "degraded"
	}
	respondSuccess(w, http.StatusOK, status, start)
}

// HealthLive answers 200 while the process is serving.
//
// @Summary Liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}
