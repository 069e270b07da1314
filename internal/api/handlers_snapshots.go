// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/snapshot"
)

// SnapshotRef identifies a stored snapshot.
type SnapshotRef struct {
	ID    string `json:"id"`
	Bytes int    `json:"bytes"`
	Items int    `json:"items"`
}

// CreateSnapshot stores a custom candidate list under a new id.
//
// @Summary Create a custom snapshot
// @Description Stores a JSON array of candidates for the custom source. Use the returned id as snapshotId.
// @Tags Snapshots
// @Accept json
// @Produce json
// @Param snapshot body []models.MapMarkerCandidate true "Candidates"
// @Success 201 {object} models.APIResponse{data=SnapshotRef}
// @Failure 400 {object} models.APIResponse "Not a JSON array"
// @Failure 413 {object} models.APIResponse "Snapshot too large"
// @Security BearerAuth
// @Router /snapshots [post]
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	h.storeSnapshot(w, r, uuid.NewString(), http.StatusCreated)
}

// PutSnapshot stores a custom candidate list under the given id.
//
// @Summary Replace a custom snapshot
// @Tags Snapshots
// @Accept json
// @Produce json
// @Param snapshotID path string true "Snapshot id"
// @Param snapshot body []models.MapMarkerCandidate true "Candidates"
// @Success 200 {object} models.APIResponse{data=SnapshotRef}
// @Failure 400 {object} models.APIResponse "Not a JSON array"
// @Failure 413 {object} models.APIResponse "Snapshot too large"
// @Security BearerAuth
// @Router /snapshots/{snapshotID} [put]
func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "snapshotID")
	if !ok {
		return
	}
	h.storeSnapshot(w, r, id, http.StatusOK)
}

// GetSnapshot returns a stored snapshot as a raw JSON array.
//
// @Summary Get a custom snapshot
// @Tags Snapshots
// @Produce json
// @Param snapshotID path string true "Snapshot id"
// @Success 200 {object} models.APIResponse{data=[]models.MapMarkerCandidate}
// @Failure 404 {object} models.APIResponse "Unknown snapshot"
// @Security BearerAuth
// @Router /snapshots/{snapshotID} [get]
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireSnapshots(w) {
		return
	}
	id, ok := pathID(w, r, "snapshotID")
	if !ok {
		return
	}
	data, err := h.snapshots.Get(r.Context(), id)
	if err != nil {
		h.respondSnapshotError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, json.RawMessage(data), start)
}

// DeleteSnapshot removes a stored snapshot.
//
// @Summary Delete a custom snapshot
// @Tags Snapshots
// @Produce json
// @Param snapshotID path string true "Snapshot id"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "Unknown snapshot"
// @Security BearerAuth
// @Router /snapshots/{snapshotID} [delete]
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireSnapshots(w) {
		return
	}
	id, ok := pathID(w, r, "snapshotID")
	if !ok {
		return
	}
	if err := h.snapshots.Delete(r.Context(), id); err != nil {
		h.respondSnapshotError(w, err)
		return
	}
	h.publish(r.Context(), events.SnapshotChanged(id, events.ReasonSnapshotDelete))
	respondSuccess(w, http.StatusOK, map[string]string{"id": id}, start)
}

func (h *Handler) storeSnapshot(w http.ResponseWriter, r *http.Request, id string, status int) {
	start := time.Now()
	if !h.requireSnapshots(w) {
		return
	}

	limit := h.config.Snapshots.MaxBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Snapshot too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read body", nil)
		return
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsArray() {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Snapshot must be a JSON array", nil)
		return
	}

	if err := h.snapshots.Put(r.Context(), id, data); err != nil {
		h.respondSnapshotError(w, err)
		return
	}
	h.publish(r.Context(), events.SnapshotChanged(id, events.ReasonSnapshotPut))
	respondSuccess(w, status, SnapshotRef{
		ID:    id,
		Bytes: len(data),
		Items: int(gjson.GetBytes(data, "#").Int()),
	}, start)
}

func (h *Handler) requireSnapshots(w http.ResponseWriter) bool {
	if h.snapshots == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, ErrSnapshotsDisabled.Error(), nil)
		return false
	}
	return true
}

func (h *Handler) respondSnapshotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Snapshot not found", nil)
	case errors.Is(err, snapshot.ErrTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, err.Error(), nil)
	case errors.Is(err, snapshot.ErrInvalidID):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Snapshot store failed", err)
	}
}
