// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/aggregator"
	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/sources"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

const maxClusterBody = 4 << 20

// Markers aggregates one source and clusters it when a region is given.
//
// @Summary Get map markers
// @Description Fetches the selected source, merges its pages into mappable candidates and, when latDelta is supplied, clusters them for the region. Backend failures are reported through isError with status 200, mirroring the client-side query contract.
// @Tags Map
// @Produce json
// @Param source query string true "Source" Enums(likes, collections, collection, content, nearby_events, worldwide_events, custom)
// @Param query query string false "Search query (content, worldwide_events)"
// @Param collectionId query string false "Collection id (collection)"
// @Param latitude query number false "Location bias latitude"
// @Param longitude query number false "Location bias longitude"
// @Param radiusKm query number false "Nearby events radius in km"
// @Param customData query string false "Inline JSON array (custom)"
// @Param snapshotId query string false "Stored snapshot id (custom)"
// @Param pages query int false "Pages to load" default(1)
// @Param regionLat query number false "Region centre latitude"
// @Param regionLng query number false "Region centre longitude"
// @Param latDelta query number false "Region latitude span; enables clustering"
// @Param lngDelta query number false "Region longitude span"
// @Success 200 {object} models.APIResponse{data=models.MarkersResponse}
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Failure 401 {object} models.APIResponse "Invalid token"
// @Security BearerAuth
// @Router /map/markers [get]
func (h *Handler) Markers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params, apiErr := h.markerParams(r)
	if apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	region, err := regionParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if region != nil {
		if apiErr := validateRequest(region); apiErr != nil {
			respondAPIError(w, http.StatusBadRequest, apiErr)
			return
		}
	}

	req, err := sources.BuildRequest(params)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	maxPages := h.config.Server.MaxPages
	pages := getIntParam(r, "pages", 1)
	if pages < 1 {
		pages = 1
	}
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	agg := aggregator.New(h.registry, h.pages, maxPages)
	res, err := agg.Aggregate(r.Context(), req, pages)
	switch {
	case errors.Is(err, sources.ErrUnknownSource):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Source is not enabled on this server", nil)
		return
	case err != nil && !errors.Is(err, context.Canceled):
		logging.Ctx(r.Context()).Warn().Err(err).Str("source", string(req.Kind())).Msg("Source fetch failed")
	}

	resp := models.MarkersResponse{
		Data:      res.Candidates,
		IsLoading: res.IsLoading,
		IsError:   res.IsError,
		Source:    string(req.Kind()),
		HasMore:   res.HasMore,
	}
	if region != nil {
		resp.ClusteredData = h.cluster(res.Candidates, *region)
	}
	respondSuccess(w, http.StatusOK, resp, start)
}

func (h *Handler) markerParams(r *http.Request) (*sources.Params, *models.APIError) {
	q := r.URL.Query()
	p := &sources.Params{
		Source:       q.Get("source"),
		Query:        q.Get("query"),
		CollectionID: q.Get("collectionId"),
		CustomData:   q.Get("customData"),
		SnapshotID:   q.Get("snapshotId"),
	}
	var err error
	if p.Latitude, err = getFloatParam(r, "latitude"); err != nil {
		return nil, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	}
	if p.Longitude, err = getFloatParam(r, "longitude"); err != nil {
		return nil, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	}
	radius, err := getFloatParam(r, "radiusKm")
	if err != nil {
		return nil, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	}
	if radius != nil {
		p.RadiusKm = *radius
	}
	if apiErr := validateRequest(p); apiErr != nil {
		return nil, apiErr
	}
	if s := auth.SubjectFromContext(r.Context()); s != nil {
		p.UserID = s.UserID
		p.Token = s.Token
	}
	return p, nil
}

// regionParams returns nil when latDelta is absent.
func regionParams(r *http.Request) (*models.Region, error) {
	latDelta, err := getFloatParam(r, "latDelta")
	if err != nil || latDelta == nil {
		return nil, err
	}
	region := &models.Region{LatitudeDelta: *latDelta, LongitudeDelta: *latDelta}
	for key, dst := range map[string]*float64{
		"regionLat": &region.Latitude,
		"regionLng": &region.Longitude,
		"lngDelta":  &region.LongitudeDelta,
	} {
		v, err := getFloatParam(r, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*dst = *v
		}
	}
	return region, nil
}

// Cluster clusters a caller-supplied candidate list.
//
// @Summary Cluster candidates
// @Description Partitions the mappable candidates into clusters and singletons for the region. Unmappable candidates are dropped; singleton originalIndex values address the mappable list.
// @Tags Map
// @Accept json
// @Produce json
// @Param request body models.ClusterRequest true "Candidates and region"
// @Success 200 {object} models.APIResponse{data=[]models.ClusterItem}
// @Failure 400 {object} models.APIResponse "Invalid body"
// @Failure 413 {object} models.APIResponse "Body too large"
// @Router /map/cluster [post]
func (h *Handler) Cluster(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ClusterRequest
	if !decodeBody(w, r, maxClusterBody, &req) {
		return
	}
	respondSuccess(w, http.StatusOK, h.cluster(req.Candidates, req.Region), start)
}

// cluster runs the shared engine once. Stateless requests have nothing to
// memoize against, so only live sessions keep a memo.
func (h *Handler) cluster(candidates []models.MapMarkerCandidate, region models.Region) []models.ClusterItem {
	start := time.Now()
	items := h.engine().Cluster(candidates, region)
	metrics.RecordClustering(time.Since(start), len(items))
	return items
}

// MapWebSocket upgrades to a live map session.
//
// @Summary Live map session
// @Description Upgrades to a WebSocket carrying the map session protocol (set_source, set_region, set_layout, load_more, marker_press, carousel_scroll_end, ping). The token may be passed as access_token.
// @Tags Map
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101 "Switching protocols"
// @Failure 503 {object} models.APIResponse "Sessions unavailable"
// @Router /map/ws [get]
func (h *Handler) MapWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil || h.sessions == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Map sessions are unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, h.config.Session.SendBuffer)
	session := h.sessions.Open(context.WithoutCancel(r.Context()), auth.SubjectFromContext(r.Context()), client)
	client.SetHandler(session)
	if !h.hub.Add(client) {
		session.Close()
		_ = conn.Close()
		return
	}
	client.Start()
}
