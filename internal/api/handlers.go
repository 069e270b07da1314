// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/authz"
	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/clustering"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapsession"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/snapshot"
	"github.com/tomtom215/waypoint/internal/sources"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// Library is the part of the library store the handlers use.
type Library interface {
	Ping(ctx context.Context) error
	UpsertItem(ctx context.Context, c *models.MapMarkerCandidate) error
	Like(ctx context.Context, userID, itemID string) error
	Unlike(ctx context.Context, userID, itemID string) (bool, error)
	LikedItems(ctx context.Context, userID string, offset, limit int) ([]models.MapMarkerCandidate, bool, error)
	CreateCollection(ctx context.Context, userID, name string) (models.Collection, error)
	Collections(ctx context.Context, userID string) ([]models.Collection, error)
	CollectionOwner(ctx context.Context, collectionID string) (string, error)
	AddToCollection(ctx context.Context, collectionID, itemID string) error
}

// BreakerReporter exposes the upstream circuit breaker state.
type BreakerReporter interface {
	State() string
}

// Deps are the handler dependencies. Everything except Config and
// Registry may be nil; the routes that need a missing dependency answer
// 503.
type Deps struct {
	Config    *config.Config
	Registry  *sources.Registry
	Pages     *cache.PageCache[sources.Page]
	Library   Library
	Snapshots snapshot.Store
	Upstream  BreakerReporter
	Events    events.Publisher
	Sessions  *mapsession.Manager
	Hub       *ws.Hub
	Enforcer  *authz.Enforcer
	Version   string
}

// Handler serves the API routes.
type Handler struct {
	config    *config.Config
	registry  *sources.Registry
	pages     *cache.PageCache[sources.Page]
	library   Library
	snapshots snapshot.Store
	upstream  BreakerReporter
	events    events.Publisher
	sessions  *mapsession.Manager
	hub       *ws.Hub
	enforcer  *authz.Enforcer
	version   string
	startTime time.Time

	// Used when no session manager is configured.
	fallbackEngine *clustering.Engine
}

// NewHandler returns a handler over deps.
func NewHandler(deps Deps) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Handler{
		config:    cfg,
		registry:  deps.Registry,
		pages:     deps.Pages,
		library:   deps.Library,
		snapshots: deps.Snapshots,
		upstream:  deps.Upstream,
		events:    deps.Events,
		sessions:  deps.Sessions,
		hub:       deps.Hub,
		enforcer:  deps.Enforcer,
		version:   deps.Version,
		startTime: time.Now(),
		fallbackEngine: clustering.NewEngine(clustering.Config{
			BaseDistance:     cfg.Clustering.BaseDistance,
			DisableThreshold: cfg.Clustering.DisableThreshold,
			Cohesion:         cfg.Clustering.Cohesion,
			MinZoomFactor:    cfg.Clustering.MinZoomFactor,
		}),
	}
}

// engine returns the clustering engine shared with live sessions so a
// config reload applies to both.
func (h *Handler) engine() *clustering.Engine {
	if h.sessions != nil {
		return h.sessions.Engine()
	}
	return h.fallbackEngine
}

// publish sends invalidations after a successful mutation. A failure is
// logged; cached pages then expire on their own.
func (h *Handler) publish(ctx context.Context, invs []events.Invalidation) {
	if h.events == nil || len(invs) == 0 {
		return
	}
	if err := h.events.Publish(ctx, invs...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", string(invs[0].Source)).Msg("Failed to publish invalidation")
	}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin admits browser origins on the CORS allow list.
// Native clients send no Origin and are admitted; they authenticate with a
// bearer token like any other API call.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
