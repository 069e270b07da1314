// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package mapsession

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/aggregator"
	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/clustering"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/selection"
	"github.com/tomtom215/waypoint/internal/sources"
	"github.com/tomtom215/waypoint/internal/websocket"
)

var (
	_ events.Notifier   = (*Manager)(nil)
	_ websocket.Handler = (*Session)(nil)
)

// Options configures a Manager.
type Options struct {
	Registry   *sources.Registry
	Pages      *cache.PageCache[sources.Page]
	MaxPages   int
	Clustering clustering.Config
	Session    config.SessionConfig
}

// Manager creates and tracks map sessions.
type Manager struct {
	opts   Options
	engine atomic.Pointer[clustering.Engine]

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a manager with no sessions.
func NewManager(opts Options) *Manager {
	m := &Manager{opts: opts, sessions: make(map[string]*Session)}
	m.engine.Store(clustering.NewEngine(opts.Clustering))
	return m
}

// Engine returns the current clustering engine.
func (m *Manager) Engine() *clustering.Engine {
	return m.engine.Load()
}

// SetClusteringConfig swaps the clustering engine. Open sessions recluster
// with the new constants on their next loop iteration.
func (m *Manager) SetClusteringConfig(cfg clustering.Config) {
	m.engine.Store(clustering.NewEngine(cfg))
	for _, s := range m.snapshot() {
		s.requestReconfigure()
	}
	logging.Info().
		Float64("base_distance", cfg.BaseDistance).
		Float64("disable_threshold", cfg.DisableThreshold).
		Float64("cohesion", cfg.Cohesion).
		Msg("Clustering constants updated")
}

// Open starts a session that writes to out. ctx bounds the session's
// lifetime and must outlive the HTTP request that upgraded the connection.
// subject may be nil for anonymous callers.
func (m *Manager) Open(ctx context.Context, subject *auth.Subject, out Sender) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(logging.ContextWithSessionID(ctx, id))

	sc := m.opts.Session
	animator := selection.NewAnimator(sc.MinAnimation, sc.MaxAnimation, sc.DefaultAnimation)

	s := &Session{
		id:            id,
		manager:       m,
		subject:       subject,
		out:           out,
		log:           logging.WithComponent("map-session").With().Str("session_id", id).Logger(),
		agg:           aggregator.New(m.opts.Registry, m.opts.Pages, m.opts.MaxPages),
		memo:          clustering.NewMemo(m.Engine()),
		animator:      animator,
		maxCandidates: sc.MaxCandidateCount,
		inbox:         make(chan websocket.Envelope, inboxSize),
		loaded:        make(chan loadResult),
		invalidations: make(chan events.Invalidation, invalidationSize),
		reconfigure:   make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	s.ctrl = selection.NewController(s, s, animator, selection.Layout{CardWidth: sc.CardWidth, Spacing: sc.Spacing})
	s.ctrl.SetRegion(models.Region{LatitudeDelta: sc.DefaultLatDelta, LongitudeDelta: sc.DefaultLngDelta})

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.MapSessionsActive.Set(float64(n))

	userID := ""
	if subject != nil {
		userID = subject.UserID
	}
	s.log.Debug().Str("user_id", userID).Int("active_sessions", n).Msg("Map session opened")

	go s.run()
	return s
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// NotifyInvalidation implements events.Notifier.
func (m *Manager) NotifyInvalidation(inv events.Invalidation) {
	for _, s := range m.snapshot() {
		s.notify(inv)
	}
}

// CloseAll stops every session and waits for their loops to exit.
func (m *Manager) CloseAll() {
	sessions := m.snapshot()
	for _, s := range sessions {
		s.Close()
	}
	for _, s := range sessions {
		<-s.Done()
	}
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.id)
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.MapSessionsActive.Set(float64(n))
}

func (m *Manager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
