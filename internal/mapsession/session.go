// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package mapsession

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/aggregator"
	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/clustering"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/selection"
	"github.com/tomtom215/waypoint/internal/sources"
	"github.com/tomtom215/waypoint/internal/validation"
	"github.com/tomtom215/waypoint/internal/websocket"
)

const (
	inboxSize        = 16
	invalidationSize = 32
)

var errMissingData = errors.New("message data is required")

// Sender delivers outgoing messages without blocking. *websocket.Client
// implements it.
type Sender interface {
	Send(msg websocket.Message) bool
}

type loadResult struct {
	next bool
	err  error
}

// Session is one live map screen.
type Session struct {
	id      string
	manager *Manager
	subject *auth.Subject
	out     Sender
	log     zerolog.Logger

	agg      *aggregator.Aggregator
	memo     *clustering.Memo
	animator *selection.Animator
	ctrl     *selection.Controller

	maxCandidates int

	inbox         chan websocket.Envelope
	loaded        chan loadResult
	invalidations chan events.Invalidation
	reconfigure   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Owned by the event loop.
	candidates []models.MapMarkerCandidate
	clusters   []models.ClusterItem
	pending    int
	dirty      bool
	outbox     []websocket.Message
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Done is closed when the session's event loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the session. It is safe to call more than once.
func (s *Session) Close() {
	s.cancel()
}

// HandleMessage implements websocket.Handler.
func (s *Session) HandleMessage(_ *websocket.Client, env websocket.Envelope) {
	s.Post(env)
}

// Disconnected implements websocket.Handler.
func (s *Session) Disconnected(*websocket.Client) {
	s.Close()
}

// Post queues a client message for the event loop. It blocks while the
// inbox is full and gives up when the session is closed.
func (s *Session) Post(env websocket.Envelope) {
	select {
	case s.inbox <- env:
	case <-s.ctx.Done():
	}
}

func (s *Session) notify(inv events.Invalidation) {
	select {
	case s.invalidations <- inv:
	default:
		s.log.Warn().Str("source", string(inv.Source)).Msg("Invalidation queue full, dropping")
	}
}

func (s *Session) requestReconfigure() {
	select {
	case s.reconfigure <- struct{}{}:
	default:
	}
}

func (s *Session) run() {
	defer s.shutdown()

	s.dirty = true
	s.flush()

	for {
		select {
		case <-s.ctx.Done():
			return
		case env := <-s.inbox:
			s.handle(env)
		case res := <-s.loaded:
			s.onLoaded(res)
		case inv := <-s.invalidations:
			s.onInvalidation(inv)
		case <-s.reconfigure:
			s.memo.SetEngine(s.manager.Engine())
			s.dirty = true
		}
		s.flush()
	}
}

func (s *Session) shutdown() {
	s.animator.Stop()
	s.manager.remove(s)
	close(s.done)
	s.log.Debug().Msg("Map session closed")
}

func (s *Session) handle(env websocket.Envelope) {
	switch env.Type {
	case websocket.TypeSetSource:
		s.onSetSource(env)
	case websocket.TypeSetRegion:
		var r models.Region
		if !s.decode(env, &r) {
			return
		}
		s.ctrl.SetRegion(r)
		s.dirty = true
	case websocket.TypeSetLayout:
		var l LayoutData
		if !s.decode(env, &l) {
			return
		}
		s.ctrl.SetLayout(selection.Layout{CardWidth: l.CardWidth, Spacing: l.Spacing})
	case websocket.TypeLoadMore:
		s.startLoad(true)
	case websocket.TypeMarkerPress:
		s.onMarkerPress(env)
	case websocket.TypeCarouselScrollEnd:
		var d ScrollEndData
		if !s.decode(env, &d) {
			return
		}
		s.ctrl.OnCarouselScrollEnd(d.Offset)
		s.dirty = true
	default:
		s.sendError("BAD_REQUEST", "Unknown message type: "+env.Type)
	}
}

func (s *Session) onSetSource(env websocket.Envelope) {
	var p sources.Params
	if !s.decode(env, &p) {
		return
	}
	if s.subject != nil {
		p.UserID = s.subject.UserID
		p.Token = s.subject.Token
	}
	req, err := sources.BuildRequest(&p)
	if err != nil {
		s.sendError("VALIDATION_ERROR", err.Error())
		return
	}
	changed, err := s.agg.Activate(req)
	if err != nil {
		s.sendError("VALIDATION_ERROR", err.Error())
		return
	}
	s.dirty = true
	if !changed {
		return
	}
	s.ctrl.ClearSelection()
	if bias := p.Bias(); bias != nil {
		s.ctrl.SetRegion(s.ctrl.Region().Center(bias.Latitude, bias.Longitude))
	}
	s.log.Debug().Str("source", string(req.Kind())).Msg("Map session source changed")
	s.startLoad(false)
}

func (s *Session) onMarkerPress(env websocket.Envelope) {
	var d MarkerPressData
	if !s.decode(env, &d) {
		return
	}
	switch {
	case d.ClusterID != "":
		for i := range s.clusters {
			if s.clusters[i].ID == d.ClusterID {
				s.ctrl.OnMarkerPress(s.clusters[i])
				s.dirty = true
				return
			}
		}
		s.sendError("NOT_FOUND", "No marker with id "+d.ClusterID)
	case d.Index != nil:
		if !s.ctrl.Select(*d.Index) {
			s.sendError("BAD_REQUEST", "Candidate index out of range")
			return
		}
		s.dirty = true
	default:
		s.sendError("BAD_REQUEST", "marker_press needs clusterId or index")
	}
}

func (s *Session) startLoad(next bool) {
	if s.agg.ActiveRequest() == nil {
		return
	}
	s.pending++
	s.dirty = true
	go func() {
		err := s.agg.Load(s.ctx, next)
		select {
		case s.loaded <- loadResult{next: next, err: err}:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Session) onLoaded(res loadResult) {
	s.pending--
	s.dirty = true
	switch {
	case res.err == nil:
	case errors.Is(res.err, sources.ErrStale), errors.Is(res.err, sources.ErrInactive):
	case errors.Is(res.err, sources.ErrSourceUnavailable):
		s.log.Debug().Err(res.err).Msg("Source unavailable for this session")
	case errors.Is(res.err, context.Canceled):
	default:
		s.log.Warn().Err(res.err).Bool("next", res.next).Msg("Source fetch failed")
	}
}

func (s *Session) onInvalidation(inv events.Invalidation) {
	req := s.agg.ActiveRequest()
	if req == nil || !inv.Matches(req) {
		return
	}
	s.log.Debug().Str("reason", inv.Reason).Msg("Active source invalidated, reloading")
	s.startLoad(false)
}

// flush recomputes derived state when something changed and sends the
// state message followed by any queued animations.
func (s *Session) flush() {
	if s.dirty {
		s.refresh()
		s.dirty = false
		s.send(websocket.Message{Type: websocket.TypeState, Data: s.state()})
	}
	for _, msg := range s.outbox {
		s.send(msg)
	}
	s.outbox = s.outbox[:0]
}

func (s *Session) refresh() {
	res := s.agg.Result()
	candidates := res.Candidates
	if s.maxCandidates > 0 && len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}
	if !sameCandidates(s.candidates, candidates) {
		s.candidates = candidates
		s.ctrl.SetCandidates(candidates)
	}
	s.clusters, _ = s.memo.Cluster(s.candidates, s.ctrl.Region())
}

func (s *Session) state() StateData {
	res := s.agg.Result()
	return StateData{
		Source:        string(res.Kind),
		Data:          s.candidates,
		IsLoading:     res.IsLoading || s.pending > 0,
		IsError:       res.IsError,
		Disabled:      res.Disabled,
		HasMore:       res.HasMore,
		ClusteredData: s.clusters,
		SelectedIndex: s.ctrl.Selected(),
		Region:        s.ctrl.Region(),
	}
}

func (s *Session) decode(env websocket.Envelope, v interface{}) bool {
	if len(env.Data) == 0 {
		s.sendError("BAD_REQUEST", env.Type+": "+errMissingData.Error())
		return false
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		s.sendError("BAD_REQUEST", env.Type+": invalid data")
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		s.sendError("VALIDATION_ERROR", verr.Error())
		return false
	}
	return true
}

func (s *Session) sendError(code, message string) {
	s.send(websocket.Message{Type: websocket.TypeError, Data: websocket.ErrorData{Code: code, Message: message}})
}

func (s *Session) send(msg websocket.Message) {
	s.out.Send(msg)
}

// AnimateTo implements selection.MapView.
func (s *Session) AnimateTo(a selection.Animation) {
	s.dirty = true
	s.outbox = append(s.outbox, websocket.Message{
		Type: websocket.TypeAnimateMap,
		Data: AnimateMapData{Seq: a.Seq, Region: a.Region, DurationMS: a.Duration.Milliseconds()},
	})
}

// ScrollTo implements selection.Carousel.
func (s *Session) ScrollTo(offset float64, index int) {
	s.outbox = append(s.outbox, websocket.Message{
		Type: websocket.TypeScrollCarousel,
		Data: ScrollCarouselData{Offset: offset, Index: index},
	})
}

// sameCandidates reports whether a and b are the same slice. The
// aggregator returns the same backing array until its pages change.
func sameCandidates(a, b []models.MapMarkerCandidate) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
