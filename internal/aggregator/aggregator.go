// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package aggregator turns the active source's pages into the flat list of
// mappable candidates shown on the map.
//
// An Aggregator owns one sources.Query per source kind. Exactly one query is
// active at a time; Activate switches the active source and disables every
// other query so it neither fetches nor publishes results. The loading and
// error flags in a Result come from the active query only.
//
// Results are memoized on the active query's version, so repeated calls
// between fetches return the same slice.
package aggregator

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/sources"
)

// Result is the aggregated view of the active source.
type Result struct {
	Kind       sources.Kind
	Candidates []models.MapMarkerCandidate
	IsLoading  bool
	IsError    bool
	Disabled   bool
	HasMore    bool
	Err        error
}

type memoKey struct {
	kind    sources.Kind
	version uint64
}

// Aggregator selects one active source and merges its pages.
type Aggregator struct {
	queries map[sources.Kind]*sources.Query

	mu     sync.Mutex
	active sources.Kind

	memoMu    sync.Mutex
	memoValid bool
	memoKey   memoKey
	memo      Result
}

// New builds an aggregator with one query per kind registered in reg. The
// page cache may be nil.
func New(reg *sources.Registry, pages *cache.PageCache[sources.Page], maxPages int) *Aggregator {
	a := &Aggregator{queries: make(map[sources.Kind]*sources.Query)}
	for _, kind := range reg.Kinds() {
		s, err := reg.Get(kind)
		if err != nil {
			continue
		}
		a.queries[kind] = sources.NewQuery(s, pages, maxPages)
	}
	return a
}

// Active returns the active source kind, or "" before the first Activate.
func (a *Aggregator) Active() sources.Kind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// ActiveRequest returns the active request, or nil.
func (a *Aggregator) ActiveRequest() sources.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	if q, ok := a.queries[a.active]; ok {
		return q.Request()
	}
	return nil
}

// Activate makes req's source the active one and disables all others. It
// reports whether the active source or its request changed, in which case
// the caller should load the first page.
func (a *Aggregator) Activate(req sources.Request) (bool, error) {
	if req == nil {
		return false, errors.New("aggregator: nil request")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	target, ok := a.queries[req.Kind()]
	if !ok {
		return false, sources.ErrUnknownSource
	}
	for kind, q := range a.queries {
		if kind != req.Kind() {
			q.Configure(nil, false)
		}
	}
	switched := a.active != req.Kind()
	a.active = req.Kind()
	changed := target.Configure(req, true)
	if switched || changed {
		logging.Debug().Str("source", string(req.Kind())).Bool("request_changed", changed).Msg("Activated source")
	}
	return switched || changed, nil
}

// Load fetches the first page of the active source, or the next page when
// next is set. See sources.Query.Load for the returned errors.
func (a *Aggregator) Load(ctx context.Context, next bool) error {
	q := a.activeQuery()
	if q == nil {
		return sources.ErrInactive
	}
	return q.Load(ctx, next)
}

// Result returns the aggregated state of the active source.
func (a *Aggregator) Result() Result {
	q := a.activeQuery()
	if q == nil {
		return Result{Candidates: []models.MapMarkerCandidate{}, Disabled: true}
	}
	st := q.State()
	key := memoKey{kind: st.Kind, version: st.Version}

	a.memoMu.Lock()
	defer a.memoMu.Unlock()
	if a.memoValid && a.memoKey == key {
		return a.memo
	}
	a.memo = Result{
		Kind:       st.Kind,
		Candidates: models.FilterMappable(Merge(st.Kind, st.Pages)),
		IsLoading:  st.IsLoading,
		IsError:    st.IsError,
		Disabled:   st.Disabled,
		HasMore:    st.HasMore,
		Err:        st.Err,
	}
	a.memoKey = key
	a.memoValid = true
	return a.memo
}

// Aggregate activates req, loads up to pages pages and returns the result.
// It is the synchronous path used by stateless HTTP requests.
//
// An unavailable source yields a disabled, empty result and no error. A
// backend failure is reported through Result.IsError and also returned.
func (a *Aggregator) Aggregate(ctx context.Context, req sources.Request, pages int) (Result, error) {
	if _, err := a.Activate(req); err != nil {
		return Result{}, err
	}
	err := a.Load(ctx, false)
	for i := 1; err == nil && i < pages; i++ {
		before := a.Result()
		if !before.HasMore {
			break
		}
		err = a.Load(ctx, true)
	}
	res := a.Result()
	if errors.Is(err, sources.ErrSourceUnavailable) {
		return res, nil
	}
	return res, err
}

func (a *Aggregator) activeQuery() *sources.Query {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queries[a.active]
}
