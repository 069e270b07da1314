// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// State is a point-in-time view of a Query.
type State struct {
	Kind      Kind
	Pages     []Page
	IsLoading bool
	IsError   bool
	Err       error

	// Disabled is set when the query is inactive or its source is
	// unavailable for the current request.
	Disabled bool
	HasMore  bool

	// Version changes whenever anything above changes.
	Version uint64
}

// Query is the runtime state of one source: its current request, the pages
// fetched so far, and the loading and error flags.
//
// Only an active query fetches. Every reset or deactivation bumps a
// generation counter, and a fetch that completes under an older generation
// is discarded, so a deactivated source's in-flight response never reaches
// the aggregator.
type Query struct {
	strategy Strategy
	cache    *cache.PageCache[Page]
	maxPages int

	mu         sync.Mutex
	req        Request
	active     bool
	pages      []Page
	loading    bool
	err        error
	generation uint64
	version    uint64
}

// NewQuery returns an inactive query. c may be nil to disable caching;
// maxPages <= 0 means unlimited.
func NewQuery(s Strategy, c *cache.PageCache[Page], maxPages int) *Query {
	return &Query{strategy: s, cache: c, maxPages: maxPages}
}

// Kind returns the source kind.
func (q *Query) Kind() Kind {
	return q.strategy.Kind()
}

// Request returns the current request, or nil.
func (q *Query) Request() Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.req
}

// Configure sets the request and whether the query is active. A different
// request drops the fetched pages; deactivation drops any in-flight fetch.
// It reports whether the request changed.
func (q *Query) Configure(req Request, active bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	changed := req != nil && (q.req == nil || q.req.CacheQuery() != req.CacheQuery())
	if req != nil {
		q.req = req
	}
	if changed {
		q.pages = nil
		q.err = nil
		q.loading = false
		q.generation++
		q.version++
	}
	if q.active != active {
		q.active = active
		if !active {
			q.loading = false
			q.generation++
		}
		q.version++
	}
	return changed
}

// Load fetches the first page (next == false), replacing whatever was
// loaded, or appends the next page. Loading the next page is a no-op while
// a fetch is running, when the source has no more pages, or when maxPages
// is reached.
//
// Load returns ErrInactive or an ErrSourceUnavailable error without
// fetching, ErrStale when the result was discarded, and the fetch error
// otherwise.
func (q *Query) Load(ctx context.Context, next bool) error {
	q.mu.Lock()
	if !q.active || q.req == nil {
		q.mu.Unlock()
		return ErrInactive
	}
	if err := q.strategy.Enabled(q.req); err != nil {
		q.mu.Unlock()
		return err
	}

	if next && q.loading && len(q.pages) == 0 {
		q.mu.Unlock()
		return nil
	}

	offset := 0
	appendPage := next && len(q.pages) > 0
	if appendPage {
		last := q.pages[len(q.pages)-1]
		if q.loading || !last.HasMore || (q.maxPages > 0 && len(q.pages) >= q.maxPages) {
			q.mu.Unlock()
			return nil
		}
		offset = last.NextOffset
	} else {
		q.generation++
	}
	gen := q.generation
	req := q.req
	q.loading = true
	q.version++
	q.mu.Unlock()

	page, err := q.fetch(ctx, req, offset)

	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.generation || !q.active {
		metrics.SourceStaleResponses.WithLabelValues(string(q.Kind())).Inc()
		logging.Debug().Str("source", string(q.Kind())).Int("offset", offset).Msg("Discarding stale source response")
		return ErrStale
	}

	q.loading = false
	q.version++
	if err != nil {
		q.err = err
		return err
	}
	q.err = nil
	if appendPage {
		q.pages = append(q.pages, page)
	} else {
		q.pages = []Page{page}
	}
	return nil
}

func (q *Query) fetch(ctx context.Context, req Request, offset int) (Page, error) {
	if a, ok := q.strategy.(Authorizer); ok {
		if err := a.Authorize(ctx, req); err != nil {
			return Page{}, err
		}
	}

	key := cache.Key{Source: string(req.Kind()), Query: req.CacheQuery(), Offset: offset}
	if q.cache != nil {
		if page, ok := q.cache.Get(key); ok {
			return page, nil
		}
	}

	start := time.Now()
	page, err := q.strategy.FetchPage(ctx, req, offset)
	metrics.RecordSourceFetch(string(req.Kind()), time.Since(start), err)
	if err != nil {
		return Page{}, err
	}
	if q.cache != nil {
		q.cache.Set(key, page)
	}
	return page, nil
}

// State returns a snapshot of the query. The Pages slice is shared and
// must not be modified.
func (q *Query) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := State{
		Kind:      q.Kind(),
		Pages:     q.pages,
		IsLoading: q.loading,
		Err:       q.err,
		Version:   q.version,
	}
	st.Disabled = !q.active || q.req == nil || q.strategy.Enabled(q.req) != nil
	st.IsError = q.err != nil && !errors.Is(q.err, ErrSourceUnavailable)
	if n := len(q.pages); n > 0 {
		st.HasMore = q.pages[n-1].HasMore && (q.maxPages <= 0 || n < q.maxPages)
	}
	return st
}
