// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/models"
)

func likesFixture(n int) []models.MapMarkerCandidate {
	out := make([]models.MapMarkerCandidate, n)
	for i := range out {
		out[i] = cand(fmt.Sprintf("like-%d", i), float64(i), float64(i))
	}
	return out
}

func newLikesQuery(lib *fakeLibrary, pageSize, maxPages int, c *cache.PageCache[Page]) *Query {
	return NewQuery(&likesStrategy{lib: lib, pageSize: pageSize}, c, maxPages)
}

func TestQueryInactiveDoesNotFetch(t *testing.T) {
	t.Parallel()

	q := newLikesQuery(&fakeLibrary{likes: likesFixture(3)}, 2, 0, nil)
	if err := q.Load(context.Background(), false); !errors.Is(err, ErrInactive) {
		t.Fatalf("Load without request = %v, want ErrInactive", err)
	}

	q.Configure(LikesRequest{UserID: "u1"}, false)
	if err := q.Load(context.Background(), false); !errors.Is(err, ErrInactive) {
		t.Fatalf("Load inactive = %v, want ErrInactive", err)
	}
	st := q.State()
	if !st.Disabled || len(st.Pages) != 0 || st.IsLoading {
		t.Errorf("state = %+v", st)
	}
}

func TestQueryUnavailableIsDisabledNotError(t *testing.T) {
	t.Parallel()

	q := newLikesQuery(&fakeLibrary{}, 2, 0, nil)
	q.Configure(LikesRequest{}, true)
	err := q.Load(context.Background(), false)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Load = %v, want ErrSourceUnavailable", err)
	}
	st := q.State()
	if !st.Disabled || st.IsError || st.IsLoading {
		t.Errorf("state = %+v, want disabled without error", st)
	}
}

func TestQueryPaging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := newLikesQuery(&fakeLibrary{likes: likesFixture(5)}, 2, 0, nil)
	q.Configure(LikesRequest{UserID: "u1"}, true)

	if err := q.Load(ctx, false); err != nil {
		t.Fatalf("first page: %v", err)
	}
	for range 5 {
		if err := q.Load(ctx, true); err != nil {
			t.Fatalf("next page: %v", err)
		}
	}

	st := q.State()
	if len(st.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(st.Pages))
	}
	if st.HasMore {
		t.Error("HasMore after last page")
	}
	var ids []string
	for _, p := range st.Pages {
		for _, c := range p.Items {
			ids = append(ids, c.ID)
		}
	}
	if fmt.Sprint(ids) != "[like-0 like-1 like-2 like-3 like-4]" {
		t.Errorf("ids = %v", ids)
	}

	// Reloading the first page replaces the list.
	if err := q.Load(ctx, false); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(q.State().Pages); n != 1 {
		t.Errorf("pages after reload = %d, want 1", n)
	}
}

func TestQueryMaxPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := newLikesQuery(&fakeLibrary{likes: likesFixture(10)}, 2, 2, nil)
	q.Configure(LikesRequest{UserID: "u1"}, true)

	if err := q.Load(ctx, false); err != nil {
		t.Fatal(err)
	}
	for range 4 {
		if err := q.Load(ctx, true); err != nil {
			t.Fatal(err)
		}
	}
	st := q.State()
	if len(st.Pages) != 2 {
		t.Errorf("pages = %d, want 2", len(st.Pages))
	}
	if st.HasMore {
		t.Error("HasMore must be false at the page limit")
	}
}

func TestQueryErrorSetsFlag(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{err: errors.New("db locked")}
	q := newLikesQuery(lib, 2, 0, nil)
	q.Configure(LikesRequest{UserID: "u1"}, true)

	err := q.Load(context.Background(), false)
	if !errors.Is(err, ErrNetworkOrServer) {
		t.Fatalf("Load = %v", err)
	}
	st := q.State()
	if !st.IsError || st.IsLoading || st.Disabled {
		t.Errorf("state = %+v", st)
	}

	lib.err = nil
	lib.likes = likesFixture(1)
	if err := q.Load(context.Background(), false); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if q.State().IsError {
		t.Error("successful retry must clear the error")
	}
}

func TestQueryDropsResponseAfterDeactivation(t *testing.T) {
	t.Parallel()

	s := newBlockingStrategy(Page{Items: []models.MapMarkerCandidate{cand("late", 1, 1)}})
	q := NewQuery(s, nil, 0)
	q.Configure(ContentRequest{Query: "coffee"}, true)

	done := make(chan error, 1)
	go func() { done <- q.Load(context.Background(), false) }()

	<-s.started
	if !q.State().IsLoading {
		t.Error("IsLoading should be set while fetching")
	}
	q.Configure(ContentRequest{Query: "coffee"}, false)
	close(s.release)

	select {
	case err := <-done:
		if !errors.Is(err, ErrStale) {
			t.Errorf("Load = %v, want ErrStale", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not return")
	}
	st := q.State()
	if len(st.Pages) != 0 || st.IsLoading {
		t.Errorf("stale response leaked into state: %+v", st)
	}
}

func TestQueryDropsResponseAfterRequestChange(t *testing.T) {
	t.Parallel()

	s := newBlockingStrategy(Page{Items: []models.MapMarkerCandidate{cand("old", 1, 1)}})
	q := NewQuery(s, nil, 0)
	q.Configure(ContentRequest{Query: "coffee"}, true)

	done := make(chan error, 1)
	go func() { done <- q.Load(context.Background(), false) }()
	<-s.started

	if !q.Configure(ContentRequest{Query: "tea"}, true) {
		t.Fatal("Configure should report a changed request")
	}
	close(s.release)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Errorf("Load = %v, want ErrStale", err)
	}
	if n := len(q.State().Pages); n != 0 {
		t.Errorf("pages = %d, want 0", n)
	}
}

func TestQueryNextIgnoredDuringFirstLoad(t *testing.T) {
	t.Parallel()

	s := newBlockingStrategy(Page{Items: []models.MapMarkerCandidate{cand("a", 1, 1)}, HasMore: true, NextOffset: 1})
	q := NewQuery(s, nil, 0)
	q.Configure(ContentRequest{}, true)

	done := make(chan error, 1)
	go func() { done <- q.Load(context.Background(), false) }()
	<-s.started

	if err := q.Load(context.Background(), true); err != nil {
		t.Errorf("next during first load = %v, want nil", err)
	}
	close(s.release)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}
	if n := len(q.State().Pages); n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
}

func TestQueryUsesPageCache(t *testing.T) {
	t.Parallel()

	api := &fakeUpstream{content: likesFixture(3)}
	pages := cache.New[Page](time.Minute, 16)
	strategy := &contentStrategy{api: api, pageSize: 10}

	first := NewQuery(strategy, pages, 0)
	first.Configure(ContentRequest{Query: "museum"}, true)
	if err := first.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	second := NewQuery(strategy, pages, 0)
	second.Configure(ContentRequest{Query: "museum"}, true)
	if err := second.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if api.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", api.Calls())
	}
	if got := len(second.State().Pages[0].Items); got != 3 {
		t.Errorf("cached items = %d", got)
	}

	pages.InvalidateQuery(string(KindContent), ContentRequest{Query: "museum"}.CacheQuery(), "test")
	if err := second.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if api.Calls() != 2 {
		t.Errorf("upstream calls after invalidation = %d, want 2", api.Calls())
	}
}

func TestCollectionQueryReadableOnlyByOwner(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{collections: []models.Collection{
		{ID: "c1", UserID: "u1", Name: "Trip", Items: likesFixture(2)},
	}}
	pages := cache.New[Page](time.Minute, 16)
	strategy := &collectionStrategy{lib: lib, pageSize: 10}

	owner := NewQuery(strategy, pages, 0)
	owner.Configure(CollectionRequest{CollectionID: "c1", UserID: "u1"}, true)
	if err := owner.Load(context.Background(), false); err != nil {
		t.Fatalf("owner Load: %v", err)
	}
	if got := len(owner.State().Pages[0].Items); got != 2 {
		t.Fatalf("owner items = %d, want 2", got)
	}

	tests := []struct {
		name    string
		req     CollectionRequest
		lib     *fakeLibrary
		wantErr error
	}{
		{"another user", CollectionRequest{CollectionID: "c1", UserID: "u2"}, lib, ErrSourceUnavailable},
		{"unknown collection", CollectionRequest{CollectionID: "nope", UserID: "u1"}, lib, ErrSourceUnavailable},
		{"owner lookup fails", CollectionRequest{CollectionID: "c1", UserID: "u1"}, &fakeLibrary{err: errors.New("db locked")}, ErrNetworkOrServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// The shared cache already holds the owner's page for c1.
			q := NewQuery(&collectionStrategy{lib: tt.lib, pageSize: 10}, pages, 0)
			q.Configure(tt.req, true)
			err := q.Load(context.Background(), false)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load = %v, want %v", err, tt.wantErr)
			}
			st := q.State()
			if len(st.Pages) != 0 {
				t.Errorf("pages = %+v, want none", st.Pages)
			}
			if wantIsError := tt.wantErr == ErrNetworkOrServer; st.IsError != wantIsError {
				t.Errorf("IsError = %v, want %v", st.IsError, wantIsError)
			}
		})
	}
}

func TestConfigureVersioning(t *testing.T) {
	t.Parallel()

	q := newLikesQuery(&fakeLibrary{}, 2, 0, nil)
	v0 := q.State().Version
	if !q.Configure(LikesRequest{UserID: "u1"}, true) {
		t.Error("first Configure should report a change")
	}
	v1 := q.State().Version
	if v1 == v0 {
		t.Error("version must move on configure")
	}
	if q.Configure(LikesRequest{UserID: "u1"}, true) {
		t.Error("same request should not report a change")
	}
	if q.State().Version != v1 {
		t.Error("no-op configure must keep the version")
	}
}
