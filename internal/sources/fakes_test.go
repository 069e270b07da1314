// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/upstream"
)

func cand(id string, lat, lng float64) models.MapMarkerCandidate {
	return models.MapMarkerCandidate{ID: id, Title: id, Latitude: models.Float(lat), Longitude: models.Float(lng)}
}

type fakeLibrary struct {
	likes       []models.MapMarkerCandidate
	collections []models.Collection
	err         error
}

func (f *fakeLibrary) LikedItems(_ context.Context, _ string, offset, limit int) ([]models.MapMarkerCandidate, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return pageOf(f.likes, offset, limit)
}

func (f *fakeLibrary) Collections(context.Context, string) ([]models.Collection, error) {
	return f.collections, f.err
}

func (f *fakeLibrary) CollectionItems(_ context.Context, id string, offset, limit int) ([]models.MapMarkerCandidate, bool, error) {
	for _, c := range f.collections {
		if c.ID == id {
			return pageOf(c.Items, offset, limit)
		}
	}
	return []models.MapMarkerCandidate{}, false, f.err
}

func (f *fakeLibrary) CollectionOwner(_ context.Context, id string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for _, c := range f.collections {
		if c.ID == id {
			return c.UserID, nil
		}
	}
	return "", notFound{}
}

func pageOf(all []models.MapMarkerCandidate, offset, limit int) ([]models.MapMarkerCandidate, bool, error) {
	if offset >= len(all) {
		return []models.MapMarkerCandidate{}, false, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], end < len(all), nil
}

type fakeUpstream struct {
	mu      sync.Mutex
	calls   int
	content []models.MapMarkerCandidate
	events  *upstream.EventsPage
	err     error
	token   string
}

var _ upstream.API = (*fakeUpstream)(nil)

func (f *fakeUpstream) SearchContent(_ context.Context, _ string, _ *models.LatLng, offset, limit int) (*upstream.ContentPage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	items, more, _ := pageOf(f.content, offset, limit)
	return &upstream.ContentPage{Items: items, HasMore: more}, nil
}

func (f *fakeUpstream) NearbyBusinessEvents(_ context.Context, token string, _ models.LatLng, _ float64, _, _ int) (*upstream.EventsPage, error) {
	f.mu.Lock()
	f.calls++
	f.token = token
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeUpstream) WorldwideBusinessEvents(_ context.Context, _ string, offset, limit int) (*upstream.ContentPage, error) {
	return f.SearchContent(context.Background(), "", nil, offset, limit)
}

func (f *fakeUpstream) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type notFound struct{}

func (notFound) Error() string  { return "snapshot not found" }
func (notFound) NotFound() bool { return true }

type fakeSnapshots map[string]string

func (f fakeSnapshots) Get(_ context.Context, id string) ([]byte, error) {
	if id == "broken-store" {
		return nil, errors.New("disk on fire")
	}
	data, ok := f[id]
	if !ok {
		return nil, notFound{}
	}
	return []byte(data), nil
}

// blockingStrategy holds FetchPage until release is closed.
type blockingStrategy struct {
	started chan struct{}
	release chan struct{}
	page    Page
}

func newBlockingStrategy(page Page) *blockingStrategy {
	return &blockingStrategy{started: make(chan struct{}, 4), release: make(chan struct{}), page: page}
}

func (b *blockingStrategy) Kind() Kind { return KindContent }

func (b *blockingStrategy) Enabled(Request) error { return nil }

func (b *blockingStrategy) FetchPage(ctx context.Context, _ Request, _ int) (Page, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return b.page, nil
	case <-ctx.Done():
		return Page{}, ctx.Err()
	}
}
