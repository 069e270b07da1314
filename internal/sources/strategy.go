// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/upstream"
)

// Page is one fetched page of a source.
type Page struct {
	// Items is the source's primary list.
	Items []models.MapMarkerCandidate

	// Local is the supplementary list of the nearby events source.
	Local []models.MapMarkerCandidate

	// Collections is set by the collections source only.
	Collections []models.Collection

	NextOffset int
	HasMore    bool
}

// Strategy fetches pages for one source kind.
type Strategy interface {
	Kind() Kind

	// Enabled returns nil when req can be fetched, or an error wrapping
	// ErrSourceUnavailable when required context is missing.
	Enabled(req Request) error

	// FetchPage fetches the page starting at offset. Backend failures
	// wrap ErrNetworkOrServer.
	FetchPage(ctx context.Context, req Request, offset int) (Page, error)
}

// Authorizer is implemented by strategies whose pages are not readable by
// every caller. Query calls Authorize before the page cache, so a cached
// page is never served to a caller the strategy would refuse. A refusal
// wraps ErrSourceUnavailable.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) error
}

// LibraryReader is the part of the library store the sources read.
type LibraryReader interface {
	LikedItems(ctx context.Context, userID string, offset, limit int) ([]models.MapMarkerCandidate, bool, error)
	Collections(ctx context.Context, userID string) ([]models.Collection, error)
	CollectionItems(ctx context.Context, collectionID string, offset, limit int) ([]models.MapMarkerCandidate, bool, error)
	CollectionOwner(ctx context.Context, collectionID string) (string, error)
}

// SnapshotReader loads stored custom snapshots.
type SnapshotReader interface {
	Get(ctx context.Context, id string) ([]byte, error)
}

// Deps are the backends the built-in strategies use. Nil backends leave
// their sources unavailable.
type Deps struct {
	Library   LibraryReader
	Upstream  upstream.API
	Snapshots SnapshotReader
	PageSize  int
}

// Registry maps kinds to strategies.
type Registry struct {
	strategies map[Kind]Strategy
}

// NewRegistry registers strategies; a later strategy replaces an earlier
// one of the same kind.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[Kind]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Kind()] = s
	}
	return r
}

// DefaultRegistry registers one strategy per Kind backed by deps.
func DefaultRegistry(deps Deps) *Registry {
	size := deps.PageSize
	if size <= 0 {
		size = 20
	}
	return NewRegistry(
		&likesStrategy{lib: deps.Library, pageSize: size},
		&collectionsStrategy{lib: deps.Library},
		&collectionStrategy{lib: deps.Library, pageSize: size},
		&contentStrategy{api: deps.Upstream, pageSize: size},
		&nearbyEventsStrategy{api: deps.Upstream, pageSize: size},
		&worldwideEventsStrategy{api: deps.Upstream, pageSize: size},
		&customStrategy{snapshots: deps.Snapshots},
	)
}

// Get returns the strategy for kind.
func (r *Registry) Get(kind Kind) (Strategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
	return s, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.strategies))
	for k := range r.strategies {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// wrongRequest reports a request routed to the wrong strategy.
func wrongRequest(want Kind, req Request) error {
	return fmt.Errorf("%s strategy cannot serve %T", want, req)
}

func unavailable(reason string) error {
	return fmt.Errorf("%w: %s", ErrSourceUnavailable, reason)
}

func backendError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNetworkOrServer, err)
}
