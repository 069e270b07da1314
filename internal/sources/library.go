// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import "context"

type likesStrategy struct {
	lib      LibraryReader
	pageSize int
}

func (s *likesStrategy) Kind() Kind { return KindLikes }

func (s *likesStrategy) Enabled(req Request) error {
	r, ok := req.(LikesRequest)
	if !ok {
		return wrongRequest(KindLikes, req)
	}
	if s.lib == nil {
		return unavailable("library not configured")
	}
	if r.UserID == "" {
		return unavailable("no signed-in user")
	}
	return nil
}

func (s *likesStrategy) FetchPage(ctx context.Context, req Request, offset int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(LikesRequest)
	items, more, err := s.lib.LikedItems(ctx, r.UserID, offset, s.pageSize)
	if err != nil {
		return Page{}, backendError("liked items", err)
	}
	return Page{Items: items, NextOffset: offset + len(items), HasMore: more}, nil
}

type collectionsStrategy struct {
	lib LibraryReader
}

func (s *collectionsStrategy) Kind() Kind { return KindCollections }

func (s *collectionsStrategy) Enabled(req Request) error {
	r, ok := req.(CollectionsRequest)
	if !ok {
		return wrongRequest(KindCollections, req)
	}
	if s.lib == nil {
		return unavailable("library not configured")
	}
	if r.UserID == "" {
		return unavailable("no signed-in user")
	}
	return nil
}

// FetchPage returns every collection in one page; collections are not
// paginated.
func (s *collectionsStrategy) FetchPage(ctx context.Context, req Request, _ int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(CollectionsRequest)
	cols, err := s.lib.Collections(ctx, r.UserID)
	if err != nil {
		return Page{}, backendError("collections", err)
	}
	return Page{Collections: cols}, nil
}

type collectionStrategy struct {
	lib      LibraryReader
	pageSize int
}

func (s *collectionStrategy) Kind() Kind { return KindCollection }

func (s *collectionStrategy) Enabled(req Request) error {
	r, ok := req.(CollectionRequest)
	if !ok {
		return wrongRequest(KindCollection, req)
	}
	if s.lib == nil {
		return unavailable("library not configured")
	}
	if r.CollectionID == "" {
		return unavailable("no collection selected")
	}
	if r.UserID == "" {
		return unavailable("no signed-in user")
	}
	return nil
}

// Authorize lets only the owner read a collection. An unknown collection
// and a collection of another user look the same to the caller.
func (s *collectionStrategy) Authorize(ctx context.Context, req Request) error {
	if err := s.Enabled(req); err != nil {
		return err
	}
	r := req.(CollectionRequest)
	owner, err := s.lib.CollectionOwner(ctx, r.CollectionID)
	if err != nil {
		if isNotFound(err) {
			return unavailable("collection not found")
		}
		return backendError("collection owner", err)
	}
	if owner != r.UserID {
		return unavailable("collection not found")
	}
	return nil
}

func (s *collectionStrategy) FetchPage(ctx context.Context, req Request, offset int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(CollectionRequest)
	items, more, err := s.lib.CollectionItems(ctx, r.CollectionID, offset, s.pageSize)
	if err != nil {
		return Page{}, backendError("collection items", err)
	}
	return Page{Items: items, NextOffset: offset + len(items), HasMore: more}, nil
}
