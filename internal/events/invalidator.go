// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"

	"github.com/tomtom215/waypoint/internal/logging"
)

// PageInvalidator is the part of the page cache the invalidator needs.
type PageInvalidator interface {
	InvalidateQuery(source, query, reason string) int
	InvalidateSource(source, reason string) int
}

// Notifier is told about invalidations after the cache has been updated.
// Map sessions implement it to refetch.
type Notifier interface {
	NotifyInvalidation(inv Invalidation)
}

// CacheInvalidator applies invalidations to the page cache and forwards
// them to live sessions.
type CacheInvalidator struct {
	pages    PageInvalidator
	notifier Notifier
}

// NewCacheInvalidator returns a handler. notifier may be nil.
func NewCacheInvalidator(pages PageInvalidator, notifier Notifier) *CacheInvalidator {
	return &CacheInvalidator{pages: pages, notifier: notifier}
}

// Handle implements HandlerFunc.
func (c *CacheInvalidator) Handle(_ context.Context, inv Invalidation) error {
	var dropped int
	if inv.Query == "" {
		dropped = c.pages.InvalidateSource(string(inv.Source), inv.Reason)
	} else {
		dropped = c.pages.InvalidateQuery(string(inv.Source), inv.Query, inv.Reason)
	}
	logging.Debug().
		Str("source", string(inv.Source)).
		Str("reason", inv.Reason).
		Int("dropped", dropped).
		Msg("Invalidated cached pages")

	if c.notifier != nil {
		c.notifier.NotifyInvalidation(inv)
	}
	return nil
}
