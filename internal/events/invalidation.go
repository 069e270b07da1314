// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"time"

	"github.com/tomtom215/waypoint/internal/sources"
)

// Invalidation reasons.
const (
	ReasonLike             = "like"
	ReasonUnlike           = "unlike"
	ReasonCollectionAdd    = "collection_add"
	ReasonCollectionCreate = "collection_create"
	ReasonSnapshotPut      = "snapshot_put"
	ReasonSnapshotDelete   = "snapshot_delete"
)

// Invalidation names cached pages that are no longer current. An empty
// Query invalidates every page of Source.
type Invalidation struct {
	Source     sources.Kind `json:"source"`
	Query      string       `json:"query,omitempty"`
	Reason     string       `json:"reason"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Matches reports whether req is affected by the invalidation.
func (inv Invalidation) Matches(req sources.Request) bool {
	if req == nil || req.Kind() != inv.Source {
		return false
	}
	return inv.Query == "" || inv.Query == req.CacheQuery()
}

// LikesChanged is published after a like or unlike.
func LikesChanged(userID, reason string) []Invalidation {
	return []Invalidation{{
		Source: sources.KindLikes,
		Query:  sources.LikesQuery(userID),
		Reason: reason,
	}}
}

// CollectionChanged is published after items are added to a collection.
// The owner's collections overview is invalidated along with the
// collection itself.
func CollectionChanged(userID, collectionID, reason string) []Invalidation {
	out := []Invalidation{{
		Source: sources.KindCollections,
		Query:  sources.CollectionsQuery(userID),
		Reason: reason,
	}}
	if collectionID != "" {
		out = append(out, Invalidation{
			Source: sources.KindCollection,
			Query:  sources.CollectionQuery(collectionID),
			Reason: reason,
		})
	}
	return out
}

// SnapshotChanged is published after a snapshot is stored or deleted.
func SnapshotChanged(snapshotID, reason string) []Invalidation {
	return []Invalidation{{
		Source: sources.KindCustom,
		Query:  sources.SnapshotQuery(snapshotID),
		Reason: reason,
	}}
}
