// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/tomtom215/waypoint/internal/models"
)

// Kind is the source discriminator.
type Kind string

// Source kinds.
const (
	KindLikes           Kind = "likes"
	KindCollections     Kind = "collections"
	KindCollection      Kind = "collection"
	KindContent         Kind = "content"
	KindNearbyEvents    Kind = "nearby_events"
	KindWorldwideEvents Kind = "worldwide_events"
	KindCustom          Kind = "custom"
)

// AllKinds lists every source in a stable order.
var AllKinds = []Kind{
	KindLikes,
	KindCollections,
	KindCollection,
	KindContent,
	KindNearbyEvents,
	KindWorldwideEvents,
	KindCustom,
}

// ParseKind validates a discriminator string.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// Request selects one source and carries its parameters. The set of
// implementations is closed: one concrete type per Kind.
type Request interface {
	Kind() Kind

	// CacheQuery is the query component of the page cache key. It must
	// not contain secrets.
	CacheQuery() string

	sealed()
}

// LikesRequest lists a user's liked items.
type LikesRequest struct {
	UserID string
}

// CollectionsRequest lists every item of every collection of a user.
type CollectionsRequest struct {
	UserID string
}

// CollectionRequest lists one collection. Only its owner may read it.
type CollectionRequest struct {
	CollectionID string
	UserID       string
}

// ContentRequest is a generic paginated search, optionally ranked around
// Bias.
type ContentRequest struct {
	Query string
	Bias  *models.LatLng
}

// NearbyEventsRequest lists business events around Bias. Token is the
// caller's bearer token; without it the source is unavailable.
type NearbyEventsRequest struct {
	Token    string
	Bias     *models.LatLng
	RadiusKm float64
}

// WorldwideEventsRequest lists business events everywhere.
type WorldwideEventsRequest struct {
	Query string
}

// CustomRequest carries a caller-supplied snapshot, inline or by id.
// Inline data wins when both are set.
type CustomRequest struct {
	Data       string
	SnapshotID string
}

func (LikesRequest) Kind() Kind           { return KindLikes }
func (CollectionsRequest) Kind() Kind     { return KindCollections }
func (CollectionRequest) Kind() Kind      { return KindCollection }
func (ContentRequest) Kind() Kind         { return KindContent }
func (NearbyEventsRequest) Kind() Kind    { return KindNearbyEvents }
func (WorldwideEventsRequest) Kind() Kind { return KindWorldwideEvents }
func (CustomRequest) Kind() Kind          { return KindCustom }

func (LikesRequest) sealed()           {}
func (CollectionsRequest) sealed()     {}
func (CollectionRequest) sealed()      {}
func (ContentRequest) sealed()         {}
func (NearbyEventsRequest) sealed()    {}
func (WorldwideEventsRequest) sealed() {}
func (CustomRequest) sealed()          {}

// LikesQuery is the cache query for a user's likes.
func LikesQuery(userID string) string { return "user:" + userID }

// CollectionsQuery is the cache query for a user's collections.
func CollectionsQuery(userID string) string { return "user:" + userID }

// CollectionQuery is the cache query for one collection.
func CollectionQuery(collectionID string) string { return "collection:" + collectionID }

// SnapshotQuery is the cache query for a stored snapshot.
func SnapshotQuery(snapshotID string) string { return "snapshot:" + snapshotID }

func (r LikesRequest) CacheQuery() string       { return LikesQuery(r.UserID) }
func (r CollectionsRequest) CacheQuery() string { return CollectionsQuery(r.UserID) }
func (r CollectionRequest) CacheQuery() string  { return CollectionQuery(r.CollectionID) }

func (r ContentRequest) CacheQuery() string {
	return "q:" + r.Query + "|" + biasKey(r.Bias)
}

func (r NearbyEventsRequest) CacheQuery() string {
	return "token:" + digest(r.Token) + "|" + biasKey(r.Bias) + "|r:" + strconv.FormatFloat(r.RadiusKm, 'f', -1, 64)
}

func (r WorldwideEventsRequest) CacheQuery() string { return "q:" + r.Query }

func (r CustomRequest) CacheQuery() string {
	if r.Data != "" {
		return "inline:" + digest(r.Data)
	}
	return SnapshotQuery(r.SnapshotID)
}

// biasKey rounds to ~11m so jitter in the device location reuses pages.
func biasKey(b *models.LatLng) string {
	if b == nil {
		return "nobias"
	}
	return fmt.Sprintf("%.4f,%.4f", b.Latitude, b.Longitude)
}

func digest(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 16)
}
