// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"github.com/tomtom215/waypoint/internal/models"
)

// Params is the flat, transport-level form of a request: query string
// parameters on GET /map/markers and the set_source message of a map
// session. UserID and Token are filled from the authenticated caller, not
// from the client.
type Params struct {
	Source       string   `json:"source" validate:"required,source_kind"`
	Query        string   `json:"query,omitempty" validate:"max=256"`
	CollectionID string   `json:"collectionId,omitempty" validate:"omitempty,resource_id"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	RadiusKm     float64  `json:"radiusKm,omitempty" validate:"gte=0,lte=20000"`
	CustomData   string   `json:"customData,omitempty"`
	SnapshotID   string   `json:"snapshotId,omitempty" validate:"omitempty,resource_id"`

	UserID string `json:"-"`
	Token  string `json:"-"`
}

// Bias returns the location bias, or nil unless both coordinates are set.
func (p *Params) Bias() *models.LatLng {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	if !models.ValidCoordinate(*p.Latitude, *p.Longitude) {
		return nil
	}
	return &models.LatLng{Latitude: *p.Latitude, Longitude: *p.Longitude}
}

// BuildRequest converts p into the Request for its source.
func BuildRequest(p *Params) (Request, error) {
	kind, err := ParseKind(p.Source)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLikes:
		return LikesRequest{UserID: p.UserID}, nil
	case KindCollections:
		return CollectionsRequest{UserID: p.UserID}, nil
	case KindCollection:
		return CollectionRequest{CollectionID: p.CollectionID, UserID: p.UserID}, nil
	case KindContent:
		return ContentRequest{Query: p.Query, Bias: p.Bias()}, nil
	case KindNearbyEvents:
		return NearbyEventsRequest{Token: p.Token, Bias: p.Bias(), RadiusKm: p.RadiusKm}, nil
	case KindWorldwideEvents:
		return WorldwideEventsRequest{Query: p.Query}, nil
	default:
		return CustomRequest{Data: p.CustomData, SnapshotID: p.SnapshotID}, nil
	}
}
