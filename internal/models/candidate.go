// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import (
	"math"
	"time"

	"github.com/goccy/go-json"
)

// MapMarkerCandidate is one item that may be placed on the map.
//
// Coordinates are optional: sources regularly return places without a
// geocode, and those items still appear in list views. Only mappable
// candidates (see Mappable) reach the clustering engine.
//
// Example:
//
//	{
//	  "id": "place_42",
//	  "title": "Blue Door Coffee",
//	  "latitude": 51.5072,
//	  "longitude": -0.1276,
//	  "address": "12 Market Row",
//	  "imageUrl": "https://cdn.example.org/p/42.jpg",
//	  "rating": 4.6
//	}
type MapMarkerCandidate struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Address    string     `json:"address,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	PriceLevel string     `json:"priceLevel,omitempty"`
	Liked      bool       `json:"liked,omitempty"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`

	// Set by the aggregator when the candidate came out of a collection.
	CollectionID   string `json:"collectionId,omitempty"`
	CollectionName string `json:"collectionName,omitempty"`

	// OriginalData carries the untouched upstream object for the client.
	OriginalData json.RawMessage `json:"originalData,omitempty"`
}

// Mappable reports whether both coordinates are present, finite and inside
// the geographic ranges (|lat| <= 90, |lng| <= 180).
func (c *MapMarkerCandidate) Mappable() bool {
	if c.Latitude == nil || c.Longitude == nil {
		return false
	}
	return ValidCoordinate(*c.Latitude, *c.Longitude)
}

// Coordinates returns the latitude and longitude. Callers must check
// Mappable first; missing values come back as zero.
func (c *MapMarkerCandidate) Coordinates() (lat, lng float64) {
	if c.Latitude != nil {
		lat = *c.Latitude
	}
	if c.Longitude != nil {
		lng = *c.Longitude
	}
	return lat, lng
}

// ValidCoordinate reports whether lat/lng are finite and within range.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return math.Abs(lat) <= 90 && math.Abs(lng) <= 180
}

// Float returns a pointer to v. Handy for building candidates in code.
func Float(v float64) *float64 {
	return &v
}

// Collection is a named, user-owned list of items.
type Collection struct {
	ID     string               `json:"id"`
	UserID string               `json:"userId,omitempty"`
	Name   string               `json:"name"`
	Items  []MapMarkerCandidate `json:"items"`
}

// LatLng is a bare coordinate pair, used for location bias.
type LatLng struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// FilterMappable returns the mappable candidates of in, preserving order.
// The result never aliases in.
func FilterMappable(in []MapMarkerCandidate) []MapMarkerCandidate {
	out := make([]MapMarkerCandidate, 0, len(in))
	for i := range in {
		if in[i].Mappable() {
			out = append(out, in[i])
		}
	}
	return out
}
