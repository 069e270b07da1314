// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

// Region is a map viewport. The deltas are the visible span in degrees;
// LatitudeDelta doubles as the zoom level proxy.
type Region struct {
	Latitude       float64 `json:"latitude" validate:"latitude"`
	Longitude      float64 `json:"longitude" validate:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta" validate:"gte=0,lte=180"`
	LongitudeDelta float64 `json:"longitudeDelta" validate:"gte=0,lte=360"`
}

// Center returns a copy of r moved to lat/lng with the same spans.
func (r Region) Center(lat, lng float64) Region {
	r.Latitude = lat
	r.Longitude = lng
	return r
}

// ZoomedIn returns a region centred on lat/lng with half the spans of r.
func (r Region) ZoomedIn(lat, lng float64) Region {
	return Region{
		Latitude:       lat,
		Longitude:      lng,
		LatitudeDelta:  r.LatitudeDelta / 2,
		LongitudeDelta: r.LongitudeDelta / 2,
	}
}

// ClusterItem is one marker on the map: either a cluster of two or more
// candidates or a single candidate.
//
// OriginalIndex is set only for singletons and is the position of the
// candidate in the mappable candidate list. The card carousel is addressed
// by that index.
type ClusterItem struct {
	ID            string               `json:"id"`
	Latitude      float64              `json:"latitude"`
	Longitude     float64              `json:"longitude"`
	Count         int                  `json:"count"`
	Members       []MapMarkerCandidate `json:"members"`
	IsCluster     bool                 `json:"isCluster"`
	OriginalIndex *int                 `json:"originalIndex,omitempty"`
}

// Index returns OriginalIndex and whether it is set.
func (c *ClusterItem) Index() (int, bool) {
	if c.OriginalIndex == nil {
		return 0, false
	}
	return *c.OriginalIndex, true
}
