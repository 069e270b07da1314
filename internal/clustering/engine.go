// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package clustering groups mappable candidates into map markers.
//
// The engine is a pure function of (candidates, region). The cluster radius
// grows linearly with the latitude delta of the viewport, and at or below
// the disable threshold every candidate gets its own marker. Grouping is a
// greedy single pass in candidate order:
//
//   - unconsumed candidates closer than the radius to the seed are visited
//     nearest first
//   - a visitor joins only if its mean distance to the current members is
//     under Cohesion times the radius, which stops chains of marginally
//     linked points collapsing into one marker
//   - groups of two or more become clusters, otherwise the seed becomes a
//     singleton carrying its index in the mappable list
//
// Distances are planar in raw degrees. Engine values are immutable and safe
// for concurrent use; see Memo for the memoized wrapper.
package clustering

import (
	"fmt"
	"math"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/models"
)

// Engine clusters candidates for a viewport.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine using cfg, with zero fields defaulted.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective constants.
func (e *Engine) Config() Config {
	return e.cfg
}

// ZoomFactor returns the latitude delta floored at MinZoomFactor.
func (e *Engine) ZoomFactor(latitudeDelta float64) float64 {
	if math.IsNaN(latitudeDelta) {
		return e.cfg.MinZoomFactor
	}
	return math.Max(e.cfg.MinZoomFactor, latitudeDelta)
}

// ClusterDistance returns the cluster radius for latitudeDelta and whether
// clustering is enabled at that zoom.
func (e *Engine) ClusterDistance(latitudeDelta float64) (float64, bool) {
	zoom := e.ZoomFactor(latitudeDelta)
	if zoom <= e.cfg.DisableThreshold {
		return 0, false
	}
	return e.cfg.BaseDistance * (zoom / e.cfg.DisableThreshold), true
}

// Cluster partitions the mappable subset of candidates into cluster items.
// Unmappable candidates are dropped. The result is never nil.
func (e *Engine) Cluster(candidates []models.MapMarkerCandidate, region models.Region) []models.ClusterItem {
	mappable := models.FilterMappable(candidates)
	if len(mappable) == 0 {
		return []models.ClusterItem{}
	}

	distance, enabled := e.ClusterDistance(region.LatitudeDelta)
	if !enabled {
		out := make([]models.ClusterItem, len(mappable))
		for i := range mappable {
			out[i] = singleton(mappable, i)
		}
		return out
	}

	points := make([]geo.Point, len(mappable))
	for i := range mappable {
		lat, lng := mappable[i].Coordinates()
		points[i] = geo.Point{Lat: lat, Lng: lng}
	}

	g := newGrid(distance, points)
	consumed := make([]bool, len(mappable))
	cohesionLimit := e.cfg.Cohesion * distance
	out := make([]models.ClusterItem, 0, len(mappable))

	for seed := range mappable {
		if consumed[seed] {
			continue
		}

		members := []int{seed}
		memberPts := []geo.Point{points[seed]}
		centroid := points[seed]

		for _, nb := range g.within(seed, distance, consumed) {
			if geo.MeanDistance(points[nb.index], memberPts) >= cohesionLimit {
				continue
			}
			members = append(members, nb.index)
			memberPts = append(memberPts, points[nb.index])
			centroid = geo.Centroid(memberPts)
		}

		if len(members) < 2 {
			consumed[seed] = true
			out = append(out, singleton(mappable, seed))
			continue
		}

		item := models.ClusterItem{
			ID:        fmt.Sprintf("cluster_%d_%d", len(out), len(members)),
			Latitude:  centroid.Lat,
			Longitude: centroid.Lng,
			Count:     len(members),
			Members:   make([]models.MapMarkerCandidate, 0, len(members)),
			IsCluster: true,
		}
		for _, m := range members {
			consumed[m] = true
			item.Members = append(item.Members, mappable[m])
		}
		out = append(out, item)
	}
	return out
}

func singleton(mappable []models.MapMarkerCandidate, i int) models.ClusterItem {
	lat, lng := mappable[i].Coordinates()
	idx := i
	return models.ClusterItem{
		ID:            mappable[i].ID,
		Latitude:      lat,
		Longitude:     lng,
		Count:         1,
		Members:       []models.MapMarkerCandidate{mappable[i]},
		IsCluster:     false,
		OriginalIndex: &idx,
	}
}
