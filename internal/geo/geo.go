// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package geo holds the small amount of coordinate math Waypoint needs.
//
// Clustering works in raw degrees (PlanarDistance): at city and metro zoom
// levels the distortion is irrelevant for deciding which markers overlap.
// Radius filters that are shown to users in kilometres use the great-circle
// distance from golang/geo.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// PlanarDistance is the Euclidean distance between a and b in degree space.
func PlanarDistance(a, b Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}

// MeanDistance returns the average planar distance from p to each point in
// pts, or 0 when pts is empty.
func MeanDistance(p Point, pts []Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	var sum float64
	for _, q := range pts {
		sum += PlanarDistance(p, q)
	}
	return sum / float64(len(pts))
}

// Centroid returns the arithmetic mean of pts. The zero Point is returned
// for an empty slice.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var lat, lng float64
	for _, p := range pts {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(pts))
	return Point{Lat: lat / n, Lng: lng / n}
}

// GreatCircleKm returns the great-circle distance between a and b in km.
func GreatCircleKm(a, b Point) float64 {
	pa := s2.LatLngFromDegrees(a.Lat, a.Lng)
	pb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return pa.Distance(pb).Radians() * EarthRadiusKm
}

// WithinRadiusKm reports whether b lies within radiusKm of a.
func WithinRadiusKm(a, b Point, radiusKm float64) bool {
	return GreatCircleKm(a, b) <= radiusKm
}
