// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package geo

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestPlanarDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{1, 1}, Point{1, 1}, 0},
		{"3-4-5", Point{0, 0}, Point{3, 4}, 5},
		{"diagonal", Point{0, 0}, Point{0.001, 0.001}, math.Sqrt2 * 0.001},
	}
	for _, tt := range tests {
		if got := PlanarDistance(tt.a, tt.b); math.Abs(got-tt.want) > epsilon {
			t.Errorf("%s: PlanarDistance = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCentroidAndMeanDistance(t *testing.T) {
	t.Parallel()

	pts := []Point{{0, 0}, {2, 0}, {0, 2}, {2, 2}}
	c := Centroid(pts)
	if c.Lat != 1 || c.Lng != 1 {
		t.Errorf("Centroid = %+v, want {1 1}", c)
	}
	if got := Centroid(nil); got != (Point{}) {
		t.Errorf("Centroid(nil) = %+v", got)
	}
	if got := MeanDistance(Point{0, 0}, []Point{{3, 4}, {0, 1}}); math.Abs(got-3) > epsilon {
		t.Errorf("MeanDistance = %v, want 3", got)
	}
	if got := MeanDistance(Point{0, 0}, nil); got != 0 {
		t.Errorf("MeanDistance(nil) = %v", got)
	}
}

func TestGreatCircleKm(t *testing.T) {
	t.Parallel()

	// One degree of latitude is roughly 111.2 km.
	d := GreatCircleKm(Point{0, 0}, Point{1, 0})
	if d < 111 || d > 111.5 {
		t.Errorf("GreatCircleKm(1 degree) = %v", d)
	}
	if !WithinRadiusKm(Point{51.5, -0.12}, Point{51.51, -0.13}, 5) {
		t.Error("nearby London points should be within 5km")
	}
	if WithinRadiusKm(Point{51.5, -0.12}, Point{48.85, 2.35}, 100) {
		t.Error("London and Paris are not within 100km")
	}
}
