// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package clustering

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/tomtom215/waypoint/internal/models"
)

const epsilon = 1e-12

func candidate(id string, lat, lng float64) models.MapMarkerCandidate {
	return models.MapMarkerCandidate{ID: id, Title: id, Latitude: models.Float(lat), Longitude: models.Float(lng)}
}

func region(latDelta float64) models.Region {
	return models.Region{LatitudeDelta: latDelta, LongitudeDelta: latDelta}
}

func TestClusterDistance(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultConfig())
	tests := []struct {
		name        string
		latDelta    float64
		wantEnabled bool
		wantDist    float64
	}{
		{"zero span floors to min zoom", 0, false, 0},
		{"negative span", -1, false, 0},
		{"below threshold", 0.01, false, 0},
		{"at threshold", 0.02, false, 0},
		{"just above threshold", 0.04, true, 0.01},
		{"zoomed out", 0.2, true, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, ok := e.ClusterDistance(tt.latDelta)
			if ok != tt.wantEnabled {
				t.Fatalf("enabled = %v, want %v", ok, tt.wantEnabled)
			}
			if math.Abs(d-tt.wantDist) > epsilon {
				t.Errorf("distance = %v, want %v", d, tt.wantDist)
			}
		})
	}
}

func TestClusterMergesNearbyPoints(t *testing.T) {
	t.Parallel()

	c := []models.MapMarkerCandidate{
		candidate("A", 0, 0),
		candidate("B", 0.001, 0.001),
		candidate("D", 5, 5),
	}
	got := NewEngine(DefaultConfig()).Cluster(c, region(0.05))

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}

	cl := got[0]
	if !cl.IsCluster || cl.Count != 2 || cl.ID != "cluster_0_2" {
		t.Errorf("first item = %+v, want cluster_0_2 with 2 members", cl)
	}
	if cl.Members[0].ID != "A" || cl.Members[1].ID != "B" {
		t.Errorf("members = %s,%s, want A,B", cl.Members[0].ID, cl.Members[1].ID)
	}
	if math.Abs(cl.Latitude-0.0005) > epsilon || math.Abs(cl.Longitude-0.0005) > epsilon {
		t.Errorf("centroid = (%v, %v), want (0.0005, 0.0005)", cl.Latitude, cl.Longitude)
	}
	if cl.OriginalIndex != nil {
		t.Error("cluster must not carry an original index")
	}

	d := got[1]
	if d.IsCluster || d.ID != "D" || d.Count != 1 {
		t.Errorf("second item = %+v, want singleton D", d)
	}
	if idx, ok := d.Index(); !ok || idx != 2 {
		t.Errorf("D original index = %d, %v, want 2", idx, ok)
	}
}

func TestClusterDisabledWhenZoomedIn(t *testing.T) {
	t.Parallel()

	c := []models.MapMarkerCandidate{
		candidate("A", 0, 0),
		candidate("B", 0.001, 0.001),
		candidate("D", 5, 5),
	}
	got := NewEngine(DefaultConfig()).Cluster(c, region(0.01))

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, item := range got {
		if item.IsCluster || item.Count != 1 {
			t.Errorf("item %d = %+v, want singleton", i, item)
		}
		if idx, ok := item.Index(); !ok || idx != i {
			t.Errorf("item %d original index = %d, %v", i, idx, ok)
		}
		if item.ID != c[i].ID {
			t.Errorf("item %d id = %s, want %s", i, item.ID, c[i].ID)
		}
	}
}

func TestClusterCohesionRejectsChains(t *testing.T) {
	t.Parallel()

	// Radius 0.0125, cohesion limit 0.00875. B joins A at 0.006; C is also
	// 0.006 from A but averages 0.009 to {A, B}.
	c := []models.MapMarkerCandidate{
		candidate("A", 0, 0),
		candidate("B", 0.006, 0),
		candidate("C", -0.006, 0),
	}
	got := NewEngine(DefaultConfig()).Cluster(c, region(0.05))

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].ID != "cluster_0_2" || got[0].Members[1].ID != "B" {
		t.Errorf("cluster = %+v, want A+B", got[0])
	}
	if got[1].ID != "C" {
		t.Errorf("second = %s, want C", got[1].ID)
	}
	if idx, _ := got[1].Index(); idx != 2 {
		t.Errorf("C index = %d, want 2", idx)
	}
}

func TestClusterIDsUseOutputPosition(t *testing.T) {
	t.Parallel()

	c := []models.MapMarkerCandidate{
		candidate("solo", 10, 10),
		candidate("A", 0, 0),
		candidate("B", 0.001, 0),
		candidate("X", 20, 20),
		candidate("Y", 20.001, 20),
		candidate("Z", 20, 20.001),
	}
	got := NewEngine(DefaultConfig()).Cluster(c, region(0.05))

	want := []string{"solo", "cluster_1_2", "cluster_2_3"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item %d id = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestClusterFiltersUnmappable(t *testing.T) {
	t.Parallel()

	c := []models.MapMarkerCandidate{
		{ID: "no-coords", Title: "x"},
		candidate("A", 1, 1),
		candidate("bad-lat", 100, 0),
		{ID: "nan", Latitude: models.Float(math.NaN()), Longitude: models.Float(0)},
		candidate("B", 40, 40),
	}
	got := NewEngine(DefaultConfig()).Cluster(c, region(0.01))

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "A" || got[1].ID != "B" {
		t.Errorf("ids = %s,%s, want A,B", got[0].ID, got[1].ID)
	}
	if idx, _ := got[1].Index(); idx != 1 {
		t.Errorf("B index = %d, want 1 (position in mappable list)", idx)
	}
}

func TestClusterDegenerateInputs(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultConfig())

	if got := e.Cluster(nil, region(1)); got == nil || len(got) != 0 {
		t.Errorf("nil input = %#v, want empty non-nil", got)
	}

	one := e.Cluster([]models.MapMarkerCandidate{candidate("A", 1, 1)}, region(10))
	if len(one) != 1 || one[0].IsCluster {
		t.Errorf("single candidate = %+v", one)
	}

	zero := e.Cluster([]models.MapMarkerCandidate{candidate("A", 1, 1), candidate("B", 1, 1)}, models.Region{})
	if len(zero) != 2 {
		t.Errorf("zero span region produced %d items, want 2", len(zero))
	}
}

func TestClusterCoincidentPointsMerge(t *testing.T) {
	t.Parallel()

	c := []models.MapMarkerCandidate{candidate("A", 3, 3), candidate("B", 3, 3)}
	got := NewEngine(DefaultConfig()).Cluster(c, region(0.05))
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("coincident points = %+v, want one cluster", got)
	}
}

func randomCandidates(r *rand.Rand, n int) []models.MapMarkerCandidate {
	out := make([]models.MapMarkerCandidate, n)
	for i := range out {
		out[i] = candidate(fmt.Sprintf("c%d", i), 51.5+r.Float64()*0.2, -0.1+r.Float64()*0.2)
	}
	// Sprinkle unmappable entries.
	out = append(out, models.MapMarkerCandidate{ID: "nil-coords"})
	out = append(out, candidate("off-globe", 91, 0))
	return out
}

func TestClusterProperties(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(42))
	e := NewEngine(DefaultConfig())

	for trial := 0; trial < 25; trial++ {
		c := randomCandidates(r, 20+r.Intn(120))
		reg := region(r.Float64() * 0.5)
		mappable := models.FilterMappable(c)

		got := e.Cluster(c, reg)

		// Partition: every mappable candidate exactly once.
		seen := make(map[int]int)
		total := 0
		for _, item := range got {
			if item.Count != len(item.Members) {
				t.Fatalf("count %d != members %d", item.Count, len(item.Members))
			}
			if item.IsCluster && item.Count < 2 {
				t.Fatalf("cluster %s has %d members", item.ID, item.Count)
			}
			if !item.IsCluster && item.Count != 1 {
				t.Fatalf("singleton %s has %d members", item.ID, item.Count)
			}
			total += item.Count

			var sumLat, sumLng float64
			for _, m := range item.Members {
				lat, lng := m.Coordinates()
				sumLat += lat
				sumLng += lng
				for i := range mappable {
					if reflect.DeepEqual(mappable[i], m) {
						seen[i]++
					}
				}
			}
			n := float64(item.Count)
			if math.Abs(item.Latitude-sumLat/n) > 1e-9 || math.Abs(item.Longitude-sumLng/n) > 1e-9 {
				t.Fatalf("centroid of %s is not the member mean", item.ID)
			}
		}
		if total != len(mappable) {
			t.Fatalf("trial %d: members total %d, want %d", trial, total, len(mappable))
		}
		for i := range mappable {
			if seen[i] < 1 {
				t.Fatalf("trial %d: candidate %d missing from output", trial, i)
			}
		}

		// Idempotence.
		if again := e.Cluster(c, reg); !reflect.DeepEqual(got, again) {
			t.Fatalf("trial %d: second run differs", trial)
		}
	}
}

func TestClusterMonotonicDeclustering(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	c := randomCandidates(r, 60)
	mappable := models.FilterMappable(c)
	e := NewEngine(DefaultConfig())

	for _, delta := range []float64{0.02, 0.015, 0.01, 0.001, 0.0001, 0} {
		got := e.Cluster(c, region(delta))
		if len(got) != len(mappable) {
			t.Errorf("delta %v: %d items, want %d", delta, len(got), len(mappable))
		}
		for _, item := range got {
			if item.IsCluster {
				t.Errorf("delta %v: unexpected cluster %s", delta, item.ID)
			}
		}
	}
}

func TestClusterMatchesLinearScan(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(99))
	c := randomCandidates(r, 150)
	e := NewEngine(DefaultConfig())
	reg := region(0.3)

	if got, want := e.Cluster(c, reg), bruteForceCluster(e, c, reg); !reflect.DeepEqual(got, want) {
		t.Errorf("grid result differs from linear scan")
	}
}

// bruteForceCluster is the direct O(n^2) rendition of the greedy pass.
func bruteForceCluster(e *Engine, candidates []models.MapMarkerCandidate, reg models.Region) []models.ClusterItem {
	mappable := models.FilterMappable(candidates)
	dist, enabled := e.ClusterDistance(reg.LatitudeDelta)
	out := []models.ClusterItem{}
	if !enabled {
		for i := range mappable {
			out = append(out, singleton(mappable, i))
		}
		return out
	}
	consumed := make([]bool, len(mappable))
	pt := func(i int) (float64, float64) { return mappable[i].Coordinates() }
	d := func(i, j int) float64 {
		a1, b1 := pt(i)
		a2, b2 := pt(j)
		return math.Hypot(a1-a2, b1-b2)
	}
	for s := range mappable {
		if consumed[s] {
			continue
		}
		type nb struct {
			i int
			d float64
		}
		var nbs []nb
		for j := range mappable {
			if j != s && !consumed[j] && d(s, j) < dist {
				nbs = append(nbs, nb{j, d(s, j)})
			}
		}
		for a := 1; a < len(nbs); a++ {
			for b := a; b > 0 && (nbs[b].d < nbs[b-1].d || (nbs[b].d == nbs[b-1].d && nbs[b].i < nbs[b-1].i)); b-- {
				nbs[b], nbs[b-1] = nbs[b-1], nbs[b]
			}
		}
		members := []int{s}
		for _, n := range nbs {
			var sum float64
			for _, m := range members {
				sum += d(n.i, m)
			}
			if sum/float64(len(members)) < e.Config().Cohesion*dist {
				members = append(members, n.i)
			}
		}
		if len(members) < 2 {
			consumed[s] = true
			out = append(out, singleton(mappable, s))
			continue
		}
		var lat, lng float64
		item := models.ClusterItem{IsCluster: true, Count: len(members)}
		for _, m := range members {
			consumed[m] = true
			a, b := pt(m)
			lat += a
			lng += b
			item.Members = append(item.Members, mappable[m])
		}
		item.Latitude = lat / float64(len(members))
		item.Longitude = lng / float64(len(members))
		item.ID = fmt.Sprintf("cluster_%d_%d", len(out), len(members))
		out = append(out, item)
	}
	return out
}
