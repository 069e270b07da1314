// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package clustering

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// Memo remembers the last clustering result and returns it while the inputs
// are unchanged. Inputs are compared by fingerprint, so a caller may rebuild
// an equal candidate slice without forcing a recomputation.
//
// The returned slice is shared between calls and must be treated as
// read-only.
type Memo struct {
	engine *Engine

	mu     sync.Mutex
	key    uint64
	valid  bool
	result []models.ClusterItem
}

// NewMemo wraps engine.
func NewMemo(engine *Engine) *Memo {
	return &Memo{engine: engine}
}

// Engine returns the wrapped engine.
func (m *Memo) Engine() *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine
}

// SetEngine swaps the engine, for example after the clustering constants
// were reloaded. The next call recomputes because the constants are part
// of the fingerprint.
func (m *Memo) SetEngine(engine *Engine) {
	if engine == nil {
		return
	}
	m.mu.Lock()
	m.engine = engine
	m.mu.Unlock()
}

// Cluster returns the cluster items for candidates and region, and whether
// they came from the memo.
func (m *Memo) Cluster(candidates []models.MapMarkerCandidate, region models.Region) ([]models.ClusterItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Fingerprint(candidates, region, m.engine.Config())

	if m.valid && m.key == key {
		metrics.ClusteringMemoHits.Inc()
		return m.result, true
	}

	start := time.Now()
	result := m.engine.Cluster(candidates, region)
	metrics.RecordClustering(time.Since(start), len(result))

	m.key = key
	m.result = result
	m.valid = true
	return result, false
}

// Reset drops the memoized result.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.valid = false
	m.result = nil
	m.mu.Unlock()
}

// Fingerprint hashes everything that can change the clustering output:
// the full candidate payloads (members are returned verbatim), the region
// and the engine constants.
func Fingerprint(candidates []models.MapMarkerCandidate, region models.Region, cfg Config) uint64 {
	h := fnv.New64a()

	var buf [8]byte
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}

	writeFloat(region.Latitude)
	writeFloat(region.Longitude)
	writeFloat(region.LatitudeDelta)
	writeFloat(region.LongitudeDelta)
	writeFloat(cfg.BaseDistance)
	writeFloat(cfg.DisableThreshold)
	writeFloat(cfg.Cohesion)
	writeFloat(cfg.MinZoomFactor)

	binary.LittleEndian.PutUint64(buf[:], uint64(len(candidates)))
	_, _ = h.Write(buf[:])

	for i := range candidates {
		data, err := json.Marshal(&candidates[i])
		if err != nil {
			// Unmarshalable passthrough data; fall back to identity fields.
			_, _ = h.Write([]byte(candidates[i].ID))
			lat, lng := candidates[i].Coordinates()
			writeFloat(lat)
			writeFloat(lng)
			continue
		}
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
