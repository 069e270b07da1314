// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

type customStrategy struct {
	snapshots SnapshotReader
}

func (s *customStrategy) Kind() Kind { return KindCustom }

func (s *customStrategy) Enabled(req Request) error {
	r, ok := req.(CustomRequest)
	if !ok {
		return wrongRequest(KindCustom, req)
	}
	if r.Data == "" && r.SnapshotID != "" && s.snapshots == nil {
		return unavailable("snapshot store not configured")
	}
	return nil
}

// FetchPage parses the snapshot. A malformed or missing snapshot yields an
// empty page rather than an error.
func (s *customStrategy) FetchPage(ctx context.Context, req Request, _ int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(CustomRequest)

	data := r.Data
	if data == "" && r.SnapshotID != "" {
		raw, err := s.snapshots.Get(ctx, r.SnapshotID)
		if err != nil {
			if isNotFound(err) {
				logging.Debug().Str("snapshot_id", r.SnapshotID).Msg("Custom snapshot not found, showing empty list")
				return Page{Items: []models.MapMarkerCandidate{}}, nil
			}
			return Page{}, backendError("load snapshot", err)
		}
		data = string(raw)
	}
	if data == "" {
		return Page{Items: []models.MapMarkerCandidate{}}, nil
	}

	items, err := ParseSnapshot(data)
	if err != nil {
		logging.Debug().Err(err).Msg("Custom snapshot rejected, showing empty list")
		return Page{Items: []models.MapMarkerCandidate{}}, nil
	}
	logUnmappable(items)
	return Page{Items: items}, nil
}

// CheckCoordinates returns an error wrapping ErrInvalidCoordinate when c
// cannot be placed on the map. Such candidates stay in list payloads.
func CheckCoordinates(c *models.MapMarkerCandidate) error {
	if c.Latitude == nil || c.Longitude == nil {
		return fmt.Errorf("%w: candidate %q has no coordinates", ErrInvalidCoordinate, c.ID)
	}
	if !c.Mappable() {
		return fmt.Errorf("%w: candidate %q at (%v, %v)", ErrInvalidCoordinate, c.ID, *c.Latitude, *c.Longitude)
	}
	return nil
}

// logUnmappable reports snapshot items that will be left off the map.
func logUnmappable(items []models.MapMarkerCandidate) {
	var first error
	dropped := 0
	for i := range items {
		if err := CheckCoordinates(&items[i]); err != nil {
			if first == nil {
				first = err
			}
			dropped++
		}
	}
	if dropped > 0 {
		logging.Debug().Err(first).Int("dropped", dropped).Int("total", len(items)).Msg("Custom snapshot items left off the map")
	}
}

// isNotFound reports whether err says the id is unknown. Stores signal
// that with a NotFound() bool method on the error.
func isNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}

// ParseSnapshot decodes a JSON array of candidate-shaped objects.
//
// Parsing is lenient per element: non-object elements are skipped, a
// missing id becomes "custom-<index>", and coordinates count only when they
// are JSON numbers. Anything that is not a JSON array returns an error
// wrapping ErrMalformedPayload.
func ParseSnapshot(data string) ([]models.MapMarkerCandidate, error) {
	if !gjson.Valid(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedPayload)
	}
	root := gjson.Parse(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array, got %s", ErrMalformedPayload, root.Type)
	}

	items := make([]models.MapMarkerCandidate, 0)
	index := 0
	root.ForEach(func(_, v gjson.Result) bool {
		defer func() { index++ }()
		if !v.IsObject() {
			return true
		}
		items = append(items, candidateFromJSON(v, index))
		return true
	})
	return items, nil
}

func candidateFromJSON(v gjson.Result, index int) models.MapMarkerCandidate {
	c := models.MapMarkerCandidate{
		ID:         stringField(v.Get("id")),
		Title:      stringField(v.Get("title")),
		Address:    stringField(v.Get("address")),
		ImageURL:   stringField(v.Get("imageUrl")),
		PriceLevel: stringField(v.Get("priceLevel")),
		Latitude:   numberField(v.Get("latitude")),
		Longitude:  numberField(v.Get("longitude")),
		Rating:     numberField(v.Get("rating")),
		Liked:      v.Get("liked").Type == gjson.True,
	}
	if c.ID == "" {
		c.ID = "custom-" + strconv.Itoa(index)
	}
	if od := v.Get("originalData"); od.Exists() && od.Type != gjson.Null {
		c.OriginalData = json.RawMessage(od.Raw)
	}
	return c
}

func stringField(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	default:
		return ""
	}
}

func numberField(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	return models.Float(r.Num)
}
