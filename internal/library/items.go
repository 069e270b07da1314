// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/models"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// UpsertItem stores c, replacing any item with the same id. The full
// candidate is kept as JSON; coordinates are also stored as columns.
func (s *Store) UpsertItem(ctx context.Context, c *models.MapMarkerCandidate) error {
	if c.ID == "" {
		return errors.New("item id is required")
	}
	stored := *c
	stored.Liked = false
	stored.CollectionID = ""
	stored.CollectionName = ""

	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", c.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, title, latitude, longitude, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			payload = excluded.payload`,
		c.ID, c.Title, nullFloat(c.Latitude), nullFloat(c.Longitude), string(payload))
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", c.ID, err)
	}
	return nil
}

// Item returns one item.
func (s *Store) Item(ctx context.Context, id string) (models.MapMarkerCandidate, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM items WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MapMarkerCandidate{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.MapMarkerCandidate{}, fmt.Errorf("load item %s: %w", id, err)
	}
	return decodeItem(payload)
}

func itemExists(ctx context.Context, q queryer, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return err
}

// scanItems reads payload rows, fetching one past limit to report hasMore.
func scanItems(rows *sql.Rows, limit int) ([]models.MapMarkerCandidate, bool, error) {
	defer func() { _ = rows.Close() }()

	items := make([]models.MapMarkerCandidate, 0, max(limit, 0))
	hasMore := false
	for rows.Next() {
		if limit > 0 && len(items) == limit {
			hasMore = true
			break
		}
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, false, fmt.Errorf("scan item: %w", err)
		}
		item, err := decodeItem(payload)
		if err != nil {
			return nil, false, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate items: %w", err)
	}
	return items, hasMore, nil
}

func decodeItem(payload string) (models.MapMarkerCandidate, error) {
	var item models.MapMarkerCandidate
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return item, fmt.Errorf("decode stored item: %w", err)
	}
	return item, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// pageLimit returns the SQL LIMIT for a page request, one past limit so
// scanItems can detect more rows. Non-positive limits read everything.
func pageLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit + 1
}
