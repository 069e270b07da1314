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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/models"
)

// CreateCollection creates an empty collection owned by userID.
func (s *Store) CreateCollection(ctx context.Context, userID, name string) (models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Collection{}, errors.New("collection name is required")
	}
	col := models.Collection{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
		Items:  []models.MapMarkerCandidate{},
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		col.ID, userID, name, time.Now().UnixMilli())
	if err != nil {
		return models.Collection{}, fmt.Errorf("create collection: %w", err)
	}
	return col, nil
}

// CollectionOwner returns the user id owning collectionID.
func (s *Store) CollectionOwner(ctx context.Context, collectionID string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM collections WHERE id = ?`, collectionID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load collection %s: %w", collectionID, err)
	}
	return owner, nil
}

// AddToCollection appends itemID to collectionID. Adding an item that is
// already present is a no-op.
func (s *Store) AddToCollection(ctx context.Context, collectionID, itemID string) error {
	return s.transaction(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM collections WHERE id = ?`, collectionID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load collection %s: %w", collectionID, err)
		}
		if err := itemExists(ctx, tx, itemID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO collection_items (collection_id, item_id, added_at) VALUES (?, ?, ?)`,
			collectionID, itemID, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("add %s to collection %s: %w", itemID, collectionID, err)
		}
		return nil
	})
}

// CollectionItems returns one page of a collection's items in insertion
// order.
func (s *Store) CollectionItems(ctx context.Context, collectionID string, offset, limit int) ([]models.MapMarkerCandidate, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.payload
		FROM collection_items ci
		JOIN items i ON i.id = ci.item_id
		WHERE ci.collection_id = ?
		ORDER BY ci.rowid ASC
		LIMIT ? OFFSET ?`,
		collectionID, pageLimit(limit), offset)
	if err != nil {
		return nil, false, fmt.Errorf("query collection items: %w", err)
	}
	return scanItems(rows, limit)
}

// Collections returns every collection of userID, oldest first, each with
// its items in insertion order.
func (s *Store) Collections(ctx context.Context, userID string) ([]models.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, i.payload
		FROM collections c
		LEFT JOIN collection_items ci ON ci.collection_id = c.id
		LEFT JOIN items i ON i.id = ci.item_id
		WHERE c.user_id = ?
		ORDER BY c.created_at ASC, c.rowid ASC, ci.rowid ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Collection
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, name string
			payload  sql.NullString
		)
		if err := rows.Scan(&id, &name, &payload); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		pos, ok := index[id]
		if !ok {
			pos = len(out)
			index[id] = pos
			out = append(out, models.Collection{ID: id, UserID: userID, Name: name, Items: []models.MapMarkerCandidate{}})
		}
		if !payload.Valid {
			continue
		}
		item, err := decodeItem(payload.String)
		if err != nil {
			return nil, err
		}
		out[pos].Items = append(out[pos].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	if out == nil {
		out = []models.Collection{}
	}
	return out, nil
}
