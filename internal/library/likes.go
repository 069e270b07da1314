// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// Like records that userID likes itemID. Liking twice is a no-op and keeps
// the original position in the list.
func (s *Store) Like(ctx context.Context, userID, itemID string) error {
	return s.transaction(ctx, func(tx *sql.Tx) error {
		if err := itemExists(ctx, tx, itemID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO likes (user_id, item_id, liked_at) VALUES (?, ?, ?)`,
			userID, itemID, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("like %s: %w", itemID, err)
		}
		return nil
	})
}

// Unlike removes a like and reports whether one existed.
func (s *Store) Unlike(ctx context.Context, userID, itemID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("unlike %s: %w", itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LikedItems returns one page of the user's liked items, most recent
// first. Every returned item has Liked set.
func (s *Store) LikedItems(ctx context.Context, userID string, offset, limit int) ([]models.MapMarkerCandidate, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.payload
		FROM likes l
		JOIN items i ON i.id = l.item_id
		WHERE l.user_id = ?
		ORDER BY l.rowid DESC
		LIMIT ? OFFSET ?`,
		userID, pageLimit(limit), offset)
	if err != nil {
		return nil, false, fmt.Errorf("query likes: %w", err)
	}
	items, hasMore, err := scanItems(rows, limit)
	if err != nil {
		return nil, false, err
	}
	for i := range items {
		items[i].Liked = true
	}
	return items, hasMore, nil
}
