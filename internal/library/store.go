// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package library stores the user library behind the likes, collections
// and collection sources: items, likes, collections and their contents.
//
// The store is a single sqlite file opened through the pure-Go
// modernc.org/sqlite driver.
package library

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/tomtom215/waypoint/internal/logging"
)

type notFoundError struct{}

func (notFoundError) Error() string  { return "not found" }
func (notFoundError) NotFound() bool { return true }

// ErrNotFound is returned when an item or collection does not exist. It
// exposes NotFound() so readers can detect it without importing this
// package.
var ErrNotFound error = notFoundError{}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id        TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	latitude  REAL,
	longitude REAL,
	payload   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS likes (
	user_id  TEXT NOT NULL,
	item_id  TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	liked_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS collections (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_collections_user ON collections(user_id);

CREATE TABLE IF NOT EXISTS collection_items (
	collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	item_id       TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	added_at      INTEGER NOT NULL,
	PRIMARY KEY (collection_id, item_id)
);
`

// Store is the sqlite-backed library.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}

	// sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("library %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply library schema: %w", err)
	}

	logging.Info().Str("path", path).Msg("Library store opened")
	return &Store{db: db}, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// transaction runs fn in a transaction, rolling back on error.
func (s *Store) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
