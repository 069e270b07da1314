// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package snapshot stores caller-supplied candidate snapshots for the
// custom source, so a client can upload a list once and refer to it by id.
//
// Two backends exist: an embedded BadgerDB (default) and S3-compatible
// object storage through minio-go.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/tomtom215/waypoint/internal/config"
)

// notFoundError exposes NotFound so callers can detect a missing snapshot
// without importing this package.
type notFoundError struct{}

func (notFoundError) Error() string  { return "snapshot not found" }
func (notFoundError) NotFound() bool { return true }

var (
	// ErrNotFound is returned by Get and Delete for unknown ids.
	ErrNotFound error = notFoundError{}

	// ErrTooLarge is returned by Put when the payload exceeds the limit.
	ErrTooLarge = errors.New("snapshot too large")

	// ErrInvalidID is returned for ids outside [A-Za-z0-9_-]{1,128}.
	ErrInvalidID = errors.New("invalid snapshot id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Store persists snapshots by id.
type Store interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// ValidID reports whether id can be used as a snapshot id.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Open builds the backend selected by cfg, wrapped with its size limit.
func Open(ctx context.Context, cfg *config.SnapshotConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "badger", "":
		s, err = OpenBadger(cfg.BadgerDir, cfg.InMemory)
	case "s3":
		s, err = OpenS3(ctx, &cfg.S3)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return WithLimit(s, cfg.MaxBytes), nil
}

// limited rejects oversized payloads and bad ids before they reach the
// backend.
type limited struct {
	Store
	maxBytes int64
}

// WithLimit wraps s so Put rejects payloads over maxBytes. A non-positive
// limit disables the size check; ids are validated either way.
func WithLimit(s Store, maxBytes int64) Store {
	return &limited{Store: s, maxBytes: maxBytes}
}

func (l *limited) Put(ctx context.Context, id string, data []byte) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), l.maxBytes)
	}
	return l.Store.Put(ctx, id, data)
}

func (l *limited) Get(ctx context.Context, id string) ([]byte, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return l.Store.Get(ctx, id)
}

// Unwrap returns the backend.
func (l *limited) Unwrap() Store {
	return l.Store
}

// GarbageCollector is implemented by backends that need periodic cleanup.
type GarbageCollector interface {
	RunGC() error
}

// GC runs backend garbage collection when s supports it.
func GC(s Store) error {
	for {
		if gc, ok := s.(GarbageCollector); ok {
			return gc.RunGC()
		}
		u, ok := s.(interface{ Unwrap() Store })
		if !ok {
			return nil
		}
		s = u.Unwrap()
	}
}
