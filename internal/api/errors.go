// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import "errors"

var (
	// ErrLibraryDisabled is reported when no library store is configured.
	ErrLibraryDisabled = errors.New("library store is not configured")

	// ErrSnapshotsDisabled is reported when no snapshot store is configured.
	ErrSnapshotsDisabled = errors.New("snapshot store is not configured")
)
