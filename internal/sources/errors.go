// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import "errors"

var (
	// ErrSourceUnavailable means required context (authorization, a user,
	// a location) is missing. The query stays disabled and reports no error.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNetworkOrServer wraps backend failures; it surfaces as isError.
	ErrNetworkOrServer = errors.New("network or server error")

	// ErrMalformedPayload marks an unparseable custom snapshot. It never
	// leaves this package: the source degrades to an empty list.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrInvalidCoordinate marks a candidate dropped from the mappable set.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInactive is returned by Load on a query that is not the active one.
	ErrInactive = errors.New("query is not active")

	// ErrStale is returned by Load when the result arrived after the query
	// was reset or deactivated; the result is discarded.
	ErrStale = errors.New("stale response discarded")

	// ErrUnknownSource is returned for an unrecognised discriminator.
	ErrUnknownSource = errors.New("unknown source")
)
