// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

//go:build !nats

package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/waypoint/internal/config"
)

// ErrNATSUnavailable is returned when the binary was built without NATS.
var ErrNATSUnavailable = errors.New("NATS transport not available: build with -tags=nats")

// NewNATSTransport always fails in builds without the nats tag.
func NewNATSTransport(_ *config.EventsConfig, _ watermill.LoggerAdapter) (Transport, error) {
	return Transport{}, ErrNATSUnavailable
}
