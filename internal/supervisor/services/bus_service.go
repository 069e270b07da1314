// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is satisfied by *events.Bus.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventBusService runs the invalidation router.
//
// A watermill router cannot be started twice, so a router that stops on
// its own is reported with suture.ErrTerminateSupervisorTree and the
// process exits rather than running without invalidations.
type EventBusService struct {
	bus EventRouter
}

// NewEventBusService wraps bus.
func NewEventBusService(bus EventRouter) *EventBusService {
	return &EventBusService{bus: bus}
}

// Serve implements suture.Service.
func (e *EventBusService) Serve(ctx context.Context) error {
	err := e.bus.Run(ctx)
	if ctx.Err() != nil {
		if cerr := e.bus.Close(); cerr != nil {
			return fmt.Errorf("close event bus: %w", cerr)
		}
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%w: event router stopped: %v", suture.ErrTerminateSupervisorTree, err)
	}
	return fmt.Errorf("%w: event router stopped", suture.ErrTerminateSupervisorTree)
}

func (e *EventBusService) String() string {
	return "event-bus"
}
