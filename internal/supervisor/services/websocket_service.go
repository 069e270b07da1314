// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
)

// ContextHub is satisfied by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// SessionCloser is satisfied by *mapsession.Manager.
type SessionCloser interface {
	CloseAll()
}

// WebSocketHubService runs the hub. When the hub stops, the map sessions
// bound to its clients are closed too.
type WebSocketHubService struct {
	hub      ContextHub
	sessions SessionCloser
}

// NewWebSocketHubService wraps hub. sessions may be nil.
func NewWebSocketHubService(hub ContextHub, sessions SessionCloser) *WebSocketHubService {
	return &WebSocketHubService{hub: hub, sessions: sessions}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	err := w.hub.RunWithContext(ctx)
	if w.sessions != nil && ctx.Err() != nil {
		w.sessions.CloseAll()
	}
	return err
}

func (w *WebSocketHubService) String() string {
	return "websocket-hub"
}
