// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package websocket is the transport under live map sessions.

A Client owns one gorilla/websocket connection and runs two pumps: the read
pump decodes JSON envelopes and hands them to the client's Handler, the
write pump serializes outgoing messages and sends keepalive pings. Protocol
pings ({"type":"ping"}) are answered with a pong by the client itself.

The Hub tracks connected clients so they can be counted and closed on
shutdown. It runs as a supervised service:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	client := websocket.NewClient(hub, conn, 64)
	client.SetHandler(session)
	hub.Register <- client
	client.Start()

Outgoing messages never block the caller: when a client's send buffer is
full the message is dropped and counted in waypoint_ws_errors_total.
*/
package websocket
