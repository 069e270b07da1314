// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import "github.com/goccy/go-json"

// Message types.
const (
	// Client to server.
	TypeSetSource         = "set_source"
	TypeSetRegion         = "set_region"
	TypeSetLayout         = "set_layout"
	TypeLoadMore          = "load_more"
	TypeMarkerPress       = "marker_press"
	TypeCarouselScrollEnd = "carousel_scroll_end"
	TypePing              = "ping"

	// Server to client.
	TypeState          = "state"
	TypeAnimateMap     = "animate_map"
	TypeScrollCarousel = "scroll_carousel"
	TypePong           = "pong"
	TypeError          = "error"
)

// Message is an outgoing frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Envelope is an incoming frame. Data is decoded by the handler once the
// type is known.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarshalMessage encodes msg as sent on the wire.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
