// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package mapsession

import (
	"github.com/tomtom215/waypoint/internal/models"
)

// StateData is the payload of a state message.
type StateData struct {
	Source        string                      `json:"source"`
	Data          []models.MapMarkerCandidate `json:"data"`
	IsLoading     bool                        `json:"isLoading"`
	IsError       bool                        `json:"isError"`
	Disabled      bool                        `json:"disabled"`
	HasMore       bool                        `json:"hasMore"`
	ClusteredData []models.ClusterItem        `json:"clusteredData"`
	SelectedIndex int                         `json:"selectedIndex"`
	Region        models.Region               `json:"region"`
}

// AnimateMapData is the payload of an animate_map message.
type AnimateMapData struct {
	Seq        uint64        `json:"seq"`
	Region     models.Region `json:"region"`
	DurationMS int64         `json:"durationMs"`
}

// ScrollCarouselData is the payload of a scroll_carousel message.
type ScrollCarouselData struct {
	Offset float64 `json:"offset"`
	Index  int     `json:"index"`
}

// LayoutData is the payload of set_layout.
type LayoutData struct {
	CardWidth float64 `json:"cardWidth" validate:"gt=0,lte=10000"`
	Spacing   float64 `json:"spacing" validate:"gte=0,lte=10000"`
}

// MarkerPressData is the payload of marker_press. Exactly one field is set.
type MarkerPressData struct {
	ClusterID string `json:"clusterId,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

// ScrollEndData is the payload of carousel_scroll_end.
type ScrollEndData struct {
	Offset float64 `json:"offset" validate:"gte=0"`
}
