// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package selection keeps the map and the card carousel pointing at the
// same candidate.
//
// The Controller owns one index into the flat list of mappable candidates.
// Marker presses and carousel scrolls both write it; every change animates
// the map to the candidate and scrolls the carousel to the matching card.
// The controller is not safe for concurrent use: a map session drives it
// from its event loop.
package selection

import (
	"math"

	"github.com/tomtom215/waypoint/internal/models"
)

// NoSelection is the index before anything is selected.
const NoSelection = -1

// MapView receives map animations.
type MapView interface {
	AnimateTo(anim Animation)
}

// Carousel receives scroll commands for the card list.
type Carousel interface {
	ScrollTo(offset float64, index int)
}

// Layout is the carousel geometry.
type Layout struct {
	CardWidth float64 `json:"cardWidth" validate:"gt=0"`
	Spacing   float64 `json:"spacing" validate:"gte=0"`
}

// SnapInterval is the distance between two card origins.
func (l Layout) SnapInterval() float64 {
	return l.CardWidth + l.Spacing
}

// OffsetFor returns the carousel offset of the card at index.
func (l Layout) OffsetFor(index int) float64 {
	return float64(index) * l.SnapInterval()
}

// IndexFor returns the card nearest to offset, clamped to [0, n-1]. It
// returns NoSelection when n is zero.
func (l Layout) IndexFor(offset float64, n int) int {
	if n <= 0 {
		return NoSelection
	}
	snap := l.SnapInterval()
	if snap <= 0 || math.IsNaN(offset) {
		return 0
	}
	idx := math.Round(offset / snap)
	if idx < 0 {
		return 0
	}
	if idx > float64(n-1) {
		return n - 1
	}
	return int(idx)
}

// Controller synchronizes the map and the carousel through one index.
type Controller struct {
	view     MapView
	carousel Carousel
	animator *Animator
	layout   Layout

	candidates []models.MapMarkerCandidate
	region     models.Region
	selected   int
}

// NewController returns a controller with nothing selected.
func NewController(view MapView, carousel Carousel, animator *Animator, layout Layout) *Controller {
	if animator == nil {
		animator = NewAnimator(0, 0, 0)
	}
	return &Controller{
		view:     view,
		carousel: carousel,
		animator: animator,
		layout:   layout,
		selected: NoSelection,
	}
}

// Selected returns the selected index, or NoSelection.
func (c *Controller) Selected() int {
	return c.selected
}

// Region returns the last region the controller knows about.
func (c *Controller) Region() models.Region {
	return c.region
}

// Layout returns the carousel geometry.
func (c *Controller) Layout() Layout {
	return c.layout
}

// SetLayout changes the carousel geometry and realigns the carousel.
func (c *Controller) SetLayout(l Layout) {
	c.layout = l
	if c.selected != NoSelection {
		c.scrollCarousel(c.selected)
	}
}

// SetRegion records the viewport after the user moved the map.
func (c *Controller) SetRegion(r models.Region) {
	c.region = r
}

// ClearSelection drops the selection without moving the map.
func (c *Controller) ClearSelection() {
	c.selected = NoSelection
}

// SetCandidates replaces the mappable candidate list. The selection follows
// its candidate by id: when the candidate moved, the map and the carousel
// are pointed at its new position; when it is gone the selection is
// cleared. When the list is non-empty and nothing is selected the map
// recentres on the first candidate.
func (c *Controller) SetCandidates(candidates []models.MapMarkerCandidate) {
	selectedID, hadSelection := c.selectedID()
	c.candidates = candidates
	if hadSelection {
		switch idx := indexOf(candidates, selectedID); {
		case idx == NoSelection:
			c.selected = NoSelection
		case idx != c.selected:
			c.Select(idx)
		}
	}
	if len(candidates) > 0 && c.selected == NoSelection {
		lat, lng := candidates[0].Coordinates()
		c.animate(c.region.Center(lat, lng))
	}
}

// Select points the controller at index, animating the map and scrolling
// the carousel. Out of range indexes are ignored.
func (c *Controller) Select(index int) bool {
	if index < 0 || index >= len(c.candidates) {
		return false
	}
	c.selected = index
	lat, lng := c.candidates[index].Coordinates()
	c.animate(c.region.Center(lat, lng))
	c.scrollCarousel(index)
	return true
}

// OnMarkerPress handles a press on a marker. A cluster zooms the map to its
// centroid at half the current spans; a singleton selects its candidate.
func (c *Controller) OnMarkerPress(item models.ClusterItem) {
	if item.IsCluster {
		c.animate(c.region.ZoomedIn(item.Latitude, item.Longitude))
		return
	}
	if idx, ok := item.Index(); ok {
		c.Select(idx)
	}
}

// OnCarouselScrollEnd selects the card the carousel settled on. The
// carousel is only told to scroll when the offset was between two cards.
func (c *Controller) OnCarouselScrollEnd(offset float64) int {
	idx := c.layout.IndexFor(offset, len(c.candidates))
	if idx == NoSelection {
		return idx
	}
	c.selected = idx
	lat, lng := c.candidates[idx].Coordinates()
	c.animate(c.region.Center(lat, lng))
	if c.layout.OffsetFor(idx) != offset {
		c.scrollCarousel(idx)
	}
	return idx
}

func (c *Controller) selectedID() (string, bool) {
	if c.selected < 0 || c.selected >= len(c.candidates) {
		return "", false
	}
	return c.candidates[c.selected].ID, true
}

func indexOf(candidates []models.MapMarkerCandidate, id string) int {
	for i := range candidates {
		if candidates[i].ID == id {
			return i
		}
	}
	return NoSelection
}

func (c *Controller) animate(r models.Region) {
	anim := c.animator.Start(r, 0)
	c.region = r
	if c.view != nil {
		c.view.AnimateTo(anim)
	}
}

func (c *Controller) scrollCarousel(index int) {
	if c.carousel != nil {
		c.carousel.ScrollTo(c.layout.OffsetFor(index), index)
	}
}
