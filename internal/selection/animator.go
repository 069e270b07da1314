// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package selection

import (
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// Animation bounds used when the animator is built with zero values.
const (
	DefaultMinAnimation     = 300 * time.Millisecond
	DefaultMaxAnimation     = 1500 * time.Millisecond
	DefaultAnimationTimeout = 500 * time.Millisecond
)

// Animation is one map transition. Seq increases with every animation a
// controller starts; clients drop any animation older than the newest one
// they have seen.
type Animation struct {
	Seq      uint64        `json:"seq"`
	Region   models.Region `json:"region"`
	Duration time.Duration `json:"-"`
}

// Animator hands out sequence numbers and tracks the in-flight animation.
// Starting a new animation supersedes the previous one immediately.
type Animator struct {
	min, max, fallback time.Duration

	mu       sync.Mutex
	seq      uint64
	inFlight *Animation
	timer    *time.Timer
}

// NewAnimator returns an animator clamping durations to [lo, hi]. Zero
// values fall back to the defaults above.
func NewAnimator(lo, hi, fallback time.Duration) *Animator {
	if lo <= 0 {
		lo = DefaultMinAnimation
	}
	if hi < lo {
		hi = max(DefaultMaxAnimation, lo)
	}
	if fallback <= 0 {
		fallback = DefaultAnimationTimeout
	}
	return &Animator{min: lo, max: hi, fallback: clamp(fallback, lo, hi)}
}

// Start begins an animation to region. A zero duration uses the default.
func (a *Animator) Start(region models.Region, d time.Duration) Animation {
	if d <= 0 {
		d = a.fallback
	}
	d = clamp(d, a.min, a.max)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.seq++
	anim := Animation{Seq: a.seq, Region: region, Duration: d}
	a.inFlight = &anim

	seq := a.seq
	a.timer = time.AfterFunc(d, func() { a.finish(seq) })
	return anim
}

// InFlight returns the running animation, if any.
func (a *Animator) InFlight() (Animation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight == nil {
		return Animation{}, false
	}
	return *a.inFlight, true
}

// Current reports whether seq is the newest animation started.
func (a *Animator) Current(seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return seq == a.seq
}

// Stop cancels the running animation.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.inFlight = nil
}

func (a *Animator) finish(seq uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq == a.seq {
		a.inFlight = nil
		a.timer = nil
	}
}

func clamp(d, lo, hi time.Duration) time.Duration {
	return min(max(d, lo), hi)
}
