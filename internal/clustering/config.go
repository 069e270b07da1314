// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package clustering

// Default clustering constants. They were tuned by eye against real map
// screens and are kept for behavioural compatibility.
const (
	DefaultBaseDistance     = 0.005
	DefaultDisableThreshold = 0.02
	DefaultCohesion         = 0.7
	DefaultMinZoomFactor    = 0.001
)

// Config holds the clustering constants. Zero fields fall back to the
// defaults in NewEngine.
type Config struct {
	// BaseDistance is the cluster radius in degrees at DisableThreshold.
	BaseDistance float64

	// DisableThreshold is the zoom factor at or below which clustering is off.
	DisableThreshold float64

	// Cohesion is the fraction of the cluster radius a joiner's mean
	// distance to the current members must stay under.
	Cohesion float64

	// MinZoomFactor floors the latitude delta.
	MinZoomFactor float64
}

// DefaultConfig returns the stock constants.
func DefaultConfig() Config {
	return Config{
		BaseDistance:     DefaultBaseDistance,
		DisableThreshold: DefaultDisableThreshold,
		Cohesion:         DefaultCohesion,
		MinZoomFactor:    DefaultMinZoomFactor,
	}
}

func (c Config) withDefaults() Config {
	if c.BaseDistance <= 0 {
		c.BaseDistance = DefaultBaseDistance
	}
	if c.DisableThreshold <= 0 {
		c.DisableThreshold = DefaultDisableThreshold
	}
	if c.Cohesion <= 0 {
		c.Cohesion = DefaultCohesion
	}
	if c.MinZoomFactor <= 0 {
		c.MinZoomFactor = DefaultMinZoomFactor
	}
	return c
}
