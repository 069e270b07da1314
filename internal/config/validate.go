// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"net/url"
	"strings"
)

var (
	validLogLevels = map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	validLogFormats = map[string]bool{
		"json": true, "console": true,
	}
	validSnapshotBackends = map[string]bool{
		"badger": true, "s3": true,
	}
	validEventTransports = map[string]bool{
		"gochannel": true, "nats": true,
	}
)

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateClustering,
		c.validateCache,
		c.validateUpstream,
		c.validateSnapshots,
		c.validateEvents,
		c.validateSecurity,
		c.validateSession,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.Server.MaxPageSize < c.Server.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must be >= DEFAULT_PAGE_SIZE")
	}
	if c.Server.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES must be at least 1")
	}
	if c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateClustering() error {
	cl := c.Clustering
	if cl.BaseDistance <= 0 {
		return fmt.Errorf("CLUSTER_BASE_DISTANCE must be positive")
	}
	if cl.DisableThreshold <= 0 {
		return fmt.Errorf("CLUSTER_DISABLE_THRESHOLD must be positive")
	}
	if cl.Cohesion <= 0 || cl.Cohesion > 1 {
		return fmt.Errorf("CLUSTER_COHESION must be in (0, 1]")
	}
	if cl.MinZoomFactor <= 0 {
		return fmt.Errorf("CLUSTER_MIN_ZOOM_FACTOR must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.StaleTime <= 0 {
		return fmt.Errorf("CACHE_STALE_TIME must be positive")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}
	return nil
}

func (c *Config) validateUpstream() error {
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL must be an absolute URL, got %q", c.Upstream.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("UPSTREAM_BASE_URL must use http or https")
	}
	if c.Upstream.RequestsPerSecond <= 0 {
		return fmt.Errorf("UPSTREAM_REQUESTS_PER_SECOND must be positive")
	}
	if c.Upstream.BreakerFailureRatio <= 0 || c.Upstream.BreakerFailureRatio > 1 {
		return fmt.Errorf("UPSTREAM_BREAKER_FAILURE_RATE must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateSnapshots() error {
	s := c.Snapshots
	if !validSnapshotBackends[s.Backend] {
		return fmt.Errorf("SNAPSHOT_BACKEND must be one of: badger, s3")
	}
	if s.MaxBytes < 1 {
		return fmt.Errorf("SNAPSHOT_MAX_BYTES must be positive")
	}
	switch s.Backend {
	case "badger":
		if !s.InMemory && s.BadgerDir == "" {
			return fmt.Errorf("SNAPSHOT_BADGER_DIR is required when SNAPSHOT_BACKEND=badger")
		}
	case "s3":
		if s.S3.Endpoint == "" || s.S3.Bucket == "" {
			return fmt.Errorf("SNAPSHOT_S3_ENDPOINT and SNAPSHOT_S3_BUCKET are required when SNAPSHOT_BACKEND=s3")
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !validEventTransports[c.Events.Transport] {
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: gochannel, nats")
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	if c.Events.Transport == "nats" && !c.Events.EmbeddedNATS && c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_TRANSPORT=nats")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	secret := c.Security.JWTSecret
	if secret == "" {
		// Anonymous mode: nearby events and mutations stay disabled.
		return nil
	}
	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if containsPlaceholder(secret) {
		return fmt.Errorf("JWT_SECRET looks like a placeholder value")
	}
	return nil
}

func (c *Config) validateSession() error {
	s := c.Session
	if s.CardWidth <= 0 {
		return fmt.Errorf("SESSION_CARD_WIDTH must be positive")
	}
	if s.Spacing < 0 {
		return fmt.Errorf("SESSION_SPACING must not be negative")
	}
	if s.MinAnimation <= 0 || s.MaxAnimation < s.MinAnimation {
		return fmt.Errorf("session animation bounds are invalid: min=%s max=%s", s.MinAnimation, s.MaxAnimation)
	}
	if s.SendBuffer < 1 {
		return fmt.Errorf("SESSION_SEND_BUFFER must be at least 1")
	}
	return nil
}

// AuthEnabled reports whether bearer tokens can be verified.
func (c *Config) AuthEnabled() bool {
	return c.Security.JWTSecret != ""
}

var placeholderPatterns = []string{
	"REPLACE", "CHANGEME", "CHANGE_ME", "YOUR_SECRET", "PLACEHOLDER", "EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}
