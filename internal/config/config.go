// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package config loads Waypoint configuration with Koanf v2.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/waypoint/config.yaml)
//  3. Environment variables, optionally seeded from a .env file
//
// Only environment variables listed in envMappings are honoured so unrelated
// process environment never leaks into the configuration.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Clustering  ClusteringConfig  `koanf:"clustering"`
	Cache       CacheConfig       `koanf:"cache"`
	Upstream    UpstreamConfig    `koanf:"upstream"`
	Library     LibraryConfig     `koanf:"library"`
	Snapshots   SnapshotConfig    `koanf:"snapshots"`
	Events      EventsConfig      `koanf:"events"`
	Security    SecurityConfig    `koanf:"security"`
	Session     SessionConfig     `koanf:"session"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	MaxPages          int           `koanf:"max_pages"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ClusteringConfig holds the empirically chosen clustering constants.
type ClusteringConfig struct {
	// BaseDistance is the cluster radius (degrees) at the disable threshold.
	BaseDistance float64 `koanf:"base_distance"`

	// DisableThreshold is the latitude delta at or below which every
	// candidate renders as its own marker.
	DisableThreshold float64 `koanf:"disable_threshold"`

	// Cohesion bounds a joiner's mean distance to members, as a fraction
	// of the cluster radius.
	Cohesion float64 `koanf:"cohesion"`

	// MinZoomFactor floors the latitude delta.
	MinZoomFactor float64 `koanf:"min_zoom_factor"`
}

// CacheConfig controls the source page cache.
type CacheConfig struct {
	StaleTime  time.Duration `koanf:"stale_time"`
	MaxEntries int           `koanf:"max_entries"`
}

// UpstreamConfig configures the content/events backend client.
type UpstreamConfig struct {
	BaseURL             string        `koanf:"base_url"`
	Timeout             time.Duration `koanf:"timeout"`
	RequestsPerSecond   float64       `koanf:"requests_per_second"`
	Burst               int           `koanf:"burst"`
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// LibraryConfig locates the sqlite library database.
type LibraryConfig struct {
	Path string `koanf:"path"`
}

// SnapshotConfig selects and configures the custom snapshot store.
type SnapshotConfig struct {
	Backend   string   `koanf:"backend"`
	BadgerDir string   `koanf:"badger_dir"`
	InMemory  bool     `koanf:"in_memory"`
	MaxBytes  int64    `koanf:"max_bytes"`
	S3        S3Config `koanf:"s3"`
}

// S3Config configures the object-storage snapshot backend.
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// EventsConfig configures the cache invalidation bus.
type EventsConfig struct {
	Transport    string `koanf:"transport"`
	Topic        string `koanf:"topic"`
	NATSURL      string `koanf:"nats_url"`
	EmbeddedNATS bool   `koanf:"embedded_nats"`
	NATSStoreDir string `koanf:"nats_store_dir"`
}

// SecurityConfig holds auth settings.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	JWTIssuer      string        `koanf:"jwt_issuer"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	CORSOrigins    []string      `koanf:"cors_origins"`
	PolicyPath     string        `koanf:"policy_path"`
}

// SessionConfig holds defaults for live map sessions.
type SessionConfig struct {
	CardWidth         float64       `koanf:"card_width"`
	Spacing           float64       `koanf:"spacing"`
	MinAnimation      time.Duration `koanf:"min_animation"`
	MaxAnimation      time.Duration `koanf:"max_animation"`
	DefaultAnimation  time.Duration `koanf:"default_animation"`
	SendBuffer        int           `koanf:"send_buffer"`
	DefaultLatDelta   float64       `koanf:"default_lat_delta"`
	DefaultLngDelta   float64       `koanf:"default_lng_delta"`
	MaxCandidateCount int           `koanf:"max_candidate_count"`
}

// MaintenanceConfig holds cron schedules for background housekeeping.
type MaintenanceConfig struct {
	CacheSweepSchedule string `koanf:"cache_sweep_schedule"`
	BadgerGCSchedule   string `koanf:"badger_gc_schedule"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
