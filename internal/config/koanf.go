// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypoint/config.yaml",
	"/etc/waypoint/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8780,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			DefaultPageSize:   20,
			MaxPageSize:       100,
			MaxPages:          10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Clustering: ClusteringConfig{
			BaseDistance:     0.005,
			DisableThreshold: 0.02,
			Cohesion:         0.7,
			MinZoomFactor:    0.001,
		},
		Cache: CacheConfig{
			StaleTime:  30 * time.Second,
			MaxEntries: 2048,
		},
		Upstream: UpstreamConfig{
			BaseURL:             "http://127.0.0.1:8080/api",
			Timeout:             10 * time.Second,
			RequestsPerSecond:   20,
			Burst:               10,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		Library: LibraryConfig{
			Path: "/data/waypoint.db",
		},
		Snapshots: SnapshotConfig{
			Backend:   "badger",
			BadgerDir: "/data/snapshots",
			MaxBytes:  1 << 20,
			S3: S3Config{
				Bucket: "waypoint-snapshots",
				UseSSL: true,
			},
		},
		Events: EventsConfig{
			Transport:    "gochannel",
			Topic:        "waypoint.cache.invalidate",
			NATSURL:      "nats://127.0.0.1:4222",
			NATSStoreDir: "/data/nats",
		},
		Security: SecurityConfig{
			JWTIssuer:      "waypoint",
			SessionTimeout: 24 * time.Hour,
			CORSOrigins:    []string{"*"},
		},
		Session: SessionConfig{
			CardWidth:         280,
			Spacing:           12,
			MinAnimation:      300 * time.Millisecond,
			MaxAnimation:      1500 * time.Millisecond,
			DefaultAnimation:  500 * time.Millisecond,
			SendBuffer:        64,
			DefaultLatDelta:   0.05,
			DefaultLngDelta:   0.05,
			MaxCandidateCount: 500,
		},
		Maintenance: MaintenanceConfig{
			CacheSweepSchedule: "@every 1m",
			BadgerGCSchedule:   "@every 10m",
		},
	}
}

// LoadWithKoanf layers defaults, file and environment into a validated Config.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv seeds the process environment from a .env file when one exists.
// Variables already set in the environment are left untouched.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"http_host":                     "server.host",
	"http_port":                     "server.port",
	"http_read_timeout":             "server.read_timeout",
	"http_write_timeout":            "server.write_timeout",
	"http_shutdown_timeout":         "server.shutdown_timeout",
	"rate_limit_requests":           "server.rate_limit_requests",
	"rate_limit_window":             "server.rate_limit_window",
	"default_page_size":             "server.default_page_size",
	"max_page_size":                 "server.max_page_size",
	"max_pages":                     "server.max_pages",
	"log_level":                     "logging.level",
	"log_format":                    "logging.format",
	"log_caller":                    "logging.caller",
	"cluster_base_distance":         "clustering.base_distance",
	"cluster_disable_threshold":     "clustering.disable_threshold",
	"cluster_cohesion":              "clustering.cohesion",
	"cluster_min_zoom_factor":       "clustering.min_zoom_factor",
	"cache_stale_time":              "cache.stale_time",
	"cache_max_entries":             "cache.max_entries",
	"upstream_base_url":             "upstream.base_url",
	"upstream_timeout":              "upstream.timeout",
	"upstream_requests_per_second":  "upstream.requests_per_second",
	"upstream_burst":                "upstream.burst",
	"upstream_breaker_timeout":      "upstream.breaker_timeout",
	"upstream_breaker_failure_rate": "upstream.breaker_failure_ratio",
	"library_path":                  "library.path",
	"snapshot_backend":              "snapshots.backend",
	"snapshot_badger_dir":           "snapshots.badger_dir",
	"snapshot_in_memory":            "snapshots.in_memory",
	"snapshot_max_bytes":            "snapshots.max_bytes",
	"snapshot_s3_endpoint":          "snapshots.s3.endpoint",
	"snapshot_s3_access_key":        "snapshots.s3.access_key",
	"snapshot_s3_secret_key":        "snapshots.s3.secret_key",
	"snapshot_s3_bucket":            "snapshots.s3.bucket",
	"snapshot_s3_use_ssl":           "snapshots.s3.use_ssl",
	"events_transport":              "events.transport",
	"events_topic":                  "events.topic",
	"nats_url":                      "events.nats_url",
	"nats_embedded":                 "events.embedded_nats",
	"nats_store_dir":                "events.nats_store_dir",
	"jwt_secret":                    "security.jwt_secret",
	"jwt_issuer":                    "security.jwt_issuer",
	"session_timeout":               "security.session_timeout",
	"cors_origins":                  "security.cors_origins",
	"authz_policy_path":             "security.policy_path",
	"session_card_width":            "session.card_width",
	"session_spacing":               "session.spacing",
	"session_send_buffer":           "session.send_buffer",
	"cache_sweep_schedule":          "maintenance.cache_sweep_schedule",
	"badger_gc_schedule":            "maintenance.badger_gc_schedule",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile invokes callback whenever the YAML file at path changes.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// ConfigFilePath reports the config file LoadWithKoanf would read, or "".
func ConfigFilePath() string {
	return findConfigFile()
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
