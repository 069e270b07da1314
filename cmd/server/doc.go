// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Command server is the Waypoint binary.

Waypoint aggregates location-based content from several sources into a
single paginated list, clusters it for the visible map region and keeps a
live map session per WebSocket client in sync with the list carousel.

# Commands

	waypoint              # same as "waypoint serve"
	waypoint serve        # run the supervised server
	waypoint cluster -f candidates.json --lat-delta 0.05

The cluster command reads a JSON array of candidates (or stdin with -f -)
and prints the cluster items the engine produces for that latitude span.

# Application Architecture

	RootSupervisor ("waypoint")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (cache sweep, badger GC)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event Bus (cache invalidation, watermill)
	│   └── WebSocket Hub (map sessions)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: koanf (defaults, config file, environment, .env)
 2. Logging: zerolog
 3. Library store: SQLite (likes, collections, items)
 4. Snapshot store: badger or S3-compatible object storage
 5. Upstream client with rate limiter and circuit breaker
 6. Source registry and page cache
 7. Map session manager and WebSocket hub
 8. Event bus (in-process channel or NATS with -tags nats)
 9. Authorization (casbin) and authentication (JWT)
 10. Supervisor tree and HTTP server

# Configuration

	HTTP_PORT=8780
	LOG_LEVEL=info                 # trace, debug, info, warn, error
	LOG_FORMAT=json                # json or console
	JWT_SECRET=<32+ chars>         # unset runs without authentication
	LIBRARY_PATH=/data/waypoint.db
	SNAPSHOT_BACKEND=badger        # badger or s3
	UPSTREAM_BASE_URL=http://127.0.0.1:8080/api
	EVENTS_TRANSPORT=gochannel     # gochannel or nats
	CONFIG_PATH=/etc/waypoint/config.yaml

Clustering constants and the log level are reloaded when the config file
changes.

# Signals

SIGINT and SIGTERM cancel the root context. Services stop in reverse
layer order and any service that misses its shutdown timeout is logged.
*/
package main
