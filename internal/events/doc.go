// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package events carries page cache invalidations from mutations to every
consumer that holds derived state.

A mutation (liking an item, adding to a collection, storing a snapshot)
publishes one Invalidation per affected (source, query) pair. The Bus
delivers them through a Watermill router to the registered handlers: the
CacheInvalidator drops the matching pages from the shared page cache and
tells live map sessions to refetch when their active request matches.

Transports:

  - gochannel (default): in-process Watermill GoChannel pub/sub
  - nats: NATS JetStream via watermill-nats, optionally with an embedded
    server; only available when built with -tags=nats

Messages are JSON encoded with goccy/go-json. The router recovers handler
panics and retries failed handlers with exponential backoff.
*/
package events
