// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package main provides the Waypoint HTTP server
//
// @title Waypoint API
// @version 1.0
// @description Location-based content discovery: aggregated map markers, clustering, likes, collections and shared snapshots
// @description
// @description ## Sources
// @description
// @description Markers are fetched from one of seven sources (content search, nearby or worldwide
// @description business events, liked items, collections, a single collection, a shared snapshot)
// @description and paginated server-side. Pages are cached for a short stale window and invalidated
// @description whenever likes, collections or snapshots change.
// @description
// @description ## Clustering
// @description
// @description Passing a region to `/map/markers` adds `clusteredData`. Clustering is disabled at
// @description street-level zoom and scales its radius with the visible latitude span.
// @description
// @description ## Live sessions
// @description
// @description `/map/ws` upgrades to a WebSocket carrying one map screen: source, region, carousel
// @description layout and the selection state, with animation commands pushed to the client.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {"code": "ERROR_CODE", "message": "Human-readable error message"},
// @description   "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/waypoint/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8780
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token: "Bearer <token>".
//
// @tag.name Core
// @tag.description Health and liveness
//
// @tag.name Map
// @tag.description Markers, clustering and live map sessions
//
// @tag.name Library
// @tag.description Likes and collections of the authenticated user
//
// @tag.name Snapshots
// @tag.description Shared snapshots of candidate lists
package main
