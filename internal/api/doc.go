// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package api provides the HTTP interface of Waypoint.

Routes are served by a chi router under /api/v1:

Map:
  - GET  /map/markers: aggregate one source and optionally cluster it
  - POST /map/cluster: cluster a caller-supplied candidate list
  - GET  /map/ws: live map session over WebSocket

Library (bearer token required):
  - GET    /likes
  - PUT    /likes/{itemID}
  - DELETE /likes/{itemID}
  - GET    /collections
  - POST   /collections
  - POST   /collections/{collectionID}/items

Snapshots (bearer token required):
  - POST   /snapshots
  - GET    /snapshots/{snapshotID}
  - PUT    /snapshots/{snapshotID}
  - DELETE /snapshots/{snapshotID}

Operations:
  - GET /health, GET /health/live
  - GET /metrics (Prometheus, outside /api/v1)
  - GET /swagger/* (OpenAPI UI, outside /api/v1)

Every JSON response uses the models.APIResponse envelope. Mutations publish
cache invalidations on the event bus after they succeed, so cached pages
and live map sessions pick up the change.

Middleware order: request id, real IP, panic recovery, CORS, then per group
rate limiting, Prometheus instrumentation, gzip, authentication and role
checks.
*/
package api
