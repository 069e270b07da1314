// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package services adapts Waypoint components to suture.Service.

Each adapter turns a component's own lifecycle (ListenAndServe/Shutdown,
RunWithContext, a watermill router, a cron scheduler) into
Serve(ctx) error and names itself through fmt.Stringer for supervisor
logs.

  - HTTPServerService: *http.Server with graceful shutdown
  - WebSocketHubService: the WebSocket hub; closes live map sessions when
    the hub stops
  - EventBusService: the cache invalidation router; terminates the tree if
    the router dies on its own
  - MaintenanceService: robfig/cron schedule for page cache sweeps and
    snapshot store GC, with per-run Prometheus counters

The adapters depend only on small interfaces so they can be tested with
hand-written doubles.
*/
package services
