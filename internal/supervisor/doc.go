// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package supervisor runs Waypoint's long-lived services under a suture v4
tree.

Services are grouped into three layers so a crash in one does not take
down the others:

	waypoint
	├── data-layer
	│   └── MaintenanceService (cache sweep, badger value-log GC)
	├── messaging-layer
	│   ├── WebSocketHubService
	│   └── EventBusService
	└── api-layer
	    └── HTTPServerService

A crashed service is restarted with backoff. When the root context is
cancelled every service is stopped, each bounded by
TreeConfig.ShutdownTimeout; UnstoppedServiceReport names any that did not
return in time.

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog, bridged to zerolog by logging.NewSlogLogger.

The service adapters live in the services subpackage.
*/
package supervisor
