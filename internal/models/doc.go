// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package models defines the data structures shared across Waypoint.

Key Components:

  - MapMarkerCandidate: one item from any source, with optional coordinates
  - Region: the visible map rectangle (center plus spans in degrees)
  - ClusterItem: a rendered marker, either a single candidate or a cluster
  - Collection: a named, user-owned list of items
  - APIResponse: the envelope every HTTP endpoint returns

Candidates without valid coordinates stay in list payloads but never reach
clustering. Use Mappable or FilterMappable to select the rest:

	mappable := models.FilterMappable(page.Items)
	items := engine.Cluster(mappable, region)

A ClusterItem carries OriginalIndex only when it represents a single
candidate; the index points into the mappable slice that was clustered.
*/
package models
