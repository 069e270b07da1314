// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package mapsession runs live map screens over WebSocket.

A Session is the server side of one map screen. It owns an aggregator (the
active source and its pages), a clustering memo, and a selection controller
(the selected card, the map region and the card carousel). Everything a
session does happens on its own event loop goroutine; source fetches run
in the background and post their completion back to the loop.

Client messages:

	set_source           sources.Params          activate a source, load page one
	set_region           models.Region           the user moved the map
	set_layout           {cardWidth, spacing}    carousel geometry changed
	load_more            -                       fetch the next page
	marker_press         {clusterId} | {index}   a marker was tapped
	carousel_scroll_end  {offset}                the carousel settled
	ping                 -                       answered with pong

Server messages:

	state            candidates, flags, clusters, selection and region
	animate_map      {seq, region, durationMs}
	scroll_carousel  {offset, index}
	error            {code, message}

Within one loop iteration a state message, when anything changed, is sent
before any animate_map or scroll_carousel it caused.

The Manager tracks open sessions. It implements events.Notifier so cache
invalidations reach sessions whose active request they match, and it swaps
the clustering engine of every session when the clustering constants are
reloaded.
*/
package mapsession
