// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package cache holds source pages between requests.

Pages are keyed by (source, query, offset) so switching between sources or
returning to an earlier search reuses what was already fetched. Freshness is
a short staleness window rather than a long TTL: the library and event
sources change underneath the cache, and mutations call InvalidateQuery or
InvalidateSource explicitly.

	c := cache.New[sources.Page](30*time.Second, 2048)
	c.Set(cache.Key{Source: "likes", Query: "user:u1", Offset: 0}, page)
	if p, ok := c.Get(key); ok {
	    // fresh page
	}
	c.InvalidateQuery("likes", "user:u1", "like")

Expired pages are dropped lazily on Get and in bulk by Sweep, which the
maintenance scheduler runs on a cron schedule.
*/
package cache
