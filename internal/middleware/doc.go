// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package middleware holds the HTTP middleware shared by every route:
// request ids, Prometheus instrumentation and gzip compression.
//
// All middleware use the func(http.Handler) http.Handler shape so they plug
// straight into chi:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
//	r.Use(middleware.Compression)
package middleware
