// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package validation wraps a singleton go-playground validator.
//
// Field names in messages are the JSON names clients send, and failures
// convert to the API error envelope:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, verr.ToAPIError())
//	    return
//	}
//
// Custom tags: source_kind (a known map source) and resource_id (the id
// alphabet shared by collections and snapshots).
package validation
