// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package authz decides which roles may perform which mutations.
//
// Decisions come from a Casbin RBAC model with a role hierarchy
// (admin > user > viewer). The built-in policy lets users write their own
// likes, collections and snapshots; viewers are read-only; admins may
// manage any user's collections. A policy file can replace the built-in
// policy.
//
// Ownership is not a Casbin concern: CanManageCollection combines the
// owner check with the "collections:any" permission so handlers make one
// call.
package authz
