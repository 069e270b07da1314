// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package auth establishes who is calling.

Tokens are HS256 JWTs issued by the account service that shares
SECURITY_JWT_SECRET with Waypoint. The subject claim is the user id. A
verified token becomes a Subject in the request context; the raw token is
kept on the Subject because the nearby business events source forwards it
upstream.

Middleware.Optional accepts anonymous requests and is used on read routes:
sources that need a user (likes, collections, nearby events) simply report
themselves unavailable. Middleware.Require rejects anonymous requests and
guards mutations. Browsers cannot set headers on a WebSocket upgrade, so the
token may also be passed as the access_token query parameter.
*/
package auth
