// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import "context"

// Subject is the authenticated caller.
type Subject struct {
	UserID string
	Role   string
	Token  string
}

type subjectKey struct{}

// WithSubject returns ctx carrying s.
func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFromContext returns the caller, or nil for anonymous requests.
func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectKey{}).(*Subject)
	return s
}

// UserID returns the caller's id, or "".
func UserID(ctx context.Context) string {
	if s := SubjectFromContext(ctx); s != nil {
		return s.UserID
	}
	return ""
}
