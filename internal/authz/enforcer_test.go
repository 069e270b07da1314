// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package authz

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/waypoint/internal/auth"
)

func newEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return e
}

func TestBuiltinPolicy(t *testing.T) {
	t.Parallel()

	e := newEnforcer(t)
	tests := []struct {
		role, obj, act string
		want           bool
	}{
		{auth.RoleViewer, ObjLikes, ActRead, true},
		{auth.RoleViewer, ObjLikes, ActWrite, false},
		{auth.RoleUser, ObjLikes, ActWrite, true},
		{auth.RoleUser, ObjLikes, ActRead, true},
		{auth.RoleUser, ObjSnapshots, ActWrite, true},
		{auth.RoleUser, ObjAnyCollections, ActWrite, false},
		{auth.RoleAdmin, ObjAnyCollections, ActWrite, true},
		{"stranger", ObjLikes, ActRead, false},
	}
	for _, tt := range tests {
		if got := e.Allowed(tt.role, tt.obj, tt.act); got != tt.want {
			t.Errorf("Allowed(%s, %s, %s) = %v, want %v", tt.role, tt.obj, tt.act, got, tt.want)
		}
	}
}

func TestCanManageCollection(t *testing.T) {
	t.Parallel()

	e := newEnforcer(t)
	owner := &auth.Subject{UserID: "u1", Role: auth.RoleUser}
	other := &auth.Subject{UserID: "u2", Role: auth.RoleUser}
	admin := &auth.Subject{UserID: "root", Role: auth.RoleAdmin}
	viewer := &auth.Subject{UserID: "u1", Role: auth.RoleViewer}

	if !e.CanManageCollection(owner, "u1") {
		t.Error("owner should manage their collection")
	}
	if e.CanManageCollection(other, "u1") {
		t.Error("other users must not manage the collection")
	}
	if !e.CanManageCollection(admin, "u1") {
		t.Error("admin should manage any collection")
	}
	if e.CanManageCollection(viewer, "u1") {
		t.Error("viewers are read-only even as owner")
	}
	if e.CanManageCollection(nil, "u1") {
		t.Error("anonymous callers must be rejected")
	}
}

func TestRequireMiddleware(t *testing.T) {
	t.Parallel()

	e := newEnforcer(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := e.Require(ObjLikes, ActWrite)(ok)

	tests := []struct {
		name    string
		subject *auth.Subject
		want    int
	}{
		{"user", &auth.Subject{UserID: "u", Role: auth.RoleUser}, http.StatusNoContent},
		{"viewer", &auth.Subject{UserID: "u", Role: auth.RoleViewer}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPut, "/likes/x", nil)
			if tt.subject != nil {
				r = r.WithContext(auth.WithSubject(r.Context(), tt.subject))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestPolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, curator, collections:any, write\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	e, err := NewEnforcer(path)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	if !e.Allowed("curator", ObjAnyCollections, ActWrite) {
		t.Error("policy file rule not applied")
	}
	if e.Allowed(auth.RoleUser, ObjLikes, ActWrite) {
		t.Error("policy file replaces the built-in policy")
	}
}

func TestMalformedPolicy(t *testing.T) {
	t.Parallel()

	e, err := NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	if err := loadPolicy(e.enforcer, "p, only-two"); err == nil {
		t.Error("expected an error for a malformed line")
	}
}
