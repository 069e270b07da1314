// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package authz

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

// Objects and actions used by the API.
const (
	ObjLikes          = "likes"
	ObjCollections    = "collections"
	ObjAnyCollections = "collections:any"
	ObjSnapshots      = "snapshots"

	ActRead  = "read"
	ActWrite = "write"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (r.obj == p.obj || p.obj == "*") && (r.act == p.act || p.act == "*")
`

const builtinPolicy = `
p, viewer, likes, read
p, viewer, collections, read
p, viewer, snapshots, read
p, user, likes, write
p, user, collections, write
p, user, snapshots, write
p, admin, *, *
g, user, viewer
g, admin, user
`

// Enforcer wraps a synchronized Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the built-in policy, or the policy file at policyPath
// when it exists.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var e *casbin.SyncedEnforcer
	if policyPath != "" && fileExists(policyPath) {
		e, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		e, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(e, builtinPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	return &Enforcer{enforcer: e}, nil
}

// StartAutoReload reloads the policy file every interval.
func (e *Enforcer) StartAutoReload(interval time.Duration) {
	e.enforcer.StartAutoLoadPolicy(interval)
}

// Allowed reports whether role may perform act on obj.
func (e *Enforcer) Allowed(role, obj, act string) bool {
	ok, err := e.enforcer.Enforce(role, obj, act)
	if err != nil {
		logging.Warn().Err(err).Str("role", role).Str("obj", obj).Msg("Authorization check failed")
		return false
	}
	return ok
}

// CanManageCollection reports whether s may modify a collection owned by
// ownerID.
func (e *Enforcer) CanManageCollection(s *auth.Subject, ownerID string) bool {
	if s == nil {
		return false
	}
	if s.UserID == ownerID {
		return e.Allowed(s.Role, ObjCollections, ActWrite)
	}
	return e.Allowed(s.Role, ObjAnyCollections, ActWrite)
}

// Require returns middleware rejecting callers whose role lacks
// permission. It must run after auth.Middleware.Require.
func (e *Enforcer) Require(obj, act string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := auth.SubjectFromContext(r.Context())
			if s == nil || !e.Allowed(s.Role, obj, act) {
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loadPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		var err error
		switch {
		case parts[0] == "p" && len(parts) == 4:
			_, err = e.AddPolicy(parts[1], parts[2], parts[3])
		case parts[0] == "g" && len(parts) == 3:
			_, err = e.AddGroupingPolicy(parts[1], parts[2])
		default:
			err = errors.New("malformed policy line: " + line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Error:    &models.APIError{Code: "FORBIDDEN", Message: "Insufficient permissions"},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
