// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/authz"
	"github.com/tomtom215/waypoint/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	enforcer      *authz.Enforcer
	chiMiddleware *ChiMiddleware
}

// NewRouter builds a router. A nil auth middleware treats every request
// as anonymous; a nil enforcer skips role checks.
func NewRouter(handler *Handler, authMW *auth.Middleware, enforcer *authz.Enforcer) *Router {
	if authMW == nil {
		authMW = auth.NewMiddleware(nil)
	}
	cfg := handler.config
	return &Router{
		handler:  handler,
		auth:     authMW,
		enforcer: enforcer,
		chiMiddleware: NewChiMiddleware(&ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
			CORSMaxAge:         86400,
			RateLimitRequests:  cfg.Server.RateLimitRequests,
			RateLimitWindow:    cfg.Server.RateLimitWindow,
		}),
	}
}

// Setup returns the HTTP handler for all routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Optional)

			r.Get("/health", router.handler.Health)
			r.Get("/health/live", router.handler.HealthLive)

			// The upgrade must see the raw ResponseWriter, so the socket
			// route sits outside the gzip group.
			r.Get("/map/ws", router.handler.MapWebSocket)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Compression)
				r.Get("/map/markers", router.handler.Markers)
				r.Post("/map/cluster", router.handler.Cluster)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Require)
			r.Use(middleware.Compression)

			r.Route("/likes", func(r chi.Router) {
				r.With(router.can(authz.ObjLikes, authz.ActRead)).Get("/", router.handler.Likes)
				r.Group(func(r chi.Router) {
					r.Use(router.can(authz.ObjLikes, authz.ActWrite))
					r.Put("/{itemID}", router.handler.LikeItem)
					r.Delete("/{itemID}", router.handler.UnlikeItem)
				})
			})

			r.Route("/collections", func(r chi.Router) {
				r.With(router.can(authz.ObjCollections, authz.ActRead)).Get("/", router.handler.ListCollections)
				r.Group(func(r chi.Router) {
					r.Use(router.can(authz.ObjCollections, authz.ActWrite))
					r.Post("/", router.handler.CreateCollection)
					r.Post("/{collectionID}/items", router.handler.AddCollectionItem)
				})
			})

			r.Route("/snapshots", func(r chi.Router) {
				r.With(router.can(authz.ObjSnapshots, authz.ActRead)).Get("/{snapshotID}", router.handler.GetSnapshot)
				r.Group(func(r chi.Router) {
					r.Use(router.can(authz.ObjSnapshots, authz.ActWrite))
					r.Post("/", router.handler.CreateSnapshot)
					r.Put("/{snapshotID}", router.handler.PutSnapshot)
					r.Delete("/{snapshotID}", router.handler.DeleteSnapshot)
				})
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}

// can returns the role check for obj/act, or a pass-through when no
// enforcer is configured.
func (router *Router) can(obj, act string) func(http.Handler) http.Handler {
	if router.enforcer == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return router.enforcer.Require(obj, act)
}
