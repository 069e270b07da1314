// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/authz"
	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/clustering"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/library"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mapsession"
	"github.com/tomtom215/waypoint/internal/snapshot"
	"github.com/tomtom215/waypoint/internal/sources"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
	"github.com/tomtom215/waypoint/internal/upstream"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

const policyReloadInterval = time.Minute

// runServe loads configuration, wires every component and runs the
// supervisor tree until SIGINT/SIGTERM or parent cancellation.
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version).
		Str("commit", commit).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Waypoint")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	lib, err := library.Open(ctx, cfg.Library.Path)
	if err != nil {
		return err
	}
	defer closeLogged("library", lib.Close)

	snaps, err := snapshot.Open(ctx, &cfg.Snapshots)
	if err != nil {
		return err
	}
	defer closeLogged("snapshots", snaps.Close)

	breaker := upstream.NewCircuitBreakerClient(&cfg.Upstream)
	registry := sources.DefaultRegistry(sources.Deps{
		Library:   lib,
		Upstream:  breaker,
		Snapshots: snaps,
		PageSize:  cfg.Server.DefaultPageSize,
	})
	pages := cache.New[sources.Page](cfg.Cache.StaleTime, cfg.Cache.MaxEntries)

	sessions := mapsession.NewManager(mapsession.Options{
		Registry:   registry,
		Pages:      pages,
		MaxPages:   cfg.Server.MaxPages,
		Clustering: clusteringConfig(cfg),
		Session:    cfg.Session,
	})
	hub := ws.NewHub()

	bus, err := events.NewBus(&cfg.Events)
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer closeLogged("event bus", bus.Close)
	bus.Handle("cache-invalidator", events.NewCacheInvalidator(pages, sessions).Handle)

	enforcer, err := authz.NewEnforcer(cfg.Security.PolicyPath)
	if err != nil {
		return err
	}
	if cfg.Security.PolicyPath != "" {
		enforcer.StartAutoReload(policyReloadInterval)
	}

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled() {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return fmt.Errorf("create JWT manager: %w", err)
		}
	} else {
		logging.Warn().Msg("JWT_SECRET not set; every request is treated as anonymous")
	}

	handler := api.NewHandler(api.Deps{
		Config:    cfg,
		Registry:  registry,
		Pages:     pages,
		Library:   lib,
		Snapshots: snaps,
		Upstream:  breaker,
		Events:    bus,
		Sessions:  sessions,
		Hub:       hub,
		Enforcer:  enforcer,
		Version:   version,
	})
	router := api.NewRouter(handler, auth.NewMiddleware(jwtManager), enforcer)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	maintenance, err := services.NewMaintenanceService(
		services.Job{
			Name:     "cache-sweep",
			Schedule: cfg.Maintenance.CacheSweepSchedule,
			Run: func(context.Context) error {
				if n := pages.Sweep(); n > 0 {
					logging.Debug().Int("evicted", n).Msg("Swept expired cache pages")
				}
				return nil
			},
		},
		services.Job{
			Name:     "badger-gc",
			Schedule: cfg.Maintenance.BadgerGCSchedule,
			Run: func(context.Context) error {
				return snapshot.GC(snaps)
			},
		},
	)
	if err != nil {
		return fmt.Errorf("configure maintenance: %w", err)
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	tree.AddDataService(maintenance)
	tree.AddMessagingService(services.NewEventBusService(bus))
	tree.AddMessagingService(services.NewWebSocketHubService(hub, sessions))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	watchConfig(sessions)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().
		Strs("jobs", maintenance.Jobs()).
		Str("events_topic", bus.Topic()).
		Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
			treeErr = err
		}
		cancel()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Unstopped service")
		}
	}

	logging.Info().Msg("Waypoint stopped")
	return treeErr
}

// watchConfig applies clustering constants and the log level from the
// config file whenever it changes.
func watchConfig(sessions *mapsession.Manager) {
	path := config.ConfigFilePath()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		reloaded, err := config.Load()
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid configuration change")
			return
		}
		sessions.SetClusteringConfig(clusteringConfig(reloaded))
		logging.SetLevelString(reloaded.Logging.Level)
		logging.Info().Str("path", path).Msg("Configuration reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watching disabled")
	}
}

func clusteringConfig(cfg *config.Config) clustering.Config {
	return clustering.Config{
		BaseDistance:     cfg.Clustering.BaseDistance,
		DisableThreshold: cfg.Clustering.DisableThreshold,
		Cohesion:         cfg.Clustering.Cohesion,
		MinZoomFactor:    cfg.Clustering.MinZoomFactor,
	}
}

func closeLogged(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Warn().Err(err).Str("component", name).Msg("Close failed")
	}
}
