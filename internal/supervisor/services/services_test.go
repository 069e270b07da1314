// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/waypoint/internal/metrics"
)

// ---- doubles ----

type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.started <- struct{}{}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return f.shutdownErr
}

type fakeHub struct{ ran atomic.Bool }

func (h *fakeHub) RunWithContext(ctx context.Context) error {
	h.ran.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

type fakeSessions struct{ closed atomic.Int32 }

func (s *fakeSessions) CloseAll() { s.closed.Add(1) }

type fakeRouter struct {
	runErr error
	closed atomic.Int32
}

func (r *fakeRouter) Run(ctx context.Context) error {
	if r.runErr != nil {
		return r.runErr
	}
	<-ctx.Done()
	return nil
}

func (r *fakeRouter) Close() error {
	r.closed.Add(1)
	return nil
}

func serveAsync(ctx context.Context, svc suture.Service) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- svc.Serve(ctx) }()
	return ch
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("service did not return")
		return nil
	}
}

// ---- HTTP ----

func TestHTTPServerServiceShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	svc := NewHTTPServerService(srv, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := serveAsync(ctx, svc)

	<-srv.started
	cancel()
	if err := waitErr(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times", srv.shutdowns.Load())
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestHTTPServerServiceReportsListenFailure(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	srv.listenErr = errors.New("address in use")
	svc := NewHTTPServerService(srv, 0)

	err := waitErr(t, serveAsync(context.Background(), svc))
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v", svc.shutdownTimeout)
	}
}

func TestHTTPServerServiceShutdownError(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	srv.shutdownErr = errors.New("drain timeout")
	svc := NewHTTPServerService(srv, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := serveAsync(ctx, svc)

	<-srv.started
	cancel()
	if err := waitErr(t, done); !errors.Is(err, srv.shutdownErr) {
		t.Errorf("Serve() = %v, want shutdown error", err)
	}
}

// ---- hub ----

func TestWebSocketHubServiceClosesSessions(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{}
	sessions := &fakeSessions{}
	svc := NewWebSocketHubService(hub, sessions)
	ctx, cancel := context.WithCancel(context.Background())
	done := serveAsync(ctx, svc)

	cancel()
	if err := waitErr(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	if !hub.ran.Load() || sessions.closed.Load() != 1 {
		t.Errorf("hub ran = %v, sessions closed %d times", hub.ran.Load(), sessions.closed.Load())
	}
}

func TestWebSocketHubServiceWithoutSessions(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := serveAsync(ctx, NewWebSocketHubService(&fakeHub{}, nil))
	cancel()
	if err := waitErr(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
}

// ---- event bus ----

func TestEventBusServiceClosesOnCancel(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	ctx, cancel := context.WithCancel(context.Background())
	done := serveAsync(ctx, NewEventBusService(router))

	cancel()
	if err := waitErr(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	if router.closed.Load() != 1 {
		t.Errorf("Close called %d times", router.closed.Load())
	}
}

func TestEventBusServiceTerminatesTreeWhenRouterDies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		router EventRouter
	}{
		{"router error", &fakeRouter{runErr: errors.New("subscriber gone")}},
		{"router returned", returningRouter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewEventBusService(tt.router).Serve(context.Background())
			if !errors.Is(err, suture.ErrTerminateSupervisorTree) {
				t.Errorf("Serve() = %v, want ErrTerminateSupervisorTree", err)
			}
		})
	}
}

// returningRouter stops immediately without an error.
type returningRouter struct{}

func (returningRouter) Run(context.Context) error { return nil }

func (returningRouter) Close() error { return nil }

// ---- maintenance ----

func TestNewMaintenanceServiceValidatesSchedules(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }

	svc, err := NewMaintenanceService(
		Job{Name: "sweep", Schedule: "@every 1m", Run: noop},
		Job{Name: "gc", Schedule: "*/10 * * * *", Run: noop},
		Job{Name: "off", Schedule: "", Run: noop},
	)
	if err != nil {
		t.Fatalf("NewMaintenanceService: %v", err)
	}
	if got := fmt.Sprint(svc.Jobs()); got != "[sweep gc]" {
		t.Errorf("Jobs() = %s", got)
	}

	if _, err := NewMaintenanceService(Job{Name: "bad", Schedule: "every minute", Run: noop}); err == nil {
		t.Error("invalid schedule accepted")
	}
}

func TestMaintenanceServiceRunsJobs(t *testing.T) {
	t.Parallel()

	var ok, failed atomic.Int32
	okBefore := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test-ok", "ok"))
	errBefore := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test-fail", "error"))

	svc, err := NewMaintenanceService(
		Job{Name: "test-ok", Schedule: "@every 1s", Run: func(context.Context) error {
			ok.Add(1)
			return nil
		}},
		Job{Name: "test-fail", Schedule: "@every 1s", Run: func(context.Context) error {
			failed.Add(1)
			return errors.New("disk full")
		}},
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := serveAsync(ctx, svc)

	deadline := time.Now().Add(4 * time.Second)
	for (ok.Load() == 0 || failed.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := waitErr(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}

	if ok.Load() == 0 || failed.Load() == 0 {
		t.Fatalf("runs: ok=%d failed=%d", ok.Load(), failed.Load())
	}
	if got := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test-ok", "ok")); got <= okBefore {
		t.Errorf("ok counter = %v, want > %v", got, okBefore)
	}
	if got := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test-fail", "error")); got <= errBefore {
		t.Errorf("error counter = %v, want > %v", got, errBefore)
	}
}
