// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package upstream

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// API is the upstream surface the sources depend on. Client and
// CircuitBreakerClient both implement it.
type API interface {
	SearchContent(ctx context.Context, query string, bias *models.LatLng, offset, limit int) (*ContentPage, error)
	NearbyBusinessEvents(ctx context.Context, token string, bias models.LatLng, radiusKm float64, offset, limit int) (*EventsPage, error)
	WorldwideBusinessEvents(ctx context.Context, query string, offset, limit int) (*ContentPage, error)
}

var (
	_ API = (*Client)(nil)
	_ API = (*CircuitBreakerClient)(nil)
)

// BreakerName labels the upstream breaker in metrics.
const BreakerName = "upstream-api"

// CircuitBreakerClient wraps Client so a failing backend is not hammered by
// every open map session. Rejections while open wrap ErrUpstream like any
// other failure, so sources surface them as isError.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient builds the client and its breaker from cfg.
func NewCircuitBreakerClient(cfg *config.UpstreamConfig) *CircuitBreakerClient {
	return wrapClient(NewClient(cfg), cfg)
}

func wrapClient(client *Client, cfg *config.UpstreamConfig) *CircuitBreakerClient {
	name := BreakerName
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// Cancelled callers say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: name}
}

// State returns the breaker state as "closed", "half-open" or "open".
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBreakerResult(cbc.name, "rejected")
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		metrics.RecordBreakerResult(cbc.name, "failure")
		return nil, err
	}
	metrics.RecordBreakerResult(cbc.name, "success")
	return result, nil
}

// castResult type-asserts the breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: circuit breaker: unexpected result type %T", ErrUpstream, result)
	}
	return typed, nil
}

// SearchContent calls Client.SearchContent through the breaker.
func (cbc *CircuitBreakerClient) SearchContent(ctx context.Context, query string, bias *models.LatLng, offset, limit int) (*ContentPage, error) {
	return castResult[ContentPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.SearchContent(ctx, query, bias, offset, limit)
	}))
}

// NearbyBusinessEvents calls Client.NearbyBusinessEvents through the breaker.
func (cbc *CircuitBreakerClient) NearbyBusinessEvents(ctx context.Context, token string, bias models.LatLng, radiusKm float64, offset, limit int) (*EventsPage, error) {
	return castResult[EventsPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.NearbyBusinessEvents(ctx, token, bias, radiusKm, offset, limit)
	}))
}

// WorldwideBusinessEvents calls Client.WorldwideBusinessEvents through the breaker.
func (cbc *CircuitBreakerClient) WorldwideBusinessEvents(ctx context.Context, query string, offset, limit int) (*ContentPage, error) {
	return castResult[ContentPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.WorldwideBusinessEvents(ctx, query, offset, limit)
	}))
}

// Ping checks backend health through the breaker.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
