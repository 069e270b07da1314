// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
client.go - Content and Business Events REST Client

This file implements the HTTP client for the backend that serves content
search and business events. Every call goes through a token bucket limiter
and a circuit breaker (breaker.go).
*/

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/models"
)

// ErrUpstream wraps every transport, status and decode failure.
var ErrUpstream = errors.New("upstream error")

// ContentPage is one page of a content or worldwide events listing.
type ContentPage struct {
	Items   []models.MapMarkerCandidate `json:"items"`
	HasMore bool                        `json:"hasMore"`
}

// EventsPage is one page of nearby business events. LocalEvents is a
// supplementary list that may overlap Events.
type EventsPage struct {
	Events      []models.MapMarkerCandidate `json:"events"`
	LocalEvents []models.MapMarkerCandidate `json:"localEvents"`
	HasMore     bool                        `json:"hasMore"`
}

// Client is the plain REST client. Use NewCircuitBreakerClient in
// production.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg *config.UpstreamConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// SearchContent runs a paginated content search. bias, when set, ranks
// results near that point first.
func (c *Client) SearchContent(ctx context.Context, query string, bias *models.LatLng, offset, limit int) (*ContentPage, error) {
	params := url.Values{}
	params.Set("q", query)
	setBias(params, bias)
	setPage(params, offset, limit)

	var page ContentPage
	if err := c.getJSON(ctx, "/content/search", params, "", &page); err != nil {
		return nil, fmt.Errorf("content search: %w", err)
	}
	return &page, nil
}

// NearbyBusinessEvents lists events around bias. token is the caller's
// bearer token.
func (c *Client) NearbyBusinessEvents(ctx context.Context, token string, bias models.LatLng, radiusKm float64, offset, limit int) (*EventsPage, error) {
	params := url.Values{}
	setBias(params, &bias)
	if radiusKm > 0 {
		params.Set("radiusKm", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	}
	setPage(params, offset, limit)

	var page EventsPage
	if err := c.getJSON(ctx, "/business-events/nearby", params, token, &page); err != nil {
		return nil, fmt.Errorf("nearby business events: %w", err)
	}
	return &page, nil
}

// WorldwideBusinessEvents lists events everywhere, optionally filtered.
func (c *Client) WorldwideBusinessEvents(ctx context.Context, query string, offset, limit int) (*ContentPage, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	setPage(params, offset, limit)

	var page ContentPage
	if err := c.getJSON(ctx, "/business-events", params, "", &page); err != nil {
		return nil, fmt.Errorf("worldwide business events: %w", err)
	}
	return &page, nil
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/health", nil, "", nil)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, token string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", ErrUpstream, err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	return nil
}

func setBias(params url.Values, bias *models.LatLng) {
	if bias == nil {
		return
	}
	params.Set("lat", strconv.FormatFloat(bias.Latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(bias.Longitude, 'f', -1, 64))
}

func setPage(params url.Values, offset, limit int) {
	params.Set("offset", strconv.Itoa(offset))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
}
