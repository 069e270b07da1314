// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package sources

import (
	"context"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/upstream"
)

type contentStrategy struct {
	api      upstream.API
	pageSize int
}

func (s *contentStrategy) Kind() Kind { return KindContent }

func (s *contentStrategy) Enabled(req Request) error {
	if _, ok := req.(ContentRequest); !ok {
		return wrongRequest(KindContent, req)
	}
	if s.api == nil {
		return unavailable("upstream not configured")
	}
	return nil
}

func (s *contentStrategy) FetchPage(ctx context.Context, req Request, offset int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(ContentRequest)
	page, err := s.api.SearchContent(ctx, r.Query, r.Bias, offset, s.pageSize)
	if err != nil {
		return Page{}, backendError("content search", err)
	}
	return Page{Items: page.Items, NextOffset: offset + len(page.Items), HasMore: page.HasMore}, nil
}

type nearbyEventsStrategy struct {
	api      upstream.API
	pageSize int
}

func (s *nearbyEventsStrategy) Kind() Kind { return KindNearbyEvents }

func (s *nearbyEventsStrategy) Enabled(req Request) error {
	r, ok := req.(NearbyEventsRequest)
	if !ok {
		return wrongRequest(KindNearbyEvents, req)
	}
	if s.api == nil {
		return unavailable("upstream not configured")
	}
	if r.Token == "" {
		return unavailable("no authorization")
	}
	if r.Bias == nil {
		return unavailable("no location")
	}
	return nil
}

// FetchPage returns the primary events as Items and the supplementary list
// as Local. With a radius set, local events with coordinates farther than
// the radius from the bias point are dropped.
func (s *nearbyEventsStrategy) FetchPage(ctx context.Context, req Request, offset int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(NearbyEventsRequest)
	page, err := s.api.NearbyBusinessEvents(ctx, r.Token, *r.Bias, r.RadiusKm, offset, s.pageSize)
	if err != nil {
		return Page{}, backendError("nearby business events", err)
	}

	local := page.LocalEvents
	if r.RadiusKm > 0 {
		local = withinRadius(local, geo.Point{Lat: r.Bias.Latitude, Lng: r.Bias.Longitude}, r.RadiusKm)
	}
	return Page{
		Items:      page.Events,
		Local:      local,
		NextOffset: offset + len(page.Events),
		HasMore:    page.HasMore,
	}, nil
}

func withinRadius(items []models.MapMarkerCandidate, center geo.Point, radiusKm float64) []models.MapMarkerCandidate {
	out := make([]models.MapMarkerCandidate, 0, len(items))
	for i := range items {
		if items[i].Mappable() {
			lat, lng := items[i].Coordinates()
			if !geo.WithinRadiusKm(center, geo.Point{Lat: lat, Lng: lng}, radiusKm) {
				continue
			}
		}
		out = append(out, items[i])
	}
	return out
}

type worldwideEventsStrategy struct {
	api      upstream.API
	pageSize int
}

func (s *worldwideEventsStrategy) Kind() Kind { return KindWorldwideEvents }

func (s *worldwideEventsStrategy) Enabled(req Request) error {
	if _, ok := req.(WorldwideEventsRequest); !ok {
		return wrongRequest(KindWorldwideEvents, req)
	}
	if s.api == nil {
		return unavailable("upstream not configured")
	}
	return nil
}

func (s *worldwideEventsStrategy) FetchPage(ctx context.Context, req Request, offset int) (Page, error) {
	if err := s.Enabled(req); err != nil {
		return Page{}, err
	}
	r := req.(WorldwideEventsRequest)
	page, err := s.api.WorldwideBusinessEvents(ctx, r.Query, offset, s.pageSize)
	if err != nil {
		return Page{}, backendError("worldwide business events", err)
	}
	return Page{Items: page.Items, NextOffset: offset + len(page.Items), HasMore: page.HasMore}, nil
}
