// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package aggregator

import (
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/sources"
)

// Merge flattens the pages of one source into a single candidate list in
// source order. Unmappable candidates are kept; see models.FilterMappable.
//
//   - collections: every collection's items, tagged with the parent id and
//     name; an item saved in several collections appears once, under the
//     first
//   - nearby_events: primary events first, then local events not already seen
//   - everything else: items of each page in order
func Merge(kind sources.Kind, pages []sources.Page) []models.MapMarkerCandidate {
	switch kind {
	case sources.KindCollections:
		return flattenCollections(pages)
	case sources.KindNearbyEvents:
		var primary, local []models.MapMarkerCandidate
		for i := range pages {
			primary = append(primary, pages[i].Items...)
			local = append(local, pages[i].Local...)
		}
		return MergeEvents(primary, local)
	default:
		out := make([]models.MapMarkerCandidate, 0, countItems(pages))
		for i := range pages {
			out = append(out, pages[i].Items...)
		}
		return out
	}
}

// MergeEvents merges business events by id. The primary entry wins on
// collision and output order is primary order followed by unseen local
// entries.
func MergeEvents(primary, local []models.MapMarkerCandidate) []models.MapMarkerCandidate {
	seen := make(map[string]struct{}, len(primary)+len(local))
	out := make([]models.MapMarkerCandidate, 0, len(primary)+len(local))
	for _, list := range [][]models.MapMarkerCandidate{primary, local} {
		for i := range list {
			if _, dup := seen[list[i].ID]; dup {
				continue
			}
			seen[list[i].ID] = struct{}{}
			out = append(out, list[i])
		}
	}
	return out
}

func flattenCollections(pages []sources.Page) []models.MapMarkerCandidate {
	out := make([]models.MapMarkerCandidate, 0)
	seen := make(map[string]struct{})
	for i := range pages {
		for _, col := range pages[i].Collections {
			for _, item := range col.Items {
				if _, dup := seen[item.ID]; dup {
					continue
				}
				seen[item.ID] = struct{}{}
				item.CollectionID = col.ID
				item.CollectionName = col.Name
				out = append(out, item)
			}
		}
	}
	return out
}

func countItems(pages []sources.Page) int {
	n := 0
	for i := range pages {
		n += len(pages[i].Items)
	}
	return n
}
