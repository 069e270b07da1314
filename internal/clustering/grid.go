// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package clustering

import (
	"math"
	"sort"

	"github.com/tomtom215/waypoint/internal/geo"
)

// cellKey identifies a grid cell.
type cellKey struct {
	X int // longitude cell
	Y int // latitude cell
}

// neighbour is a candidate index together with its planar distance to the
// query point.
type neighbour struct {
	index    int
	distance float64
}

// grid is a uniform spatial hash over planar degree space. With a cell size
// equal to the search radius, every point closer than the radius lives in
// the query cell or one of its eight neighbours.
//
// A grid is built once per clustering pass and is not safe for concurrent
// mutation.
type grid struct {
	cellSize float64
	cells    map[cellKey][]int
	points   []geo.Point
}

func newGrid(cellSize float64, points []geo.Point) *grid {
	g := &grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int, len(points)),
		points:   points,
	}
	for i, p := range points {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *grid) key(p geo.Point) cellKey {
	return cellKey{
		X: int(math.Floor(p.Lng / g.cellSize)),
		Y: int(math.Floor(p.Lat / g.cellSize)),
	}
}

// within returns every index other than seed that is not consumed and lies
// strictly closer than radius to points[seed], nearest first. Ties are
// broken by index so the result matches a linear scan.
func (g *grid) within(seed int, radius float64, consumed []bool) []neighbour {
	origin := g.points[seed]
	center := g.key(origin)

	var out []neighbour
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, idx := range g.cells[cellKey{X: center.X + dx, Y: center.Y + dy}] {
				if idx == seed || consumed[idx] {
					continue
				}
				d := geo.PlanarDistance(origin, g.points[idx])
				if d < radius {
					out = append(out, neighbour{index: idx, distance: d})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].distance != out[j].distance {
			return out[i].distance < out[j].distance
		}
		return out[i].index < out[j].index
	})
	return out
}
