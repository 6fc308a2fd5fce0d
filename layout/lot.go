//  Copyright (c) 2024 the cityplan authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 		http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package layout

import (
	"fmt"
	"image/color"

	"github.com/golang/geo/r2"

	"github.com/oscarcs/cityplan/geom"
	"github.com/oscarcs/cityplan/streetgraph"
)

// Lot is one street-facing parcel sliced from a strip.
type Lot struct {
	ID      string
	Street  *streetgraph.LogicalStreet
	Polygon geom.Polygon
	Color   color.RGBA
}

// sliceLots cuts a strip into lots: it recovers the strip's street
// edge from the block boundary, places a perpendicular splitting ray
// every lot width along it, and applies the rays in order. A ray that
// would produce a sliver below the minimum lot area is rejected for
// that polygon and logged; the polygon stays whole.
func (e *Engine) sliceLots(strip *Strip) []*Lot {
	street := strip.Street
	if street == nil {
		return nil
	}

	streetEdge := e.streetEdge(strip)
	rays := e.splittingRays(streetEdge, strip.Block.MaxLotDepth)

	polys := []geom.Polygon{strip.Polygon}
	minArea := e.areaUnits(e.minLotArea)
	for ri, ray := range rays {
		var next []geom.Polygon
		for _, p := range polys {
			pieces := geom.PolygonSlice(p, ray)
			if len(pieces) < 2 {
				next = append(next, p)
				continue
			}
			reject := false
			for _, piece := range pieces {
				if piece.Area() < minArea {
					reject = true
					break
				}
			}
			if reject {
				e.logger.Warn("splitting ray rejected, sliver lot",
					"street", street.ID(), "ray", ri)
				next = append(next, p)
				continue
			}
			next = append(next, pieces...)
		}
		polys = next
	}

	lots := make([]*Lot, 0, len(polys))
	for i, p := range polys {
		lots = append(lots, &Lot{
			ID:      fmt.Sprintf("%s-lot-%d", street.ID(), i),
			Street:  street,
			Polygon: p,
			Color:   e.randomColor(),
		})
	}
	return lots
}

// streetEdge assembles the strip's street-facing edge: the overlap of
// the strip boundary with the block boundary, stitched end to end.
// When the overlap cannot be fully joined the assembled prefix is
// used.
func (e *Engine) streetEdge(strip *Strip) []r2.Point {
	segs := geom.LineOverlap(
		strip.Polygon.Outer().Closed(),
		strip.Block.Polygon.Outer().Closed(),
		boundaryTol,
	)
	return geom.StitchSegments(segs, geom.Epsilon)
}

// splittingRays walks the street edge in arc length and emits a
// perpendicular ray every lot width, each extending the lot depth
// plus the overhang to both sides.
func (e *Engine) splittingRays(edge []r2.Point, maxLotDepth float64) [][]r2.Point {
	if len(edge) < 2 {
		return nil
	}
	spacing := e.units(e.lotWidth)
	halfLen := e.units(maxLotDepth + RayOverhang)

	var rays [][]r2.Point
	walked := 0.0
	nextAt := spacing
	for i := 0; i+1 < len(edge); i++ {
		a, b := edge[i], edge[i+1]
		segLen := geom.Dist(a, b)
		if segLen == 0 {
			continue
		}
		dir := b.Sub(a).Mul(1 / segLen)
		normal := dir.Ortho()
		for nextAt <= walked+segLen {
			pt := a.Add(dir.Mul(nextAt - walked))
			rays = append(rays, []r2.Point{
				pt.Sub(normal.Mul(halfLen)),
				pt.Add(normal.Mul(halfLen)),
			})
			nextAt += spacing
		}
		walked += segLen
	}
	return rays
}
