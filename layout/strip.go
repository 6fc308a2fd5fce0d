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
	"github.com/golang/geo/r2"

	"github.com/oscarcs/cityplan/geom"
	"github.com/oscarcs/cityplan/streetgraph"
)

// boundaryTol matches strip boundaries against the block boundary.
const boundaryTol = 1e-6

// Strip is the part of a block assigned to one bounding street; lots
// are carved from it.
type Strip struct {
	Block   *Block
	Street  *streetgraph.LogicalStreet
	Polygon geom.Polygon
}

// stripSet keys the live strip polygons by street id in street order.
// Corner transfers read and write it sequentially, so each transfer
// observes the geometry left by the previous one.
type stripSet struct {
	order []string
	polys map[string]geom.Polygon
}

func newStripSet() *stripSet {
	return &stripSet{polys: make(map[string]geom.Polygon)}
}

func (s *stripSet) get(id string) (geom.Polygon, bool) {
	p, ok := s.polys[id]
	return p, ok
}

func (s *stripSet) set(id string, p geom.Polygon) {
	if _, ok := s.polys[id]; !ok {
		s.order = append(s.order, id)
	}
	s.polys[id] = p
}

// generateStrips derives the block's skeleton faces, groups them into
// per-street alpha strips, merges those into beta strips, and applies
// the corner transfers.
func (e *Engine) generateStrips(b *Block) []*Strip {
	outer := b.Polygon.Outer()
	sk, err := geom.StraightSkeleton(outer)
	if err != nil {
		e.logger.Warn("straight skeleton failed", "err", err)
		return nil
	}
	depth := e.units(b.MaxLotDepth)

	var faces []geom.Ring
	for _, f := range sk.OffsetFaces(depth) {
		if f.Area() >= FaceMinArea {
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 || len(b.Streets) == 0 {
		return nil
	}
	if len(faces) == 1 {
		// Non-perimeter block: the skeleton produced a single face,
		// which goes to the first bounding street wholesale.
		return []*Strip{{Block: b, Street: b.Streets[0], Polygon: geom.Polygon{faces[0]}}}
	}

	strips := newStripSet()
	e.buildBetaStrips(b, outer, faces, strips)
	e.transferCorners(b, outer, strips)

	var out []*Strip
	for _, id := range strips.order {
		poly, ok := strips.get(id)
		if !ok || poly.Area() <= StripMinArea {
			continue
		}
		out = append(out, &Strip{Block: b, Street: streetByID(b, id), Polygon: poly})
	}
	return out
}

// buildBetaStrips assigns each face to the bounding street its
// exterior segment runs along, then unions each street's faces.
func (e *Engine) buildBetaStrips(b *Block, outer geom.Ring, faces []geom.Ring, strips *stripSet) {
	alpha := make(map[string][]geom.Polygon)
	for _, f := range faces {
		ext, ok := exteriorSegment(f, outer)
		if !ok {
			e.logger.Warn("skeleton face has no exterior segment")
			continue
		}
		for _, s := range b.Streets {
			tol := e.units(s.Width() * 2)
			if streetMatchesSegment(s, ext, tol) {
				alpha[s.ID()] = append(alpha[s.ID()], geom.Polygon{f})
				break
			}
		}
	}

	for _, s := range b.Streets {
		pieces := alpha[s.ID()]
		if len(pieces) == 0 {
			continue
		}
		merged := geom.Dissolve(pieces)
		if len(merged) == 0 {
			continue
		}
		best := merged[0]
		for _, m := range merged[1:] {
			if m.Area() > best.Area() {
				best = m
			}
		}
		if len(merged) > 1 {
			e.logger.Warn("beta strip did not merge into one polygon",
				"street", s.ID(), "pieces", len(merged))
		}
		strips.set(s.ID(), best)
	}
}

// transferCorners moves each corner region from the strip of the
// shorter street to the strip of the longer one. Transfers run
// sequentially against the live strip set.
func (e *Engine) transferCorners(b *Block, outer geom.Ring, strips *stripSet) {
	for i, si := range b.Streets {
		for _, sj := range b.Streets[i+1:] {
			src, dst := si, sj
			if src.Length() > dst.Length() {
				src, dst = dst, src
			}
			e.transferCorner(outer, strips, src, dst)
		}
	}
}

func (e *Engine) transferCorner(outer geom.Ring, strips *stripSet, src, dst *streetgraph.LogicalStreet) {
	srcPoly, ok := strips.get(src.ID())
	if !ok {
		return
	}
	dstPoly, ok := strips.get(dst.ID())
	if !ok {
		return
	}

	for _, shared := range sharedBoundaryEdges(srcPoly, dstPoly, outer) {
		// Re-fetch: an earlier shared edge may already have moved
		// geometry between these strips.
		srcPoly, ok = strips.get(src.ID())
		if !ok {
			return
		}
		dstPoly, _ = strips.get(dst.ID())

		boundaryPt, interiorPt := shared[0], shared[1]
		ray, ok := e.transferRay(interiorPt, srcPoly, outer)
		if !ok {
			continue
		}
		pieces := geom.PolygonSlice(srcPoly, ray)
		if len(pieces) < 2 {
			e.logger.Warn("corner slice produced no cut",
				"src", src.ID(), "dst", dst.ID())
			continue
		}
		var transfer geom.Polygon
		var rest []geom.Polygon
		for _, p := range pieces {
			if transfer == nil && p.ContainsPoint(boundaryPt, false) {
				transfer = p
			} else {
				rest = append(rest, p)
			}
		}
		if transfer == nil || len(rest) == 0 {
			continue
		}
		strips.set(src.ID(), largestPolygon(geom.Dissolve(rest)))
		strips.set(dst.ID(), largestPolygon(geom.Dissolve([]geom.Polygon{dstPoly, transfer})))
	}
}

// transferRay builds the slicing line for a corner transfer: from the
// interior point through the closest point of the strip's exterior
// edge, extended slightly beyond it.
func (e *Engine) transferRay(interiorPt r2.Point, strip geom.Polygon, outer geom.Ring) ([]r2.Point, bool) {
	segs := geom.LineOverlap(strip.Outer().Closed(), outer.Closed(), boundaryTol)
	var (
		best  r2.Point
		found bool
	)
	bestDist := 0.0
	for _, seg := range segs {
		q, _ := geom.ClosestPointOnSegment(interiorPt, seg[0], seg[1])
		d := geom.Dist(interiorPt, q)
		if !found || d < bestDist {
			best, bestDist, found = q, d, true
		}
	}
	if !found || bestDist < geom.Epsilon {
		return nil, false
	}
	dir := best.Sub(interiorPt).Normalize()
	end := best.Add(dir.Mul(e.units(1)))
	return []r2.Point{interiorPt, end}, true
}

// exteriorSegment returns the face edge lying along the block
// boundary.
func exteriorSegment(face geom.Ring, outer geom.Ring) ([2]r2.Point, bool) {
	closed := outer.Closed()
	for i, p := range face {
		q := face[(i+1)%len(face)]
		if onPolyline(p, closed, boundaryTol) && onPolyline(q, closed, boundaryTol) &&
			onPolyline(geom.Lerp(p, q, 0.5), closed, boundaryTol) {
			return [2]r2.Point{p, q}, true
		}
	}
	return [2]r2.Point{}, false
}

// streetMatchesSegment reports whether both endpoints of the segment
// lie within tol of any edge of the street.
func streetMatchesSegment(s *streetgraph.LogicalStreet, seg [2]r2.Point, tol float64) bool {
	for _, edge := range s.Edges() {
		a, b := edge.From().Point(), edge.To().Point()
		if geom.DistToSegment(seg[0], a, b) <= tol && geom.DistToSegment(seg[1], a, b) <= tol {
			return true
		}
	}
	return false
}

// sharedBoundaryEdges returns the edges shared between the two strip
// polygons that touch the block boundary at exactly one endpoint,
// oriented boundary point first, interior point last.
func sharedBoundaryEdges(a, b geom.Polygon, outer geom.Ring) [][2]r2.Point {
	closed := outer.Closed()
	ra, rb := a.Outer(), b.Outer()
	var shared [][2]r2.Point
	for i, p := range ra {
		q := ra[(i+1)%len(ra)]
		if !edgeOnRing(p, q, rb) {
			continue
		}
		pOn := onPolyline(p, closed, boundaryTol)
		qOn := onPolyline(q, closed, boundaryTol)
		switch {
		case pOn && !qOn:
			shared = append(shared, [2]r2.Point{p, q})
		case qOn && !pOn:
			shared = append(shared, [2]r2.Point{q, p})
		}
	}
	return shared
}

// edgeOnRing reports whether the segment (p,q) coincides with an edge
// of the ring in either direction.
func edgeOnRing(p, q r2.Point, r geom.Ring) bool {
	for i, c := range r {
		d := r[(i+1)%len(r)]
		if (geom.PointsEqual(p, c) && geom.PointsEqual(q, d)) ||
			(geom.PointsEqual(p, d) && geom.PointsEqual(q, c)) {
			return true
		}
	}
	return false
}

func onPolyline(p r2.Point, line []r2.Point, tol float64) bool {
	for i := 0; i+1 < len(line); i++ {
		if geom.PointOnSegment(p, line[i], line[i+1], tol) {
			return true
		}
	}
	return false
}

func largestPolygon(polys []geom.Polygon) geom.Polygon {
	if len(polys) == 0 {
		return nil
	}
	best := polys[0]
	for _, p := range polys[1:] {
		if p.Area() > best.Area() {
			best = p
		}
	}
	return best
}

func streetByID(b *Block, id string) *streetgraph.LogicalStreet {
	for _, s := range b.Streets {
		if s.ID() == id {
			return s
		}
	}
	return nil
}
