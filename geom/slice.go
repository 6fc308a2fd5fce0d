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

package geom

import (
	"sort"

	"github.com/golang/geo/r2"
)

// sliceBoundaryTol is the tolerance for treating a slicing-line
// endpoint as lying on the polygon boundary.
const sliceBoundaryTol = 5e-5

// PolygonSlice cuts poly with the given polyline and returns the
// resulting sub-polygons. The original polygon is returned unchanged
// (as a one-element slice) when the line misses the polygon, when the
// cut is degenerate, or when poly carries holes (holes are never cut).
//
// Leading and trailing line points strictly inside the polygon are
// trimmed first so a dead-ended cut does not produce an empty kerf.
// A cut with an odd number of boundary crossings is attempted only if
// one of the line's endpoints lies on the boundary; the endpoint is
// then promoted to a crossing.
func PolygonSlice(poly Polygon, line []r2.Point) []Polygon {
	if len(poly) != 1 || len(poly[0]) < 3 || len(line) < 2 {
		return []Polygon{poly}
	}
	ring := dedupRing(poly[0])
	if len(ring) < 3 {
		return []Polygon{poly}
	}

	line = trimInterior(ring, line)
	if len(line) < 2 {
		return []Polygon{poly}
	}

	cross := findCrossings(ring, line)
	if len(cross)%2 == 1 {
		cross = promoteEndpoints(ring, line, cross)
	}
	if len(cross) < 2 || len(cross)%2 == 1 {
		return []Polygon{poly}
	}

	rings := rechain(ring, line, cross)
	if len(rings) == 0 {
		return []Polygon{poly}
	}
	out := make([]Polygon, 0, len(rings))
	for _, r := range rings {
		r = dedupRing(r)
		if len(r) < 3 || r.Area() < Epsilon {
			continue
		}
		if !r.IsCCW() {
			r = r.Reversed()
		}
		out = append(out, Polygon{r})
	}
	if len(out) == 0 {
		return []Polygon{poly}
	}
	return out
}

// trimInterior drops leading and trailing line points that sit
// strictly inside the ring.
func trimInterior(ring Ring, line []r2.Point) []r2.Point {
	lo, hi := 0, len(line)
	for lo < hi && ring.ContainsPoint(line[lo], true) {
		lo++
	}
	for hi > lo && ring.ContainsPoint(line[hi-1], true) {
		hi--
	}
	// Keep one point beyond the interior run on each side so the
	// crossing segments survive.
	if lo > 0 {
		lo--
	}
	if hi < len(line) {
		hi++
	}
	return line[lo:hi]
}

// crossing is a point where the slicing line meets the ring boundary.
type crossing struct {
	pt       r2.Point
	edge     int     // ring edge index the crossing lies on
	edgeT    float64 // parameter along that edge
	lineDist float64 // arc length along the slicing line
}

// findCrossings intersects every line segment with every ring edge and
// returns the deduplicated crossings ordered along the line.
func findCrossings(ring Ring, line []r2.Point) []crossing {
	var cross []crossing
	var walked float64
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		segLen := Dist(a, b)
		for j := range ring {
			c, d := ring[j], ring[(j+1)%len(ring)]
			x, ok := SegmentIntersection(a, b, c, d)
			if !ok {
				continue
			}
			dup := false
			for _, prev := range cross {
				if PointsEqual(prev.pt, x) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			el := Dist(c, d)
			t := 0.0
			if el > 0 {
				t = Dist(c, x) / el
			}
			cross = append(cross, crossing{
				pt:       x,
				edge:     j,
				edgeT:    t,
				lineDist: walked + Dist(a, x),
			})
		}
		walked += segLen
	}
	sort.Slice(cross, func(i, j int) bool { return cross[i].lineDist < cross[j].lineDist })
	return cross
}

// promoteEndpoints adds a trimmed line endpoint lying on the boundary
// as a crossing, recovering an odd crossing count.
func promoteEndpoints(ring Ring, line []r2.Point, cross []crossing) []crossing {
	ends := []struct {
		pt   r2.Point
		dist float64
	}{
		{line[0], 0},
		{line[len(line)-1], polylineLength(line)},
	}
	for _, end := range ends {
		for j := range ring {
			c, d := ring[j], ring[(j+1)%len(ring)]
			if !PointOnSegment(end.pt, c, d, sliceBoundaryTol) {
				continue
			}
			dup := false
			for _, prev := range cross {
				if PointsEqual(prev.pt, end.pt) {
					dup = true
					break
				}
			}
			if !dup {
				el := Dist(c, d)
				t := 0.0
				if el > 0 {
					t = Dist(c, end.pt) / el
				}
				cross = append(cross, crossing{pt: end.pt, edge: j, edgeT: t, lineDist: end.dist})
			}
			break
		}
	}
	sort.Slice(cross, func(i, j int) bool { return cross[i].lineDist < cross[j].lineDist })
	return cross
}

func polylineLength(pts []r2.Point) float64 {
	var sum float64
	for i := 0; i+1 < len(pts); i++ {
		sum += Dist(pts[i], pts[i+1])
	}
	return sum
}

// sliceVert is a vertex of the augmented ring: an original ring vertex
// or an inserted crossing (crossID >= 0).
type sliceVert struct {
	pt      r2.Point
	crossID int
}

// rechain splits the ring by each interior span of the line in turn.
func rechain(ring Ring, line []r2.Point, cross []crossing) []Ring {
	aug := augmentRing(ring, cross)

	// Work on vertex lists; each chain split replaces one list by two.
	rings := [][]sliceVert{aug}
	for k := 0; k+1 < len(cross); k++ {
		c1, c2 := cross[k], cross[k+1]
		mid := lineAt(line, (c1.lineDist+c2.lineDist)/2)
		if !ring.ContainsPoint(mid, true) {
			continue // span between crossings runs outside the polygon
		}
		chord := lineSpan(line, c1, c2)
		idx := -1
		for i, r := range rings {
			if hasCross(r, k) && hasCross(r, k+1) {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		a, b := splitAt(rings[idx], k, k+1, chord)
		rings = append(rings[:idx], rings[idx+1:]...)
		rings = append(rings, a, b)
	}

	out := make([]Ring, 0, len(rings))
	for _, r := range rings {
		ring := make(Ring, len(r))
		for i, v := range r {
			ring[i] = v.pt
		}
		out = append(out, ring)
	}
	return out
}

// augmentRing inserts the crossing points into the ring's vertex list
// in boundary order, tagging them with their crossing ids.
func augmentRing(ring Ring, cross []crossing) []sliceVert {
	perEdge := make(map[int][]int)
	for id, c := range cross {
		perEdge[c.edge] = append(perEdge[c.edge], id)
	}
	var aug []sliceVert
	for j, p := range ring {
		aug = append(aug, sliceVert{pt: p, crossID: -1})
		ids := perEdge[j]
		sort.Slice(ids, func(a, b int) bool { return cross[ids[a]].edgeT < cross[ids[b]].edgeT })
		for _, id := range ids {
			c := cross[id]
			if PointsEqual(c.pt, p) {
				// Crossing coincides with the vertex just emitted.
				aug[len(aug)-1].crossID = id
				continue
			}
			aug = append(aug, sliceVert{pt: c.pt, crossID: id})
		}
	}
	return aug
}

// lineAt returns the point at the given arc length along the polyline.
func lineAt(line []r2.Point, dist float64) r2.Point {
	var walked float64
	for i := 0; i+1 < len(line); i++ {
		segLen := Dist(line[i], line[i+1])
		if walked+segLen >= dist && segLen > 0 {
			return Lerp(line[i], line[i+1], (dist-walked)/segLen)
		}
		walked += segLen
	}
	return line[len(line)-1]
}

// lineSpan returns the interior points of the polyline strictly
// between two crossings, in line order.
func lineSpan(line []r2.Point, c1, c2 crossing) []r2.Point {
	var pts []r2.Point
	var walked float64
	for i := 0; i+1 < len(line); i++ {
		walked += Dist(line[i], line[i+1])
		if walked > c1.lineDist+Epsilon && walked < c2.lineDist-Epsilon {
			pts = append(pts, line[i+1])
		}
	}
	return pts
}

func hasCross(verts []sliceVert, id int) bool {
	for _, v := range verts {
		if v.crossID == id {
			return true
		}
	}
	return false
}

// splitAt cuts the vertex cycle at crossings id1 and id2, closing each
// half with the chord points between them.
func splitAt(verts []sliceVert, id1, id2 int, chord []r2.Point) ([]sliceVert, []sliceVert) {
	i1, i2 := -1, -1
	for i, v := range verts {
		if v.crossID == id1 {
			i1 = i
		}
		if v.crossID == id2 {
			i2 = i
		}
	}
	n := len(verts)
	// Path from i1 forward to i2, inclusive.
	var a []sliceVert
	for i := i1; ; i = (i + 1) % n {
		a = append(a, verts[i])
		if i == i2 {
			break
		}
	}
	// Path from i2 forward to i1, inclusive.
	var b []sliceVert
	for i := i2; ; i = (i + 1) % n {
		b = append(b, verts[i])
		if i == i1 {
			break
		}
	}
	// Close a by walking the chord from c2 back to c1, and b by
	// walking it from c1 to c2.
	for i := len(chord) - 1; i >= 0; i-- {
		a = append(a, sliceVert{pt: chord[i], crossID: -1})
	}
	for _, p := range chord {
		b = append(b, sliceVert{pt: p, crossID: -1})
	}
	return a, b
}
