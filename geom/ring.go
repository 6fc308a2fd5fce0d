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
	"github.com/golang/geo/r2"
)

// Ring is a closed sequence of vertices. The closing edge from the
// last vertex back to the first is implicit; the first vertex is not
// repeated.
type Ring []r2.Point

// Polygon is an outer ring followed by zero or more hole rings.
type Polygon []Ring

// MultiPolygon is a set of polygons.
type MultiPolygon []Polygon

// RingFromClosed builds a Ring from a coordinate sequence whose last
// point may repeat the first.
func RingFromClosed(pts []r2.Point) Ring {
	if len(pts) > 1 && PointsEqual(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	r := make(Ring, len(pts))
	copy(r, pts)
	return r
}

// Closed returns the ring's coordinates with the first vertex repeated
// at the end.
func (r Ring) Closed() []r2.Point {
	if len(r) == 0 {
		return nil
	}
	out := make([]r2.Point, len(r)+1)
	copy(out, r)
	out[len(r)] = r[0]
	return out
}

// SignedArea returns the shoelace area: positive for counter-clockwise
// vertex order, negative for clockwise.
func (r Ring) SignedArea() float64 {
	if len(r) < 3 {
		return 0
	}
	var sum float64
	for i, p := range r {
		q := r[(i+1)%len(r)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Area returns the absolute enclosed area.
func (r Ring) Area() float64 {
	a := r.SignedArea()
	if a < 0 {
		return -a
	}
	return a
}

// IsCCW reports whether the ring winds counter-clockwise.
func (r Ring) IsCCW() bool { return r.SignedArea() > 0 }

// Reversed returns the ring with opposite winding.
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Envelope returns the axis-aligned bounding rectangle.
func (r Ring) Envelope() r2.Rect {
	if len(r) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(r...)
}

// Perimeter returns the total boundary length.
func (r Ring) Perimeter() float64 {
	var sum float64
	for i, p := range r {
		sum += Dist(p, r[(i+1)%len(r)])
	}
	return sum
}

// Centroid returns the area centroid, falling back to the vertex mean
// for degenerate rings.
func (r Ring) Centroid() r2.Point {
	a := r.SignedArea()
	if a == 0 {
		var c r2.Point
		for _, p := range r {
			c = c.Add(p)
		}
		if len(r) > 0 {
			c = c.Mul(1 / float64(len(r)))
		}
		return c
	}
	var c r2.Point
	for i, p := range r {
		q := r[(i+1)%len(r)]
		cross := p.X*q.Y - q.X*p.Y
		c.X += (p.X + q.X) * cross
		c.Y += (p.Y + q.Y) * cross
	}
	return c.Mul(1 / (6 * a))
}

// onBoundary reports whether q lies within tol of any ring edge.
func (r Ring) onBoundary(q r2.Point, tol float64) bool {
	for i, p := range r {
		if PointOnSegment(q, p, r[(i+1)%len(r)], tol) {
			return true
		}
	}
	return false
}

// ContainsPoint reports whether q is inside the ring by ray casting.
// A point on the boundary (Epsilon tolerance) counts as inside unless
// ignoreBoundary is set.
func (r Ring) ContainsPoint(q r2.Point, ignoreBoundary bool) bool {
	if len(r) < 3 {
		return false
	}
	if r.onBoundary(q, Epsilon) {
		return !ignoreBoundary
	}
	inside := false
	for i, a := range r {
		b := r[(i+1)%len(r)]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if q.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Outer returns the polygon's outer ring, or nil for an empty polygon.
func (p Polygon) Outer() Ring {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Area returns the outer area minus the hole areas.
func (p Polygon) Area() float64 {
	if len(p) == 0 {
		return 0
	}
	a := p[0].Area()
	for _, h := range p[1:] {
		a -= h.Area()
	}
	return a
}

// Envelope returns the envelope of the outer ring.
func (p Polygon) Envelope() r2.Rect { return p.Outer().Envelope() }

// ContainsPoint reports whether q is inside the outer ring and outside
// every hole.
func (p Polygon) ContainsPoint(q r2.Point, ignoreBoundary bool) bool {
	if len(p) == 0 || !p[0].ContainsPoint(q, ignoreBoundary) {
		return false
	}
	for _, h := range p[1:] {
		if h.ContainsPoint(q, !ignoreBoundary) {
			return false
		}
	}
	return true
}

// dedupRing removes consecutive duplicate vertices (Epsilon) and the
// closing duplicate if present.
func dedupRing(r Ring) Ring {
	if len(r) == 0 {
		return r
	}
	out := Ring{r[0]}
	for _, p := range r[1:] {
		if !PointsEqual(p, out[len(out)-1]) {
			out = append(out, p)
		}
	}
	if len(out) > 1 && PointsEqual(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}
