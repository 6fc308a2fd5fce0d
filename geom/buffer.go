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
	"math"

	"github.com/golang/geo/r2"
)

// JoinStyle selects how buffer corners are closed.
type JoinStyle int

const (
	// JoinRound closes convex corners with a circular arc.
	JoinRound JoinStyle = iota
	// JoinFlat connects the two offset edges directly.
	JoinFlat
	// JoinSquare caps the corner with the mitre point, clipped to
	// twice the buffer distance.
	JoinSquare
)

// defaultBufferSteps is the arc resolution for round joins.
const defaultBufferSteps = 8

// BufferOptions configures Buffer. The zero value means round joins
// with the default arc resolution.
type BufferOptions struct {
	Join  JoinStyle
	Steps int
}

// Buffer offsets the polygon boundary by distance: outward for
// positive distances, inward for negative ones. Holes are offset in
// lockstep so the wall thickness stays uniform. An inward buffer that
// consumes the polygon returns (nil, ErrCollapsed); an inward buffer
// that pinches the polygon into several pieces keeps the largest.
func Buffer(p Polygon, distance float64, opts *BufferOptions) (Polygon, error) {
	if len(p) == 0 || len(p[0]) < 3 {
		return nil, ErrDegenerate
	}
	if distance == 0 {
		out := make(Polygon, len(p))
		copy(out, p)
		return out, nil
	}
	join, steps := JoinRound, defaultBufferSteps
	if opts != nil {
		join = opts.Join
		if opts.Steps > 0 {
			steps = opts.Steps
		}
	}

	outer := offsetLoops(p[0], distance, join, steps)
	if len(outer) == 0 {
		if distance < 0 {
			return nil, ErrCollapsed
		}
		return nil, ErrDegenerate
	}
	best := outer[0]
	for _, l := range outer[1:] {
		if l.Area() > best.Area() {
			best = l
		}
	}
	result := Polygon{best}

	// Holes shrink under an outward polygon buffer and grow under an
	// inward one, so they are offset with the opposite sign. A hole
	// that collapses simply disappears.
	for _, h := range p[1:] {
		loops := offsetLoops(h, -distance, join, steps)
		for _, l := range loops {
			if best.ContainsPoint(l[0], true) {
				result = append(result, l.Reversed())
			}
		}
	}
	return result, nil
}

// offsetLoops offsets a single ring and cleans the result into simple
// loops. The ring is normalized to CCW first; returned loops are CCW.
func offsetLoops(r Ring, distance float64, join JoinStyle, steps int) []Ring {
	r = dedupRing(r)
	if len(r) < 3 {
		return nil
	}
	ccw := r.IsCCW()
	if !ccw {
		r = r.Reversed()
	}
	raw := offsetRing(r, distance, join, steps)
	loops := Unkink(raw)

	var out []Ring
	for _, l := range loops {
		if !l.IsCCW() {
			continue // inverted remnant of a crossed corner
		}
		if distance < 0 {
			// A genuine inward offset lies inside the source ring.
			if !r.ContainsPoint(l.Centroid(), false) {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

// offsetRing displaces every edge of a CCW ring by distance along its
// outward normal (inward for negative distances) and joins the
// displaced edges corner by corner. The result may self-intersect;
// callers clean it with Unkink.
func offsetRing(r Ring, distance float64, join JoinStyle, steps int) Ring {
	n := len(r)
	var out Ring
	for i := 0; i < n; i++ {
		prev := r[(i-1+n)%n]
		cur := r[i]
		next := r[(i+1)%n]

		d1 := cur.Sub(prev).Normalize()
		d2 := next.Sub(cur).Normalize()
		// Outward normal of a CCW ring is the travel direction
		// rotated -90 degrees.
		n1 := r2.Point{X: d1.Y, Y: -d1.X}.Mul(distance)
		n2 := r2.Point{X: d2.Y, Y: -d2.X}.Mul(distance)

		p1 := cur.Add(n1) // end of the offset copy of (prev, cur)
		p2 := cur.Add(n2) // start of the offset copy of (cur, next)
		if PointsEqual(p1, p2) {
			out = append(out, p1)
			continue
		}

		cross := d1.Cross(d2)
		if cross*distance <= 0 {
			// The offset edges cross on this side; connect directly
			// and let Unkink remove the kink.
			out = append(out, p1, p2)
			continue
		}
		switch join {
		case JoinFlat:
			out = append(out, p1, p2)
		case JoinSquare:
			out = append(out, p1, mitrePoint(cur, n1, n2, distance), p2)
		default:
			out = append(out, joinArc(cur, n1, n2, steps)...)
		}
	}
	return dedupRing(out)
}

// joinArc returns the arc around center from offset vector m1 to m2,
// sweeping the shorter way, with steps subdivisions.
func joinArc(center r2.Point, m1, m2 r2.Point, steps int) []r2.Point {
	a1 := math.Atan2(m1.Y, m1.X)
	a2 := math.Atan2(m2.Y, m2.X)
	sweep := a2 - a1
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep < -math.Pi {
		sweep += 2 * math.Pi
	}
	radius := m1.Norm()
	pts := make([]r2.Point, 0, steps+1)
	for k := 0; k <= steps; k++ {
		a := a1 + sweep*float64(k)/float64(steps)
		pts = append(pts, center.Add(r2.Point{X: math.Cos(a) * radius, Y: math.Sin(a) * radius}))
	}
	return pts
}

// mitrePoint returns the corner tip where the two offset edges would
// meet, clipped to twice the offset distance from the corner.
func mitrePoint(center r2.Point, m1, m2 r2.Point, distance float64) r2.Point {
	bis := m1.Add(m2)
	if bis.Norm() < DenomTolerance {
		return center.Add(m1)
	}
	half := AngleBetween(m1, m2) / 2
	length := math.Abs(distance) / math.Cos(half)
	limit := 2 * math.Abs(distance)
	if length > limit {
		length = limit
	}
	return center.Add(bis.Normalize().Mul(length))
}
