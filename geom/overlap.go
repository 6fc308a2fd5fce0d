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

// LineOverlap returns the portions of line that lie within tol of the
// boundary polyline. Each returned element is a two-point segment in
// line order. Adjacent overlapping pieces of a single line segment are
// merged before being returned.
func LineOverlap(line, boundary []r2.Point, tol float64) [][]r2.Point {
	var out [][]r2.Point
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		pieces := segmentOverlaps(a, b, boundary, tol)
		out = append(out, pieces...)
	}
	return out
}

// segmentOverlaps collects the sub-intervals of (a,b) that lie on the
// boundary, merged and emitted in order of increasing parameter.
func segmentOverlaps(a, b r2.Point, boundary []r2.Point, tol float64) [][]r2.Point {
	type span struct{ lo, hi float64 }
	var spans []span
	for j := 0; j+1 < len(boundary); j++ {
		c, d := boundary[j], boundary[j+1]
		lo, hi, ok := overlapInterval(a, b, c, d, tol)
		if ok {
			spans = append(spans, span{lo, hi})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.lo <= last.hi+Epsilon {
			if s.hi > last.hi {
				last.hi = s.hi
			}
		} else {
			merged = append(merged, s)
		}
	}
	var out [][]r2.Point
	for _, s := range merged {
		if s.hi-s.lo < Epsilon {
			continue
		}
		out = append(out, []r2.Point{Lerp(a, b, s.lo), Lerp(a, b, s.hi)})
	}
	return out
}

// overlapInterval returns the parameter interval of (a,b) shared with
// (c,d) when the two segments are near-collinear within tol.
func overlapInterval(a, b, c, d r2.Point, tol float64) (float64, float64, bool) {
	ab := b.Sub(a)
	len2 := ab.Dot(ab)
	if len2 == 0 {
		return 0, 0, false
	}
	// At least one endpoint of the candidate must lie within tol of
	// (a,b), or (a,b) must lie within tol of the candidate; the
	// midpoint check below rejects segments that merely touch.
	if DistToSegment(c, a, b) > tol && DistToSegment(d, a, b) > tol {
		// (c,d) may still contain (a,b); check the other direction.
		if DistToSegment(a, c, d) > tol || DistToSegment(b, c, d) > tol {
			return 0, 0, false
		}
	}
	tc := c.Sub(a).Dot(ab) / len2
	td := d.Sub(a).Dot(ab) / len2
	if tc > td {
		tc, td = td, tc
	}
	lo, hi := tc, td
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	if hi <= lo {
		return 0, 0, false
	}
	// The clamped span must actually lie on (c,d).
	mid := Lerp(a, b, (lo+hi)/2)
	if DistToSegment(mid, c, d) > tol {
		return 0, 0, false
	}
	return lo, hi, true
}

// StitchSegments joins two-point segments end to end into a single
// polyline, matching endpoints within eps. Segments are consumed
// greedily from the input order; pieces that cannot be joined once the
// chain stalls are dropped, and the assembled prefix is returned.
func StitchSegments(segs [][]r2.Point, eps float64) []r2.Point {
	if len(segs) == 0 {
		return nil
	}
	used := make([]bool, len(segs))
	chain := append([]r2.Point{}, segs[0]...)
	used[0] = true
	for {
		extended := false
		for i, s := range segs {
			if used[i] || len(s) < 2 {
				continue
			}
			head, tail := chain[0], chain[len(chain)-1]
			switch {
			case pointsWithin(tail, s[0], eps):
				chain = append(chain, s[1:]...)
			case pointsWithin(tail, s[len(s)-1], eps):
				chain = append(chain, reversePts(s)[1:]...)
			case pointsWithin(head, s[len(s)-1], eps):
				chain = append(append([]r2.Point{}, s[:len(s)-1]...), chain...)
			case pointsWithin(head, s[0], eps):
				rs := reversePts(s)
				chain = append(rs[:len(rs)-1], chain...)
			default:
				continue
			}
			used[i] = true
			extended = true
			break
		}
		if !extended {
			return chain
		}
	}
}

func pointsWithin(a, b r2.Point, eps float64) bool {
	return Dist(a, b) <= eps
}

func reversePts(pts []r2.Point) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
