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

// Unkink splits a self-intersecting ring into simple loops. Every
// pairwise self-intersection point is inserted into the ring, then the
// vertex walk pinches off a loop each time a previously visited
// intersection point recurs. A simple input comes back as one loop.
func Unkink(r Ring) []Ring {
	r = dedupRing(r)
	if len(r) < 3 {
		return nil
	}
	aug := selfIntersect(r)

	var loops []Ring
	var stack []sliceVert
	seen := make(map[gridKey]int)
	for _, v := range aug {
		key := snapKey(v.pt)
		if at, ok := seen[key]; ok {
			// Close the loop opened at the earlier occurrence.
			loop := make(Ring, 0, len(stack)-at)
			for _, sv := range stack[at:] {
				loop = append(loop, sv.pt)
			}
			loops = append(loops, loop)
			for _, sv := range stack[at:] {
				delete(seen, snapKey(sv.pt))
			}
			stack = stack[:at]
		}
		seen[key] = len(stack)
		stack = append(stack, v)
	}
	if len(stack) >= 3 {
		loop := make(Ring, 0, len(stack))
		for _, sv := range stack {
			loop = append(loop, sv.pt)
		}
		loops = append(loops, loop)
	}

	out := loops[:0]
	for _, l := range loops {
		l = dedupRing(l)
		if len(l) >= 3 && l.Area() > Epsilon {
			out = append(out, l)
		}
	}
	return out
}

// selfIntersect returns the ring's vertices with every proper
// self-intersection point inserted on both edges involved.
func selfIntersect(r Ring) []sliceVert {
	n := len(r)
	type hit struct {
		t  float64
		pt r2.Point
	}
	perEdge := make([][]hit, n)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue // adjacent edges share a vertex, not a kink
			}
			c, d := r[j], r[(j+1)%n]
			x, ok := SegmentIntersection(a, b, c, d)
			if !ok {
				continue
			}
			if PointsEqual(x, a) || PointsEqual(x, b) || PointsEqual(x, c) || PointsEqual(x, d) {
				continue
			}
			la, lc := Dist(a, b), Dist(c, d)
			if la > 0 {
				perEdge[i] = append(perEdge[i], hit{t: Dist(a, x) / la, pt: x})
			}
			if lc > 0 {
				perEdge[j] = append(perEdge[j], hit{t: Dist(c, x) / lc, pt: x})
			}
		}
	}

	var aug []sliceVert
	for i, p := range r {
		aug = append(aug, sliceVert{pt: p, crossID: -1})
		hits := perEdge[i]
		sort.Slice(hits, func(a, b int) bool { return hits[a].t < hits[b].t })
		for _, h := range hits {
			aug = append(aug, sliceVert{pt: h.pt, crossID: 0})
		}
	}
	return aug
}
