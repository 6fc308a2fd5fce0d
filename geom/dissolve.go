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
	"sort"

	"github.com/golang/geo/r2"
)

// dissolveSnap quantizes coordinates so that edges shared between
// adjacent pieces cancel exactly.
const dissolveSnap = 1e-9

type gridKey struct{ x, y int64 }

func snapKey(p r2.Point) gridKey {
	return gridKey{
		x: int64(math.Round(p.X / dissolveSnap)),
		y: int64(math.Round(p.Y / dissolveSnap)),
	}
}

// dissolveEdge is one directed boundary edge surviving cancellation.
type dissolveEdge struct {
	from, to   gridKey
	a, b       r2.Point
	used       bool
}

// Dissolve unions polygons that touch along shared boundary edges.
// Opposite directed edges cancel; the surviving edges are re-chained
// into boundary rings. Counter-clockwise rings become outer rings and
// clockwise rings are attached as holes of the smallest containing
// outer ring. Polygons that share no boundary come back unchanged.
//
// Shared boundaries must coincide vertex-for-vertex (within the snap
// grid); the pipeline guarantees this because every union it performs
// is between pieces sliced from, or offset in lockstep with, the same
// geometry.
func Dissolve(polys []Polygon) []Polygon {
	if len(polys) <= 1 {
		return polys
	}

	// Collect directed edges of every ring, outer rings CCW and holes
	// CW, so shared boundaries between adjacent pieces run in opposite
	// directions and cancel.
	counts := make(map[[2]gridKey]int)
	var edges []*dissolveEdge
	addRing := func(r Ring, ccw bool) {
		r = dedupRing(r)
		if len(r) < 3 {
			return
		}
		if r.IsCCW() != ccw {
			r = r.Reversed()
		}
		for i, p := range r {
			q := r[(i+1)%len(r)]
			e := &dissolveEdge{from: snapKey(p), to: snapKey(q), a: p, b: q}
			if e.from == e.to {
				continue
			}
			edges = append(edges, e)
			counts[[2]gridKey{e.from, e.to}]++
		}
	}
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		addRing(p[0], true)
		for _, h := range p[1:] {
			addRing(h, false)
		}
	}

	// Cancel edge pairs that appear in both directions. Cancellation
	// counts are settled before any edge is kept so that iteration
	// order cannot leave one half of a pair behind.
	remaining := make(map[[2]gridKey]int, len(counts))
	for k, v := range counts {
		rev := [2]gridKey{k[1], k[0]}
		cancel := counts[rev]
		if cancel > v {
			cancel = v
		}
		remaining[k] = v - cancel
	}
	var kept []*dissolveEdge
	for _, e := range edges {
		k := [2]gridKey{e.from, e.to}
		if remaining[k] > 0 {
			remaining[k]--
			kept = append(kept, e)
		}
	}

	rings := chainEdges(kept)
	return assembleShells(rings)
}

// chainEdges walks the surviving edges into closed rings. At a vertex
// with several outgoing edges the walk takes the first edge counter-
// clockwise from the reversed incoming direction, which keeps each
// bounded face on a single ring.
func chainEdges(edges []*dissolveEdge) []Ring {
	bySource := make(map[gridKey][]*dissolveEdge)
	for _, e := range edges {
		bySource[e.from] = append(bySource[e.from], e)
	}

	var rings []Ring
	for _, start := range edges {
		if start.used {
			continue
		}
		var ring Ring
		e := start
		for {
			e.used = true
			ring = append(ring, e.a)
			candidates := bySource[e.to]
			var next *dissolveEdge
			if len(candidates) == 1 {
				if !candidates[0].used || candidates[0] == start {
					next = candidates[0]
				}
			} else {
				next = pickCCW(e, candidates, start)
			}
			if next == nil {
				break // open chain; drop it
			}
			if next == start {
				rings = append(rings, ring)
				break
			}
			e = next
		}
	}
	return rings
}

// pickCCW chooses the unused outgoing edge with the smallest counter-
// clockwise rotation from the reverse of the incoming edge.
func pickCCW(in *dissolveEdge, candidates []*dissolveEdge, start *dissolveEdge) *dissolveEdge {
	inDir := math.Atan2(in.a.Y-in.b.Y, in.a.X-in.b.X)
	var best *dissolveEdge
	bestTurn := math.Inf(1)
	for _, c := range candidates {
		if c.used && c != start {
			continue
		}
		outDir := math.Atan2(c.b.Y-c.a.Y, c.b.X-c.a.X)
		turn := outDir - inDir
		for turn <= 0 {
			turn += 2 * math.Pi
		}
		for turn > 2*math.Pi {
			turn -= 2 * math.Pi
		}
		if turn < bestTurn {
			bestTurn = turn
			best = c
		}
	}
	return best
}

// assembleShells pairs clockwise rings (holes) with the smallest
// counter-clockwise ring containing them.
func assembleShells(rings []Ring) []Polygon {
	var shells, holes []Ring
	for _, r := range rings {
		r = dedupRing(r)
		if len(r) < 3 || r.Area() < Epsilon {
			continue
		}
		if r.IsCCW() {
			shells = append(shells, r)
		} else {
			holes = append(holes, r)
		}
	}
	sort.SliceStable(shells, func(i, j int) bool { return shells[i].Area() < shells[j].Area() })

	polys := make([]Polygon, len(shells))
	for i, s := range shells {
		polys[i] = Polygon{s}
	}
	for _, h := range holes {
		probe := h[0]
		for i, s := range shells {
			if s.Envelope().ContainsPoint(probe) && s.ContainsPoint(probe, false) {
				polys[i] = append(polys[i], h)
				break
			}
		}
	}
	return polys
}
