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

// Skeleton is the straight skeleton of a simple polygon, evaluated by
// propagating the boundary wavefront inward at unit speed. Offset and
// OffsetFaces sample the propagation at a given inward distance.
type Skeleton struct {
	ring Ring // CCW, deduplicated
}

// StraightSkeleton prepares the straight skeleton of the given ring.
// The ring is normalized to counter-clockwise order.
func StraightSkeleton(r Ring) (*Skeleton, error) {
	r = dedupRing(r)
	if len(r) < 3 || r.Area() < Epsilon {
		return nil, ErrDegenerate
	}
	if !r.IsCCW() {
		r = r.Reversed()
	}
	return &Skeleton{ring: r}, nil
}

// Offset returns the wavefront rings at inward distance d: the
// boundary of the polygon region farther than d from every edge. The
// result is empty when the polygon has fully collapsed by d.
func (s *Skeleton) Offset(d float64) []Ring {
	_, fronts := s.propagate(d)
	return fronts
}

// OffsetFaces returns the faces of the band swept between the polygon
// boundary and the wavefront at inward distance d, one face per
// original boundary edge that swept a nonzero region. When the whole
// polygon collapses before d the faces partition the polygon.
func (s *Skeleton) OffsetFaces(d float64) []Ring {
	faces, _ := s.propagate(d)
	return faces
}

// skelVertex is one wavefront vertex instance. Its position at time t
// is pos + vel*(t-t0), valid from its creation time t0 until the
// event that retires it.
type skelVertex struct {
	pos        r2.Point
	vel        r2.Point
	t0         float64
	leftEdge   int // original edge ending at this vertex
	rightEdge  int // original edge starting at this vertex
	prev, next *skelVertex
	reflex     bool
}

func (v *skelVertex) at(t float64) r2.Point {
	return v.pos.Add(v.vel.Mul(t - v.t0))
}

const (
	skelVelocityCap = 1e6
	skelTimeEps     = 1e-9
)

// propagate runs the wavefront to inward distance depth and returns
// the per-edge band faces and the surviving wavefront rings.
func (s *Skeleton) propagate(depth float64) ([]Ring, []Ring) {
	ring := s.ring
	n := len(ring)

	dirs := make([]r2.Point, n)
	normals := make([]r2.Point, n)
	for i := range ring {
		d := ring[(i+1)%n].Sub(ring[i]).Normalize()
		dirs[i] = d
		normals[i] = d.Ortho() // interior of a CCW ring lies to the left
	}

	// startChain[i] traces the vertex at edge i's origin, endChain[i]
	// the vertex at its destination. Faces are assembled from them.
	startChain := make([][]r2.Point, n)
	endChain := make([][]r2.Point, n)
	retire := func(v *skelVertex, x r2.Point) {
		startChain[v.rightEdge] = append(startChain[v.rightEdge], x)
		endChain[v.leftEdge] = append(endChain[v.leftEdge], x)
	}

	// Build the initial loop.
	verts := make([]*skelVertex, n)
	for i := range ring {
		left := (i - 1 + n) % n
		verts[i] = &skelVertex{
			pos:       ring[i],
			vel:       bisectorVelocity(normals[left], normals[i]),
			leftEdge:  left,
			rightEdge: i,
			reflex:    dirs[left].Cross(dirs[i]) < -Epsilon,
		}
	}
	for i := range verts {
		verts[i].next = verts[(i+1)%n]
		verts[i].prev = verts[(i-1+n)%n]
	}
	loops := []*skelVertex{verts[0]}

	now := 0.0
	// The event count of a straight skeleton is linear in n; the cap
	// only guards against numeric livelock.
	for iter := 0; iter < 8*n*n+64 && len(loops) > 0; iter++ {
		ev, ok := nextEvent(loops, normals, ring, now, depth)
		if !ok {
			break
		}
		now = ev.t
		switch ev.kind {
		case skelEdgeEvent:
			loops = applyEdgeEvent(loops, ev, normals, retire)
		case skelSplitEvent:
			loops = applySplitEvent(loops, ev, normals, retire)
		}
	}

	// Whatever survives reaches the requested depth.
	var fronts []Ring
	for _, loop := range loops {
		var front Ring
		for v, first := loop, true; first || v != loop; v, first = v.next, false {
			x := v.at(depth)
			retire(v, x)
			front = append(front, x)
		}
		front = dedupRing(front)
		if len(front) >= 3 {
			fronts = append(fronts, front)
		}
	}

	var faces []Ring
	for i := range ring {
		face := Ring{ring[i], ring[(i+1)%n]}
		face = append(face, endChain[i]...)
		for k := len(startChain[i]) - 1; k >= 0; k-- {
			face = append(face, startChain[i][k])
		}
		face = dedupRing(face)
		if len(face) >= 3 && face.Area() > Epsilon {
			faces = append(faces, face)
		}
	}
	return faces, fronts
}

// bisectorVelocity returns the vertex velocity that keeps both
// adjacent edge offsets at distance t after time t: the solution of
// nL·v = 1, nR·v = 1.
func bisectorVelocity(nL, nR r2.Point) r2.Point {
	det := nL.X*nR.Y - nL.Y*nR.X
	if math.Abs(det) < DenomTolerance {
		// Parallel edges: advance along the shared normal. For the
		// anti-parallel spike case there is no finite solution; the
		// shared normal keeps the propagation stable.
		return nL
	}
	v := r2.Point{X: (nR.Y - nL.Y) / det, Y: (nL.X - nR.X) / det}
	if v.Norm() > skelVelocityCap {
		v = v.Normalize().Mul(skelVelocityCap)
	}
	return v
}

type skelEventKind int

const (
	skelEdgeEvent skelEventKind = iota
	skelSplitEvent
)

type skelEvent struct {
	kind skelEventKind
	t    float64
	x    r2.Point
	v    *skelVertex // edge event: edge (v, v.next); split: the reflex vertex
	edge *skelVertex // split event: target wavefront edge (edge, edge.next)
	loop int
}

// nextEvent scans all wavefront edges and reflex vertices for the
// earliest event after now and at or before depth.
func nextEvent(loops []*skelVertex, normals []r2.Point, ring Ring, now, depth float64) (skelEvent, bool) {
	best := skelEvent{t: math.Inf(1)}
	found := false

	forEach := func(li int, fn func(v *skelVertex)) {
		loop := loops[li]
		for v, first := loop, true; first || v != loop; v, first = v.next, false {
			fn(v)
		}
	}

	for li := range loops {
		// Edge collapse events.
		forEach(li, func(v *skelVertex) {
			w := v.next
			if w == v {
				return
			}
			t, x, ok := collapseTime(v, w, now)
			if ok && t <= depth+skelTimeEps && t < best.t {
				best = skelEvent{kind: skelEdgeEvent, t: t, x: x, v: v, loop: li}
				found = true
			}
		})
		// Split events: reflex vertices against non-adjacent edges of
		// the same loop.
		forEach(li, func(v *skelVertex) {
			if !v.reflex {
				return
			}
			forEach(li, func(u *skelVertex) {
				if u == v || u == v.prev || u.next == v {
					return
				}
				t, x, ok := splitTime(v, u, normals, ring, now)
				if ok && t <= depth+skelTimeEps && t < best.t {
					best = skelEvent{kind: skelSplitEvent, t: t, x: x, v: v, edge: u, loop: li}
					found = true
				}
			})
		})
	}
	return best, found
}

// collapseTime returns when the wavefront edge (v, w) shrinks to a
// point, if its endpoint trajectories converge after now.
func collapseTime(v, w *skelVertex, now float64) (float64, r2.Point, bool) {
	pv, pw := v.at(now), w.at(now)
	x, ok := LineIntersection(pv, pv.Add(v.vel), pw, pw.Add(w.vel))
	if !ok {
		return 0, r2.Point{}, false
	}
	vv2, wv2 := v.vel.Dot(v.vel), w.vel.Dot(w.vel)
	if vv2 == 0 || wv2 == 0 {
		return 0, r2.Point{}, false
	}
	tv := now + x.Sub(pv).Dot(v.vel)/vv2
	tw := now + x.Sub(pw).Dot(w.vel)/wv2
	if tv < now-skelTimeEps || tw < now-skelTimeEps {
		return 0, r2.Point{}, false
	}
	// Both vertices must arrive together; a large disagreement means
	// the trajectories merely cross.
	if math.Abs(tv-tw) > 1e-6*(1+math.Abs(tv)) {
		return 0, r2.Point{}, false
	}
	t := (tv + tw) / 2
	if t < now-skelTimeEps {
		return 0, r2.Point{}, false
	}
	if t < now {
		t = now
	}
	return t, x, true
}

// splitTime returns when the reflex vertex v crashes into the
// wavefront of edge (u, u.next).
func splitTime(v, u *skelVertex, normals []r2.Point, ring Ring, now float64) (float64, r2.Point, bool) {
	f := u.rightEdge
	nf := normals[f]
	fa := ring[f]

	// The wavefront of f sits at signed inward distance t from its
	// original line; solve nf·(P(t)-fa) = t for the vertex trajectory.
	a0 := nf.Dot(v.at(now).Sub(fa))
	rate := nf.Dot(v.vel)
	denom := rate - 1
	if math.Abs(denom) < DenomTolerance {
		return 0, r2.Point{}, false
	}
	t := (rate*now - a0) / denom
	if t < now+skelTimeEps {
		return 0, r2.Point{}, false
	}
	x := v.at(t)

	// The hit must land within the moving edge's current span.
	pu, pn := u.at(t), u.next.at(t)
	span := pn.Sub(pu)
	len2 := span.Dot(span)
	if len2 < DenomTolerance {
		return 0, r2.Point{}, false
	}
	s := x.Sub(pu).Dot(span) / len2
	if s < -ParamBand || s > 1+ParamBand {
		return 0, r2.Point{}, false
	}
	return t, x, true
}

// applyEdgeEvent retires the edge (ev.v, ev.v.next), replacing the
// pair with a single vertex at the collision point.
func applyEdgeEvent(loops []*skelVertex, ev skelEvent, normals []r2.Point, retire func(*skelVertex, r2.Point)) []*skelVertex {
	v := ev.v
	w := v.next

	if loopLen(v) <= 3 {
		// The whole triangle collapses to the event point.
		for u, first := v, true; first || u != v; u, first = u.next, false {
			retire(u, ev.x)
		}
		return removeLoop(loops, ev.loop)
	}

	retire(v, ev.x)
	retire(w, ev.x)
	u := &skelVertex{
		pos:       ev.x,
		t0:        ev.t,
		vel:       bisectorVelocity(normals[v.leftEdge], normals[w.rightEdge]),
		leftEdge:  v.leftEdge,
		rightEdge: w.rightEdge,
	}
	u.prev = v.prev
	u.next = w.next
	v.prev.next = u
	w.next.prev = u
	loops[ev.loop] = u
	return loops
}

// applySplitEvent retires the reflex vertex ev.v on the front of edge
// (ev.edge, ev.edge.next), splitting its loop in two.
func applySplitEvent(loops []*skelVertex, ev skelEvent, normals []r2.Point, retire func(*skelVertex, r2.Point)) []*skelVertex {
	v := ev.v
	u := ev.edge
	f := u.rightEdge
	retire(v, ev.x)

	// Loop A keeps the span from v.next around to u; loop B keeps
	// u.next around to v.prev. Each gets a new vertex at the split
	// point gliding along the split edge's front.
	a := &skelVertex{
		pos:       ev.x,
		t0:        ev.t,
		vel:       bisectorVelocity(normals[f], normals[v.rightEdge]),
		leftEdge:  f,
		rightEdge: v.rightEdge,
	}
	b := &skelVertex{
		pos:       ev.x,
		t0:        ev.t,
		vel:       bisectorVelocity(normals[v.leftEdge], normals[f]),
		leftEdge:  v.leftEdge,
		rightEdge: f,
	}

	vNext, vPrev := v.next, v.prev
	uNext := u.next

	// Loop A: u -> a -> vNext ...
	u.next = a
	a.prev = u
	a.next = vNext
	vNext.prev = a

	// Loop B: vPrev -> b -> uNext ...
	vPrev.next = b
	b.prev = vPrev
	b.next = uNext
	uNext.prev = b

	loops = removeLoop(loops, ev.loop)
	loops = appendLoopIfAlive(loops, a, retire, ev.x)
	loops = appendLoopIfAlive(loops, b, retire, ev.x)
	return loops
}

// appendLoopIfAlive keeps a loop with at least three vertices;
// anything smaller collapses on the spot.
func appendLoopIfAlive(loops []*skelVertex, loop *skelVertex, retire func(*skelVertex, r2.Point), x r2.Point) []*skelVertex {
	if loopLen(loop) < 3 {
		for v, first := loop, true; first || v != loop; v, first = v.next, false {
			retire(v, x)
		}
		return loops
	}
	return append(loops, loop)
}

func loopLen(loop *skelVertex) int {
	n := 0
	for v, first := loop, true; first || v != loop; v, first = v.next, false {
		n++
	}
	return n
}

func removeLoop(loops []*skelVertex, idx int) []*skelVertex {
	return append(loops[:idx], loops[idx+1:]...)
}
