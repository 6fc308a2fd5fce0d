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

package streetgraph

import (
	"sort"

	"github.com/golang/geo/r2"

	"github.com/oscarcs/cityplan/geom"
)

// EdgeRing is a closed cycle of directed edges produced by
// Polygonize, one per minimal enclosed face. Shells wind counter-
// clockwise; holes are attached to the smallest shell containing
// them.
type EdgeRing struct {
	edges []*Edge
	ring  geom.Ring
	shell bool
	holes []*EdgeRing
}

// Edges returns the ring's directed edges in traversal order. The
// edges belong to the polygonization copy, not the source graph;
// match them back by node id.
func (r *EdgeRing) Edges() []*Edge { return r.edges }

// Ring returns the ring's vertex cycle.
func (r *EdgeRing) Ring() geom.Ring { return r.ring }

// Envelope returns the ring's bounding rectangle.
func (r *EdgeRing) Envelope() r2.Rect { return r.ring.Envelope() }

// IsShell reports whether the ring is an outer boundary (positive
// signed area as discovered, or a hole promoted for lack of a
// containing shell).
func (r *EdgeRing) IsShell() bool { return r.shell }

// Holes returns the hole rings assigned to this shell.
func (r *EdgeRing) Holes() []*EdgeRing { return r.holes }

// Polygonize computes the minimal enclosed rings of the graph and
// returns the shells, holes attached. It operates on a deep copy, so
// the receiver is left untouched and remains queryable.
//
// The passes follow the classic polygonizer: delete dangling chains,
// chain and label rings to find and delete cut edges, re-label to get
// maximal rings, then re-link shared nodes to reduce them to minimal
// rings.
func (g *Graph) Polygonize() []*EdgeRing {
	c := g.Copy()

	c.deleteDangles()

	c.computeNextLinks()
	c.labelRings()
	c.deleteCutEdges()

	c.clearLabels()
	c.computeNextLinks()
	c.labelRings()
	c.convertMaximalToMinimal()

	rings := c.collectRings()
	return classifyRings(rings)
}

// deleteDangles removes nodes with at most one incident edge until
// none remain; removing a dangle can expose its neighbor as the next
// dangle.
func (g *Graph) deleteDangles() {
	queue := []*Node{}
	for _, n := range g.nodes.values() {
		if len(n.in) <= 1 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !g.nodes.has(n.id) {
			continue
		}
		var neighbors []*Node
		for _, e := range n.OuterEdges() {
			neighbors = append(neighbors, e.to)
			g.removeEdgePair(e)
		}
		g.nodes.delete(n.id)
		for _, m := range neighbors {
			if g.nodes.has(m.id) && len(m.in) <= 1 {
				queue = append(queue, m)
			}
		}
	}
}

// computeNextLinks sets every edge's next pointer so that each walk
// keeps the face on its left: scanning each node's outgoing edges
// clockwise (the reverse of their stored counter-clockwise order),
// the symmetric of one edge continues into the next. Bounded faces
// are then traced counter-clockwise and the unbounded face clockwise.
func (g *Graph) computeNextLinks() {
	for _, n := range g.nodes.values() {
		outs := n.out
		d := len(outs)
		if d == 0 {
			continue
		}
		for i := 0; i < d; i++ {
			outs[(i+1)%d].sym.next = outs[i]
		}
	}
}

// labelRings assigns a ring label to every edge by walking next
// pointers until the start edge recurs. Labels increase in edge
// insertion order.
func (g *Graph) labelRings() {
	label := 0
	for _, e := range g.edges.values() {
		if e.label != unlabeled {
			continue
		}
		for walk := e; walk != nil && walk.label == unlabeled; walk = walk.next {
			walk.label = label
		}
		label++
	}
}

func (g *Graph) clearLabels() {
	for _, e := range g.edges.values() {
		e.label = unlabeled
		e.ring = nil
	}
}

// deleteCutEdges removes bridges: edges whose two directions carry
// the same ring label bound no face.
func (g *Graph) deleteCutEdges() {
	var cut []*Edge
	for _, e := range g.edges.values() {
		if !e.canonical() {
			continue
		}
		if e.label == e.sym.label {
			cut = append(cut, e)
		}
	}
	for _, e := range cut {
		g.removeEdgePair(e)
	}
	// Removing bridges can leave isolated chains behind.
	g.deleteDangles()
}

// convertMaximalToMinimal splits each maximal ring at its
// intersection nodes (nodes visited more than once by the ring) by
// re-linking the next pointers counter-clockwise restricted to the
// ring's label.
func (g *Graph) convertMaximalToMinimal() {
	for _, label := range g.ringLabels() {
		for _, n := range g.intersectionNodes(label) {
			g.computeNextCCWLinks(n, label)
		}
	}
}

// ringLabels returns the distinct edge labels in first-seen order.
func (g *Graph) ringLabels() []int {
	seen := make(map[int]bool)
	var labels []int
	for _, e := range g.edges.values() {
		if e.label == unlabeled || seen[e.label] {
			continue
		}
		seen[e.label] = true
		labels = append(labels, e.label)
	}
	return labels
}

// intersectionNodes returns the nodes where more than one outgoing
// edge carries the given label.
func (g *Graph) intersectionNodes(label int) []*Node {
	var nodes []*Node
	for _, n := range g.nodes.values() {
		count := 0
		for _, e := range n.out {
			if e.label == label {
				count++
			}
		}
		if count > 1 {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// computeNextCCWLinks re-links the ring's edges around one node:
// scanning the outgoing edges counter-clockwise (the reverse of the
// clockwise scan used for the global links), each incoming edge of
// the ring is chained to the next outgoing edge of the ring
// encountered, which pinches the maximal ring apart at this node.
func (g *Graph) computeNextCCWLinks(n *Node, label int) {
	var firstOut, prevIn *Edge
	outs := n.out
	for i := 0; i < len(outs); i++ {
		de := outs[i]
		var outDE, inDE *Edge
		if de.label == label {
			outDE = de
		}
		if de.sym.label == label {
			inDE = de.sym
		}
		if outDE == nil && inDE == nil {
			continue
		}
		if inDE != nil {
			prevIn = inDE
		}
		if outDE != nil {
			if prevIn != nil {
				prevIn.next = outDE
				prevIn = nil
			}
			if firstOut == nil {
				firstOut = outDE
			}
		}
	}
	if prevIn != nil {
		prevIn.next = firstOut
	}
}

// collectRings walks every unvisited edge's next chain into an
// EdgeRing.
func (g *Graph) collectRings() []*EdgeRing {
	var rings []*EdgeRing
	for _, e := range g.edges.values() {
		if e.ring != nil || e.label == unlabeled {
			continue
		}
		r := &EdgeRing{}
		ok := true
		for walk := e; ; walk = walk.next {
			if walk == nil || walk.ring != nil {
				// A broken or re-entrant next chain is not a ring.
				ok = false
				break
			}
			walk.ring = r
			r.edges = append(r.edges, walk)
			if walk.next == e {
				break
			}
		}
		if !ok || len(r.edges) < 3 {
			continue
		}
		ring := make(geom.Ring, len(r.edges))
		for i, re := range r.edges {
			ring[i] = re.from.point
		}
		r.ring = ring
		rings = append(rings, r)
	}
	return rings
}

// classifyRings splits rings into shells and holes by signed area,
// assigns each hole to the smallest shell whose envelope contains it
// and whose polygon contains a hole vertex not shared with it, drops
// the rings of the unbounded face, and promotes any other unassigned
// hole to a stand-alone shell.
func classifyRings(rings []*EdgeRing) []*EdgeRing {
	var shells, holes []*EdgeRing
	for _, r := range rings {
		if r.ring.SignedArea() > 0 {
			r.shell = true
			shells = append(shells, r)
		} else {
			holes = append(holes, r)
		}
	}

	// Smallest-first candidate order; discovery order breaks area
	// ties.
	byArea := make([]*EdgeRing, len(shells))
	copy(byArea, shells)
	sort.SliceStable(byArea, func(i, j int) bool {
		return byArea[i].ring.Area() < byArea[j].ring.Area()
	})

	for _, h := range holes {
		env := h.Envelope()
		if enclosesAll(env, shells) {
			// The unbounded face: its clockwise ring wraps every
			// shell and bounds no block.
			continue
		}
		var owner *EdgeRing
		for _, s := range byArea {
			if s == h || !s.Envelope().Contains(env) {
				continue
			}
			// The representative vertex must not be a vertex of the
			// candidate shell, or containment is undecidable (a ring
			// of the shell's own boundary would pass).
			rep, ok := vertexNotShared(h.ring, s.ring)
			if !ok || !s.ring.ContainsPoint(rep, false) {
				continue
			}
			owner = s
			break
		}
		if owner != nil {
			owner.holes = append(owner.holes, h)
			continue
		}
		// An orphan hole whose every vertex is a shell vertex is the
		// outer ring of one connected component: its share of the
		// unbounded face in a disconnected graph, bounding no block.
		outline := true
		for _, v := range h.ring {
			shared := false
			for _, s := range byArea {
				if _, free := vertexNotShared(geom.Ring{v}, s.ring); !free {
					shared = true
					break
				}
			}
			if !shared {
				outline = false
				break
			}
		}
		if !outline {
			// Any other orphan hole stands alone as its own shell.
			h.shell = true
			shells = append(shells, h)
		}
	}
	return shells
}

// vertexNotShared returns the first vertex of h that is not a vertex
// of s.
func vertexNotShared(h, s geom.Ring) (r2.Point, bool) {
	for _, v := range h {
		shared := false
		for _, w := range s {
			if geom.PointsEqual(v, w) {
				shared = true
				break
			}
		}
		if !shared {
			return v, true
		}
	}
	return r2.Point{}, false
}

// enclosesAll reports whether the envelope covers every shell
// envelope, which identifies the ring of the unbounded face.
func enclosesAll(env r2.Rect, shells []*EdgeRing) bool {
	for _, s := range shells {
		if !env.Contains(s.Envelope()) {
			return false
		}
	}
	return true
}
