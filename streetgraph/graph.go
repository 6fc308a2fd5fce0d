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

// Package streetgraph maintains a planar graph of street segments
// under incremental linestring insertion, groups its directed edges
// into logical streets, and polygonizes the enclosed blocks.
//
// Insertion splits both the incoming linestring and any existing
// edges at every crossing, deduplicates nodes within geom.Epsilon,
// and keeps each node's outgoing edges in counter-clockwise order.
// All iteration follows insertion order, so results are deterministic
// for a given call sequence.
package streetgraph

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"

	"github.com/golang/geo/r2"

	"github.com/oscarcs/cityplan/geom"
)

// SnapTolerance is the endpoint-to-edge snap distance in world units.
const SnapTolerance = 2e-4

// ErrShortLineString reports an insertion input with fewer than two
// points; nothing is inserted.
var ErrShortLineString = errors.New("streetgraph: linestring needs at least two points")

// Graph is the planar street graph. It owns every Node and Edge;
// logical streets reference edges by identity and never outlive them.
type Graph struct {
	nodes   *orderedMap[*Node]
	edges   *orderedMap[*Edge]
	streets *orderedMap[*LogicalStreet]

	streetSeq int
	rng       *rand.Rand
}

// Option configures a Graph.
type Option func(*Graph)

// WithRandSource sets the random source used for street colors,
// making color assignment reproducible.
func WithRandSource(rng *rand.Rand) Option {
	return func(g *Graph) { g.rng = rng }
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:   newOrderedMap[*Node](),
		edges:   newOrderedMap[*Edge](),
		streets: newOrderedMap[*LogicalStreet](),
		rng:     rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes.values() }

// Edges returns the graph's directed edges in insertion order. Every
// undirected street segment appears twice, once per direction.
func (g *Graph) Edges() []*Edge { return g.edges.values() }

// Streets returns the logical streets in creation order.
func (g *Graph) Streets() []*LogicalStreet { return g.streets.values() }

// InsertOptions carries per-call insertion flags.
type InsertOptions struct {
	// PointSnap enables snapping for the input point at the same
	// index: the point moves onto the nearest existing edge within
	// SnapTolerance if the nearest point is strictly interior to that
	// edge. Missing trailing entries mean no snap.
	PointSnap []bool
}

// InsertLineString inserts the polyline through the graph, splitting
// it and any crossed edges at every intersection, and assigns the new
// edges to logical streets. It returns the directed edges created by
// this call. Inputs with fewer than two points are rejected with
// ErrShortLineString and leave the graph untouched.
func (g *Graph) InsertLineString(points []r2.Point, opts *InsertOptions) ([]*Edge, error) {
	if len(points) < 2 {
		return nil, ErrShortLineString
	}

	snapped := make([]r2.Point, len(points))
	copy(snapped, points)
	if opts != nil {
		for i := range snapped {
			if i < len(opts.PointSnap) && opts.PointSnap[i] {
				snapped[i] = g.snapPoint(snapped[i])
			}
		}
	}

	var added []*Edge
	for i := 0; i+1 < len(snapped); i++ {
		added = append(added, g.insertSegment(snapped[i], snapped[i+1])...)
	}
	for _, e := range added {
		g.assignEdge(e)
	}
	return added, nil
}

// snapPoint moves p onto the nearest edge within SnapTolerance. The
// point stays put when no edge is near, when the nearest point is an
// edge endpoint, or when it coincides with an existing vertex.
func (g *Graph) snapPoint(p r2.Point) r2.Point {
	q, e, ok := g.FindNearestPointOnEdge(p, SnapTolerance)
	if !ok {
		return p
	}
	if geom.PointsEqual(q, e.from.point) || geom.PointsEqual(q, e.to.point) {
		return p
	}
	if _, found := g.FindNearestNode(q, geom.Epsilon); found {
		return p
	}
	return q
}

// insertSegment inserts the open segment (p, q): finds all crossings
// with existing edges, splits those edges in place, then adds the new
// edges between consecutive split points. Newly created unassigned
// edges (including replacements for split street-less edges) are
// returned for street assignment.
func (g *Graph) insertSegment(p, q r2.Point) []*Edge {
	if geom.PointsEqual(p, q) {
		return nil
	}

	// Crossings with existing edges, skipping the geometric identity
	// and crossings at existing endpoints (node dedup covers those).
	var hits []r2.Point
	for _, e := range g.edges.values() {
		if !e.canonical() {
			continue
		}
		a, b := e.from.point, e.to.point
		if (geom.PointsEqual(a, p) && geom.PointsEqual(b, q)) ||
			(geom.PointsEqual(a, q) && geom.PointsEqual(b, p)) {
			continue
		}
		x, ok := geom.SegmentIntersection(p, q, a, b)
		if !ok {
			continue
		}
		if geom.PointsEqual(x, a) || geom.PointsEqual(x, b) {
			continue
		}
		hits = append(hits, x)
	}

	split := append([]r2.Point{p}, hits...)
	split = append(split, q)
	split = dedupPoints(split)
	sortByDistance(split, p)

	// Split any existing edge that a split point lands inside. Street
	// membership transfers to the replacement pairs; replacements of
	// unassigned edges join the assignment pass.
	var added []*Edge
	for _, x := range split {
		if e := g.findEdgeContaining(x); e != nil {
			added = append(added, g.splitEdge(e, x)...)
		}
	}

	for i := 0; i+1 < len(split); i++ {
		a := g.getOrCreateNode(split[i])
		b := g.getOrCreateNode(split[i+1])
		if a == b {
			continue
		}
		if g.EdgeBetween(a, b) != nil {
			continue
		}
		added = append(added, g.addEdgePair(a, b))
	}
	return added
}

// splitEdge replaces edge e = (a, b) and its symmetric with the pairs
// (a, x) and (x, b). If e belonged to a street the replacements join
// it immediately; otherwise they are returned for assignment.
func (g *Graph) splitEdge(e *Edge, x r2.Point) []*Edge {
	a, b := e.from, e.to
	street := e.street
	g.removeEdgePair(e)

	nx := g.getOrCreateNode(x)
	e1 := g.addEdgePair(a, nx)
	e2 := g.addEdgePair(nx, b)
	if street != nil {
		street.addPair(e1)
		street.addPair(e2)
		return nil
	}
	return []*Edge{e1, e2}
}

// findEdgeContaining returns the first edge whose interior contains x
// within geom.Epsilon, in insertion order.
func (g *Graph) findEdgeContaining(x r2.Point) *Edge {
	for _, e := range g.edges.values() {
		if !e.canonical() {
			continue
		}
		a, b := e.from.point, e.to.point
		if geom.PointsEqual(x, a) || geom.PointsEqual(x, b) {
			continue
		}
		if geom.PointOnSegment(x, a, b, geom.Epsilon) {
			return e
		}
	}
	return nil
}

// getOrCreateNode returns the node for p, deduplicating within
// geom.Epsilon against existing nodes.
func (g *Graph) getOrCreateNode(p r2.Point) *Node {
	if n, ok := g.nodes.get(NodeID(p)); ok {
		return n
	}
	for _, n := range g.nodes.values() {
		if geom.PointsEqual(n.point, p) {
			return n
		}
	}
	n := &Node{id: NodeID(p), point: p}
	g.nodes.set(n.id, n)
	return n
}

// addEdgePair creates the directed edges a->b and b->a, registers
// them on both nodes, and returns the a->b edge.
func (g *Graph) addEdgePair(a, b *Node) *Edge {
	e := &Edge{from: a, to: b, label: unlabeled}
	s := &Edge{from: b, to: a, label: unlabeled}
	e.sym, s.sym = s, e
	g.edges.set(e.ID(), e)
	g.edges.set(s.ID(), s)
	a.addOuter(e)
	b.addInner(e)
	b.addOuter(s)
	a.addInner(s)
	return e
}

// removeEdgePair deletes e and its symmetric from the graph and from
// any street containing them. A street emptied by the removal is
// destroyed.
func (g *Graph) removeEdgePair(e *Edge) {
	if s := e.street; s != nil {
		s.removePair(e)
		if s.edges.len() == 0 {
			g.streets.delete(s.id)
		}
	}
	for _, d := range []*Edge{e, e.sym} {
		g.edges.delete(d.ID())
		d.from.removeOuter(d)
		d.to.removeInner(d)
	}
}

// EdgeBetween returns the edge connecting a and b in either
// direction, or nil.
func (g *Graph) EdgeBetween(a, b *Node) *Edge {
	if e, ok := g.edges.get(EdgeID(a, b)); ok {
		return e
	}
	if e, ok := g.edges.get(EdgeID(b, a)); ok {
		return e
	}
	return nil
}

// FindNearestPointOnEdge returns the closest point on any edge within
// threshold of p, together with that edge. Ties keep the first edge
// in insertion order.
func (g *Graph) FindNearestPointOnEdge(p r2.Point, threshold float64) (r2.Point, *Edge, bool) {
	var (
		bestPt   r2.Point
		bestEdge *Edge
		bestDist float64
		found    bool
	)
	for _, e := range g.edges.values() {
		if !e.canonical() {
			continue
		}
		q, _ := geom.ClosestPointOnSegment(p, e.from.point, e.to.point)
		d := geom.Dist(p, q)
		if d <= threshold && (!found || d < bestDist) {
			bestPt, bestEdge, bestDist, found = q, e, d, true
		}
	}
	return bestPt, bestEdge, found
}

// FindNearestNode returns the closest node within threshold of p.
// Ties keep the first node in insertion order.
func (g *Graph) FindNearestNode(p r2.Point, threshold float64) (*Node, bool) {
	var (
		best     *Node
		bestDist float64
	)
	for _, n := range g.nodes.values() {
		d := geom.Dist(p, n.point)
		if d <= threshold && (best == nil || d < bestDist) {
			best, bestDist = n, d
		}
	}
	return best, best != nil
}

// FindStreetForEdge returns the logical street of the edge between
// the two node ids, in either direction, or nil. The block extractor
// uses it to look rings from a polygonized copy back up in the
// original graph.
func (g *Graph) FindStreetForEdge(fromID, toID string) *LogicalStreet {
	if e, ok := g.edges.get(fromID + "->" + toID); ok {
		return e.street
	}
	if e, ok := g.edges.get(toID + "->" + fromID); ok {
		return e.street
	}
	return nil
}

// newStreet creates an empty street with a fresh id and a random
// color.
func (g *Graph) newStreet() *LogicalStreet {
	g.streetSeq++
	s := &LogicalStreet{
		id:    fmt.Sprintf("street-%d", g.streetSeq),
		color: randomColor(g.rng),
		width: DefaultStreetWidth,
		edges: newOrderedMap[*Edge](),
		dirty: true,
	}
	g.streets.set(s.id, s)
	return s
}

func randomColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(rng.Intn(256)),
		G: uint8(rng.Intn(256)),
		B: uint8(rng.Intn(256)),
		A: 255,
	}
}

// Copy deep-copies the graph's nodes and edges, preserving geometry
// and therefore node identity. Logical street membership is not
// copied; polygonization runs on such copies so the original graph
// stays intact.
func (g *Graph) Copy() *Graph {
	c := New()
	for _, n := range g.nodes.values() {
		c.getOrCreateNode(n.point)
	}
	for _, e := range g.edges.values() {
		if !e.canonical() {
			continue
		}
		a := c.getOrCreateNode(e.from.point)
		b := c.getOrCreateNode(e.to.point)
		if c.EdgeBetween(a, b) == nil {
			c.addEdgePair(a, b)
		}
	}
	return c
}

func dedupPoints(pts []r2.Point) []r2.Point {
	var out []r2.Point
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if geom.PointsEqual(p, q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func sortByDistance(pts []r2.Point, from r2.Point) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && geom.Dist(pts[j], from) < geom.Dist(pts[j-1], from); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}
