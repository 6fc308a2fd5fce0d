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
	"image/color"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"

	"github.com/oscarcs/cityplan/geom"
)

// DefaultStreetWidth is the logical street width in meters.
const DefaultStreetWidth = 10

// Maximum turn angles for street continuation, by node degree.
const (
	MaxTurn60 = s1.Angle(math.Pi / 3)
	MaxTurn45 = s1.Angle(math.Pi / 4)
	MaxTurn30 = s1.Angle(math.Pi / 6)
)

// LogicalStreet is a maximal low-deflection path of edges through the
// graph. Edges are stored in symmetric pairs; at any node a street
// uses at most two pairs (the simple-path invariant).
type LogicalStreet struct {
	id    string
	name  string
	color color.RGBA
	width float64 // meters

	edges *orderedMap[*Edge] // both directions of every pair

	line  []r2.Point // cached derived linestring
	dirty bool
}

// ID returns the street's identifier.
func (s *LogicalStreet) ID() string { return s.id }

// Name returns the street's display name, if set.
func (s *LogicalStreet) Name() string { return s.name }

// SetName sets the street's display name.
func (s *LogicalStreet) SetName(name string) { s.name = name }

// Color returns the street's render color.
func (s *LogicalStreet) Color() color.RGBA { return s.color }

// Width returns the street's width in meters.
func (s *LogicalStreet) Width() float64 { return s.width }

// SetWidth sets the street's width in meters.
func (s *LogicalStreet) SetWidth(w float64) { s.width = w }

// Edges returns the street's directed edges (both directions of each
// pair) in insertion order.
func (s *LogicalStreet) Edges() []*Edge { return s.edges.values() }

// EdgePairCount returns the number of undirected edge pairs.
func (s *LogicalStreet) EdgePairCount() int { return s.edges.len() / 2 }

func (s *LogicalStreet) addPair(e *Edge) {
	s.edges.set(e.ID(), e)
	s.edges.set(e.sym.ID(), e.sym)
	e.street = s
	e.sym.street = s
	s.dirty = true
}

func (s *LogicalStreet) removePair(e *Edge) {
	s.edges.delete(e.ID())
	s.edges.delete(e.sym.ID())
	e.street = nil
	e.sym.street = nil
	s.dirty = true
}

// pairsAt returns how many of the street's edge pairs touch node n.
// Each pair incident to n contributes exactly one outgoing edge at n.
func (s *LogicalStreet) pairsAt(n *Node) int {
	count := 0
	for _, e := range n.out {
		if e.street == s {
			count++
		}
	}
	return count
}

// Line returns the street's derived linestring: the unique simple
// path through its edge pairs. The result is cached and rebuilt after
// any edge change. Streets forming a closed loop start at the first
// inserted edge.
func (s *LogicalStreet) Line() []r2.Point {
	if !s.dirty {
		return s.line
	}
	s.line = s.buildLine()
	s.dirty = false
	return s.line
}

func (s *LogicalStreet) buildLine() []r2.Point {
	edges := s.edges.values()
	if len(edges) == 0 {
		return nil
	}

	// Pair adjacency per node. The simple-path invariant bounds the
	// pair count at 2 per node.
	adj := newOrderedMap[[]*Edge]()
	for _, e := range edges {
		if !e.canonical() {
			continue
		}
		for _, n := range []*Node{e.from, e.to} {
			list, _ := adj.get(n.id)
			adj.set(n.id, append(list, e))
		}
	}

	// Start from a terminal node (one incident pair) if there is one;
	// otherwise the street is a loop and any node serves.
	var start string
	for _, k := range adj.keys {
		if list, _ := adj.get(k); len(list) == 1 {
			start = k
			break
		}
	}
	if start == "" {
		start = adj.keys[0]
	}

	visited := make(map[string]bool)
	var line []r2.Point
	cur := start
	for {
		list, _ := adj.get(cur)
		var step *Edge
		for _, e := range list {
			if !visited[e.ID()] {
				step = e
				break
			}
		}
		if step == nil {
			break
		}
		visited[step.ID()] = true
		var from, to *Node
		if step.from.id == cur {
			from, to = step.from, step.to
		} else {
			from, to = step.to, step.from
		}
		if len(line) == 0 {
			line = append(line, from.point)
		}
		line = append(line, to.point)
		cur = to.id
	}
	return line
}

// Length returns the derived linestring's total length in world units.
func (s *LogicalStreet) Length() float64 {
	line := s.Line()
	var sum float64
	for i := 0; i+1 < len(line); i++ {
		sum += geom.Dist(line[i], line[i+1])
	}
	return sum
}

// maxTurnForDegree returns the continuation threshold for a node of
// the given degree.
func maxTurnForDegree(degree int) s1.Angle {
	switch {
	case degree <= 2:
		return MaxTurn60
	case degree == 3:
		return MaxTurn45
	default:
		return MaxTurn30
	}
}

// assignEdge places a freshly inserted edge into a logical street
// following the continuation rules: the straightest valid street at
// either endpoint wins, two distinct winners merge.
func (g *Graph) assignEdge(e *Edge) {
	if e.street != nil {
		return
	}
	su := g.continuationAt(e.from, e)
	sv := g.continuationAt(e.to, e)

	switch {
	case su == nil && sv == nil:
		s := g.newStreet()
		s.addPair(e)
	case su != nil && sv == nil:
		su.addPair(e)
	case su == nil && sv != nil:
		sv.addPair(e)
	case su == sv:
		su.addPair(e)
	default:
		g.mergeStreets(su, sv)
		su.addPair(e)
	}

	// The continuation rules make a third pair at one node impossible;
	// hitting this is a bug, not bad input.
	s := e.street
	for _, n := range []*Node{e.from, e.to} {
		if s.pairsAt(n) > 2 {
			panic("streetgraph: logical street exceeds two edge pairs at " + n.id)
		}
	}
}

// continuationAt returns the street that best continues e through
// node n, or nil if no street offers a valid continuation. The best
// candidate is the assigned edge with the smallest turn angle against
// e; it is valid when the angle clears the degree threshold and the
// street still has room for a second pair at n.
func (g *Graph) continuationAt(n *Node, e *Edge) *LogicalStreet {
	eDir := e.Other(n).point.Sub(n.point)

	var best *LogicalStreet
	bestTurn := s1.Angle(math.Inf(1))
	for _, o := range n.out {
		if o == e || o == e.sym {
			continue
		}
		if o.street == nil {
			continue
		}
		inDir := n.point.Sub(o.Other(n).point)
		turn := s1.Angle(geom.AngleBetween(inDir, eDir))
		if turn < bestTurn {
			bestTurn = turn
			best = o.street
		}
	}
	if best == nil {
		return nil
	}
	if bestTurn >= maxTurnForDegree(n.Degree()) {
		return nil
	}
	if best.pairsAt(n) >= 2 {
		// A third pair at n would break the simple-path invariant.
		return nil
	}
	return best
}

// mergeStreets moves every edge of src into dst and deletes src. dst
// keeps its name unless it has none.
func (g *Graph) mergeStreets(dst, src *LogicalStreet) {
	for _, e := range src.Edges() {
		if !e.canonical() {
			continue
		}
		dst.addPair(e)
	}
	if dst.name == "" {
		dst.name = src.name
	}
	g.streets.delete(src.id)
	dst.dirty = true
}
