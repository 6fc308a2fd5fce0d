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
	"strconv"

	"github.com/golang/geo/r2"
)

// Node is a graph vertex. Its identity is the string join of its
// coordinates; two points within geom.Epsilon resolve to one node.
type Node struct {
	id    string
	point r2.Point

	// out holds edges originating here, kept sorted counter-clockwise
	// by exit direction (stable for colinear ties). in holds edges
	// terminating here, in insertion order.
	out []*Edge
	in  []*Edge
}

// NodeID returns the canonical id string for a coordinate.
func NodeID(p r2.Point) string {
	return strconv.FormatFloat(p.X, 'g', -1, 64) + "," + strconv.FormatFloat(p.Y, 'g', -1, 64)
}

// ID returns the node's identifier.
func (n *Node) ID() string { return n.id }

// Point returns the node's coordinate.
func (n *Node) Point() r2.Point { return n.point }

// Degree returns the number of incident undirected edges.
func (n *Node) Degree() int { return len(n.out) }

// OuterEdges returns the outgoing edges in counter-clockwise order.
func (n *Node) OuterEdges() []*Edge {
	out := make([]*Edge, len(n.out))
	copy(out, n.out)
	return out
}

// InnerEdges returns the incoming edges in insertion order.
func (n *Node) InnerEdges() []*Edge {
	in := make([]*Edge, len(n.in))
	copy(in, n.in)
	return in
}

func (n *Node) addOuter(e *Edge) {
	n.out = append(n.out, e)
	sort.SliceStable(n.out, func(i, j int) bool {
		return compareDirections(n.out[i].Direction(), n.out[j].Direction()) < 0
	})
}

func (n *Node) addInner(e *Edge) {
	n.in = append(n.in, e)
}

func (n *Node) removeOuter(e *Edge) {
	for i, o := range n.out {
		if o == e {
			n.out = append(n.out[:i], n.out[i+1:]...)
			return
		}
	}
}

func (n *Node) removeInner(e *Edge) {
	for i, o := range n.in {
		if o == e {
			n.in = append(n.in[:i], n.in[i+1:]...)
			return
		}
	}
}

// quadrant returns the quadrant index of a direction vector, counting
// counter-clockwise from the positive x axis.
func quadrant(d r2.Point) int {
	if d.X >= 0 {
		if d.Y >= 0 {
			return 0
		}
		return 3
	}
	if d.Y >= 0 {
		return 1
	}
	return 2
}

// compareDirections orders direction vectors counter-clockwise from
// the positive x axis: first by quadrant, then by the orientation of
// one vector against the other. Exactly parallel directions compare
// equal, which lets the stable sort preserve insertion order.
func compareDirections(a, b r2.Point) int {
	qa, qb := quadrant(a), quadrant(b)
	if qa != qb {
		if qa < qb {
			return -1
		}
		return 1
	}
	cross := a.X*b.Y - a.Y*b.X
	switch {
	case cross > 0:
		return -1 // b is counter-clockwise of a
	case cross < 0:
		return 1
	default:
		return 0
	}
}
