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
	"github.com/golang/geo/r2"
)

// unlabeled marks an edge not yet assigned to a ring.
const unlabeled = -1

// Edge is a directed segment between two nodes. Edges always exist in
// symmetric pairs: e.Sym() runs the opposite way, and the pair is
// created and destroyed atomically.
type Edge struct {
	from, to *Node
	sym      *Edge

	// street is the logical street this edge belongs to, if any.
	street *LogicalStreet

	// Polygonization state, meaningful only on graph copies while
	// Polygonize runs.
	label int
	next  *Edge
	ring  *EdgeRing
}

// EdgeID returns the canonical id for a directed node pair.
func EdgeID(from, to *Node) string { return from.id + "->" + to.id }

// ID returns the edge's identifier.
func (e *Edge) ID() string { return EdgeID(e.from, e.to) }

// From returns the origin node.
func (e *Edge) From() *Node { return e.from }

// To returns the destination node.
func (e *Edge) To() *Node { return e.to }

// Sym returns the symmetric partner edge.
func (e *Edge) Sym() *Edge { return e.sym }

// Street returns the logical street this edge belongs to, or nil.
func (e *Edge) Street() *LogicalStreet { return e.street }

// Direction returns the vector from origin to destination.
func (e *Edge) Direction() r2.Point { return e.to.point.Sub(e.from.point) }

// Length returns the edge's Euclidean length.
func (e *Edge) Length() float64 { return e.Direction().Norm() }

// Other returns the endpoint opposite n. When n is not an endpoint it
// returns the origin.
func (e *Edge) Other(n *Node) *Node {
	if e.from == n {
		return e.to
	}
	return e.from
}

// canonical reports whether e is the representative direction of its
// pair, used when a pass must visit each undirected edge once.
func (e *Edge) canonical() bool { return e.from.id <= e.to.id }
