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

package layout

import (
	"errors"

	"github.com/oscarcs/cityplan/geom"
	"github.com/oscarcs/cityplan/streetgraph"
)

// Block is the buildable interior of a street enclosure: the shell
// polygon inset by half the street width, annotated with its bounding
// logical streets.
type Block struct {
	Polygon     geom.Polygon
	Streets     []*streetgraph.LogicalStreet
	MaxLotDepth float64 // meters
}

// extractBlocks turns each polygonized shell into a Block. Bounding
// streets come from looking every shell edge up in the original
// graph by node identity; the inset uses half the engine street
// width. Shells whose inset collapses or degenerates are dropped;
// inset failures other than a collapse are logged.
func (e *Engine) extractBlocks(g *streetgraph.Graph, rings []*streetgraph.EdgeRing) []*Block {
	var blocks []*Block
	for _, ring := range rings {
		if !ring.IsShell() {
			continue
		}

		var streets []*streetgraph.LogicalStreet
		seen := make(map[string]bool)
		for _, edge := range ring.Edges() {
			s := g.FindStreetForEdge(edge.From().ID(), edge.To().ID())
			if s == nil || seen[s.ID()] {
				continue
			}
			seen[s.ID()] = true
			streets = append(streets, s)
		}

		inset, err := geom.Buffer(geom.Polygon{ring.Ring()}, -e.units(e.streetWidth)/2, nil)
		if err != nil {
			if !errors.Is(err, geom.ErrCollapsed) {
				e.logger.Warn("block inset failed", "err", err)
			}
			continue
		}
		if len(inset) == 0 || len(inset.Outer()) < 3 {
			continue
		}

		blocks = append(blocks, &Block{
			Polygon:     inset,
			Streets:     streets,
			MaxLotDepth: e.maxLotDepth,
		})
	}
	return blocks
}
