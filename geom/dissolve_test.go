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
	"testing"
)

func TestDissolveAdjacentSquares(t *testing.T) {
	left := Polygon{Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	right := Polygon{Ring{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}}}
	got := Dissolve([]Polygon{left, right})
	if len(got) != 1 {
		t.Fatalf("Dissolve returned %d polygons, want 1", len(got))
	}
	if !float64Eq(got[0].Area(), 2, 1e-12) {
		t.Errorf("dissolved area = %v, want 2", got[0].Area())
	}
}

func TestDissolveQuadrants(t *testing.T) {
	quads := []Polygon{
		{Ring{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0.5, Y: 0.5}, {X: 0, Y: 0.5}}},
		{Ring{{X: 0.5, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: 0.5}}},
		{Ring{{X: 0.5, Y: 0.5}, {X: 1, Y: 0.5}, {X: 1, Y: 1}, {X: 0.5, Y: 1}}},
		{Ring{{X: 0, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: 1}, {X: 0, Y: 1}}},
	}
	got := Dissolve(quads)
	if len(got) != 1 {
		t.Fatalf("Dissolve returned %d polygons, want 1", len(got))
	}
	if !float64Eq(got[0].Area(), 1, 1e-12) {
		t.Errorf("dissolved area = %v, want 1", got[0].Area())
	}
}

func TestDissolveDisjoint(t *testing.T) {
	a := Polygon{Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	b := Polygon{Ring{{X: 5, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 1}, {X: 5, Y: 1}}}
	got := Dissolve([]Polygon{a, b})
	if len(got) != 2 {
		t.Fatalf("Dissolve returned %d polygons, want 2", len(got))
	}
	if !float64Eq(totalArea(got), 2, 1e-12) {
		t.Errorf("total area = %v, want 2", totalArea(got))
	}
}

func TestDissolveRingOfPiecesLeavesHole(t *testing.T) {
	// Four rectangles around a central 1x1 opening, shared edges
	// subdivided vertex-for-vertex so they cancel.
	pieces := []Polygon{
		{Ring{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1}}}, // bottom
		{Ring{{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 0, Y: 3}}}, // top
		{Ring{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}},                             // left
		{Ring{{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 2, Y: 2}}},                             // right
	}
	got := Dissolve(pieces)
	if len(got) != 1 {
		t.Fatalf("Dissolve returned %d polygons, want 1", len(got))
	}
	if len(got[0]) != 2 {
		t.Fatalf("dissolved polygon has %d rings, want outer plus hole", len(got[0]))
	}
	if !float64Eq(got[0].Area(), 8, 1e-12) {
		t.Errorf("dissolved area = %v, want 8", got[0].Area())
	}
}
