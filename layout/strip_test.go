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
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"

	"github.com/oscarcs/cityplan/geom"
)

func TestExteriorSegment(t *testing.T) {
	outer := geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	face := geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 7, Y: 3}, {X: 3, Y: 3}}
	seg, ok := exteriorSegment(face, outer)
	require.True(t, ok)
	require.Equal(t, r2.Point{X: 0, Y: 0}, seg[0])
	require.Equal(t, r2.Point{X: 10, Y: 0}, seg[1])

	floating := geom.Ring{{X: 3, Y: 3}, {X: 7, Y: 3}, {X: 7, Y: 7}, {X: 3, Y: 7}}
	_, ok = exteriorSegment(floating, outer)
	require.False(t, ok, "interior face has no exterior segment")
}

func TestSharedBoundaryEdges(t *testing.T) {
	outer := geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	// Two faces meeting along the diagonal from the boundary corner
	// (0,0) to the interior point (3,3).
	a := geom.Polygon{geom.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 7, Y: 3}, {X: 3, Y: 3}}}
	b := geom.Polygon{geom.Ring{{X: 0, Y: 0}, {X: 3, Y: 3}, {X: 3, Y: 7}, {X: 0, Y: 10}}}

	shared := sharedBoundaryEdges(a, b, outer)
	require.Len(t, shared, 1)
	require.Equal(t, r2.Point{X: 0, Y: 0}, shared[0][0], "boundary point first")
	require.Equal(t, r2.Point{X: 3, Y: 3}, shared[0][1], "interior point last")
}

func TestCornerTransferMovesArea(t *testing.T) {
	g := buildStreetSquare(t, 100)
	e := New(WithRandSource(rand.New(rand.NewSource(7))))
	plan, err := e.Generate(g)
	require.NoError(t, err)
	require.Len(t, plan.Strips, 4)

	// With equal-length streets every pair still transfers its corner
	// one way; strips end up unequal but the band area is conserved.
	areas := make([]float64, len(plan.Strips))
	var total float64
	for i, s := range plan.Strips {
		areas[i] = s.Polygon.Area()
		total += areas[i]
	}
	require.InDelta(t, 90*90-30*30, total, 1e-6)

	var differ bool
	for _, a := range areas[1:] {
		if a != areas[0] {
			differ = true
		}
	}
	require.True(t, differ, "corner transfers should leave strips unequal")
}

func TestStreetEdgeAssembly(t *testing.T) {
	g := buildStreetSquare(t, 100)
	e := New()
	plan, err := e.Generate(g)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Strips)

	for _, s := range plan.Strips {
		edge := e.streetEdge(s)
		require.GreaterOrEqual(t, len(edge), 2, "street edge must be a polyline")
		// Every street-edge point lies on the block boundary.
		closed := s.Block.Polygon.Outer().Closed()
		for _, p := range edge {
			require.True(t, onPolyline(p, closed, 1e-6),
				"street edge point %v off the block boundary", p)
		}
	}
}

func TestSplittingRaySpacing(t *testing.T) {
	e := New()
	edge := []r2.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	rays := e.splittingRays(edge, 30)
	require.Len(t, rays, 4, "rays at 25, 50, 75, 100")

	for i, ray := range rays {
		require.Len(t, ray, 2)
		wantX := 25 * float64(i+1)
		require.InDelta(t, wantX, ray[0].X, 1e-9)
		require.InDelta(t, wantX, ray[1].X, 1e-9)
		// Perpendicular, reaching lot depth plus overhang both sides.
		require.InDelta(t, 40, ray[1].Y, 1e-9)
		require.InDelta(t, -40, ray[0].Y, 1e-9)
	}

	require.Empty(t, e.splittingRays(nil, 30))
	require.Empty(t, e.splittingRays([]r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 30),
		"edge shorter than the spacing produces no rays")
}
