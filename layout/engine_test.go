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
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"

	"github.com/oscarcs/cityplan/streetgraph"
)

// buildStreetSquare inserts a closed street loop of the given size.
func buildStreetSquare(t *testing.T, size float64) *streetgraph.Graph {
	t.Helper()
	g := streetgraph.New(streetgraph.WithRandSource(rand.New(rand.NewSource(7))))
	corners := []r2.Point{
		{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
	}
	for i := range corners {
		_, err := g.InsertLineString(
			[]r2.Point{corners[i], corners[(i+1)%4]}, nil)
		require.NoError(t, err)
	}
	return g
}

func TestGenerateSquareBlock(t *testing.T) {
	g := buildStreetSquare(t, 100)
	e := New(WithRandSource(rand.New(rand.NewSource(7))))

	plan, err := e.Generate(g)
	require.NoError(t, err)

	require.Len(t, plan.Blocks, 1)
	block := plan.Blocks[0]
	require.Len(t, block.Streets, 4, "block should be bounded by four streets")
	require.InDelta(t, 90*90, block.Polygon.Area(), 1e-6,
		"block must be the shell inset by half the street width")

	require.Len(t, plan.Strips, 4)
	bandArea := 0.0
	for _, s := range plan.Strips {
		require.NotNil(t, s.Street)
		require.Greater(t, s.Polygon.Area(), StripMinArea)
		bandArea += s.Polygon.Area()
	}
	// Corner transfers move area between strips but never off the
	// band: boundary ring minus the 30-deep interior.
	require.InDelta(t, 90*90-30*30, bandArea, 1e-6)

	require.NotEmpty(t, plan.Lots)
	for _, l := range plan.Lots {
		require.NotNil(t, l.Street)
		require.True(t, strings.HasPrefix(l.ID, l.Street.ID()+"-lot-"),
			"lot id %q should derive from street id", l.ID)
		require.GreaterOrEqual(t, l.Polygon.Area(), MinLotArea-1e-6)
		require.NotZero(t, l.Color.A)
	}
}

func TestGenerateDiscardsCollapsedBlocks(t *testing.T) {
	// A 6-unit street square insets away entirely at width 10.
	g := buildStreetSquare(t, 6)
	e := New()

	plan, err := e.Generate(g)
	require.NoError(t, err)
	require.Empty(t, plan.Blocks)
	require.Empty(t, plan.Strips)
	require.Empty(t, plan.Lots)
}

func TestGenerateEmptyGraph(t *testing.T) {
	g := streetgraph.New()
	plan, err := New().Generate(g)
	require.NoError(t, err)
	require.Empty(t, plan.Blocks)
}

func TestGenerateOpenChainsYieldNoBlocks(t *testing.T) {
	g := streetgraph.New()
	_, err := g.InsertLineString([]r2.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, nil)
	require.NoError(t, err)
	_, err = g.InsertLineString([]r2.Point{{X: 0, Y: 50}, {X: 100, Y: 50}}, nil)
	require.NoError(t, err)

	plan, err := New().Generate(g)
	require.NoError(t, err)
	require.Empty(t, plan.Blocks, "open chains enclose nothing")
}

func TestEngineOptions(t *testing.T) {
	e := New(
		WithStreetWidth(12),
		WithMaxLotDepth(40),
		WithLotWidth(20),
		WithMinLotArea(300),
		WithUnitsPerMeter(2),
	)
	require.Equal(t, 12.0, e.streetWidth)
	require.Equal(t, 40.0, e.maxLotDepth)
	require.Equal(t, 20.0, e.lotWidth)
	require.Equal(t, 300.0, e.minLotArea)
	require.Equal(t, 80.0, e.units(40))
	require.Equal(t, 1200.0, e.areaUnits(300))
}

func TestLotsDeterministicWithSeed(t *testing.T) {
	run := func() *Plan {
		g := buildStreetSquare(t, 100)
		e := New(WithRandSource(rand.New(rand.NewSource(3))))
		plan, err := e.Generate(g)
		require.NoError(t, err)
		return plan
	}
	a, b := run(), run()
	require.Equal(t, len(a.Lots), len(b.Lots))
	for i := range a.Lots {
		require.Equal(t, a.Lots[i].ID, b.Lots[i].ID)
		require.Equal(t, a.Lots[i].Color, b.Lots[i].Color)
		require.InDelta(t, a.Lots[i].Polygon.Area(), b.Lots[i].Polygon.Area(), 1e-9)
	}
}
