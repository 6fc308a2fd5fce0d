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

// Package layout turns a polygonized street graph into blocks,
// per-street strips, and street-facing lots.
//
// The pipeline is block extraction (shell rings inset by half the
// street width), strip generation (straight-skeleton faces grouped by
// bounding street, corners transferred from shorter to longer
// streets), and lot slicing (perpendicular rays along each strip's
// street edge). Failures degrade per stage: a block that cannot be
// processed keeps whatever earlier stages produced, with a logged
// diagnostic, and never aborts the run.
package layout

import (
	"image/color"
	"log/slog"
	"math/rand"

	"github.com/oscarcs/cityplan/streetgraph"
)

// Binding pipeline constants. Meter-valued constants pass through the
// engine's UnitsPerMeter scale; area floors in world units apply as
// written.
const (
	// DefaultMaxLotDepth is the lot depth in meters used for blocks
	// unless overridden.
	DefaultMaxLotDepth = 30.0

	// LotWidth is the splitting-ray spacing along the street edge, in
	// meters.
	LotWidth = 25.0

	// MinLotArea rejects sliver lots, in square meters.
	MinLotArea = 500.0

	// RayOverhang extends each splitting ray past the lot depth, in
	// meters.
	RayOverhang = 10.0

	// StripMinArea drops empty strips, in square world units.
	StripMinArea = 400.0

	// FaceMinArea drops degenerate skeleton faces, in square world
	// units.
	FaceMinArea = 1e-4
)

// Engine generates urban layouts from a street graph. It is not safe
// for concurrent use; each Generate call works on a snapshot of the
// graph and produces an independent Plan.
type Engine struct {
	logger        *slog.Logger
	rng           *rand.Rand
	streetWidth   float64 // meters
	maxLotDepth   float64 // meters
	lotWidth      float64 // meters
	minLotArea    float64 // square meters
	unitsPerMeter float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRandSource sets the random source used for lot colors.
func WithRandSource(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithStreetWidth sets the street width in meters used for the block
// inset.
func WithStreetWidth(m float64) Option {
	return func(e *Engine) { e.streetWidth = m }
}

// WithMaxLotDepth sets the lot depth in meters.
func WithMaxLotDepth(m float64) Option {
	return func(e *Engine) { e.maxLotDepth = m }
}

// WithLotWidth sets the splitting-ray spacing in meters.
func WithLotWidth(m float64) Option {
	return func(e *Engine) { e.lotWidth = m }
}

// WithMinLotArea sets the sliver-lot rejection threshold in square
// meters.
func WithMinLotArea(m2 float64) Option {
	return func(e *Engine) { e.minLotArea = m2 }
}

// WithUnitsPerMeter sets the world-unit scale. The default of 1
// makes world units and meters interchangeable.
func WithUnitsPerMeter(scale float64) Option {
	return func(e *Engine) { e.unitsPerMeter = scale }
}

// New returns an Engine with the binding default constants.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        slog.Default(),
		rng:           rand.New(rand.NewSource(1)),
		streetWidth:   streetgraph.DefaultStreetWidth,
		maxLotDepth:   DefaultMaxLotDepth,
		lotWidth:      LotWidth,
		minLotArea:    MinLotArea,
		unitsPerMeter: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// units converts meters to world units.
func (e *Engine) units(meters float64) float64 { return meters * e.unitsPerMeter }

// areaUnits converts square meters to square world units.
func (e *Engine) areaUnits(m2 float64) float64 {
	return m2 * e.unitsPerMeter * e.unitsPerMeter
}

// Plan is the result of one Generate run. Its polygons are values;
// blocks, strips, and lots refer to the graph's logical streets by
// pointer.
type Plan struct {
	Blocks []*Block
	Strips []*Strip
	Lots   []*Lot
}

// Generate polygonizes the graph and runs the block, strip, and lot
// stages over every shell.
func (e *Engine) Generate(g *streetgraph.Graph) (*Plan, error) {
	plan := &Plan{}
	rings := g.Polygonize()
	plan.Blocks = e.extractBlocks(g, rings)
	for _, b := range plan.Blocks {
		strips := e.generateStrips(b)
		plan.Strips = append(plan.Strips, strips...)
		for _, s := range strips {
			plan.Lots = append(plan.Lots, e.sliceLots(s)...)
		}
	}
	return plan, nil
}

func (e *Engine) randomColor() color.RGBA {
	return color.RGBA{
		R: uint8(e.rng.Intn(256)),
		G: uint8(e.rng.Intn(256)),
		B: uint8(e.rng.Intn(256)),
		A: 255,
	}
}
