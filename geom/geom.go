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

// Package geom is the planar geometry kernel shared by the street graph
// and the block/strip/lot pipeline. It provides segment predicates,
// ring and polygon types, line overlap, polygon slicing, buffering,
// edge-adjacent union (dissolve), and the straight skeleton.
//
// All coordinates are r2.Point values in world units. Two coordinates
// within Epsilon of each other denote the same location.
package geom

import (
	"errors"
	"math"

	"github.com/golang/geo/r2"
)

const (
	// Epsilon is the coordinate deduplication tolerance: points closer
	// than this are the same point.
	Epsilon = 1e-10

	// DenomTolerance is the parametric-solve denominator cutoff below
	// which two segments are treated as parallel.
	DenomTolerance = 1e-15

	// ParamBand widens the [0,1] parameter interval of a segment
	// intersection so that endpoint grazes are accepted.
	ParamBand = 1e-10
)

// Sentinel errors for kernel operations.
var (
	// ErrDegenerate reports an input too degenerate to operate on
	// (empty ring, zero-length segment, fewer than three vertices).
	ErrDegenerate = errors.New("geom: degenerate input")

	// ErrCollapsed reports an inward buffer that consumed its input.
	ErrCollapsed = errors.New("geom: geometry collapsed")
)

// PointsEqual reports whether a and b coincide within Epsilon on both
// axes.
func PointsEqual(a, b r2.Point) bool {
	return math.Abs(a.X-b.X) < Epsilon && math.Abs(a.Y-b.Y) < Epsilon
}

// OrientationIndex returns the sign of the 2D cross product of
// (p2-p1) and (q-p2): +1 if q lies to the left of the directed line
// p1->p2, -1 if to the right, 0 if collinear.
func OrientationIndex(p1, p2, q r2.Point) int {
	cross := (p2.X-p1.X)*(q.Y-p2.Y) - (p2.Y-p1.Y)*(q.X-p2.X)
	switch {
	case cross > 0:
		return 1
	case cross < 0:
		return -1
	default:
		return 0
	}
}

// Angle returns the direction of the vector a->b in radians in
// (-pi, pi].
func Angle(a, b r2.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// AngleBetween returns the unsigned angle between the directions u and
// v in [0, pi]. Zero-length inputs yield 0.
func AngleBetween(u, v r2.Point) float64 {
	nu, nv := u.Norm(), v.Norm()
	if nu == 0 || nv == 0 {
		return 0
	}
	cos := u.Dot(v) / (nu * nv)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// Lerp returns the point a + t*(b-a).
func Lerp(a, b r2.Point, t float64) r2.Point {
	return a.Add(b.Sub(a).Mul(t))
}
