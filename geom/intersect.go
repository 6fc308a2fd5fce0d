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
	"math"

	"github.com/golang/geo/r2"
)

// SegmentIntersection returns the intersection of the segments (p1,p2)
// and (p3,p4) by parametric line-line solve. The boolean is false when
// the segments are parallel within DenomTolerance or when the
// intersection parameter of either segment falls outside
// [-ParamBand, 1+ParamBand].
func SegmentIntersection(p1, p2, p3, p4 r2.Point) (r2.Point, bool) {
	denom := (p4.Y-p3.Y)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Y-p1.Y)
	if math.Abs(denom) < DenomTolerance {
		return r2.Point{}, false
	}
	ua := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / denom
	ub := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / denom
	if ua < -ParamBand || ua > 1+ParamBand || ub < -ParamBand || ub > 1+ParamBand {
		return r2.Point{}, false
	}
	return Lerp(p1, p2, ua), true
}

// LineIntersection intersects the infinite lines through (p1,p2) and
// (p3,p4). The boolean is false for parallel lines.
func LineIntersection(p1, p2, p3, p4 r2.Point) (r2.Point, bool) {
	denom := (p4.Y-p3.Y)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Y-p1.Y)
	if math.Abs(denom) < DenomTolerance {
		return r2.Point{}, false
	}
	ua := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / denom
	return Lerp(p1, p2, ua), true
}

// ClosestPointOnSegment returns the point of segment (a,b) nearest to p
// and the segment parameter t in [0,1] at which it occurs.
func ClosestPointOnSegment(p, a, b r2.Point) (r2.Point, float64) {
	ab := b.Sub(a)
	len2 := ab.Dot(ab)
	if len2 == 0 {
		return a, 0
	}
	t := p.Sub(a).Dot(ab) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Lerp(a, b, t), t
}

// DistToSegment returns the distance from p to the segment (a,b).
func DistToSegment(p, a, b r2.Point) float64 {
	q, _ := ClosestPointOnSegment(p, a, b)
	return Dist(p, q)
}

// PointOnSegment reports whether p lies on the segment (a,b) within
// tol of its supporting line and inside its extent.
func PointOnSegment(p, a, b r2.Point, tol float64) bool {
	return DistToSegment(p, a, b) <= tol
}

// pointStrictlyInsideSegment reports whether p lies on (a,b) within
// tol but is not an endpoint (Epsilon precision).
func pointStrictlyInsideSegment(p, a, b r2.Point, tol float64) bool {
	if PointsEqual(p, a) || PointsEqual(p, b) {
		return false
	}
	return PointOnSegment(p, a, b, tol)
}
