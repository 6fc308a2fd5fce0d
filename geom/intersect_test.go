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
	"testing"

	"github.com/golang/geo/r2"
)

func float64Eq(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func pointEq(a, b r2.Point, eps float64) bool {
	return float64Eq(a.X, b.X, eps) && float64Eq(a.Y, b.Y, eps)
}

func TestSegmentIntersection(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, p3, p4 r2.Point
		want           r2.Point
		ok             bool
	}{
		{
			name: "crossing diagonals",
			p1:   r2.Point{X: 0, Y: 0}, p2: r2.Point{X: 1, Y: 1},
			p3: r2.Point{X: 0, Y: 1}, p4: r2.Point{X: 1, Y: 0},
			want: r2.Point{X: 0.5, Y: 0.5}, ok: true,
		},
		{
			name: "parallel",
			p1:   r2.Point{X: 0, Y: 0}, p2: r2.Point{X: 1, Y: 0},
			p3: r2.Point{X: 0, Y: 1}, p4: r2.Point{X: 1, Y: 1},
			ok: false,
		},
		{
			name: "lines cross outside segments",
			p1:   r2.Point{X: 0, Y: 0}, p2: r2.Point{X: 1, Y: 0},
			p3: r2.Point{X: 2, Y: -1}, p4: r2.Point{X: 2, Y: 1},
			ok: false,
		},
		{
			name: "touch at shared endpoint",
			p1:   r2.Point{X: 0, Y: 0}, p2: r2.Point{X: 1, Y: 0},
			p3: r2.Point{X: 1, Y: 0}, p4: r2.Point{X: 1, Y: 1},
			want: r2.Point{X: 1, Y: 0}, ok: true,
		},
		{
			name: "graze within parameter band",
			p1:   r2.Point{X: 0, Y: 0}, p2: r2.Point{X: 1, Y: 0},
			p3: r2.Point{X: 0.5, Y: -1}, p4: r2.Point{X: 0.5, Y: -1e-11},
			want: r2.Point{X: 0.5, Y: 0}, ok: true,
		},
	}
	for _, test := range tests {
		got, ok := SegmentIntersection(test.p1, test.p2, test.p3, test.p4)
		if ok != test.ok {
			t.Errorf("%s: SegmentIntersection ok = %v, want %v", test.name, ok, test.ok)
			continue
		}
		if ok && !pointEq(got, test.want, 1e-9) {
			t.Errorf("%s: SegmentIntersection = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 2, Y: 0}
	tests := []struct {
		p     r2.Point
		want  r2.Point
		wantT float64
	}{
		{r2.Point{X: 1, Y: 1}, r2.Point{X: 1, Y: 0}, 0.5},
		{r2.Point{X: -1, Y: 1}, r2.Point{X: 0, Y: 0}, 0},
		{r2.Point{X: 3, Y: -2}, r2.Point{X: 2, Y: 0}, 1},
	}
	for _, test := range tests {
		got, gotT := ClosestPointOnSegment(test.p, a, b)
		if !pointEq(got, test.want, 1e-12) || !float64Eq(gotT, test.wantT, 1e-12) {
			t.Errorf("ClosestPointOnSegment(%v) = %v, %v, want %v, %v",
				test.p, got, gotT, test.want, test.wantT)
		}
	}
}

func TestPointOnSegment(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 1, Y: 0}
	if !PointOnSegment(r2.Point{X: 0.25, Y: 0}, a, b, Epsilon) {
		t.Error("interior point not reported on segment")
	}
	if PointOnSegment(r2.Point{X: 0.25, Y: 0.1}, a, b, Epsilon) {
		t.Error("offset point reported on segment")
	}
	if pointStrictlyInsideSegment(a, a, b, Epsilon) {
		t.Error("endpoint reported strictly inside")
	}
}
