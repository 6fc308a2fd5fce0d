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

func ringsArea(rings []Ring) float64 {
	var sum float64
	for _, r := range rings {
		sum += r.Area()
	}
	return sum
}

func TestSkeletonSquareBand(t *testing.T) {
	sk, err := StraightSkeleton(unitSquare())
	if err != nil {
		t.Fatalf("StraightSkeleton error: %v", err)
	}

	faces := sk.OffsetFaces(0.2)
	if len(faces) != 4 {
		t.Fatalf("OffsetFaces(0.2) returned %d faces, want 4", len(faces))
	}
	for _, f := range faces {
		// Trapezoid: base 1, top 0.6, height 0.2.
		if !float64Eq(f.Area(), 0.16, 1e-9) {
			t.Errorf("face area = %v, want 0.16", f.Area())
		}
	}

	fronts := sk.Offset(0.2)
	if len(fronts) != 1 {
		t.Fatalf("Offset(0.2) returned %d rings, want 1", len(fronts))
	}
	if !float64Eq(fronts[0].Area(), 0.36, 1e-9) {
		t.Errorf("offset area = %v, want 0.36", fronts[0].Area())
	}
}

func TestSkeletonSquareCollapse(t *testing.T) {
	sk, err := StraightSkeleton(unitSquare())
	if err != nil {
		t.Fatalf("StraightSkeleton error: %v", err)
	}

	faces := sk.OffsetFaces(2)
	if len(faces) != 4 {
		t.Fatalf("OffsetFaces(2) returned %d faces, want 4", len(faces))
	}
	if !float64Eq(ringsArea(faces), 1, 1e-6) {
		t.Errorf("faces cover %v, want the full square", ringsArea(faces))
	}
	if fronts := sk.Offset(2); len(fronts) != 0 {
		t.Errorf("Offset(2) returned %d rings, want none after collapse", len(fronts))
	}
}

func TestSkeletonRectangleRidge(t *testing.T) {
	rect := Ring{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 1}}
	sk, err := StraightSkeleton(rect)
	if err != nil {
		t.Fatalf("StraightSkeleton error: %v", err)
	}
	faces := sk.OffsetFaces(5)
	if len(faces) != 4 {
		t.Fatalf("OffsetFaces returned %d faces, want 4", len(faces))
	}
	if !float64Eq(ringsArea(faces), 2, 1e-6) {
		t.Errorf("faces cover %v, want the full rectangle", ringsArea(faces))
	}
	// The long sides sweep trapezoids up to the ridge, the short sides
	// triangles.
	var triangles, trapezoids int
	for _, f := range faces {
		switch {
		case float64Eq(f.Area(), 0.25, 1e-6):
			triangles++
		case float64Eq(f.Area(), 0.75, 1e-6):
			trapezoids++
		}
	}
	if triangles != 2 || trapezoids != 2 {
		t.Errorf("got %d triangles and %d trapezoids, want 2 and 2", triangles, trapezoids)
	}
}

func TestSkeletonNormalizesOrientation(t *testing.T) {
	cw := unitSquare().Reversed()
	sk, err := StraightSkeleton(cw)
	if err != nil {
		t.Fatalf("StraightSkeleton error: %v", err)
	}
	if faces := sk.OffsetFaces(0.1); len(faces) != 4 {
		t.Errorf("clockwise input produced %d faces, want 4", len(faces))
	}
}

func TestSkeletonDegenerate(t *testing.T) {
	if _, err := StraightSkeleton(Ring{{X: 0, Y: 0}, {X: 1, Y: 1}}); err == nil {
		t.Error("two-point ring should fail")
	}
}
