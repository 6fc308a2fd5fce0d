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

package geojson

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb/planar"

	"github.com/oscarcs/cityplan/layout"
	"github.com/oscarcs/cityplan/streetgraph"
)

func buildGraph(t *testing.T) *streetgraph.Graph {
	t.Helper()
	g := streetgraph.New(streetgraph.WithRandSource(rand.New(rand.NewSource(11))))
	corners := []r2.Point{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
	}
	for i := range corners {
		if _, err := g.InsertLineString(
			[]r2.Point{corners[i], corners[(i+1)%4]}, nil); err != nil {
			t.Fatalf("InsertLineString: %v", err)
		}
	}
	return g
}

func TestEdgeFeatures(t *testing.T) {
	g := buildGraph(t)
	fc := EdgeFeatures(g)
	if got := len(fc.Features); got != 4 {
		t.Fatalf("got %d edge features, want 4", got)
	}
	for _, f := range fc.Features {
		if f.Geometry.GeoJSONType() != "LineString" {
			t.Errorf("edge feature type = %s, want LineString", f.Geometry.GeoJSONType())
		}
		if _, ok := f.Properties["logicalStreetId"]; !ok {
			t.Error("edge feature missing logicalStreetId")
		}
		if _, ok := f.Properties["color"]; !ok {
			t.Error("edge feature missing color")
		}
	}
}

func TestStreetFeatures(t *testing.T) {
	g := buildGraph(t)
	fc := StreetFeatures(g)
	if got, want := len(fc.Features), len(g.Streets()); got != want {
		t.Fatalf("got %d street features, want %d", got, want)
	}
	for _, f := range fc.Features {
		if got := planar.Length(f.Geometry); got != 100 {
			t.Errorf("street length = %v, want 100", got)
		}
	}
}

func TestPlanFeatures(t *testing.T) {
	g := buildGraph(t)
	e := layout.New(layout.WithRandSource(rand.New(rand.NewSource(11))))
	plan, err := e.Generate(g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	fc := PlanFeatures(plan)

	want := len(plan.Blocks) + len(plan.Strips) + len(plan.Lots)
	if got := len(fc.Features); got != want {
		t.Fatalf("got %d plan features, want %d", got, want)
	}

	var blockArea float64
	for _, f := range fc.Features {
		switch f.Properties["kind"] {
		case "block":
			blockArea += planar.Area(f.Geometry)
		case "strip":
			if _, ok := f.Properties["streetId"]; !ok {
				t.Error("strip feature missing streetId")
			}
		case "lot":
			if _, ok := f.Properties["id"]; !ok {
				t.Error("lot feature missing id")
			}
		}
	}
	if blockArea < 8100-1e-6 || blockArea > 8100+1e-6 {
		t.Errorf("block feature area = %v, want 8100", blockArea)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g := buildGraph(t)
	fc := EdgeFeatures(g)

	data, err := Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff("FeatureCollection", decoded["type"]); diff != "" {
		t.Errorf("collection type mismatch (-want +got):\n%s", diff)
	}
	features, ok := decoded["features"].([]any)
	if !ok || len(features) != 4 {
		t.Fatalf("decoded features = %v, want 4 entries", decoded["features"])
	}
}

func TestColorString(t *testing.T) {
	g := buildGraph(t)
	s := g.Streets()[0]
	got := colorString(s.Color())
	if got == "" || got[:5] != "rgba(" {
		t.Errorf("colorString = %q, want rgba(...) form", got)
	}
}
