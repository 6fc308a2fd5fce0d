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

// Package geojson emits the engine's graph and layout state as
// GeoJSON feature collections: one LineString feature per edge pair
// or logical street, and one Polygon feature per block, strip, and
// lot.
package geojson

import (
	"fmt"
	"image/color"

	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/golang/geo/r2"

	"github.com/oscarcs/cityplan/geom"
	"github.com/oscarcs/cityplan/layout"
	"github.com/oscarcs/cityplan/streetgraph"
)

var json = jsoniter.Config{
	EscapeHTML:              true,
	SortMapKeys:             false,
	MarshalFloatWith6Digits: true,
}.Froze()

func init() {
	orbjson.CustomJSONMarshaler = json
	orbjson.CustomJSONUnmarshaler = json
}

// Marshal encodes a feature collection.
func Marshal(fc *orbjson.FeatureCollection) ([]byte, error) {
	return json.Marshal(fc)
}

// EdgeFeatures returns one LineString feature per unique edge pair,
// carrying the owning street's id and color.
func EdgeFeatures(g *streetgraph.Graph) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	for _, e := range g.Edges() {
		if e.From().ID() > e.To().ID() {
			continue // one feature per pair
		}
		f := orbjson.NewFeature(orb.LineString{
			toOrb(e.From().Point()),
			toOrb(e.To().Point()),
		})
		if s := e.Street(); s != nil {
			f.Properties["logicalStreetId"] = s.ID()
			f.Properties["color"] = colorString(s.Color())
		}
		fc.Append(f)
	}
	return fc
}

// StreetFeatures returns one LineString feature per logical street,
// using the street's derived linestring.
func StreetFeatures(g *streetgraph.Graph) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	for _, s := range g.Streets() {
		line := s.Line()
		if len(line) < 2 {
			continue
		}
		ls := make(orb.LineString, len(line))
		for i, p := range line {
			ls[i] = toOrb(p)
		}
		f := orbjson.NewFeature(ls)
		f.Properties["id"] = s.ID()
		if s.Name() != "" {
			f.Properties["name"] = s.Name()
		}
		f.Properties["color"] = colorString(s.Color())
		f.Properties["width"] = s.Width()
		fc.Append(f)
	}
	return fc
}

// PlanFeatures returns the polygon features of a generated plan:
// blocks, strips annotated with their street id, and lots with their
// id and color.
func PlanFeatures(p *layout.Plan) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	for _, b := range p.Blocks {
		f := orbjson.NewFeature(toOrbPolygon(b.Polygon))
		f.Properties["kind"] = "block"
		fc.Append(f)
	}
	for _, s := range p.Strips {
		f := orbjson.NewFeature(toOrbPolygon(s.Polygon))
		f.Properties["kind"] = "strip"
		if s.Street != nil {
			f.Properties["streetId"] = s.Street.ID()
		}
		fc.Append(f)
	}
	for _, l := range p.Lots {
		f := orbjson.NewFeature(toOrbPolygon(l.Polygon))
		f.Properties["kind"] = "lot"
		f.Properties["id"] = l.ID
		f.Properties["color"] = colorString(l.Color)
		fc.Append(f)
	}
	return fc
}

func toOrb(p r2.Point) orb.Point { return orb.Point{p.X, p.Y} }

func toOrbPolygon(p geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, ring := range p {
		closed := ring.Closed()
		r := make(orb.Ring, len(closed))
		for i, pt := range closed {
			r[i] = toOrb(pt)
		}
		out = append(out, r)
	}
	return out
}

func colorString(c color.RGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}
