// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package geojson

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

// point builds a Point feature for tests.
func point(lon, lat float64, props map[string]interface{}) Feature {
	coords, _ := json.Marshal([]float64{lon, lat})
	return Feature{
		Type:       "Feature",
		Geometry:   &Geometry{Type: "Point", Coordinates: coords},
		Properties: props,
	}
}

func TestDecodeValidCollection(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-0.09, 51.505]}, "properties": {"name": "London"}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[-0.1, 51.5], [-0.12, 51.51]]}, "properties": {}}
		]
	}`)

	fc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Errorf("Expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["name"] != "London" {
		t.Errorf("Expected property to survive decode, got %v", fc.Features[0].Properties)
	}
}

func TestDecodeRejectsWrongDiscriminator(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type": "Feature", "features": []}`))
	if !errors.Is(err, ErrNotFeatureCollection) {
		t.Errorf("Expected ErrNotFeatureCollection, got %v", err)
	}
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestDecodeRejectsMissingGeometry(t *testing.T) {
	t.Parallel()

	data := []byte(`{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {}}]}`)
	_, err := Decode(data)
	if !errors.Is(err, ErrMissingGeometry) {
		t.Errorf("Expected ErrMissingGeometry, got %v", err)
	}
}

func TestDecodeRejectsUnknownGeometryType(t *testing.T) {
	t.Parallel()

	data := []byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "Circle", "coordinates": [0, 0]}}
	]}`)
	if _, err := Decode(data); err == nil {
		t.Error("Expected error for unsupported geometry type")
	}
}

func TestValidateGeometryCollection(t *testing.T) {
	t.Parallel()

	data := []byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "GeometryCollection", "geometries": [
			{"type": "Point", "coordinates": [1, 2]},
			{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}
		]}}
	]}`)
	if _, err := Decode(data); err != nil {
		t.Errorf("GeometryCollection should validate, got %v", err)
	}
}

func TestComputeBoundsUnion(t *testing.T) {
	t.Parallel()

	fc := NewFeatureCollection()
	fc.Features = append(fc.Features,
		point(-0.09, 51.505, nil),
		point(2.35, 48.85, nil),
		point(-3.7, 40.42, nil),
	)

	bounds, ok := ComputeBounds(fc)
	if !ok {
		t.Fatal("Expected bounds for non-empty collection")
	}
	if bounds.MinLon != -3.7 || bounds.MaxLon != 2.35 {
		t.Errorf("Unexpected lon bounds: %+v", bounds)
	}
	if bounds.MinLat != 40.42 || bounds.MaxLat != 51.505 {
		t.Errorf("Unexpected lat bounds: %+v", bounds)
	}
}

func TestComputeBoundsEmptyCollection(t *testing.T) {
	t.Parallel()

	if _, ok := ComputeBounds(NewFeatureCollection()); ok {
		t.Error("Empty collection must not produce bounds")
	}
	if _, ok := ComputeBounds(nil); ok {
		t.Error("Nil collection must not produce bounds")
	}
}

func TestComputeBoundsNestedGeometries(t *testing.T) {
	t.Parallel()

	data := []byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [
			[[[10, 10], [20, 10], [20, 20], [10, 10]]],
			[[[-5, -5], [0, -5], [0, 0], [-5, -5]]]
		]}},
		{"type": "Feature", "geometry": {"type": "GeometryCollection", "geometries": [
			{"type": "Point", "coordinates": [30, -15]}
		]}}
	]}`)

	fc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	bounds, ok := ComputeBounds(fc)
	if !ok {
		t.Fatal("Expected bounds")
	}
	want := Bounds{MinLon: -5, MinLat: -15, MaxLon: 30, MaxLat: 20}
	if bounds != want {
		t.Errorf("Bounds = %+v, want %+v", bounds, want)
	}
}

func TestComputeBoundsSinglePoint(t *testing.T) {
	t.Parallel()

	// A single point must seed the box, not union against the zero value.
	fc := NewFeatureCollection()
	fc.Features = append(fc.Features, point(100, -40, nil))

	bounds, ok := ComputeBounds(fc)
	if !ok {
		t.Fatal("Expected bounds")
	}
	want := Bounds{MinLon: 100, MinLat: -40, MaxLon: 100, MaxLat: -40}
	if bounds != want {
		t.Errorf("Bounds = %+v, want %+v", bounds, want)
	}

	lon, lat := bounds.Center()
	if lon != 100 || lat != -40 {
		t.Errorf("Center() = (%g, %g), want (100, -40)", lon, lat)
	}
}

func TestRoundTripPreservesOpaqueProperties(t *testing.T) {
	t.Parallel()

	fc := NewFeatureCollection()
	fc.Features = append(fc.Features, point(1, 2, map[string]interface{}{
		"nested": map[string]interface{}{"deep": "value"},
	}))

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	nested, ok := decoded.Features[0].Properties["nested"].(map[string]interface{})
	if !ok || nested["deep"] != "value" {
		t.Errorf("Opaque properties did not survive round trip: %v", decoded.Features[0].Properties)
	}
}
