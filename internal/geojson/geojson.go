// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package geojson holds the GeoJSON feature model shared by the map
// synchronizer and the import/export endpoints.
//
// Only the envelope is validated here: the "FeatureCollection"/"Feature"
// discriminators, geometry presence, and geometry type membership. Feature
// properties and coordinate payloads are third-party data and stay opaque.
package geojson

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Geometry types permitted by RFC 7946.
var geometryTypes = map[string]bool{
	"Point":              true,
	"LineString":         true,
	"Polygon":            true,
	"MultiPoint":         true,
	"MultiLineString":    true,
	"MultiPolygon":       true,
	"GeometryCollection": true,
}

var (
	// ErrNotFeatureCollection indicates the top-level discriminator is wrong.
	ErrNotFeatureCollection = errors.New("geojson: not a FeatureCollection")

	// ErrMissingGeometry indicates a feature without a geometry member.
	ErrMissingGeometry = errors.New("geojson: feature is missing geometry")
)

// Geometry is a GeoJSON geometry. Coordinates stay raw; their nesting depth
// depends on Type and is only walked for bounds computation. Geometries is
// populated for GeometryCollection only.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []Geometry      `json:"geometries,omitempty"`
}

// Feature is one geospatial entity. Properties are schema-less by design.
// Features are immutable once part of a collection; selection on the map
// never mutates them.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// FeatureCollection is an ordered set of features. Imports replace a
// collection wholesale; collections are never merged.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection with the discriminator set.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Decode parses and validates a FeatureCollection envelope.
func Decode(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("geojson: invalid JSON: %w", err)
	}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Validate checks the envelope discriminators and geometry types.
func (fc *FeatureCollection) Validate() error {
	if fc.Type != "FeatureCollection" {
		return ErrNotFeatureCollection
	}
	for i := range fc.Features {
		f := &fc.Features[i]
		if f.Type != "Feature" {
			return fmt.Errorf("geojson: features[%d] has type %q, want \"Feature\"", i, f.Type)
		}
		if f.Geometry == nil {
			return fmt.Errorf("geojson: features[%d]: %w", i, ErrMissingGeometry)
		}
		if err := f.Geometry.validate(); err != nil {
			return fmt.Errorf("geojson: features[%d]: %w", i, err)
		}
	}
	return nil
}

func (g *Geometry) validate() error {
	if !geometryTypes[g.Type] {
		return fmt.Errorf("unsupported geometry type %q", g.Type)
	}
	if g.Type == "GeometryCollection" {
		for i := range g.Geometries {
			if err := g.Geometries[i].validate(); err != nil {
				return fmt.Errorf("geometries[%d]: %w", i, err)
			}
		}
	}
	return nil
}
