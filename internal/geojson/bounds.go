// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package geojson

import (
	"github.com/goccy/go-json"
)

// Bounds is a geographic bounding box in WGS84 degrees.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Extend grows the box to include the given position.
func (b *Bounds) Extend(lon, lat float64) {
	if lon < b.MinLon {
		b.MinLon = lon
	}
	if lon > b.MaxLon {
		b.MaxLon = lon
	}
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
}

// Union merges another box into this one.
func (b *Bounds) Union(other Bounds) {
	b.Extend(other.MinLon, other.MinLat)
	b.Extend(other.MaxLon, other.MaxLat)
}

// Center returns the box midpoint as (lon, lat).
func (b Bounds) Center() (float64, float64) {
	return (b.MinLon + b.MaxLon) / 2, (b.MinLat + b.MaxLat) / 2
}

// ComputeBounds returns the union bounding box of every position in the
// collection. ok is false when the collection holds no positions at all;
// callers must not fit a viewport to the zero box in that case.
func ComputeBounds(fc *FeatureCollection) (bounds Bounds, ok bool) {
	if fc == nil {
		return Bounds{}, false
	}
	for i := range fc.Features {
		g := fc.Features[i].Geometry
		if g == nil {
			continue
		}
		walkGeometry(g, &bounds, &ok)
	}
	return bounds, ok
}

// walkGeometry folds every coordinate position of g into bounds. The first
// position seen seeds the box instead of extending the zero value.
func walkGeometry(g *Geometry, bounds *Bounds, seeded *bool) {
	if g.Type == "GeometryCollection" {
		for i := range g.Geometries {
			walkGeometry(&g.Geometries[i], bounds, seeded)
		}
		return
	}
	if len(g.Coordinates) == 0 {
		return
	}
	var raw interface{}
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return
	}
	walkCoordinates(raw, bounds, seeded)
}

// walkCoordinates recurses through arbitrarily nested coordinate arrays.
// A slice whose first element is a number is a position [lon, lat, ...];
// anything else is a container of positions.
func walkCoordinates(raw interface{}, bounds *Bounds, seeded *bool) {
	arr, isArr := raw.([]interface{})
	if !isArr || len(arr) == 0 {
		return
	}

	if lon, isNum := toFloat(arr[0]); isNum {
		if len(arr) < 2 {
			return
		}
		lat, isNum := toFloat(arr[1])
		if !isNum {
			return
		}
		if !*seeded {
			*bounds = Bounds{MinLon: lon, MinLat: lat, MaxLon: lon, MaxLat: lat}
			*seeded = true
			return
		}
		bounds.Extend(lon, lat)
		return
	}

	for _, child := range arr {
		walkCoordinates(child, bounds, seeded)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
