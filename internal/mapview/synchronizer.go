// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package mapview synchronizes a GeoJSON feature set with an interactive
// map rendering engine.
//
// The synchronizer owns exactly one map view and at most one feature layer.
// Replacing the data set tears down the previous layer, renders a new one,
// rewires per-feature click callbacks, and refits the viewport to the union
// bounds of the new features. The rendering engine itself (a browser map
// widget, a tile renderer, a test fake) sits behind the Engine interface.
package mapview

import (
	"errors"
	"sync"

	"github.com/MkMeheran/atlasboard/internal/geojson"
	"github.com/MkMeheran/atlasboard/internal/logging"
)

// Default base tile layer, matching the dashboard's OpenStreetMap source.
const (
	DefaultTileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultTileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// State is the synchronizer lifecycle state.
type State int

const (
	// StateUninitialized is the state before Mount.
	StateUninitialized State = iota
	// StateReady is the mounted state; SetData is accepted.
	StateReady
	// StateDisposed is the terminal state after Unmount.
	StateDisposed
)

var (
	// ErrNotMounted is returned by SetData before Mount.
	ErrNotMounted = errors.New("mapview: not mounted")

	// ErrDisposed is returned by operations on an unmounted synchronizer.
	ErrDisposed = errors.New("mapview: disposed")
)

// Center is a viewport center in WGS84 degrees.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LayerID identifies a rendered feature layer inside the engine.
type LayerID int

// Engine is the rendering host the synchronizer drives. Implementations
// are not required to be safe for concurrent use; the synchronizer
// serializes all calls.
type Engine interface {
	// AddTileLayer installs the base tile layer. Called exactly once per view.
	AddTileLayer(url, attribution string) error

	// RenderLayer draws a feature layer and wires onClick to every feature.
	// The returned id is valid until RemoveLayer.
	RenderLayer(fc *geojson.FeatureCollection, onClick func(geojson.Feature)) (LayerID, error)

	// RemoveLayer tears down a previously rendered layer.
	RemoveLayer(id LayerID) error

	// SetView moves the viewport to an explicit center and zoom.
	SetView(center Center, zoom int)

	// FitBounds refits the viewport to a bounding box. Never called with an
	// empty box.
	FitBounds(bounds geojson.Bounds) error

	// Release frees the underlying view. No calls follow Release.
	Release()
}

// Synchronizer owns one map view and its single active feature layer.
// All methods are safe for concurrent use; SetData is atomic from the
// caller's perspective, so interleaved calls can never observe two live
// layers or a dangling removed layer.
type Synchronizer struct {
	mu sync.Mutex

	engine   Engine
	state    State
	hasLayer bool
	layerID  LayerID

	collection *geojson.FeatureCollection
	selected   *geojson.Feature

	onFeatureClick func(geojson.Feature)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithFeatureClickHandler registers the external selection callback.
// Selection is read-only: the callback observes the feature, it never
// mutates the collection.
func WithFeatureClickHandler(fn func(geojson.Feature)) Option {
	return func(s *Synchronizer) {
		s.onFeatureClick = fn
	}
}

// New creates a synchronizer driving the given engine.
func New(engine Engine, opts ...Option) *Synchronizer {
	s := &Synchronizer{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount initializes the view at the given center and zoom and installs the
// base tile layer. Mounting an already-mounted synchronizer is a no-op;
// mounting after Unmount returns ErrDisposed.
func (s *Synchronizer) Mount(center Center, zoom int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateReady:
		return nil
	case StateDisposed:
		return ErrDisposed
	}

	s.engine.SetView(center, zoom)
	if err := s.engine.AddTileLayer(DefaultTileURL, DefaultTileAttribution); err != nil {
		return err
	}
	s.state = StateReady
	return nil
}

// SetData replaces the rendered feature layer with the given collection.
// The previous layer is removed before the new one is added; at no point
// do two layers own the same features. When the collection is non-empty
// the viewport is refit to the union bounds; an empty collection leaves
// the viewport untouched.
func (s *Synchronizer) SetData(fc *geojson.FeatureCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateUninitialized:
		return ErrNotMounted
	case StateDisposed:
		return ErrDisposed
	}
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}

	if s.hasLayer {
		if err := s.engine.RemoveLayer(s.layerID); err != nil {
			return err
		}
		s.hasLayer = false
	}

	id, err := s.engine.RenderLayer(fc, s.handleFeatureClick)
	if err != nil {
		// The old layer is already gone; record the layerless state rather
		// than resurrecting a handle the engine no longer owns.
		s.collection = nil
		return err
	}
	s.layerID = id
	s.hasLayer = true
	s.collection = fc

	if bounds, ok := geojson.ComputeBounds(fc); ok {
		if err := s.engine.FitBounds(bounds); err != nil {
			logging.Warn().Err(err).Msg("Viewport refit failed")
		}
	}
	return nil
}

// Unmount releases the layer and the view. Subsequent SetData calls return
// ErrDisposed. Unmounting twice is a no-op.
func (s *Synchronizer) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		s.state = StateDisposed
		return
	}
	if s.hasLayer {
		if err := s.engine.RemoveLayer(s.layerID); err != nil {
			logging.Warn().Err(err).Msg("Layer removal failed during unmount")
		}
		s.hasLayer = false
	}
	s.engine.Release()
	s.collection = nil
	s.state = StateDisposed
}

// State returns the lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasLayer reports whether a feature layer is currently rendered.
func (s *Synchronizer) HasLayer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasLayer
}

// Data returns the currently rendered collection, or nil.
func (s *Synchronizer) Data() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection
}

// Selected returns the most recently clicked feature, or nil.
func (s *Synchronizer) Selected() *geojson.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// handleFeatureClick records the selection and raises the external
// callback. The callback runs outside the lock so it may call back into
// the synchronizer.
func (s *Synchronizer) handleFeatureClick(f geojson.Feature) {
	s.mu.Lock()
	clicked := f
	s.selected = &clicked
	fn := s.onFeatureClick
	s.mu.Unlock()

	if fn != nil {
		fn(f)
	}
}
