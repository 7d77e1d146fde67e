// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package mapview

import (
	"errors"
	"sync"

	"github.com/MkMeheran/atlasboard/internal/geojson"
)

// ErrEngineReleased is returned by headless engine operations after Release.
var ErrEngineReleased = errors.New("mapview: engine released")

// ViewState is the headless engine's current viewport, mirrored by
// dashboard clients over the websocket.
type ViewState struct {
	Center  Center          `json:"center"`
	Zoom    int             `json:"zoom"`
	Bounds  *geojson.Bounds `json:"bounds,omitempty"`
	TileURL string          `json:"tileUrl,omitempty"`
}

// HeadlessEngine is the server-side rendering host. It keeps the
// authoritative view and layer state that browser clients replicate; no
// pixels are drawn here.
type HeadlessEngine struct {
	mu sync.Mutex

	released bool
	view     ViewState
	nextID   LayerID
	layers   map[LayerID]*geojson.FeatureCollection
	onClick  map[LayerID]func(geojson.Feature)
}

// NewHeadlessEngine creates an engine with no layers and a zeroed viewport.
func NewHeadlessEngine() *HeadlessEngine {
	return &HeadlessEngine{
		layers:  make(map[LayerID]*geojson.FeatureCollection),
		onClick: make(map[LayerID]func(geojson.Feature)),
	}
}

// AddTileLayer records the base tile source.
func (e *HeadlessEngine) AddTileLayer(url, attribution string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return ErrEngineReleased
	}
	e.view.TileURL = url
	return nil
}

// RenderLayer stores the collection under a fresh layer ID.
func (e *HeadlessEngine) RenderLayer(fc *geojson.FeatureCollection, onClick func(geojson.Feature)) (LayerID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return 0, ErrEngineReleased
	}
	e.nextID++
	id := e.nextID
	e.layers[id] = fc
	e.onClick[id] = onClick
	return id, nil
}

// RemoveLayer drops a layer. Removing an unknown layer is an error; the
// synchronizer never does that.
func (e *HeadlessEngine) RemoveLayer(id LayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return ErrEngineReleased
	}
	if _, ok := e.layers[id]; !ok {
		return errors.New("mapview: unknown layer")
	}
	delete(e.layers, id)
	delete(e.onClick, id)
	return nil
}

// SetView moves the viewport.
func (e *HeadlessEngine) SetView(center Center, zoom int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return
	}
	e.view.Center = center
	e.view.Zoom = zoom
	e.view.Bounds = nil
}

// FitBounds refits the viewport to a bounding box and recenters on it.
func (e *HeadlessEngine) FitBounds(bounds geojson.Bounds) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return ErrEngineReleased
	}
	b := bounds
	e.view.Bounds = &b
	lon, lat := bounds.Center()
	e.view.Center = Center{Lat: lat, Lon: lon}
	return nil
}

// Release frees the engine. All later calls fail.
func (e *HeadlessEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.released = true
	e.layers = make(map[LayerID]*geojson.FeatureCollection)
	e.onClick = make(map[LayerID]func(geojson.Feature))
}

// View returns a copy of the current viewport state.
func (e *HeadlessEngine) View() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// LayerCount returns the number of live layers. The synchronizer's single
// layer invariant means this is 0 or 1 in practice.
func (e *HeadlessEngine) LayerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.layers)
}

// Click simulates a dashboard click on a feature of the given layer,
// raising the layer's click callback.
func (e *HeadlessEngine) Click(id LayerID, f geojson.Feature) error {
	e.mu.Lock()
	fn, ok := e.onClick[id]
	e.mu.Unlock()
	if !ok {
		return errors.New("mapview: unknown layer")
	}
	if fn != nil {
		fn(f)
	}
	return nil
}
