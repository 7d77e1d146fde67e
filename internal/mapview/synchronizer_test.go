// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package mapview

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/MkMeheran/atlasboard/internal/geojson"
)

// fakeEngine records every call so tests can assert the exact lifecycle.
type fakeEngine struct {
	nextID     LayerID
	live       map[LayerID]*geojson.FeatureCollection
	maxLive    int
	tileLayers int
	fits       []geojson.Bounds
	views      []Center
	released   bool
	renderErr  error
	clicks     map[LayerID]func(geojson.Feature)
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		live:   make(map[LayerID]*geojson.FeatureCollection),
		clicks: make(map[LayerID]func(geojson.Feature)),
	}
}

func (e *fakeEngine) AddTileLayer(url, attribution string) error {
	e.tileLayers++
	return nil
}

func (e *fakeEngine) RenderLayer(fc *geojson.FeatureCollection, onClick func(geojson.Feature)) (LayerID, error) {
	if e.renderErr != nil {
		return 0, e.renderErr
	}
	e.nextID++
	e.live[e.nextID] = fc
	e.clicks[e.nextID] = onClick
	if len(e.live) > e.maxLive {
		e.maxLive = len(e.live)
	}
	return e.nextID, nil
}

func (e *fakeEngine) RemoveLayer(id LayerID) error {
	if _, ok := e.live[id]; !ok {
		return errors.New("remove of unknown layer")
	}
	delete(e.live, id)
	delete(e.clicks, id)
	return nil
}

func (e *fakeEngine) SetView(center Center, zoom int) { e.views = append(e.views, center) }

func (e *fakeEngine) FitBounds(bounds geojson.Bounds) error {
	e.fits = append(e.fits, bounds)
	return nil
}

func (e *fakeEngine) Release() { e.released = true }

func pointFeature(lon, lat float64) geojson.Feature {
	coords, _ := json.Marshal([]float64{lon, lat})
	return geojson.Feature{
		Type:     "Feature",
		Geometry: &geojson.Geometry{Type: "Point", Coordinates: coords},
	}
}

func collection(features ...geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = append(fc.Features, features...)
	return fc
}

func TestMountIsIdempotent(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	sync := New(engine)

	if err := sync.Mount(Center{Lat: 51.505, Lon: -0.09}, 13); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := sync.Mount(Center{Lat: 0, Lon: 0}, 2); err != nil {
		t.Fatalf("Second Mount failed: %v", err)
	}

	if engine.tileLayers != 1 {
		t.Errorf("Expected exactly one tile layer, got %d", engine.tileLayers)
	}
	if len(engine.views) != 1 {
		t.Errorf("Expected one SetView call, got %d", len(engine.views))
	}
	if sync.State() != StateReady {
		t.Errorf("Expected StateReady, got %v", sync.State())
	}
}

func TestSetDataBeforeMount(t *testing.T) {
	t.Parallel()

	sync := New(newFakeEngine())
	if err := sync.SetData(collection(pointFeature(1, 2))); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Expected ErrNotMounted, got %v", err)
	}
}

func TestSetDataReplacesLayerWholesale(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	sync := New(engine)
	if err := sync.Mount(Center{}, 2); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	a := collection(pointFeature(1, 1), pointFeature(2, 2))
	b := collection(pointFeature(10, 10))

	if err := sync.SetData(a); err != nil {
		t.Fatalf("SetData(a) failed: %v", err)
	}
	if err := sync.SetData(b); err != nil {
		t.Fatalf("SetData(b) failed: %v", err)
	}

	if len(engine.live) != 1 {
		t.Fatalf("Expected exactly one live layer, got %d", len(engine.live))
	}
	if engine.maxLive != 1 {
		t.Errorf("Two layers were live simultaneously (max %d)", engine.maxLive)
	}
	for _, fc := range engine.live {
		if len(fc.Features) != 1 {
			t.Errorf("Live layer should reflect collection b, got %d features", len(fc.Features))
		}
	}
}

func TestSetDataFitsBoundsToUnion(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	sync := New(engine)
	if err := sync.Mount(Center{}, 2); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	if err := sync.SetData(collection(pointFeature(-10, -5), pointFeature(20, 15))); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	if len(engine.fits) != 1 {
		t.Fatalf("Expected one FitBounds call, got %d", len(engine.fits))
	}
	want := geojson.Bounds{MinLon: -10, MinLat: -5, MaxLon: 20, MaxLat: 15}
	if engine.fits[0] != want {
		t.Errorf("FitBounds = %+v, want %+v", engine.fits[0], want)
	}
}

func TestSetDataEmptyLeavesViewportUntouched(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	sync := New(engine)
	if err := sync.Mount(Center{Lat: 51.5, Lon: -0.09}, 13); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	if err := sync.SetData(collection()); err != nil {
		t.Fatalf("SetData with empty collection failed: %v", err)
	}

	if len(engine.fits) != 0 {
		t.Errorf("FitBounds must not run for an empty collection, got %d calls", len(engine.fits))
	}
	if len(engine.views) != 1 {
		t.Errorf("Viewport must stay where Mount put it, got %d SetView calls", len(engine.views))
	}
	if !sync.HasLayer() {
		t.Error("Empty collection still renders an (empty) layer")
	}
}

func TestSetDataAfterUnmount(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	sync := New(engine)
	if err := sync.Mount(Center{}, 2); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := sync.SetData(collection(pointFeature(1, 1))); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	sync.Unmount()

	if !engine.released {
		t.Error("Unmount must release the engine")
	}
	if len(engine.live) != 0 {
		t.Errorf("Unmount must remove the active layer, %d still live", len(engine.live))
	}
	if err := sync.SetData(collection(pointFeature(2, 2))); !errors.Is(err, ErrDisposed) {
		t.Errorf("Expected ErrDisposed after Unmount, got %v", err)
	}
	if err := sync.Mount(Center{}, 2); !errors.Is(err, ErrDisposed) {
		t.Errorf("Expected ErrDisposed on remount, got %v", err)
	}

	// Second Unmount is a no-op, not a panic.
	sync.Unmount()
}

func TestRenderFailureLeavesNoActiveLayer(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	sync := New(engine)
	if err := sync.Mount(Center{}, 2); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := sync.SetData(collection(pointFeature(1, 1))); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	engine.renderErr = errors.New("render exploded")
	if err := sync.SetData(collection(pointFeature(2, 2))); err == nil {
		t.Fatal("Expected render error")
	}

	if sync.HasLayer() {
		t.Error("Failed render must leave the synchronizer layerless")
	}
	if len(engine.live) != 0 {
		t.Errorf("Old layer must already be removed, %d live", len(engine.live))
	}

	// Recovery: the next successful SetData renders cleanly.
	engine.renderErr = nil
	if err := sync.SetData(collection(pointFeature(3, 3))); err != nil {
		t.Fatalf("Recovery SetData failed: %v", err)
	}
	if engine.maxLive != 1 {
		t.Errorf("Two layers were live simultaneously (max %d)", engine.maxLive)
	}
}

func TestFeatureClickIsReadOnly(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	var clicked []string
	sync := New(engine, WithFeatureClickHandler(func(f geojson.Feature) {
		name, _ := f.Properties["name"].(string)
		clicked = append(clicked, name)
	}))
	if err := sync.Mount(Center{}, 2); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	feature := pointFeature(1, 1)
	feature.Properties = map[string]interface{}{"name": "home"}
	fc := collection(feature)
	if err := sync.SetData(fc); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	// Simulate the engine delivering a click.
	for _, onClick := range engine.clicks {
		onClick(fc.Features[0])
	}

	if len(clicked) != 1 || clicked[0] != "home" {
		t.Errorf("Expected click callback with feature, got %v", clicked)
	}
	if sync.Selected() == nil || sync.Selected().Properties["name"] != "home" {
		t.Error("Selected() should expose the clicked feature")
	}
	if len(sync.Data().Features) != 1 {
		t.Error("Click must not mutate the collection")
	}
}
