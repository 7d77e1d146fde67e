// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/MkMeheran/atlasboard/internal/geojson"
	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/mapview"
	"github.com/MkMeheran/atlasboard/internal/websocket"
)

// GetMapData handles GET /api/v1/map/data: the currently rendered
// feature collection, empty when nothing has been imported yet.
func (h *Handler) GetMapData(w http.ResponseWriter, r *http.Request) {
	fc := h.mapSync.Data()
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	respondSuccess(w, http.StatusOK, fc)
}

// ImportMapData handles POST /api/v1/map/data: wholesale replacement of
// the map's feature collection. The payload must be a valid GeoJSON
// FeatureCollection; partial updates are not supported.
func (h *Handler) ImportMapData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.API.MaxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return
	}

	fc, err := geojson.Decode(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("Invalid GeoJSON: %s", err), nil)
		return
	}

	if err := h.mapSync.SetData(fc); err != nil {
		if errors.Is(err, mapview.ErrNotMounted) || errors.Is(err, mapview.ErrDisposed) {
			respondError(w, http.StatusServiceUnavailable, ErrCodeInternal, "Map view not available", err)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to render map data", err)
		return
	}

	h.statsCache.Clear()
	h.hub.BroadcastJSON(websocket.MessageTypeMapData, map[string]interface{}{
		"featureCount": len(fc.Features),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
	logging.Ctx(r.Context()).Info().
		Int("features", len(fc.Features)).
		Msg("Map data replaced")

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"imported": true,
		"features": len(fc.Features),
	})
}

// ExportMapData handles GET /api/v1/map/export: the current collection as
// a GeoJSON file download.
func (h *Handler) ExportMapData(w http.ResponseWriter, r *http.Request) {
	fc := h.mapSync.Data()
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}

	data, err := json.Marshal(fc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to encode GeoJSON", err)
		return
	}

	filename := fmt.Sprintf("atlasboard-export-%s.geojson", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write GeoJSON export")
	}
}
