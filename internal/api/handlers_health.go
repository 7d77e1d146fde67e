// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"net/http"
	"time"

	"github.com/MkMeheran/atlasboard/internal/mapview"
)

// HealthLive handles GET /api/v1/health/live: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready: the service can take
// traffic once the map view is mounted.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.mapSync.State() != mapview.StateReady {
		respondError(w, http.StatusServiceUnavailable, ErrCodeInternal, "Map view not ready", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Health handles GET /api/v1/health: readiness plus component detail.
// Unconfigured upstreams are reported but do not fail the check; they
// degrade their own endpoints only.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]interface{}{
		"completion_configured": h.cfg.Completion.APIKey != "",
		"webhook_secret_set":    h.cfg.Webhook.Secret != "",
		"automation_endpoint":   h.cfg.Webhook.EndpointBase != "",
		"auth_configured":       h.cfg.Auth.URL != "" && h.cfg.Auth.AnonKey != "",
		"websocket_clients":     h.hub.GetClientCount(),
		"map_ready":             h.mapSync.State() == mapview.StateReady,
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"components":     components,
	})
}
