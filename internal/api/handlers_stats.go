// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"net/http"
	"time"

	"github.com/MkMeheran/atlasboard/internal/models"
)

const statsCacheKey = "dashboard:stats"

// GetStats handles GET /api/v1/stats. Results are cached briefly; any
// webhook or map import clears the cache so the dashboard never shows
// stale counts for long.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.statsCache.Get(statsCacheKey); ok {
		if stats, valid := cached.(*models.DashboardStats); valid {
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status: "success",
				Data:   stats,
				Metadata: models.Metadata{
					Timestamp: time.Now(),
					Cached:    true,
				},
			})
			return
		}
	}

	stats := h.collectStats()
	h.statsCache.Set(statsCacheKey, stats)
	respondSuccess(w, http.StatusOK, stats)
}

func (h *Handler) collectStats() *models.DashboardStats {
	features := 0
	if fc := h.mapSync.Data(); fc != nil {
		features = len(fc.Features)
	}

	return &models.DashboardStats{
		MapFeatures:      features,
		WebhooksReceived: h.webhooksReceived.Load(),
		WebhooksSent:     h.webhooksSent.Load(),
		CompletionCalls:  h.completionCalls.Load(),
		ConnectedClients: h.hub.GetClientCount(),
		UptimeSeconds:    int64(time.Since(h.startTime).Seconds()),
	}
}
