// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package models

// DashboardStats summarizes activity for the dashboard landing page.
type DashboardStats struct {
	MapFeatures      int   `json:"map_features"`
	WebhooksReceived int64 `json:"webhooks_received"`
	WebhooksSent     int64 `json:"webhooks_sent"`
	CompletionCalls  int64 `json:"completion_calls"`
	ConnectedClients int   `json:"connected_clients"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}
