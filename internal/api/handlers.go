// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package api provides the HTTP surface: webhook relay endpoints, the
// completion endpoint, auth, map data, stats, health, and the websocket
// upgrade. Routing is chi; every response uses the APIResponse envelope.
package api

import (
	"sync/atomic"
	"time"

	"github.com/MkMeheran/atlasboard/internal/cache"
	"github.com/MkMeheran/atlasboard/internal/completion"
	"github.com/MkMeheran/atlasboard/internal/config"
	"github.com/MkMeheran/atlasboard/internal/mapview"
	"github.com/MkMeheran/atlasboard/internal/session"
	"github.com/MkMeheran/atlasboard/internal/webhook"
	"github.com/MkMeheran/atlasboard/internal/websocket"
)

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	cfg        *config.Config
	relay      *webhook.Relay
	sender     *webhook.Sender
	completion *completion.Adapter
	session    *session.Adapter
	hub        *websocket.Hub
	mapSync    *mapview.Synchronizer
	statsCache *cache.Cache
	startTime  time.Time

	// Dashboard counters. Prometheus keeps the authoritative series;
	// these feed the JSON stats endpoint without scraping ourselves.
	webhooksReceived atomic.Int64
	webhooksSent     atomic.Int64
	completionCalls  atomic.Int64
}

// NewHandler creates a handler with all dependencies wired.
func NewHandler(
	cfg *config.Config,
	relay *webhook.Relay,
	sender *webhook.Sender,
	completionAdapter *completion.Adapter,
	sessionAdapter *session.Adapter,
	hub *websocket.Hub,
	mapSync *mapview.Synchronizer,
) *Handler {
	return &Handler{
		cfg:        cfg,
		relay:      relay,
		sender:     sender,
		completion: completionAdapter,
		session:    sessionAdapter,
		hub:        hub,
		mapSync:    mapSync,
		statsCache: cache.New(30 * time.Second),
		startTime:  time.Now(),
	}
}
