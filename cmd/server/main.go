// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package main is the entry point for the Atlasboard server.
//
// Atlasboard is the backend for a geospatial dashboard: it relays webhook
// events between the dashboard and an external automation engine, proxies
// chat completion requests to a hosted completion API, synchronizes a
// GeoJSON feature layer onto a server-side map view, and adapts a hosted
// auth provider for session management.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables over config.yaml over defaults (Koanf v2)
//  2. WebSocket hub: real-time push to connected dashboard clients
//  3. Webhook relay and sender: inbound verification, outbound delivery
//  4. Completion adapter: circuit-broken hosted completion API client
//  5. Session adapter: hosted auth provider client
//  6. Map synchronizer: headless engine holding the authoritative view
//  7. HTTP server: REST API under /api/v1 plus /metrics
//
// # Configuration
//
// All upstream credentials are optional at startup. A missing completion
// API key, webhook secret, automation endpoint, or auth project URL
// degrades only the corresponding endpoint to a typed not-configured
// error; everything else keeps working.
//
//	export COMPLETION_API_KEY=sk-...
//	export WEBHOOK_SECRET=shared-secret
//	export WEBHOOK_ENDPOINT_BASE=https://automation.example.com/hooks
//	export AUTH_URL=https://project.example.co
//	export AUTH_ANON_KEY=public-anon-key
//	./atlasboard
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests (10s timeout),
// and closes all websocket clients.
//
// # Port 4326
//
// The default port 4326 references EPSG:4326, the WGS84 coordinate
// system GeoJSON mandates.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MkMeheran/atlasboard/internal/api"
	"github.com/MkMeheran/atlasboard/internal/completion"
	"github.com/MkMeheran/atlasboard/internal/config"
	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/mapview"
	"github.com/MkMeheran/atlasboard/internal/session"
	"github.com/MkMeheran/atlasboard/internal/supervisor"
	"github.com/MkMeheran/atlasboard/internal/supervisor/services"
	"github.com/MkMeheran/atlasboard/internal/webhook"
	ws "github.com/MkMeheran/atlasboard/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("completion_configured", cfg.Completion.APIKey != "").
		Bool("webhook_secret_set", cfg.Webhook.Secret != "").
		Bool("automation_endpoint", cfg.Webhook.EndpointBase != "").
		Bool("auth_configured", cfg.Auth.URL != "").
		Msg("Configuration loaded")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket hub first; the relay broadcasts accepted events through it
	hub := ws.NewHub()

	relay := webhook.NewRelay(cfg.Webhook.Secret, hub)
	if cfg.Webhook.Secret == "" {
		logging.Warn().Msg("WEBHOOK_SECRET not set - inbound webhook signatures are NOT verified")
	}
	sender := webhook.NewSender(cfg.Webhook.EndpointBase, cfg.Webhook.Timeout)

	completionAdapter := completion.NewAdapter(completion.NewHTTPClient(&cfg.Completion), &cfg.Completion)
	sessionAdapter := session.NewAdapter(session.NewHTTPProvider(&cfg.Auth))

	// Headless engine: the server holds the authoritative view and layer
	// state; browser clients replicate it over the websocket.
	engine := mapview.NewHeadlessEngine()
	mapSync := mapview.New(engine)
	if err := mapSync.Mount(mapview.Center{Lat: 0, Lon: 0}, 2); err != nil {
		logging.Fatal().Err(err).Msg("Failed to mount map view")
	}
	logging.Info().Msg("Map view mounted")

	handler := api.NewHandler(cfg, relay, sender, completionAdapter, sessionAdapter, hub, mapSync)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.NewRouter(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Structured logger for supervisor events, bridging zerolog to slog
	// for sutureslog compatibility
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel; it closes when the supervisor finishes
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	mapSync.Unmount()
	logging.Info().Msg("Application stopped gracefully")
}
