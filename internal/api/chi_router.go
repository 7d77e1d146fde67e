// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MkMeheran/atlasboard/internal/middleware"
)

// NewRouter builds the chi router with the full middleware stack and all
// API routes.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "x-webhook-signature"},
		ExposedHeaders:   []string{"X-Request-ID", "ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics)

	// Auth gets a stricter budget for brute-force prevention.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.cfg.RateLimit.AuthPerMinute, time.Minute))
		r.Post("/", h.Authenticate)
		r.Delete("/", h.SignOut)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.cfg.RateLimit.RequestsPerMinute, time.Minute))

		r.Post("/webhooks", h.ReceiveWebhook)
		r.Put("/webhooks", h.TriggerWebhook)
		r.Post("/ai", h.Complete)

		r.Route("/map", func(r chi.Router) {
			r.Get("/data", h.GetMapData)
			r.Post("/data", h.ImportMapData)
			r.Get("/export", h.ExportMapData)
		})

		r.Get("/stats", h.GetStats)
		r.Get("/ws", h.WebSocket)

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
			r.Get("/", h.Health)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
