// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package metrics provides Prometheus instrumentation for the HTTP surface,
// the webhook relay, the completion adapter, and the websocket hub.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlasboard_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atlasboard_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Webhook Relay Metrics
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_webhooks_received_total",
			Help: "Total inbound webhook events by outcome",
		},
		[]string{"outcome"}, // "accepted", "unauthorized", "bad_payload"
	)

	WebhookEventKinds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_webhook_event_kinds_total",
			Help: "Accepted inbound webhook events by kind recognition",
		},
		[]string{"recognized"}, // "true", "false"
	)

	WebhooksDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_webhooks_delivered_total",
			Help: "Total outbound webhook deliveries by outcome",
		},
		[]string{"outcome"}, // "success", "failed", "not_configured"
	)

	// Completion Adapter Metrics
	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_completion_requests_total",
			Help: "Total hosted completion calls by outcome",
		},
		[]string{"outcome"}, // "success", "invalid", "upstream_error", "unavailable", "not_configured"
	)

	CompletionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_completion_tokens_total",
			Help: "Token usage reported by the hosted completion API",
		},
		[]string{"kind"}, // "prompt", "completion"
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atlasboard_websocket_connections",
			Help: "Number of connected websocket clients",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atlasboard_websocket_messages_sent_total",
			Help: "Total messages broadcast to websocket clients",
		},
	)

	// Circuit Breaker Metrics (completion upstream)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atlasboard_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlasboard_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
