// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package webhook

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/metrics"
	"github.com/MkMeheran/atlasboard/internal/models"
)

var (
	// ErrUnauthorized indicates a missing or invalid payload signature.
	ErrUnauthorized = errors.New("webhook: invalid signature")

	// ErrBadPayload indicates a body that is not a JSON object with a
	// non-empty string "event" member.
	ErrBadPayload = errors.New("webhook: malformed payload")
)

// HandlerFunc processes one recognized inbound event. Handlers are
// fire-and-forget side effects: a handler error is logged and never
// surfaces to the webhook sender.
type HandlerFunc func(event models.WebhookEvent) error

// Broadcaster pushes accepted events to connected dashboard clients.
// Satisfied by the websocket hub.
type Broadcaster interface {
	BroadcastJSON(messageType string, payload interface{})
}

// Relay receives inbound automation events, verifies them against the
// shared secret, and dispatches them by kind. It holds no per-request
// state; a Relay is safe for concurrent use once handler registration is
// done (register at startup, before serving).
type Relay struct {
	secret      string
	handlers    map[string]HandlerFunc
	broadcaster Broadcaster
}

// NewRelay creates a relay. An empty secret disables signature checking
// (every inbound payload is accepted), matching the degraded-but-working
// behavior of an unconfigured deployment. The built-in event kinds are
// registered with logging handlers; callers can override or extend them
// with Register.
func NewRelay(secret string, broadcaster Broadcaster) *Relay {
	r := &Relay{
		secret:      secret,
		handlers:    make(map[string]HandlerFunc),
		broadcaster: broadcaster,
	}
	for _, kind := range []string{"user.created", "data.sync", "notification"} {
		kind := kind
		r.handlers[kind] = func(event models.WebhookEvent) error {
			logging.Info().Str("event", logging.Sanitize(kind)).Msg("Processing webhook event")
			return nil
		}
	}
	return r
}

// Register installs a handler for an event kind, replacing any existing
// one. Not safe to call concurrently with Receive.
func (r *Relay) Register(kind string, fn HandlerFunc) {
	r.handlers[kind] = fn
}

// Receive validates and dispatches one inbound webhook delivery.
//
// When a secret is configured the raw body must carry a valid signature;
// verification failure returns ErrUnauthorized before the body is parsed.
// A body that is not a JSON object, or whose "event" member is missing,
// empty, or not a string, returns ErrBadPayload. Every remaining top-level
// key becomes event data.
//
// Once signature and parse succeed the delivery is accepted: unknown event
// kinds are logged, and handler failures are logged, but neither surfaces
// to the caller. The returned receipt echoes the event name.
func (r *Relay) Receive(body []byte, signature string) (*models.WebhookReceipt, error) {
	if r.secret != "" && !VerifySignature(body, signature, r.secret) {
		metrics.WebhooksReceived.WithLabelValues("unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.WebhooksReceived.WithLabelValues("bad_payload").Inc()
		return nil, fmt.Errorf("%w: %s", ErrBadPayload, err)
	}
	if payload == nil {
		metrics.WebhooksReceived.WithLabelValues("bad_payload").Inc()
		return nil, fmt.Errorf("%w: body is not an object", ErrBadPayload)
	}

	kind, ok := payload["event"].(string)
	if !ok || kind == "" {
		metrics.WebhooksReceived.WithLabelValues("bad_payload").Inc()
		return nil, fmt.Errorf("%w: missing event kind", ErrBadPayload)
	}
	delete(payload, "event")

	event := models.WebhookEvent{Event: kind, Data: payload}
	metrics.WebhooksReceived.WithLabelValues("accepted").Inc()
	logging.Info().
		Str("event", logging.Sanitize(kind)).
		Int("data_keys", len(payload)).
		Msg("Webhook received")

	r.dispatch(event)

	if r.broadcaster != nil {
		r.broadcaster.BroadcastJSON("webhook_event", event)
	}

	return &models.WebhookReceipt{Received: true, Event: kind}, nil
}

// dispatch runs the handler for the event's kind. Unrecognized kinds are
// accepted and logged; they must never turn into a caller-visible error.
func (r *Relay) dispatch(event models.WebhookEvent) {
	fn, recognized := r.handlers[event.Event]
	metrics.WebhookEventKinds.WithLabelValues(fmt.Sprintf("%t", recognized)).Inc()

	if !recognized {
		logging.Warn().Str("event", logging.Sanitize(event.Event)).Msg("Unknown webhook event kind")
		return
	}
	if err := fn(event); err != nil {
		logging.Error().
			Err(err).
			Str("event", logging.Sanitize(event.Event)).
			Msg("Webhook handler failed")
	}
}
