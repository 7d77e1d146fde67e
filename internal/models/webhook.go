// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package models

import "time"

// WebhookEvent is one automation message crossing the relay boundary,
// inbound from or outbound to the external automation engine.
//
// Event is the kind discriminator ("user.created", "data.sync", ...).
// Data holds every other top-level key of the payload; the contents are
// third-party controlled and deliberately untyped. Timestamp is stamped on
// outbound envelopes only.
type WebhookEvent struct {
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp,omitempty"`
}

// WebhookReceipt is the success payload echoed to the webhook sender.
type WebhookReceipt struct {
	Received bool   `json:"received"`
	Event    string `json:"event"`
}

// WebhookTrigger is the request body of the outbound trigger endpoint.
type WebhookTrigger struct {
	Event string                 `json:"event" validate:"required"`
	Data  map[string]interface{} `json:"data"`
}
