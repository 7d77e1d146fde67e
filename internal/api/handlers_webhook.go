// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/models"
	"github.com/MkMeheran/atlasboard/internal/webhook"
)

// ReceiveWebhook handles POST /api/v1/webhooks: one inbound delivery from
// the automation engine. The raw body is verified against the shared
// secret before any parsing happens.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.API.MaxBodyBytes))
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to read request body", err)
		return
	}

	receipt, err := h.relay.Receive(body, r.Header.Get(webhook.SignatureHeader))
	switch {
	case errors.Is(err, webhook.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, ErrCodeInvalidSig, "Invalid signature", nil)
		return
	case err != nil:
		// Malformed payloads surface as a processing failure, not a client
		// error; the sending automation engine treats anything non-2xx as
		// undeliverable either way.
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to process webhook", err)
		return
	}

	h.webhooksReceived.Add(1)
	h.statsCache.Clear()
	respondSuccess(w, http.StatusOK, receipt)
}

// TriggerWebhook handles PUT /api/v1/webhooks: fires one outbound event at
// the configured automation endpoint.
func (h *Handler) TriggerWebhook(w http.ResponseWriter, r *http.Request) {
	var req models.WebhookTrigger
	if !h.decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	err := h.sender.Send(r.Context(), req.Event, req.Data)
	switch {
	case errors.Is(err, webhook.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, ErrCodeNotConfigured, "Automation endpoint not configured", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeDelivery, "Webhook delivery failed", err)
		return
	}

	h.webhooksSent.Add(1)
	h.statsCache.Clear()
	logging.Ctx(r.Context()).Info().
		Str("event", logging.Sanitize(req.Event)).
		Msg("Outbound webhook triggered")
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"sent":  true,
		"event": req.Event,
	})
}
