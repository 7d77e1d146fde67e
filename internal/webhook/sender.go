// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/metrics"
)

// ErrNotConfigured indicates the outbound automation endpoint is not set.
var ErrNotConfigured = errors.New("webhook: automation endpoint not configured")

// DeliveryError is a non-2xx response from the automation endpoint.
// There is no retry here: retry with backoff and idempotency keys is a
// deliberate non-goal of this relay, and callers must treat a failed
// delivery as final.
type DeliveryError struct {
	StatusCode int
	Status     string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook: delivery failed: %s", e.Status)
}

// Sender forwards outbound events to the external automation engine.
type Sender struct {
	endpointBase string
	client       *http.Client
}

// NewSender creates a sender targeting the given endpoint base URL. An
// empty base means Send returns ErrNotConfigured. The timeout bounds the
// whole delivery round trip.
func NewSender(endpointBase string, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		endpointBase: strings.TrimRight(endpointBase, "/"),
		client:       &http.Client{Timeout: timeout},
	}
}

// Send POSTs one event to {endpointBase}/{event} with a JSON body of the
// form {"timestamp": <RFC3339 now>, "event": <event>, ...data}. Data keys
// named "timestamp" or "event" are overwritten by the envelope fields.
// A non-2xx response returns a *DeliveryError carrying the status.
func (s *Sender) Send(ctx context.Context, event string, data map[string]interface{}) error {
	if s.endpointBase == "" {
		metrics.WebhooksDelivered.WithLabelValues("not_configured").Inc()
		return ErrNotConfigured
	}

	envelope := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		envelope[k] = v
	}
	envelope["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	envelope["event"] = event

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("webhook: failed to encode payload: %w", err)
	}

	url := s.endpointBase + "/" + event
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.WebhooksDelivered.WithLabelValues("failed").Inc()
		return fmt.Errorf("webhook: delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.WebhooksDelivered.WithLabelValues("failed").Inc()
		return &DeliveryError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	metrics.WebhooksDelivered.WithLabelValues("success").Inc()
	logging.Info().
		Str("event", logging.Sanitize(event)).
		Int("status", resp.StatusCode).
		Msg("Webhook delivered")
	return nil
}
