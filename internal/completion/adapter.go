// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package completion

import (
	"context"
	"errors"

	"github.com/MkMeheran/atlasboard/internal/config"
	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/metrics"
	"github.com/MkMeheran/atlasboard/internal/models"
)

// ErrInvalidRequest indicates the caller supplied neither a prompt nor a
// message history, or both at once.
var ErrInvalidRequest = errors.New("completion: exactly one of prompt or messages is required")

// Adapter shapes caller-facing completion requests into upstream chat
// calls: it resolves defaults, prepends the system prompt, and flattens
// the upstream choice list into a single content string.
type Adapter struct {
	client Client
	cfg    *config.CompletionConfig
}

// NewAdapter creates an adapter over the given client using the configured
// defaults for model, token budget, temperature and system prompt.
func NewAdapter(client Client, cfg *config.CompletionConfig) *Adapter {
	return &Adapter{client: client, cfg: cfg}
}

// Complete performs one completion round trip.
//
// Exactly one of req.Prompt or req.Messages must be set; anything else is
// ErrInvalidRequest and the upstream is never contacted. A prompt becomes a
// single user message. The system prompt (request override or configured
// default) is always the first message sent upstream. The response carries
// the first choice's content, empty string when the upstream returned no
// choices, and usage accounting only when the upstream reported it.
func (a *Adapter) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	hasPrompt := req.Prompt != ""
	hasMessages := len(req.Messages) > 0
	if hasPrompt == hasMessages {
		metrics.CompletionRequests.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidRequest
	}

	systemPrompt := req.Options.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = a.cfg.SystemPrompt
	}
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	messages := make([]models.ChatMessage, 0, len(req.Messages)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: systemPrompt})
	if hasPrompt {
		messages = append(messages, models.ChatMessage{Role: "user", Content: req.Prompt})
	} else {
		messages = append(messages, req.Messages...)
	}

	model := req.Options.Model
	if model == "" {
		model = a.cfg.Model
	}
	maxTokens := req.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.MaxTokens
	}
	temperature := req.Options.Temperature
	if temperature <= 0 {
		temperature = a.cfg.Temperature
	}

	resp, err := a.client.CreateChatCompletion(ctx, ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		metrics.CompletionRequests.WithLabelValues(outcomeLabel(err)).Inc()
		logging.Warn().
			Err(err).
			Str("model", model).
			Msg("Completion call failed")
		return nil, err
	}

	result := &models.CompletionResponse{}
	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
	}
	if resp.Usage != nil {
		result.Usage = &models.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		metrics.CompletionTokens.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokens.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))
	}

	metrics.CompletionRequests.WithLabelValues("success").Inc()
	return result, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "upstream_error"
	}
}
