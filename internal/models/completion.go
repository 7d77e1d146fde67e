// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package models

// ChatMessage is one turn of a conversation sent to the hosted completion
// API. Role is "system", "user", or "assistant".
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// CompletionOptions tunes a single completion call. Zero values fall back
// to the configured defaults.
type CompletionOptions struct {
	Model        string  `json:"model,omitempty"`
	MaxTokens    int     `json:"maxTokens,omitempty" validate:"omitempty,gte=1"`
	Temperature  float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
}

// CompletionRequest is one round trip to the hosted LLM. Exactly one of
// Prompt or Messages must be supplied.
type CompletionRequest struct {
	Prompt   string            `json:"prompt,omitempty"`
	Messages []ChatMessage     `json:"messages,omitempty"`
	Options  CompletionOptions `json:"options,omitempty"`
}

// TokenUsage is the upstream's token accounting for one completion.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// CompletionResponse is the shaped upstream reply: the first choice's text
// (empty string when the upstream returned no content, never null) and
// usage accounting only when the upstream reported it.
type CompletionResponse struct {
	Content string      `json:"content"`
	Usage   *TokenUsage `json:"usage,omitempty"`
}
