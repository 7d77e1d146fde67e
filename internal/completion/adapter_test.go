// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/MkMeheran/atlasboard/internal/config"
	"github.com/MkMeheran/atlasboard/internal/models"
)

// fakeClient records the requests it receives and replies with a canned
// response or error.
type fakeClient struct {
	requests []ChatRequest
	response *ChatResponse
	err      error
}

func (c *fakeClient) CreateChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

func chatResponse(content string) *ChatResponse {
	resp := &ChatResponse{}
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = content
	return resp
}

func testConfig() *config.CompletionConfig {
	return &config.CompletionConfig{
		APIKey:       "sk-test",
		BaseURL:      "https://api.openai.com/v1",
		Model:        "gpt-4o-mini",
		MaxTokens:    1024,
		Temperature:  0.7,
		SystemPrompt: config.DefaultSystemPrompt,
	}
}

func TestCompleteWithPrompt(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: chatResponse("hello there")}
	adapter := NewAdapter(client, testConfig())

	resp, err := adapter.Complete(context.Background(), models.CompletionRequest{
		Prompt: "say hello",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("Expected first choice content, got %q", resp.Content)
	}
	if resp.Usage != nil {
		t.Error("Usage must be absent when the upstream reported none")
	}

	if len(client.requests) != 1 {
		t.Fatalf("Expected one upstream call, got %d", len(client.requests))
	}
	sent := client.requests[0]
	if len(sent.Messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(sent.Messages))
	}
	if sent.Messages[0].Role != "system" || sent.Messages[0].Content != config.DefaultSystemPrompt {
		t.Errorf("First message must be the default system prompt, got %+v", sent.Messages[0])
	}
	if sent.Messages[1].Role != "user" || sent.Messages[1].Content != "say hello" {
		t.Errorf("Prompt must become a single user message, got %+v", sent.Messages[1])
	}
	if sent.Model != "gpt-4o-mini" || sent.MaxTokens != 1024 || sent.Temperature != 0.7 {
		t.Errorf("Defaults not applied: %+v", sent)
	}
}

func TestCompleteWithMessages(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: chatResponse("ok")}
	adapter := NewAdapter(client, testConfig())

	history := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	}
	if _, err := adapter.Complete(context.Background(), models.CompletionRequest{Messages: history}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	sent := client.requests[0]
	if len(sent.Messages) != 4 {
		t.Fatalf("Expected system prompt + 3 history messages, got %d", len(sent.Messages))
	}
	if sent.Messages[0].Role != "system" {
		t.Errorf("System prompt must come first, got %+v", sent.Messages[0])
	}
	for i, msg := range history {
		if sent.Messages[i+1] != msg {
			t.Errorf("History message %d altered: %+v", i, sent.Messages[i+1])
		}
	}
}

func TestCompleteRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  models.CompletionRequest
	}{
		{"neither", models.CompletionRequest{}},
		{"both", models.CompletionRequest{
			Prompt:   "hi",
			Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{response: chatResponse("x")}
			adapter := NewAdapter(client, testConfig())

			_, err := adapter.Complete(context.Background(), tc.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
			if len(client.requests) != 0 {
				t.Error("Invalid input must never reach the upstream")
			}
		})
	}
}

func TestCompleteOptionOverrides(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: chatResponse("x")}
	adapter := NewAdapter(client, testConfig())

	_, err := adapter.Complete(context.Background(), models.CompletionRequest{
		Prompt: "hi",
		Options: models.CompletionOptions{
			Model:        "gpt-4o",
			MaxTokens:    256,
			Temperature:  1.2,
			SystemPrompt: "Answer in French.",
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	sent := client.requests[0]
	if sent.Model != "gpt-4o" || sent.MaxTokens != 256 || sent.Temperature != 1.2 {
		t.Errorf("Overrides not applied: %+v", sent)
	}
	if sent.Messages[0].Content != "Answer in French." {
		t.Errorf("System prompt override not applied, got %q", sent.Messages[0].Content)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: &ChatResponse{}}
	adapter := NewAdapter(client, testConfig())

	resp, err := adapter.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("No choices must yield empty content, got %q", resp.Content)
	}
}

func TestCompleteShapesUsage(t *testing.T) {
	t.Parallel()

	resp := chatResponse("answer")
	resp.Usage = &struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	}{PromptTokens: 12, CompletionTokens: 34, TotalTokens: 46}

	client := &fakeClient{response: resp}
	adapter := NewAdapter(client, testConfig())

	result, err := adapter.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Usage == nil {
		t.Fatal("Expected usage accounting")
	}
	if result.Usage.PromptTokens != 12 || result.Usage.CompletionTokens != 34 || result.Usage.TotalTokens != 46 {
		t.Errorf("Usage mis-shaped: %+v", result.Usage)
	}
}

func TestCompletePropagatesUpstreamErrors(t *testing.T) {
	t.Parallel()

	upstreamErr := &UpstreamError{StatusCode: 429, Message: "rate limited"}
	client := &fakeClient{err: upstreamErr}
	adapter := NewAdapter(client, testConfig())

	_, err := adapter.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"})
	var got *UpstreamError
	if !errors.As(err, &got) || got.StatusCode != 429 {
		t.Errorf("Expected the upstream error to pass through, got %v", err)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: ErrNotConfigured}
	adapter := NewAdapter(client, testConfig())

	if _, err := adapter.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
