// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MkMeheran/atlasboard/internal/completion"
	"github.com/MkMeheran/atlasboard/internal/config"
	"github.com/MkMeheran/atlasboard/internal/mapview"
	"github.com/MkMeheran/atlasboard/internal/models"
	"github.com/MkMeheran/atlasboard/internal/session"
	"github.com/MkMeheran/atlasboard/internal/webhook"
	"github.com/MkMeheran/atlasboard/internal/websocket"
)

// fakeCompletionClient returns a canned upstream response.
type fakeCompletionClient struct {
	response *completion.ChatResponse
	err      error
}

func (c *fakeCompletionClient) CreateChatCompletion(context.Context, completion.ChatRequest) (*completion.ChatResponse, error) {
	return c.response, c.err
}

// fakeAuthProvider returns a canned session.
type fakeAuthProvider struct {
	session *models.Session
	err     error
}

func (p *fakeAuthProvider) SignUp(context.Context, string, string) (*models.Session, error) {
	return p.session, p.err
}

func (p *fakeAuthProvider) SignIn(context.Context, string, string) (*models.Session, error) {
	return p.session, p.err
}

func (p *fakeAuthProvider) SignOut(context.Context, string) error { return p.err }

func (p *fakeAuthProvider) GetUser(context.Context, string) (*models.User, error) {
	if p.session == nil {
		return nil, session.ErrNoSession
	}
	return p.session.User, p.err
}

// testHarness bundles a handler with its swappable fakes.
type testHarness struct {
	handler    *Handler
	hub        *websocket.Hub
	engine     *mapview.HeadlessEngine
	upstream   *fakeCompletionClient
	provider   *fakeAuthProvider
	senderBase string
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	webhookSecret string
	senderBase    string
}

func withWebhookSecret(secret string) harnessOption {
	return func(c *harnessConfig) { c.webhookSecret = secret }
}

func withSenderBase(base string) harnessOption {
	return func(c *harnessConfig) { c.senderBase = base }
}

func newTestHarness(t *testing.T, opts ...harnessOption) *testHarness {
	t.Helper()

	hc := &harnessConfig{}
	for _, opt := range opts {
		opt(hc)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 4326, Timeout: 5 * time.Second},
		Completion: config.CompletionConfig{
			Model:        "gpt-4o-mini",
			MaxTokens:    1024,
			Temperature:  0.7,
			SystemPrompt: config.DefaultSystemPrompt,
		},
		Webhook: config.WebhookConfig{
			Secret:       hc.webhookSecret,
			EndpointBase: hc.senderBase,
			Timeout:      5 * time.Second,
		},
		API:       config.APIConfig{DefaultPageSize: 20, MaxPageSize: 1000, MaxBodyBytes: 10 << 20},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 10000, AuthPerMinute: 10000},
	}

	hub := websocket.NewHub()
	relay := webhook.NewRelay(hc.webhookSecret, hub)
	sender := webhook.NewSender(hc.senderBase, cfg.Webhook.Timeout)

	upstream := &fakeCompletionClient{}
	completionAdapter := completion.NewAdapter(upstream, &cfg.Completion)

	provider := &fakeAuthProvider{}
	sessionAdapter := session.NewAdapter(provider)

	engine := mapview.NewHeadlessEngine()
	mapSync := mapview.New(engine)
	if err := mapSync.Mount(mapview.Center{Lat: 0, Lon: 0}, 2); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	return &testHarness{
		handler:    NewHandler(cfg, relay, sender, completionAdapter, sessionAdapter, hub, mapSync),
		hub:        hub,
		engine:     engine,
		upstream:   upstream,
		provider:   provider,
		senderBase: hc.senderBase,
	}
}

func (h *testHarness) serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.handler.NewRouter().ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope parses the standard response wrapper.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not an APIResponse envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return &resp
}

func chatReply(content string) *completion.ChatResponse {
	resp := &completion.ChatResponse{}
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = content
	return resp
}
