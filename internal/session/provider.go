// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package session wraps the hosted auth provider: a thin REST client for
// the provider's GoTrue-style endpoints plus an adapter that caches the
// current session and derives roles from it.
package session

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

	"github.com/MkMeheran/atlasboard/internal/config"
	"github.com/MkMeheran/atlasboard/internal/models"
)

var (
	// ErrNotConfigured indicates the auth provider URL or key is missing.
	ErrNotConfigured = errors.New("session: auth provider not configured")

	// ErrNoSession indicates there is no signed-in user.
	ErrNoSession = errors.New("session: no active session")
)

// ProviderError is a rejection from the auth provider (non-2xx status),
// carrying the provider's message when one was parseable.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("session: provider error (status %d): %s", e.StatusCode, e.Message)
}

// Provider is the hosted auth provider surface the adapter needs.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
}

// HTTPProvider calls a GoTrue-style hosted auth REST API. Every request
// carries the project's anonymous API key; user-scoped calls additionally
// carry the session's bearer token.
type HTTPProvider struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewHTTPProvider creates a provider client from the auth configuration.
// Missing URL or key is allowed at construction; each call then returns
// ErrNotConfigured.
func NewHTTPProvider(cfg *config.AuthConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) configured() bool {
	return p.baseURL != "" && p.anonKey != ""
}

// SignUp registers a new user with email and password. Providers that
// require email confirmation return a session without an access token.
func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return p.credentialCall(ctx, "/auth/v1/signup", email, password)
}

// SignIn performs a password-grant token exchange.
func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return p.credentialCall(ctx, "/auth/v1/token?grant_type=password", email, password)
}

// SignOut revokes the session behind the given access token.
func (p *HTTPProvider) SignOut(ctx context.Context, accessToken string) error {
	if !p.configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("session: failed to build request: %w", err)
	}
	p.setHeaders(req, accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("session: sign-out request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	// 204 on success; an already-dead token is not an error worth surfacing.
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 || resp.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return &ProviderError{StatusCode: resp.StatusCode, Message: resp.Status}
}

// GetUser fetches the identity record behind an access token.
func (p *HTTPProvider) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	if !p.configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("session: failed to build request: %w", err)
	}
	p.setHeaders(req, accessToken)

	data, err := p.do(req)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("session: failed to decode user: %w", err)
	}
	return &user, nil
}

func (p *HTTPProvider) credentialCall(ctx context.Context, path, email, password string) (*models.Session, error) {
	if !p.configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("session: failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("session: failed to build request: %w", err)
	}
	p.setHeaders(req, "")

	data, err := p.do(req)
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: failed to decode session: %w", err)
	}
	return &sess, nil
}

func (p *HTTPProvider) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.anonKey)
	}
}

func (p *HTTPProvider) do(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session: provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("session: reading provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    providerMessage(data, resp.Status),
		}
	}
	return data, nil
}

// providerMessage extracts the error text from the provider's envelope,
// which uses a few different field names across endpoints.
func providerMessage(body []byte, fallback string) string {
	var envelope struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, candidate := range []string{envelope.Message, envelope.Msg, envelope.ErrorDescription} {
			if candidate != "" {
				return candidate
			}
		}
	}
	return fallback
}
