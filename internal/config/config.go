// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package config provides centralized configuration for all Atlasboard
// components: the HTTP server, the hosted auth provider client, the hosted
// completion API client, the webhook relay, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Upstream credentials (completion API key, webhook secret, automation
// endpoint, auth project URL/key) are deliberately optional at startup.
// Their absence degrades the corresponding endpoint to a typed
// not-configured error at call time rather than preventing boot; every
// other component keeps working.
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Auth       AuthConfig       `koanf:"auth"`
	Completion CompletionConfig `koanf:"completion"`
	Webhook    WebhookConfig    `koanf:"webhook"`
	API        APIConfig        `koanf:"api"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// AuthConfig points at the hosted auth provider project.
// URL is the project base URL; AnonKey is the public API key sent with
// every provider request. Both empty means auth endpoints return
// NOT_CONFIGURED.
type AuthConfig struct {
	URL     string        `koanf:"url"`
	AnonKey string        `koanf:"anon_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// CompletionConfig holds hosted completion API settings.
type CompletionConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	Model        string        `koanf:"model"`
	MaxTokens    int           `koanf:"max_tokens"`
	Temperature  float64       `koanf:"temperature"`
	SystemPrompt string        `koanf:"system_prompt"`
	Timeout      time.Duration `koanf:"timeout"`
}

// WebhookConfig holds the shared inbound secret and the outbound
// automation endpoint base URL.
type WebhookConfig struct {
	Secret       string        `koanf:"secret"`
	EndpointBase string        `koanf:"endpoint_base"`
	Timeout      time.Duration `koanf:"timeout"`
}

// APIConfig holds pagination and response limits.
type APIConfig struct {
	DefaultPageSize int   `koanf:"default_page_size"`
	MaxPageSize     int   `koanf:"max_page_size"`
	MaxBodyBytes    int64 `koanf:"max_body_bytes"`
}

// RateLimitConfig holds per-route request limits (requests per minute).
// Auth endpoints get a stricter budget for brute-force prevention.
type RateLimitConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
	AuthPerMinute     int `koanf:"auth_per_minute"`
}

// LoggingConfig holds log level and output format settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DefaultSystemPrompt is prepended to every completion call unless the
// request overrides it.
const DefaultSystemPrompt = "You are a helpful assistant integrated into a geospatial dashboard. " +
	"You help users with tasks related to GIS, data analysis, and automation workflows. " +
	"Be concise, accurate, and helpful in your responses."

// defaultConfig returns a Config with all default values. These are applied
// first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        4326, // EPSG:4326, the coordinate system GeoJSON mandates
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Auth: AuthConfig{
			URL:     "",
			AnonKey: "",
			Timeout: 10 * time.Second,
		},
		Completion: CompletionConfig{
			APIKey:       "",
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			MaxTokens:    1024,
			Temperature:  0.7,
			SystemPrompt: DefaultSystemPrompt,
			Timeout:      60 * time.Second,
		},
		Webhook: WebhookConfig{
			Secret:       "",
			EndpointBase: "",
			Timeout:      10 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     1000,
			MaxBodyBytes:    10 << 20, // GeoJSON imports can be large
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 300,
			AuthPerMinute:     10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration consistency. Missing upstream credentials
// are not errors here; they surface as typed errors at call time.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if err := validateOptionalURL("auth.url", c.Auth.URL); err != nil {
		return err
	}
	if err := validateOptionalURL("completion.base_url", c.Completion.BaseURL); err != nil {
		return err
	}
	if err := validateOptionalURL("webhook.endpoint_base", c.Webhook.EndpointBase); err != nil {
		return err
	}
	if c.Completion.MaxTokens < 1 {
		return fmt.Errorf("completion.max_tokens must be at least 1, got %d", c.Completion.MaxTokens)
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return fmt.Errorf("completion.temperature must be in [0, 2], got %g", c.Completion.Temperature)
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be between 1 and api.max_page_size (%d), got %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("ratelimit.requests_per_minute must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.AuthPerMinute < 1 {
		return fmt.Errorf("ratelimit.auth_per_minute must be at least 1, got %d", c.RateLimit.AuthPerMinute)
	}
	return nil
}

// validateOptionalURL accepts empty values and otherwise requires an
// absolute http(s) URL.
func validateOptionalURL(field, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, value)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", field, value)
	}
	return nil
}
