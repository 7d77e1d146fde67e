// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority
// order. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/atlasboard/config.yaml",
	"/etc/atlasboard/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables (highest priority), then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envAliases maps well-known environment variable names onto config paths.
// These are the names the hosted providers document, so deployments can use
// them directly instead of the SECTION_FIELD convention.
var envAliases = map[string]string{
	"openai_api_key":    "completion.api_key",
	"webhook_secret":    "webhook.secret",
	"n8n_webhook_url":   "webhook.endpoint_base",
	"supabase_url":      "auth.url",
	"supabase_anon_key": "auth.anon_key",
	"http_port":         "server.port",
	"http_host":         "server.host",
	"environment":       "server.environment",
	"log_level":         "logging.level",
	"log_format":        "logging.format",
	"log_caller":        "logging.caller",
}

// envSections are the section prefixes recognized by the generic
// SECTION_FIELD_NAME -> section.field_name mapping.
var envSections = []string{
	"server", "auth", "completion", "webhook", "api", "ratelimit", "logging",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - WEBHOOK_SECRET        -> webhook.secret (alias)
//   - OPENAI_API_KEY        -> completion.api_key (alias)
//   - COMPLETION_MAX_TOKENS -> completion.max_tokens
//   - SERVER_PORT           -> server.port
//
// Unrecognized variables map to "" and are ignored by koanf.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if path, ok := envAliases[key]; ok {
		return path
	}

	for _, section := range envSections {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return section + "." + key[len(prefix):]
		}
	}

	return ""
}
