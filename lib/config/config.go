// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for the clinic's live deployment.
	Production Environment = "production"
)

// Config is the master configuration for the triage dashboard.
type Config struct {
	// Environment identifies the deployment type (development,
	// staging, production).
	Environment Environment `yaml:"environment"`

	// API configures the dashboard REST endpoint.
	API APIConfig `yaml:"api"`

	// Channel configures the realtime websocket channel.
	Channel ChannelConfig `yaml:"channel"`

	// Operator identifies the person using the dashboard.
	Operator OperatorConfig `yaml:"operator"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config is
	// loaded and the environment is known.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per
// environment.
type ConfigOverrides struct {
	API     *APIConfig     `yaml:"api,omitempty"`
	Channel *ChannelConfig `yaml:"channel,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// APIConfig configures the dashboard REST endpoint.
type APIConfig struct {
	// BaseURL is the service root, e.g. "http://localhost:8000".
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request HTTP timeout as a duration string.
	// Default: 15s.
	Timeout string `yaml:"timeout"`
}

// ChannelConfig configures the realtime websocket channel.
type ChannelConfig struct {
	// URL is the websocket endpoint. When empty it is derived from
	// the API base URL: http becomes ws and the dashboard channel
	// path is appended.
	URL string `yaml:"url"`

	// Disabled turns off the realtime channel entirely; the
	// dashboard then relies on manual refresh.
	Disabled bool `yaml:"disabled"`
}

// OperatorConfig identifies the dashboard operator.
type OperatorConfig struct {
	// Name is attached to notes and status reviews. When empty, the
	// OS username is used.
	Name string `yaml:"name"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is the minimum slog level: debug, info, warn, error.
	// Default: info (development), warn (production).
	Level string `yaml:"level"`

	// File is an optional path for JSON log output alongside the
	// TUI's status bar messages.
	File string `yaml:"file"`
}

// channelPath is the websocket path on the triage service.
const channelPath = "/dashboard/ws"

// Default returns the default configuration. These defaults make the
// dashboard work against a local development service with no config
// file at all.
func Default() *Config {
	return &Config{
		Environment: Development,
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "15s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the TRIAGE_CONFIG environment
// variable. The variable only names the file; when unset, built-in
// defaults apply.
func Load() (*Config, error) {
	configPath := os.Getenv("TRIAGE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies
// environment overrides, and expands ${HOME} style variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching the
// configured environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production default: quieter logs. An explicit level in the
		// production section still wins below.
		if c.Logging.Level == "info" {
			c.Logging.Level = "warn"
		}
	}
	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.Timeout != "" {
			c.API.Timeout = overrides.API.Timeout
		}
	}
	if overrides.Channel != nil {
		if overrides.Channel.URL != "" {
			c.Channel.URL = overrides.Channel.URL
		}
		if overrides.Channel.Disabled {
			c.Channel.Disabled = true
		}
	}
	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.File != "" {
			c.Logging.File = overrides.Logging.File
		}
	}
}

// variablePattern matches ${VAR} references in config values.
var variablePattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandVariables expands ${HOME} and similar environment variables
// in path-valued fields for portability.
func (c *Config) expandVariables() {
	c.Logging.File = variablePattern.ReplaceAllStringFunc(c.Logging.File, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}

// validate rejects configurations the dashboard cannot start with.
func (c *Config) validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}

	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: api.base_url %q is not an absolute URL", c.API.BaseURL)
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("config: api.timeout: %w", err)
		}
	}
	return nil
}

// RequestTimeout returns the parsed API timeout.
func (c *Config) RequestTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.API.Timeout)
	if err != nil || timeout <= 0 {
		return 15 * time.Second
	}
	return timeout
}

// ChannelURL returns the websocket endpoint, deriving it from the API
// base URL when not set explicitly.
func (c *Config) ChannelURL() string {
	if c.Channel.URL != "" {
		return c.Channel.URL
	}

	derived := c.API.BaseURL
	switch {
	case strings.HasPrefix(derived, "https://"):
		derived = "wss://" + strings.TrimPrefix(derived, "https://")
	case strings.HasPrefix(derived, "http://"):
		derived = "ws://" + strings.TrimPrefix(derived, "http://")
	}
	return strings.TrimRight(derived, "/") + channelPath
}
