// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatbot.
//
// Configuration is read from a TOML file, falls back to built-in defaults,
// and is finally overridden by CHATBOT_* environment variables.
//
// Configuration file location:
//   - --config flag, if given
//   - ~/.chatbot/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/jeranaias/chatbot/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatbot configuration.
type Config struct {
	Endpoint     EndpointConfig     `toml:"endpoint"`
	Conversation ConversationConfig `toml:"conversation"`
	UI           UIConfig           `toml:"ui"`
	Server       ServerConfig       `toml:"server"`
	Log          LogConfig          `toml:"log"`
}

// EndpointConfig describes the remote generation service.
type EndpointConfig struct {
	// URL requests are POSTed to
	URL string `toml:"url"`

	// TimeoutSecs bounds a single request
	TimeoutSecs int `toml:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (e EndpointConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// ConversationConfig controls conversation behaviour.
type ConversationConfig struct {
	// Ordering is "resolution" (append replies as they arrive) or
	// "latest" (drop replies superseded by a newer send or a clear)
	Ordering string `toml:"ordering"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// DarkMode selects the initial theme
	DarkMode bool `toml:"dark_mode"`

	// WordWrap caps bubble width in columns; 0 follows the terminal
	WordWrap int `toml:"word_wrap"`
}

// ServerConfig contains settings for the browser UI server.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	SessionTTLMins int    `toml:"session_ttl_mins"`
}

// SessionTTL returns the idle session lifetime as a duration.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMins) * time.Minute
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with all default values.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:         "http://65.2.164.223:4000/generate",
			TimeoutSecs: 60,
		},
		Conversation: ConversationConfig{
			Ordering: "resolution",
		},
		UI: UIConfig{
			DarkMode: false,
			WordWrap: 0,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			SessionTTLMins: 60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatbot configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".chatbot"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from path, or from the default location when path
// is empty. A missing file is not an error: defaults are used. Environment
// overrides are applied last and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat config %s", path)
		}
		cfg := Default()
		return finish(cfg)
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", path)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values; unknown keys are rejected.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to decode TOML file")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Endpoint.URL == "" {
		cfg.Endpoint.URL = defaults.Endpoint.URL
	}
	if cfg.Endpoint.TimeoutSecs == 0 {
		cfg.Endpoint.TimeoutSecs = defaults.Endpoint.TimeoutSecs
	}
	if cfg.Conversation.Ordering == "" {
		cfg.Conversation.Ordering = defaults.Conversation.Ordering
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.SessionTTLMins == 0 {
		cfg.Server.SessionTTLMins = defaults.Server.SessionTTLMins
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Encode writes cfg as TOML with a short header.
func Encode(w io.Writer, cfg *Config) error {
	header := "# chatbot configuration file\n# Environment variables CHATBOT_* override these values\n\n"
	if _, err := io.WriteString(w, header); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return nil
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		return err
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns all problems found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Endpoint.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Endpoint.URL),
		})
	}

	if c.Endpoint.TimeoutSecs < 1 || c.Endpoint.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Endpoint.TimeoutSecs),
		})
	}

	switch strings.ToLower(c.Conversation.Ordering) {
	case "resolution", "latest":
	default:
		errs = append(errs, ValidationError{
			Field:   "conversation.ordering",
			Message: fmt.Sprintf("invalid ordering '%s', must be one of: resolution, latest", c.Conversation.Ordering),
		})
	}

	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: "must not be negative",
		})
	}

	if c.Server.SessionTTLMins < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.session_ttl_mins",
			Message: "must be at least 1",
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be text or json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - CHATBOT_ENDPOINT: overrides endpoint.url
//   - CHATBOT_TIMEOUT_SECS: overrides endpoint.timeout_secs
//   - CHATBOT_DARK_MODE: "1" or "true" starts in dark mode
//   - CHATBOT_ORDERING: overrides conversation.ordering
//   - CHATBOT_ADDR: overrides server.addr
//   - CHATBOT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("CHATBOT_ENDPOINT"); endpoint != "" {
		c.Endpoint.URL = endpoint
	}

	if timeout := os.Getenv("CHATBOT_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Endpoint.TimeoutSecs = secs
		}
	}

	if dark := os.Getenv("CHATBOT_DARK_MODE"); dark != "" {
		c.UI.DarkMode = dark == "1" || strings.ToLower(dark) == "true"
	}

	if ordering := os.Getenv("CHATBOT_ORDERING"); ordering != "" {
		c.Conversation.Ordering = ordering
	}

	if addr := os.Getenv("CHATBOT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}

	if level := os.Getenv("CHATBOT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}
