// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/ollama-chat/internal/logging"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ollama-chat configuration.
type Config struct {
	// BaseURL is the Ollama server, e.g. http://localhost:11434
	BaseURL string `toml:"base_url"`
	// DefaultModel is selected until the server's model list is fetched
	DefaultModel string `toml:"default_model"`

	Completion CompletionConfig `toml:"completion"`
	Storage    StorageConfig    `toml:"storage"`
	Log        LogConfig        `toml:"log"`
	UI         UIConfig         `toml:"ui"`
}

// CompletionConfig selects and tunes the completion backend.
type CompletionConfig struct {
	// Backend is "ollama" (native /api/chat) or "openai" (the /v1 compatible API)
	Backend string `toml:"backend"`
	// Timeout bounds a single completion request
	Timeout Duration `toml:"timeout"`
}

// StorageConfig controls where chats are persisted.
type StorageConfig struct {
	// Backend is "file" or "sqlite"
	Backend string `toml:"backend"`
	// Dir holds the chat data. Empty means <config dir>/data.
	Dir string `toml:"dir"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level"`
	// File receives logs while the TUI runs. Empty means <config dir>/ollama-chat.log.
	File string `toml:"file"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// WordWrap wraps rendered messages to the viewport width
	WordWrap bool `toml:"word_wrap"`
}

// Duration is a time.Duration written as a string ("5m", "90s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Backend names.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"

	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the default values.
func Default() *Config {
	return &Config{
		BaseURL:      "http://localhost:11434",
		DefaultModel: "llama2",
		Completion: CompletionConfig{
			Backend: BackendOllama,
			Timeout: Duration{5 * time.Minute},
		},
		Storage: StorageConfig{
			Backend: StorageFile,
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			WordWrap: true,
		},
	}
}

// SetDefaults fills zero-valued fields with defaults. Paths that depend on
// the home directory are resolved here.
func (c *Config) SetDefaults() {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.DefaultModel == "" {
		c.DefaultModel = d.DefaultModel
	}
	if c.Completion.Backend == "" {
		c.Completion.Backend = d.Completion.Backend
	}
	if c.Completion.Timeout.Duration == 0 {
		c.Completion.Timeout = d.Completion.Timeout
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}

	dir, err := ConfigDir()
	if err != nil {
		return
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = filepath.Join(dir, "data")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "ollama-chat.log")
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ollama-chat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ollama-chat"), nil
}

// ConfigPath returns the path to the TOML config file.
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

// Load reads ~/.ollama-chat/config.toml when it exists, then applies .env
// and environment overrides, fills defaults and validates.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// Parse decodes configuration from TOML text without consulting the
// environment.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func finish(cfg *Config) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// Environment variables that override file settings.
const (
	EnvURL     = "OLLAMA_CHAT_URL"
	EnvModel   = "OLLAMA_CHAT_MODEL"
	EnvBackend = "OLLAMA_CHAT_BACKEND"
	EnvStorage = "OLLAMA_CHAT_STORAGE"
	EnvDataDir = "OLLAMA_CHAT_DATA_DIR"
	EnvLog     = "OLLAMA_CHAT_LOG_LEVEL"
)

// ApplyEnvOverrides applies OLLAMA_CHAT_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Completion.Backend = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv(EnvLog); v != "" {
		c.Log.Level = v
	}
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

// Validate checks the configuration and returns all problems found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.BaseURL),
		})
	}

	if strings.TrimSpace(c.DefaultModel) == "" {
		errs = append(errs, ValidationError{Field: "default_model", Message: "must not be empty"})
	}

	switch c.Completion.Backend {
	case BackendOllama, BackendOpenAI:
	default:
		errs = append(errs, ValidationError{
			Field:   "completion.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: ollama, openai", c.Completion.Backend),
		})
	}

	if c.Completion.Timeout.Duration < 0 {
		errs = append(errs, ValidationError{Field: "completion.timeout", Message: "must not be negative"})
	}

	switch c.Storage.Backend {
	case StorageFile, StorageSQLite:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite", c.Storage.Backend),
		})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
