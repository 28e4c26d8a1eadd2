// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for zurk.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. The file lives at ~/.zurk/config.toml.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete zurk configuration.
type Config struct {
	Version string `toml:"version"`

	// API configuration (Gemini)
	API APIConfig `toml:"api"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Developer mode configuration
	Developer DeveloperConfig `toml:"developer"`
}

// APIConfig contains Gemini API configuration.
type APIConfig struct {
	// Key is the Gemini API key. Prefer setting ZURK_API_KEY or
	// GEMINI_API_KEY instead of storing it here.
	Key string `toml:"key"`
	// Model is the chat model.
	Model string `toml:"model"`
	// ImageModel is the image generation model.
	ImageModel string `toml:"image_model"`
	// RequestsPerMinute rate-limits outgoing API calls. 0 uses the
	// built-in default.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// StorageConfig contains session persistence configuration.
type StorageConfig struct {
	// Dir is where sessions are persisted (empty = ~/.zurk).
	Dir string `toml:"dir"`
	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `toml:"backend"`
	// MaxSessions caps the retained session count; the oldest are
	// pruned past it.
	MaxSessions int `toml:"max_sessions"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Glamour renders finished replies as styled Markdown.
	Glamour bool `toml:"glamour"`
	// StreamFPS is the streaming refresh rate.
	StreamFPS int `toml:"stream_fps"`
}

// DeveloperConfig configures developer mode.
type DeveloperConfig struct {
	// SourceSnapshot points at a source dump injected into the
	// developer persona. Developer mode stays disabled without it.
	SourceSnapshot string `toml:"source_snapshot"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			Model:             "gemini-2.5-flash",
			ImageModel:        "imagen-3.0-generate-002",
			RequestsPerMinute: 30,
		},

		Storage: StorageConfig{
			Backend:     "file",
			MaxSessions: 100,
		},

		UI: UIConfig{
			Theme:     "dark",
			Glamour:   true,
			StreamFPS: 30,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the zurk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".zurk"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 to protect API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	path, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				cfg.SetDefaults()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600
// permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# zurk configuration file")
	fmt.Fprintln(file, "# Generated by zurk - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for out-of-range or unknown values.
// All problems are reported at once, joined into a single error.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%s: %s", field, fmt.Sprintf(format, args...)))
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "file", "sqlite":
	default:
		bad("storage.backend", "invalid backend %q, must be one of: file, sqlite", c.Storage.Backend)
	}
	if c.Storage.MaxSessions < 1 || c.Storage.MaxSessions > 10000 {
		bad("storage.max_sessions", "must be 1-10000, got %d", c.Storage.MaxSessions)
	}
	if c.API.RequestsPerMinute < 0 || c.API.RequestsPerMinute > 600 {
		bad("api.requests_per_minute", "must be 0-600, got %d", c.API.RequestsPerMinute)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		bad("ui.theme", "invalid theme %q, must be one of: dark, light, auto", c.UI.Theme)
	}
	if c.UI.StreamFPS < 1 || c.UI.StreamFPS > 120 {
		bad("ui.stream_fps", "must be 1-120, got %d", c.UI.StreamFPS)
	}

	return errors.Join(errs...)
}

// SetDefaults sets default values for any missing configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.Model == "" {
		c.API.Model = defaults.API.Model
	}
	if c.API.ImageModel == "" {
		c.API.ImageModel = defaults.API.ImageModel
	}
	if c.API.RequestsPerMinute == 0 {
		c.API.RequestsPerMinute = defaults.API.RequestsPerMinute
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.MaxSessions == 0 {
		c.Storage.MaxSessions = defaults.Storage.MaxSessions
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.StreamFPS == 0 {
		c.UI.StreamFPS = defaults.UI.StreamFPS
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - ZURK_API_KEY: overrides api.key
//   - GEMINI_API_KEY: fallback for api.key when ZURK_API_KEY is unset
//   - ZURK_MODEL: overrides api.model
//   - ZURK_IMAGE_MODEL: overrides api.image_model
//   - ZURK_STORAGE_DIR: overrides storage.dir
//   - ZURK_STORAGE_BACKEND: overrides storage.backend
//   - ZURK_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("ZURK_API_KEY"); key != "" {
		c.API.Key = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.API.Key = key
	}

	if model := os.Getenv("ZURK_MODEL"); model != "" {
		c.API.Model = model
	}
	if model := os.Getenv("ZURK_IMAGE_MODEL"); model != "" {
		c.API.ImageModel = model
	}
	if dir := os.Getenv("ZURK_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if backend := os.Getenv("ZURK_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if theme := os.Getenv("ZURK_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g.
// "storage.backend").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.resolve(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g.
// "ui.stream_fps"). String values are parsed to the field's type so
// values typed on the command line work directly.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.resolve(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}

	if s, ok := value.(string); ok {
		return setFromString(field, s)
	}

	val := reflect.ValueOf(value)
	if !val.Type().ConvertibleTo(field.Type()) {
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	}
	field.Set(val.Convert(field.Type()))
	return nil
}

// resolve walks the Config struct along a dot-notation key and returns
// the addressed field.
func (c *Config) resolve(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	parts := strings.Split(key, ".")

	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field %q is not a section", strings.Join(parts[:i], "."))
		}
		goName := fieldNameFor(part)
		v = v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, goName)
		})
		if !v.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
	}
	return v, nil
}

// fieldNameFor maps a snake_case or kebab-case key segment to its Go
// field name ("stream_fps" -> "Streamfps", matched case-insensitively).
func fieldNameFor(segment string) string {
	words := strings.FieldsFunc(segment, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// setFromString parses a string into the field's underlying kind.
func setFromString(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %v", err)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %v", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "1", "true", "yes":
			field.SetBool(true)
		default:
			field.SetBool(false)
		}
	default:
		return fmt.Errorf("unsupported field kind: %s", field.Kind())
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.key",
		"api.model",
		"api.image_model",
		"api.requests_per_minute",
		"storage.dir",
		"storage.backend",
		"storage.max_sessions",
		"ui.theme",
		"ui.glamour",
		"ui.stream_fps",
		"developer.source_snapshot",
	}
}

// StorageDir resolves the session storage directory, defaulting to the
// config directory.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return ConfigDir()
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// The API key is redacted so it never lands in logs.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.API.Key != "" {
		safe.API.Key = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance. Loads configuration
// on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		globalConfigMu.Lock()
		defer globalConfigMu.Unlock()
		if globalConfig != nil {
			// Already installed via SetGlobal.
			return
		}
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test
// runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
