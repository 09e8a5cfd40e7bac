package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/offlinefirst/debounce/pkg/debounce"
	"github.com/offlinefirst/debounce/pkg/settings"
)

const DefaultFileName = "config.yaml"

// Config captures the user-adjustable knobs of the debouncer. The delay
// itself is not part of it; it lives in the settings store.
type Config struct {
	Debounce DebounceConfig `yaml:"debounce" toml:"debounce"`
	Settings SettingsConfig `yaml:"settings" toml:"settings"`
	Tap      TapConfig      `yaml:"tap" toml:"tap"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-" toml:"-"`
}

// DebounceConfig selects the decision policy.
type DebounceConfig struct {
	Policy string `yaml:"policy" toml:"policy" env:"DEBOUNCE_POLICY"`
}

// SettingsConfig controls where the chosen delay is persisted.
type SettingsConfig struct {
	Backend string `yaml:"backend" toml:"backend" env:"DEBOUNCE_SETTINGS_BACKEND"`
	Path    string `yaml:"path" toml:"path" env:"DEBOUNCE_SETTINGS_PATH"`
	Watch   bool   `yaml:"watch" toml:"watch" env:"DEBOUNCE_SETTINGS_WATCH"`
}

// TapConfig tunes the input tap.
type TapConfig struct {
	NotifyBuffer int `yaml:"notify_buffer" toml:"notify_buffer" env:"DEBOUNCE_NOTIFY_BUFFER"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"DEBOUNCE_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"DEBOUNCE_LOG_FORMAT"`
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	return Config{
		Debounce: DebounceConfig{
			Policy: debounce.DefaultPolicy.Name(),
		},
		Settings: SettingsConfig{
			Backend: settings.BackendAuto,
			Watch:   true,
		},
		Tap: TapConfig{
			NotifyBuffer: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Source: "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./config.yaml but tolerates a
// missing file. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	data, err := os.ReadFile(candidate)
	switch {
	case err == nil:
		if err := decode(candidate, data, &cfg); err != nil {
			return cfg, err
		}
		cfg.Source = candidate
	case errors.Is(err, os.ErrNotExist):
		if explicit {
			return cfg, fmt.Errorf("config file %q not found", candidate)
		}
	default:
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode config %q: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode config %q: %w", path, err)
		}
	}
	return nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if _, err := debounce.ParsePolicy(c.Debounce.Policy); err != nil {
		return fmt.Errorf("debounce.policy: %w", err)
	}
	switch c.Settings.Backend {
	case settings.BackendAuto, settings.BackendFile, settings.BackendRegistry:
	default:
		return fmt.Errorf("settings.backend: unsupported value %q", c.Settings.Backend)
	}
	if c.Tap.NotifyBuffer < 0 {
		return errors.New("tap.notify_buffer must not be negative")
	}
	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()

	c.Debounce.Policy = strings.ToLower(strings.TrimSpace(c.Debounce.Policy))
	if c.Debounce.Policy == "" {
		c.Debounce.Policy = defaults.Debounce.Policy
	}
	c.Settings.Backend = strings.ToLower(strings.TrimSpace(c.Settings.Backend))
	if c.Settings.Backend == "" {
		c.Settings.Backend = defaults.Settings.Backend
	}
	c.Settings.Path = strings.TrimSpace(c.Settings.Path)
	if c.Settings.Path != "" {
		c.Settings.Path = filepath.Clean(c.Settings.Path)
	}
	if c.Tap.NotifyBuffer == 0 {
		c.Tap.NotifyBuffer = defaults.Tap.NotifyBuffer
	}
	if lvl, err := NormalizeLogLevel(c.Logging.Level); err == nil {
		c.Logging.Level = lvl
	}
	if format, err := NormalizeFormat(c.Logging.Format); err == nil {
		c.Logging.Format = format
	}
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto":
		return "auto", nil
	case "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
