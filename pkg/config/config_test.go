package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	defer os.Chdir(cwd)

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir temp dir: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Source != "<defaults>" {
		t.Fatalf("expected default source marker, got %q", cfg.Source)
	}
	if cfg.Debounce.Policy != "cross-check" {
		t.Fatalf("unexpected default policy: %q", cfg.Debounce.Policy)
	}
	if cfg.Settings.Backend != "auto" || !cfg.Settings.Watch {
		t.Fatalf("unexpected default settings: %+v", cfg.Settings)
	}
	if cfg.Tap.NotifyBuffer != 256 {
		t.Fatalf("unexpected default notify buffer: %d", cfg.Tap.NotifyBuffer)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "auto" {
		t.Fatalf("unexpected default logging: %+v", cfg.Logging)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "debounce:\n  policy: Independent\nsettings:\n  backend: file\n  path: " + filepath.Join(dir, "state", "settings.yaml") + "\n  watch: false\ntap:\n  notify_buffer: 16\nlogging:\n  level: DEBUG\n  format: text\n"

	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Debounce.Policy != "independent" {
		t.Fatalf("unexpected policy: %q", cfg.Debounce.Policy)
	}
	if cfg.Settings.Backend != "file" {
		t.Fatalf("unexpected backend: %q", cfg.Settings.Backend)
	}
	if cfg.Settings.Path != filepath.Join(dir, "state", "settings.yaml") {
		t.Fatalf("unexpected settings path: %q", cfg.Settings.Path)
	}
	if cfg.Settings.Watch {
		t.Fatalf("expected watch disabled")
	}
	if cfg.Tap.NotifyBuffer != 16 {
		t.Fatalf("unexpected notify buffer: %d", cfg.Tap.NotifyBuffer)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.Source != cfgPath {
		t.Fatalf("expected source to equal path, got %q", cfg.Source)
	}
}

func TestLoadFromTOML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[debounce]\npolicy = \"release-guard\"\n\n[logging]\nformat = \"json\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Debounce.Policy != "release-guard" {
		t.Fatalf("unexpected policy: %q", cfg.Debounce.Policy)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected format: %q", cfg.Logging.Format)
	}
	if cfg.Settings.Backend != "auto" {
		t.Fatalf("expected default backend kept, got %q", cfg.Settings.Backend)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("logging:\n  level: warn\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEBOUNCE_LOG_LEVEL", "error")
	t.Setenv("DEBOUNCE_POLICY", "independent")
	t.Setenv("DEBOUNCE_NOTIFY_BUFFER", "8")
	t.Setenv("DEBOUNCE_SETTINGS_WATCH", "false")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected env level override, got %q", cfg.Logging.Level)
	}
	if cfg.Debounce.Policy != "independent" {
		t.Fatalf("expected env policy override, got %q", cfg.Debounce.Policy)
	}
	if cfg.Tap.NotifyBuffer != 8 {
		t.Fatalf("expected env notify buffer override, got %d", cfg.Tap.NotifyBuffer)
	}
	if cfg.Settings.Watch {
		t.Fatalf("expected env watch override")
	}
}

func TestUnknownKeyReturnsError(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("debounce:\n  smoothing: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for unsupported key")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"policy":  func(c *Config) { c.Debounce.Policy = "smoothing" },
		"backend": func(c *Config) { c.Settings.Backend = "etcd" },
		"buffer":  func(c *Config) { c.Tap.NotifyBuffer = -2 },
		"level":   func(c *Config) { c.Logging.Level = "verbose" },
		"format":  func(c *Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
