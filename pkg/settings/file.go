package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings document written by FileStore.
const FileName = "settings.yaml"

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, Vendor, Application, FileName), nil
}

type document struct {
	DebounceDelayMs *uint32 `yaml:"debounce_delay_ms"`
}

// FileStore keeps the delay in a small YAML document.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Describe identifies the store for diagnostics.
func (s *FileStore) Describe() string {
	return "file:" + s.path
}

// LoadDelay reads the persisted delay.
func (s *FileStore) LoadDelay() (uint32, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read settings %q: %w", s.path, err)
	}
	return decodeDelay(data)
}

func decodeDelay(data []byte) (uint32, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode settings: %w", err)
	}
	if doc.DebounceDelayMs == nil {
		return 0, ErrNotFound
	}
	return *doc.DebounceDelayMs, nil
}

// SaveDelay writes the delay atomically.
func (s *FileStore) SaveDelay(ms uint32) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure settings dir: %w", err)
	}

	data, err := yaml.Marshal(document{DebounceDelayMs: &ms})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace settings %q: %w", s.path, err)
	}
	return nil
}
