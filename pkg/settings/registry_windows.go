//go:build windows

package settings

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const registryAvailable = true

// RegistryKeyPath is the per-user key holding the delay.
const RegistryKeyPath = `Software\` + Vendor + `\` + Application

// RegistryStore keeps the delay as a DWORD under HKEY_CURRENT_USER.
type RegistryStore struct {
	root registry.Key
	path string
}

// NewRegistryStore opens the per-user registry store.
func NewRegistryStore() (Store, error) {
	return &RegistryStore{root: registry.CURRENT_USER, path: RegistryKeyPath}, nil
}

// Describe identifies the store for diagnostics.
func (s *RegistryStore) Describe() string {
	return `registry:HKCU\` + s.path + `\` + DelayKey
}

// LoadDelay reads the persisted delay.
func (s *RegistryStore) LoadDelay() (uint32, error) {
	key, err := registry.OpenKey(s.root, s.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("open registry key: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetIntegerValue(DelayKey)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read registry value: %w", err)
	}
	return uint32(value), nil
}

// SaveDelay writes the delay.
func (s *RegistryStore) SaveDelay(ms uint32) error {
	key, _, err := registry.CreateKey(s.root, s.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create registry key: %w", err)
	}
	defer key.Close()

	if err := key.SetDWordValue(DelayKey, ms); err != nil {
		return fmt.Errorf("write registry value: %w", err)
	}
	return nil
}
