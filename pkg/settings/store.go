// Package settings persists the chosen debounce delay per user, scoped by
// vendor and application name.
package settings

import (
	"fmt"
	"strings"
)

const (
	// Vendor scopes persisted settings alongside other tools from the same publisher.
	Vendor = "Umbral"
	// Application scopes persisted settings to this program.
	Application = "Debounce"
	// DelayKey names the persisted delay value.
	DelayKey = "DebounceDelayMs"
)

// Backend names accepted by Open.
const (
	BackendAuto     = "auto"
	BackendFile     = "file"
	BackendRegistry = "registry"
)

// Store reads and writes the persisted debounce delay.
type Store interface {
	LoadDelay() (uint32, error)
	SaveDelay(ms uint32) error
	Describe() string
}

// Open resolves a backend name to a store. path is only used by the file
// backend; empty selects DefaultPath.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendAuto:
		if registryAvailable {
			return NewRegistryStore()
		}
		return openFile(path)
	case BackendFile:
		return openFile(path)
	case BackendRegistry:
		return NewRegistryStore()
	default:
		return nil, fmt.Errorf("unknown settings backend %q", backend)
	}
}

func openFile(path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}
	return NewFileStore(path), nil
}
