//go:build !windows

package settings

const registryAvailable = false

// NewRegistryStore fails off Windows.
func NewRegistryStore() (Store, error) {
	return nil, ErrUnsupportedBackend
}
