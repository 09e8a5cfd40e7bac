//go:build !windows

package tap

// Hook is a placeholder on platforms without a global mouse hook.
type Hook struct{}

// Install always fails with ErrHookUnsupported.
func Install(t *Tap) (*Hook, error) {
	return nil, ErrHookUnsupported
}

// Uninstall is a no-op.
func (h *Hook) Uninstall() error {
	return nil
}
