//go:build !windows

package tray

// Icon is unavailable on this platform.
type Icon struct{}

// New validates opts and reports ErrUnsupported.
func New(opts Options) (*Icon, error) {
	if _, err := opts.validate(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

// Close is a no-op.
func (i *Icon) Close() error {
	return nil
}
