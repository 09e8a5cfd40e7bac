//go:build !windows

package session

// Without a native message queue the session waits on a Controller.
func newPlatformLoop() Loop {
	return NewController()
}

// There is no notification area here; the terminal menu is a separate command.
func newPlatformUI(UIOptions) (UI, error) {
	return nil, nil
}
