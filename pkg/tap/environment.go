package tap

import "runtime"

// Environment summarises mouse hook backend support.
type Environment struct {
	Provider  string
	Available bool
	Message   string
	Guidance  string
}

const (
	providerLowLevelHook = "low_level_mouse_hook"
	providerNone         = "none"
)

// DetectEnvironment reports whether a global mouse hook can be installed.
func DetectEnvironment() Environment {
	if runtime.GOOS == "windows" {
		return Environment{
			Provider:  providerLowLevelHook,
			Available: true,
			Message:   "WH_MOUSE_LL hook available",
		}
	}
	return Environment{
		Provider:  providerNone,
		Available: false,
		Message:   "no global mouse hook backend for " + runtime.GOOS,
		Guidance:  "use 'debounce simulate' to replay recorded transitions",
	}
}
