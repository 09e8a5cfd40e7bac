package permissions

import (
	"os"
	"runtime"
	"strings"
)

// Status enumerates coarse capability results reported by doctor.
type Status string

const (
	// StatusUnknown indicates no explicit signal about the capability.
	StatusUnknown Status = "unknown"
	// StatusGranted signals that the capability is usable.
	StatusGranted Status = "granted"
	// StatusDenied indicates the current user lacks the right.
	StatusDenied Status = "denied"
	// StatusUnavailable reports that the capability is not supported.
	StatusUnavailable Status = "unavailable"
)

// ProbeResult represents the coarse state for a capability.
type ProbeResult struct {
	Status   Status
	Message  string
	Guidance string
}

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// lookupEnv is declared for swapping in tests.
var lookupEnv = func(key string) (string, bool) {
	return os.LookupEnv(key)
}

var (
	goos    = runtime.GOOS
	geteuid = os.Geteuid
)

// ProbeInputHook reports whether a global mouse hook may be installed.
func ProbeInputHook(lookup LookupEnvFunc) ProbeResult {
	if lookup == nil {
		lookup = lookupEnv
	}
	if value, ok := lookup("DEBOUNCE_INPUT_HOOK"); ok {
		return interpretPermissionFlag("input hook", value)
	}
	if goos == "windows" {
		return ProbeResult{Status: StatusGranted, Message: "low level mouse hooks need no elevation in the user session"}
	}
	return ProbeResult{
		Status:   StatusUnavailable,
		Message:  "global mouse hook unsupported on " + goos,
		Guidance: "replay recorded transitions with 'debounce simulate'",
	}
}

// ProbePriority reports whether the process priority can be raised.
func ProbePriority(lookup LookupEnvFunc) ProbeResult {
	if lookup == nil {
		lookup = lookupEnv
	}
	if value, ok := lookup("DEBOUNCE_PRIORITY"); ok {
		return interpretPermissionFlag("priority", value)
	}
	if goos == "windows" {
		return ProbeResult{Status: StatusGranted, Message: "HIGH_PRIORITY_CLASS is available to standard users"}
	}
	if geteuid() == 0 {
		return ProbeResult{Status: StatusGranted, Message: "running as root; negative niceness allowed"}
	}
	return ProbeResult{
		Status:   StatusDenied,
		Message:  "negative niceness needs CAP_SYS_NICE",
		Guidance: "grant CAP_SYS_NICE or accept normal priority with a startup warning",
	}
}

func interpretPermissionFlag(name, value string) ProbeResult {
	normalised := strings.ToLower(strings.TrimSpace(value))
	switch normalised {
	case "granted", "allow", "allowed", "yes", "true":
		return ProbeResult{Status: StatusGranted, Message: name + " pre-authorised via env override"}
	case "denied", "no", "false", "blocked":
		return ProbeResult{Status: StatusDenied, Message: name + " denied via env override", Guidance: "unset DEBOUNCE_* overrides to probe the real state"}
	case "unavailable", "unsupported":
		return ProbeResult{Status: StatusUnavailable, Message: name + " unavailable via env override"}
	default:
		return ProbeResult{Status: StatusUnknown, Message: name + " state unknown"}
	}
}

// StatusString returns the string representation for reports.
func (p ProbeResult) StatusString() string {
	if p.Status == "" {
		return string(StatusUnknown)
	}
	return string(p.Status)
}
