package tap

import (
	"runtime"
	"testing"
)

func TestDetectEnvironmentSetsFields(t *testing.T) {
	env := DetectEnvironment()
	if env.Provider == "" {
		t.Fatalf("expected provider")
	}
	if env.Message == "" {
		t.Fatalf("expected message")
	}
	if want := runtime.GOOS == "windows"; env.Available != want {
		t.Fatalf("expected available=%t on %s", want, runtime.GOOS)
	}
}
