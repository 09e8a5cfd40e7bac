package dialog

import (
	"bytes"
	"testing"
)

func TestWriterFormatsNotification(t *testing.T) {
	var buf bytes.Buffer
	Writer{Out: &buf}.Notify(SeverityError, "Hook failed", "Debounce failed to register hook.")
	if got, want := buf.String(), "error: Hook failed: Debounce failed to register hook.\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNotifierFunc(t *testing.T) {
	var got Severity = -1
	NotifierFunc(func(s Severity, _, _ string) { got = s }).Notify(SeverityWarning, "t", "m")
	if got != SeverityWarning {
		t.Fatalf("expected warning severity, got %v", got)
	}
}
