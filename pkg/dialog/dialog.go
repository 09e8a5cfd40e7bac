// Package dialog reports startup problems to the user.
package dialog

import (
	"fmt"
	"io"
	"os"
)

// Severity selects the dialog icon.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(severity Severity, title, message string)
}

// NotifierFunc adapts a function literal to the Notifier interface.
type NotifierFunc func(severity Severity, title, message string)

// Notify calls the underlying function.
func (f NotifierFunc) Notify(severity Severity, title, message string) {
	f(severity, title, message)
}

// Writer prints notifications as lines on an io.Writer.
type Writer struct {
	Out io.Writer
}

// Notify writes "<severity>: <title>: <message>".
func (w Writer) Notify(severity Severity, title, message string) {
	out := w.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s: %s: %s\n", severity, title, message)
}

// Default returns the platform notifier.
func Default() Notifier {
	return platformNotifier()
}
