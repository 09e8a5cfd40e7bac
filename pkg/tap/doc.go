// Package tap adapts the operating system's global mouse input stream to the
// debounce engine. The hot path answers synchronously on the thread that
// delivers input; anything slower than a decision is deferred to consumers
// of Decisions.
package tap
