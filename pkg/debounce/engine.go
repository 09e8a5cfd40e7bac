package debounce

import "sync/atomic"

// DefaultThreshold is the suppression window in milliseconds used until the
// caller restores a saved value.
const DefaultThreshold uint32 = 10

// Options configures an Engine.
type Options struct {
	Threshold uint32
	Policy    Policy
}

// State holds the last accepted transition timestamps of one channel.
type State struct {
	last [numKinds]uint32
	seen [numKinds]bool
}

// LastAccepted returns the last accepted timestamp of kind k, if any.
func (s State) LastAccepted(k Kind) (uint32, bool) {
	if k >= numKinds {
		return 0, false
	}
	return s.last[k], s.seen[k]
}

// Stats counts decisions per channel.
type Stats struct {
	Passed     [NumChannels]uint64
	Suppressed [NumChannels]uint64
}

// Engine decides whether button transitions pass or are suppressed.
//
// Decide mutates per-channel state and must only be called from the single
// loop that receives input. Threshold and SetThreshold are safe from any
// goroutine.
type Engine struct {
	threshold atomic.Uint32
	policy    Policy
	channels  [NumChannels]State

	passed     [NumChannels]atomic.Uint64
	suppressed [NumChannels]atomic.Uint64
}

// New constructs an Engine with empty debounce history.
func New(opts Options) *Engine {
	policy := opts.Policy
	if policy.isZero() {
		policy = DefaultPolicy
	}
	e := &Engine{policy: policy}
	e.threshold.Store(opts.Threshold)
	return e
}

// Delta returns the elapsed milliseconds from last to now on a clock that
// wraps at 2^32. Unsigned subtraction yields the forward distance even when
// now has wrapped past zero.
func Delta(now, last uint32) uint32 {
	return now - last
}

// Decide returns the verdict for ev and records it when it passes.
// A channel or kind outside the known range always passes.
func (e *Engine) Decide(ev Event) Verdict {
	if ev.Channel >= NumChannels || ev.Kind >= numKinds {
		return Pass
	}

	threshold := e.threshold.Load()
	state := &e.channels[ev.Channel]
	rule := e.policy.rules[ev.Kind]

	for against := Kind(0); against < numKinds; against++ {
		if !rule.has(against) || !state.seen[against] {
			continue
		}
		if Delta(ev.Timestamp, state.last[against]) < threshold {
			e.suppressed[ev.Channel].Add(1)
			return Suppress
		}
	}

	state.last[ev.Kind] = ev.Timestamp
	state.seen[ev.Kind] = true
	e.passed[ev.Channel].Add(1)
	return Pass
}

// SetThreshold replaces the suppression window. Recorded timestamps are kept.
func (e *Engine) SetThreshold(ms uint32) {
	e.threshold.Store(ms)
}

// Threshold returns the current suppression window in milliseconds.
func (e *Engine) Threshold() uint32 {
	return e.threshold.Load()
}

// Policy returns the rule table the engine decides with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// State returns a copy of the debounce history for channel c.
// Like Decide, it must be called from the input loop.
func (e *Engine) State(c Channel) State {
	if c >= NumChannels {
		return State{}
	}
	return e.channels[c]
}

// Stats returns decision counters. Safe from any goroutine.
func (e *Engine) Stats() Stats {
	var s Stats
	for c := range e.passed {
		s.Passed[c] = e.passed[c].Load()
		s.Suppressed[c] = e.suppressed[c].Load()
	}
	return s
}
