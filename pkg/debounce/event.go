package debounce

// Channel identifies an independently debounced mouse button.
type Channel uint8

const (
	// Left is the primary mouse button.
	Left Channel = iota
	// Right is the secondary mouse button.
	Right

	// NumChannels bounds the per-channel state kept by an Engine.
	NumChannels
)

// String returns the lower-case channel name.
func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Kind is the direction of a button transition.
type Kind uint8

const (
	// Down is a press.
	Down Kind = iota
	// Up is a release.
	Up

	numKinds
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// Event is a single timestamped transition as reported by the input source.
// Timestamp is in milliseconds on the input subsystem's own clock, which wraps
// at 2^32.
type Event struct {
	Channel   Channel
	Kind      Kind
	Timestamp uint32
}

// Verdict is the outcome of a decision.
type Verdict uint8

const (
	// Pass lets the transition continue to the rest of the system.
	Pass Verdict = iota
	// Suppress swallows the transition.
	Suppress
)

// String returns the verdict name.
func (v Verdict) String() string {
	if v == Suppress {
		return "suppress"
	}
	return "pass"
}
