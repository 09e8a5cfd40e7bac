package tap

import (
	"sync/atomic"

	"github.com/offlinefirst/debounce/pkg/debounce"
)

// Code is a raw platform transition identifier. Values follow the Windows
// low-level mouse hook message numbers.
type Code uintptr

const (
	CodeMouseMove   Code = 0x0200
	CodeLeftDown    Code = 0x0201
	CodeLeftUp      Code = 0x0202
	CodeRightDown   Code = 0x0204
	CodeRightUp     Code = 0x0205
	CodeMiddleDown  Code = 0x0207
	CodeMiddleUp    Code = 0x0208
	CodeMouseWheel  Code = 0x020A
	CodeXButtonDown Code = 0x020B
	CodeXButtonUp   Code = 0x020C
	CodeMouseHWheel Code = 0x020E
)

// DefaultNotifyBuffer is the decision queue depth used when Options leaves it unset.
const DefaultNotifyBuffer = 256

// Translate maps a raw code to a tracked transition. ok is false for codes
// that are not debounced (moves, wheels, middle and extra buttons).
func Translate(code Code) (channel debounce.Channel, kind debounce.Kind, ok bool) {
	switch code {
	case CodeLeftDown:
		return debounce.Left, debounce.Down, true
	case CodeLeftUp:
		return debounce.Left, debounce.Up, true
	case CodeRightDown:
		return debounce.Right, debounce.Down, true
	case CodeRightUp:
		return debounce.Right, debounce.Up, true
	default:
		return 0, 0, false
	}
}

// Decision pairs a translated event with its verdict.
type Decision struct {
	Event   debounce.Event
	Verdict debounce.Verdict
}

// Options controls tap behaviour.
type Options struct {
	// NotifyBuffer is the capacity of the Decisions queue. Negative disables it.
	NotifyBuffer int
}

// Tap routes raw transitions through an Engine.
type Tap struct {
	engine  *debounce.Engine
	notify  chan Decision
	dropped atomic.Uint64
}

// New constructs a tap bound to engine.
func New(engine *debounce.Engine, opts Options) *Tap {
	size := opts.NotifyBuffer
	if size == 0 {
		size = DefaultNotifyBuffer
	}
	t := &Tap{engine: engine}
	if size > 0 {
		t.notify = make(chan Decision, size)
	}
	return t
}

// Handle decides a raw transition. It never blocks or allocates: when the
// Decisions queue is full the notification is dropped and counted.
func (t *Tap) Handle(code Code, timestamp uint32) debounce.Verdict {
	channel, kind, ok := Translate(code)
	if !ok {
		return debounce.Pass
	}

	ev := debounce.Event{Channel: channel, Kind: kind, Timestamp: timestamp}
	verdict := t.engine.Decide(ev)

	if t.notify != nil {
		select {
		case t.notify <- Decision{Event: ev, Verdict: verdict}:
		default:
			t.dropped.Add(1)
		}
	}
	return verdict
}

// Decisions returns the queue of decided transitions. It is nil when
// notifications are disabled.
func (t *Tap) Decisions() <-chan Decision {
	return t.notify
}

// Dropped reports how many notifications were discarded on a full queue.
func (t *Tap) Dropped() uint64 {
	return t.dropped.Load()
}

// Engine returns the engine the tap decides with.
func (t *Tap) Engine() *debounce.Engine {
	return t.engine
}
