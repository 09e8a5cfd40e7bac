// Package trace replays recorded button transitions through a debounce engine.
//
// A trace is JSON Lines, one transition per line:
//
//	{"button":"left","kind":"down","time":0}
//
// Blank lines and lines starting with '#' are ignored.
package trace

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/offlinefirst/debounce/pkg/debounce"
)

// EventSource emits transitions to be decided.
type EventSource interface {
	Stream(ctx context.Context, emit func(debounce.Event) error) error
}

// EventSourceFunc adapts a function literal to the EventSource interface.
type EventSourceFunc func(ctx context.Context, emit func(debounce.Event) error) error

// Stream calls the underlying function.
func (f EventSourceFunc) Stream(ctx context.Context, emit func(debounce.Event) error) error {
	return f(ctx, emit)
}

// Outcome is one replayed transition and its verdict.
type Outcome struct {
	Event   debounce.Event
	Verdict debounce.Verdict
}

// Summary counts the verdicts of a replay.
type Summary struct {
	Events     int
	Passed     int
	Suppressed int
}

// Decode parses one trace record.
func Decode(line []byte) (debounce.Event, error) {
	if !gjson.ValidBytes(line) {
		return debounce.Event{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	fields := gjson.GetManyBytes(line, "button", "kind", "time")

	channel, err := parseButton(fields[0].String())
	if err != nil {
		return debounce.Event{}, err
	}
	kind, err := parseKind(fields[1].String())
	if err != nil {
		return debounce.Event{}, err
	}

	ts := fields[2]
	if ts.Type != gjson.Number {
		return debounce.Event{}, fmt.Errorf("%w: time must be a number", ErrMalformed)
	}
	if ts.Num < 0 || ts.Num > math.MaxUint32 || ts.Num != math.Trunc(ts.Num) {
		return debounce.Event{}, fmt.Errorf("%w: time %s out of range", ErrMalformed, ts.Raw)
	}
	return debounce.Event{Channel: channel, Kind: kind, Timestamp: uint32(ts.Uint())}, nil
}

func parseButton(value string) (debounce.Channel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left":
		return debounce.Left, nil
	case "right":
		return debounce.Right, nil
	default:
		return 0, fmt.Errorf("%w: unknown button %q", ErrMalformed, value)
	}
}

func parseKind(value string) (debounce.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "down":
		return debounce.Down, nil
	case "up":
		return debounce.Up, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrMalformed, value)
	}
}

// Encode renders an outcome as a JSON object with the record fields and the
// verdict.
func Encode(o Outcome) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	for _, field := range []struct {
		path  string
		value any
	}{
		{"button", o.Event.Channel.String()},
		{"kind", o.Event.Kind.String()},
		{"time", o.Event.Timestamp},
		{"verdict", o.Verdict.String()},
	} {
		if out, err = sjson.SetBytes(out, field.path, field.value); err != nil {
			return nil, fmt.Errorf("encode %s: %w", field.path, err)
		}
	}
	return out, nil
}

// NewReader returns a source reading trace records from r.
func NewReader(r io.Reader) EventSource {
	return EventSourceFunc(func(ctx context.Context, emit func(debounce.Event) error) error {
		scanner := bufio.NewScanner(r)
		line := 0
		for scanner.Scan() {
			line++
			if err := ctx.Err(); err != nil {
				return err
			}
			raw := bytes.TrimSpace(scanner.Bytes())
			if len(raw) == 0 || raw[0] == '#' {
				continue
			}
			ev, err := Decode(raw)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if err := emit(ev); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read trace: %w", err)
		}
		return nil
	})
}

// Replay decides every transition from source with engine. emit, when not
// nil, receives each outcome in order.
func Replay(ctx context.Context, engine *debounce.Engine, source EventSource, emit func(Outcome) error) (Summary, error) {
	if engine == nil {
		return Summary{}, errors.New("engine must be provided")
	}
	if source == nil {
		return Summary{}, errors.New("event source must be provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var summary Summary
	err := source.Stream(ctx, func(ev debounce.Event) error {
		verdict := engine.Decide(ev)
		summary.Events++
		if verdict == debounce.Suppress {
			summary.Suppressed++
		} else {
			summary.Passed++
		}
		if emit != nil {
			return emit(Outcome{Event: ev, Verdict: verdict})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return summary, err
		}
		return summary, fmt.Errorf("replay trace: %w", err)
	}
	return summary, nil
}
