package cursor

import (
	"context"
	"errors"
	"slices"

	"github.com/calderk/glean/internal/event"
)

// Feeder supplies the next event in arrival order. Next blocks until an
// event is available; it returns ErrExhausted (possibly wrapped) once the
// sequence has ended and no event remains.
type Feeder interface {
	Next(ctx context.Context) (event.Event, error)
}

// FeederFunc adapts a function to the Feeder interface.
type FeederFunc func(ctx context.Context) (event.Event, error)

// Next implements Feeder.
func (f FeederFunc) Next(ctx context.Context) (event.Event, error) {
	return f(ctx)
}

// Cursor is a single-slot lookahead over a Feeder.
//
// INVARIANTS:
//   - At most one event is buffered at a time.
//   - Consume is only valid immediately after a successful Peek/Verify of
//     the same event (tracked by the peeked guard flag).
//   - An event, once consumed, is never revisited.
//
// Cursor is not safe for concurrent use; the whole parse pipeline is
// single-threaded by design.
type Cursor struct {
	feeder Feeder

	buf      event.Event
	buffered bool
	peeked   bool // a successful Peek/Verify of buf has happened

	consumed int64 // events consumed so far, for diagnostics
}

// New creates a cursor over the given feeder.
func New(feeder Feeder) *Cursor {
	return &Cursor{feeder: feeder}
}

// Peek returns the current event without advancing. If no event is
// buffered it pulls the next one from the feeder, blocking until one is
// available or the sequence ends (ErrExhausted). Repeated peeks before a
// consume return the same event.
func (c *Cursor) Peek(ctx context.Context) (event.Event, error) {
	if !c.buffered {
		ev, err := c.feeder.Next(ctx)
		if err != nil {
			return event.Event{}, err
		}
		c.buf = ev
		c.buffered = true
	}
	c.peeked = true
	return c.buf, nil
}

// Verify peeks and checks that the event's tag is among want. On a wrong
// tag it returns a MismatchError and consumes nothing, leaving the event
// in place for the next candidate caller.
func (c *Cursor) Verify(ctx context.Context, want ...event.Tag) (event.Event, error) {
	ev, err := c.Peek(ctx)
	if err != nil {
		return event.Event{}, err
	}
	if !slices.Contains(want, ev.Tag) {
		return event.Event{}, &MismatchError{Want: want, Got: ev}
	}
	return ev, nil
}

// TryPeek is Peek for speculative callers: sequence end is reported as
// ok=false instead of an error. Other errors still surface.
func (c *Cursor) TryPeek(ctx context.Context) (event.Event, bool, error) {
	ev, err := c.Peek(ctx)
	if errors.Is(err, ErrExhausted) {
		return event.Event{}, false, nil
	}
	if err != nil {
		return event.Event{}, false, err
	}
	return ev, true, nil
}

// TryVerify is Verify for speculative callers: a tag mismatch or sequence
// end is reported as ok=false instead of an error.
func (c *Cursor) TryVerify(ctx context.Context, want ...event.Tag) (event.Event, bool, error) {
	ev, err := c.Verify(ctx, want...)
	if errors.Is(err, ErrExhausted) || IsMismatch(err) {
		return event.Event{}, false, nil
	}
	if err != nil {
		return event.Event{}, false, err
	}
	return ev, true, nil
}

// Consume advances past the buffered event. Calling it without a prior
// successful Peek/Verify of that event is a ViolationError.
func (c *Cursor) Consume() (event.Event, error) {
	if !c.buffered || !c.peeked {
		return event.Event{}, &ViolationError{
			Op:     "consume",
			Detail: "consume without a prior peek/verify of the current event",
		}
	}
	ev := c.buf
	c.buf = event.Event{}
	c.buffered = false
	c.peeked = false
	c.consumed++
	return ev, nil
}

// Consumed returns how many events have been consumed so far.
func (c *Cursor) Consumed() int64 {
	return c.consumed
}
