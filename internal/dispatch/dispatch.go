// Package dispatch maps event tags to handlers.
//
// Each known tag is bound to one of three kinds: a custom handler that
// mutates the state projection, a no-op consume for tags that carry no
// state effect, or a fail-fast entry for deliberate gaps. A fallback loop
// silently consumes events not claimed by any active parser so that
// unrelated events never stall a pending inference group.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/state"
)

// Func handles one event. The event has been peeked but not consumed;
// the dispatcher consumes it after the handler returns nil. Handlers
// mutate the store only, never the cursor.
type Func func(ctx context.Context, st *state.Store, ev event.Event) error

type kind int

const (
	kindCustom kind = iota + 1
	kindConsume
	kindUnsupported
)

type entry struct {
	kind kind
	fn   Func
}

// Dispatcher is a per-tag handler table. Registration happens once at
// construction; lookup order plays no role since tags are unique.
type Dispatcher struct {
	table map[event.Tag]entry
	log   *slog.Logger
}

// New creates an empty dispatcher.
func New(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{table: make(map[event.Tag]entry), log: log}
}

// Handle binds tag to a custom handler.
func (d *Dispatcher) Handle(tag event.Tag, fn Func) *Dispatcher {
	d.table[tag] = entry{kind: kindCustom, fn: fn}
	return d
}

// Consume binds tags to the default no-op consume handler: the tag is
// known but carries no state effect.
func (d *Dispatcher) Consume(tags ...event.Tag) *Dispatcher {
	for _, t := range tags {
		d.table[t] = entry{kind: kindConsume}
	}
	return d
}

// Unsupported binds tags to a fail-fast handler. Reaching one is a
// deliberate gap surfacing as a protocol violation.
func (d *Dispatcher) Unsupported(tags ...event.Tag) *Dispatcher {
	for _, t := range tags {
		d.table[t] = entry{kind: kindUnsupported}
	}
	return d
}

// Dispatch peeks the current event, runs its handler, and consumes it.
// Specialized parsers call this to hand consumption back to the generic
// per-tag handler once they have verified the event matches their
// expected effect.
//
// Unregistered tags are treated as no-op consumes with a debug log line,
// so an enriched upstream protocol does not break older parsers.
func (d *Dispatcher) Dispatch(ctx context.Context, cur *cursor.Cursor, st *state.Store) error {
	ev, err := cur.Peek(ctx)
	if err != nil {
		return err
	}

	ent, ok := d.table[ev.Tag]
	if !ok {
		d.log.Debug("consuming unregistered event", "tag", ev.Tag)
		_, err := cur.Consume()
		return err
	}

	switch ent.kind {
	case kindUnsupported:
		return &cursor.ViolationError{
			Op:     "dispatch",
			Detail: "unsupported event tag " + string(ev.Tag),
		}
	case kindConsume:
		_, err := cur.Consume()
		return err
	default:
		if err := ent.fn(ctx, st, ev); err != nil {
			return err
		}
		_, err := cur.Consume()
		return err
	}
}

// ConsumeUntil dispatches events until stop reports true for the peeked
// event (which is left unconsumed) or the sequence ends. This is the
// fallback loop that keeps irrelevant events from stalling inference
// groups scoped to a later phase.
func (d *Dispatcher) ConsumeUntil(ctx context.Context, cur *cursor.Cursor, st *state.Store, stop func(event.Event) bool) error {
	for {
		ev, ok, err := cur.TryPeek(ctx)
		if err != nil {
			return err
		}
		if !ok || stop(ev) {
			return nil
		}
		if err := d.Dispatch(ctx, cur, st); err != nil {
			return err
		}
	}
}
