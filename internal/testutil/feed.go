package testutil

import (
	"context"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
)

// ScriptedFeeder replays a fixed slice of events in order.
//
// Unlike the production feed queue, it never blocks: once the script is
// exhausted, Next returns cursor.ErrExhausted immediately. This makes
// cursor and combinator tests deterministic and free of goroutines.
type ScriptedFeeder struct {
	events []event.Event
	pos    int
}

// NewScriptedFeeder creates a feeder over the given events.
func NewScriptedFeeder(events ...event.Event) *ScriptedFeeder {
	return &ScriptedFeeder{events: events}
}

// Next implements cursor.Feeder.
func (f *ScriptedFeeder) Next(ctx context.Context) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if f.pos >= len(f.events) {
		return event.Event{}, cursor.ErrExhausted
	}
	ev := f.events[f.pos]
	f.pos++
	return ev, nil
}

// Remaining returns how many scripted events have not yet been fed.
func (f *ScriptedFeeder) Remaining() int {
	return len(f.events) - f.pos
}

// Ev builds an event with positional args.
func Ev(tag event.Tag, args ...string) event.Event {
	return event.New(tag, args...)
}

// EvKV builds an event with positional args and keyword fields.
func EvKV(tag event.Tag, args []string, kv map[string]string) event.Event {
	return event.Event{Tag: tag, Args: args, KV: kv}
}
