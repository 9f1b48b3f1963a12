package unordered

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
)

// ErrHalted signals that a terminal event was observed while the group
// was still pending. The group unwound without firing any rejection
// hooks; the caller decides how to finish up.
var ErrHalted = errors.New("terminal event observed mid-group")

// ExhaustedError reports that the event sequence ended before a group
// settled. It wraps cursor.ErrExhausted so errors.Is still matches.
type ExhaustedError struct {
	Group   string
	Pending []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("group %q: sequence ended with parsers still pending [%s]",
		e.Group, strings.Join(e.Pending, " "))
}

func (e *ExhaustedError) Unwrap() error { return cursor.ErrExhausted }

// Parser is one pending sub-computation competing for upcoming events.
//
// Try is offered the cursor with the next event peekable. It must either
// accept (consume at least the current event and return true) or leave
// the cursor exactly as it found it and return false. A MismatchError
// from a speculative verify counts as "no match" and never escapes the
// group.
//
// OnDeadline fires exactly once if the parser is still pending when the
// group's deadline is reached. It does not fire on terminal unwind or
// when a OneOf sibling accepted.
type Parser struct {
	Name       string
	Try        func(ctx context.Context, cur *cursor.Cursor) (bool, error)
	OnDeadline func() error
}

// Config bounds a group's lifetime.
type Config struct {
	// Name labels the group in diagnostics.
	Name string

	// Deadline reports that the peeked event lies beyond the group's
	// window; no pending parser can match anymore. The event itself is
	// not consumed.
	Deadline func(event.Event) bool

	// Fallback consumes an event no parser claimed and that is neither a
	// deadline nor terminal. Nil means plain consume.
	Fallback func(ctx context.Context, cur *cursor.Cursor) error
}

// All runs parsers until every one has settled: accepted, or rejected by
// the deadline. Unclaimed events in between are fed to the fallback.
func All(ctx context.Context, cur *cursor.Cursor, cfg Config, parsers ...*Parser) error {
	return run(ctx, cur, cfg, parsers, false)
}

// OneOf runs mutually exclusive parsers: the first acceptance settles
// the whole group and drops every sibling without firing its hook.
func OneOf(ctx context.Context, cur *cursor.Cursor, cfg Config, parsers ...*Parser) error {
	return run(ctx, cur, cfg, parsers, true)
}

func run(ctx context.Context, cur *cursor.Cursor, cfg Config, parsers []*Parser, exclusive bool) error {
	pending := make([]*Parser, len(parsers))
	copy(pending, parsers)

	for len(pending) > 0 {
		ev, err := cur.Peek(ctx)
		if errors.Is(err, cursor.ErrExhausted) {
			return &ExhaustedError{Group: cfg.Name, Pending: names(pending)}
		}
		if err != nil {
			return err
		}

		if ev.Terminal() {
			// Cancellation, not falsification: leave hooks unfired.
			return ErrHalted
		}

		if cfg.Deadline != nil && cfg.Deadline(ev) {
			for _, p := range pending {
				if p.OnDeadline == nil {
					continue
				}
				if err := p.OnDeadline(); err != nil {
					return fmt.Errorf("group %q: parser %q deadline: %w", cfg.Name, p.Name, err)
				}
			}
			return nil
		}

		accepted := -1
		for i, p := range pending {
			ok, err := p.Try(ctx, cur)
			if cursor.IsMismatch(err) {
				continue // expected negative signal: try the next candidate
			}
			if err != nil {
				return err
			}
			if ok {
				accepted = i
				break
			}
		}

		switch {
		case accepted >= 0 && exclusive:
			// The winner consumed its event(s); siblings can no longer be
			// true and are dropped without hooks - exclusivity is resolved
			// by the winner's own accept logic.
			return nil
		case accepted >= 0:
			pending = append(pending[:accepted], pending[accepted+1:]...)
		default:
			// Nobody claimed the event and it is inside the window: hand
			// it to the fallback so unrelated events cannot stall us.
			if cfg.Fallback != nil {
				if err := cfg.Fallback(ctx, cur); err != nil {
					return err
				}
			} else if _, err := cur.Consume(); err != nil {
				return err
			}
		}
	}
	return nil
}

func names(parsers []*Parser) []string {
	out := make([]string, len(parsers))
	for i, p := range parsers {
		out[i] = p.Name
	}
	return out
}
