package parser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/dispatch"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/rules"
	"github.com/calderk/glean/internal/state"
	"github.com/calderk/glean/internal/unordered"
)

// parser is the single-consumer driver. Everything it touches is owned
// by the one parse goroutine.
type parser struct {
	st   *state.Store
	rs   *rules.Set
	disp *dispatch.Dispatcher
	cur  *cursor.Cursor
	log  *slog.Logger
	opts options

	res Result
}

func (p *parser) run(ctx context.Context) error {
	p.log.Info("parse starting")

	for {
		ev, err := p.cur.Peek(ctx)
		if errors.Is(err, cursor.ErrExhausted) {
			// The log simply stopped between phases; nothing further
			// happened. Not a failure.
			p.log.Info("parse finished: log exhausted", "turns", p.st.Turn())
			p.res.Turns = p.st.Turn()
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case ev.Terminal():
			return p.finish(ctx, ev)

		case ev.Tag == event.TagTurn:
			if err := p.handleTurn(ctx); err != nil {
				return err
			}

		case ev.Tag == event.TagSwitch || ev.Tag == event.TagDrag:
			if err := p.handleEntry(ctx); err != nil {
				return err
			}

		case ev.Tag == event.TagUpkeep:
			if err := p.handleUpkeep(ctx); err != nil {
				return err
			}

		case ev.Tag == event.TagDamage:
			if err := p.handleDamage(ctx, ev); err != nil {
				return err
			}

		default:
			if err := p.disp.Dispatch(ctx, p.cur, p.st); err != nil {
				return err
			}
		}
	}
}

func (p *parser) finish(ctx context.Context, ev event.Event) error {
	p.res = Result{
		Winner: ev.Arg(0), // empty for a tie
		Turns:  p.st.Turn(),
		Ended:  true,
	}
	if err := p.disp.Dispatch(ctx, p.cur, p.st); err != nil {
		return err
	}
	p.log.Info("parse finished", "winner", p.res.Winner, "turns", p.res.Turns)
	return nil
}

// handleTurn consumes the turn marker and, when a decision callback is
// injected, asks it for the next action and submits the answer. Both
// callbacks are external collaborators; their failures abort the parse.
func (p *parser) handleTurn(ctx context.Context) error {
	if err := p.disp.Dispatch(ctx, p.cur, p.st); err != nil {
		return err
	}
	if p.opts.decide == nil {
		return nil
	}
	choice, err := p.opts.decide(ctx, p.st)
	if err != nil {
		return err
	}
	if p.opts.submit != nil {
		return p.opts.submit(ctx, choice)
	}
	return nil
}

// handleEntry consumes a run of consecutive switch/drag events, then
// opens on-entry inference windows for every entity that came in. The
// windows race in one unordered pass: both sides' entry effects may
// observe in either relative order.
func (p *parser) handleEntry(ctx context.Context) error {
	var entered []string
	for {
		ev, ok, err := p.cur.TryVerify(ctx, event.TagSwitch, event.TagDrag)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		entered = append(entered, ev.Arg(0))
		if err := p.disp.Dispatch(ctx, p.cur, p.st); err != nil {
			return err
		}
	}
	return p.runWindows(ctx, rules.HookEntry, entered)
}

// handleUpkeep consumes the upkeep marker and opens residual windows
// for every standing entity. Residual effects may land anywhere before
// the next turn marker, so the window closes on the phase boundary.
func (p *parser) handleUpkeep(ctx context.Context) error {
	if err := p.disp.Dispatch(ctx, p.cur, p.st); err != nil {
		return err
	}
	var standing []string
	for _, e := range p.st.Entities() {
		if !e.Fainted() {
			standing = append(standing, e.Name)
		}
	}
	return p.runWindows(ctx, rules.HookResidual, standing)
}

// handleDamage applies the damage, then opens on-damage windows for the
// hurt entity: a pinch trait either activates in the immediately
// following reveals or provably stayed silent.
func (p *parser) handleDamage(ctx context.Context, ev event.Event) error {
	target := ev.Arg(0)
	if err := p.disp.Dispatch(ctx, p.cur, p.st); err != nil {
		return err
	}
	return p.runWindows(ctx, rules.HookDamage, []string{target})
}

// runWindows builds the hook's inference windows for the given entities
// and races them under the unordered combinator. Entry and damage
// windows close at the first event none of their candidates could
// produce; residual windows stay open until the next turn marker. The
// case split is deliberate: residual effects interleave with unrelated
// end-of-turn traffic, activation reveals do not.
func (p *parser) runWindows(ctx context.Context, hook rules.HookKind, entities []string) error {
	var windows []*hookWindow
	var pending []*unordered.Parser
	for _, name := range entities {
		for _, attr := range []string{state.AttrAbility, state.AttrItem} {
			if w := p.buildWindow(hook, name, attr); w != nil {
				windows = append(windows, w)
				pending = append(pending, p.pending(w))
			}
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var deadline func(event.Event) bool
	if hook == rules.HookResidual {
		deadline = func(ev event.Event) bool { return ev.Tag == event.TagTurn }
	} else {
		claimable := claimableTags(windows)
		deadline = func(ev event.Event) bool { return !claimable[ev.Tag] }
	}

	err := unordered.All(ctx, p.cur, unordered.Config{
		Name:     string(hook),
		Deadline: deadline,
		Fallback: func(ctx context.Context, cur *cursor.Cursor) error {
			return p.disp.Dispatch(ctx, cur, p.st)
		},
	}, pending...)

	if errors.Is(err, unordered.ErrHalted) {
		// Terminal event mid-window: the groups became moot, the main
		// loop will observe the terminal event next.
		return nil
	}
	return err
}
