package parser

import (
	"context"
	"fmt"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/infer"
	"github.com/calderk/glean/internal/rules"
	"github.com/calderk/glean/internal/state"
	"github.com/calderk/glean/internal/unordered"
)

// hookWindow is one open inference window: the group of mutually
// exclusive hypotheses for an (entity, attribute) pair at a lifecycle
// hook, plus the trait definitions backing each candidate.
type hookWindow struct {
	group  *infer.Group
	defs   map[string]rules.TraitDef
	entity string
}

// buildWindow enumerates the hypotheses for one entity attribute at the
// given hook. There is a single builder for every hook kind; the hook
// only selects which trait definitions participate. Returns nil when no
// remaining candidate has the hook.
func (p *parser) buildWindow(hook rules.HookKind, entityName, attr string) *hookWindow {
	e := p.st.Entity(entityName)
	if e == nil || e.Fainted() {
		return nil
	}
	set, ok := e.Possibilities(attr)
	if !ok {
		return nil
	}

	hooked := make(map[string]rules.TraitDef)
	for _, def := range p.rs.ForHook(hook, attr) {
		hooked[def.Name] = def
	}

	var hyps []*infer.Hypothesis
	defs := make(map[string]rules.TraitDef)
	// Candidate order follows the possibility set's enumeration order,
	// keeping trial order reproducible.
	for _, label := range set.Labels() {
		def, ok := hooked[label]
		if !ok {
			continue
		}
		h := infer.NewHypothesis(
			fmt.Sprintf("%s:%s.%s=%s", hook, entityName, attr, label),
			&infer.HasTrait{Entity: entityName, Attr: attr, Label: label},
			precondReason(def, entityName),
		)
		hyps = append(hyps, h)
		defs[label] = def
	}
	if len(hyps) == 0 {
		return nil
	}

	return &hookWindow{
		group:  infer.NewGroup(fmt.Sprintf("%s:%s.%s", hook, entityName, attr), hyps...),
		defs:   defs,
		entity: entityName,
	}
}

// precondReason turns a declarative activation guard into a Reason. The
// hp-band and last-unit guards go through numeric threshold inference
// over the entity's hidden maximum magnitude, so near-band displays stay
// ambiguous instead of resolving.
func precondReason(def rules.TraitDef, entityName string) infer.Reason {
	switch def.Pre.Kind {
	case rules.PrecondHPBelow:
		band := def.Pre.Percent
		return &infer.Cond{
			Label: fmt.Sprintf("%s hp at or below %d%%", entityName, band),
			Pred: func(st *state.Store) infer.Verdict {
				e := st.Entity(entityName)
				if e == nil {
					return infer.Fails
				}
				return infer.AtOrBelowFraction(e.HPPercent, e.MaxLo, e.MaxHi, band, 100)
			},
		}
	case rules.PrecondLastUnit:
		return &infer.Cond{
			Label: entityName + " at exactly one unit",
			Pred: func(st *state.Store) infer.Verdict {
				e := st.Entity(entityName)
				if e == nil {
					return infer.Fails
				}
				return infer.ExactlyOne(e.HPPercent, e.MaxLo, e.MaxHi)
			},
		}
	case rules.PrecondWeather:
		want := def.Pre.Weather
		return &infer.Cond{
			Label: "weather is " + want,
			Pred: func(st *state.Store) infer.Verdict {
				if st.Weather() == want {
					return infer.Holds
				}
				return infer.Fails
			},
		}
	default:
		return &infer.Cond{
			Label: "always",
			Pred:  func(*state.Store) infer.Verdict { return infer.Holds },
		}
	}
}

// pending wraps a window as a pending parser for the unordered
// combinator: Try claims a reveal event for one of the window's
// candidates, OnDeadline settles the group by silence.
func (p *parser) pending(w *hookWindow) *unordered.Parser {
	return &unordered.Parser{
		Name: w.group.Name,
		Try: func(ctx context.Context, cur *cursor.Cursor) (bool, error) {
			return p.tryClaim(ctx, cur, w)
		},
		OnDeadline: func() error {
			return w.group.Deadline(p.st)
		},
	}
}

// tryClaim offers the peeked event to the window's candidates in
// enumeration order. The first candidate whose reveal shape matches and
// whose precondition is not provably failed accepts; acceptance settles
// the whole group and hands the event back to the dispatcher for its
// state effect.
func (p *parser) tryClaim(ctx context.Context, cur *cursor.Cursor, w *hookWindow) (bool, error) {
	ev, err := cur.Peek(ctx)
	if err != nil {
		return false, err
	}

	for _, h := range w.group.Hyps {
		if _, done := h.Resolved(); done {
			continue
		}
		def := w.defs[h.Trait.Label]

		if def.Copies {
			if ev.Tag != event.TagCopyAbility || ev.Arg(0) != w.entity {
				continue
			}
			source := ev.Keyword("of")
			copied := ev.Arg(1)
			if err := infer.AcceptCopy(p.st, w.group, h, source, copied); err != nil {
				return false, err
			}
			return true, p.disp.Dispatch(ctx, cur, p.st)
		}

		if string(ev.Tag) != def.Reveal {
			continue
		}
		if subjectOf(ev) != w.entity {
			continue
		}
		// A reveal may name its source kind; a mismatch means some other
		// mechanism produced the event.
		if from := ev.Keyword("from"); from != "" && from != def.Attr {
			continue
		}
		if h.PreVerdict(p.st) == infer.Fails {
			continue
		}
		if err := w.group.Accept(p.st, h); err != nil {
			return false, err
		}
		return true, p.disp.Dispatch(ctx, cur, p.st)
	}
	return false, nil
}

// claimableTags returns the set of tags any window candidate could
// claim. An event outside this set closes entry and damage windows:
// activation reveals for those hooks follow their trigger immediately.
func claimableTags(windows []*hookWindow) map[event.Tag]bool {
	out := make(map[event.Tag]bool)
	for _, w := range windows {
		for _, def := range w.defs {
			if def.Copies {
				out[event.TagCopyAbility] = true
				continue
			}
			out[event.Tag(def.Reveal)] = true
		}
	}
	return out
}
