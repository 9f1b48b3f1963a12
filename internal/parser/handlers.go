package parser

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/calderk/glean/internal/dispatch"
	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/infer"
	"github.com/calderk/glean/internal/state"
)

// newDispatcher builds the per-tag handler table for the generic state
// effects. Inference-bearing events (reveals) are usually claimed by a
// pending parser first, which then hands consumption back here so the
// state effect is applied in exactly one place.
func newDispatcher(log *slog.Logger) *dispatch.Dispatcher {
	d := dispatch.New(log)

	d.Handle(event.TagTurn, func(ctx context.Context, st *state.Store, ev event.Event) error {
		n, err := strconv.Atoi(ev.Arg(0))
		if err != nil {
			return err
		}
		st.SetTurn(n)
		return nil
	})

	entryHandler := func(ctx context.Context, st *state.Store, ev event.Event) error {
		e := st.Entity(ev.Arg(0))
		if e == nil {
			return nil
		}
		e.Species = ev.Arg(1)
		e.Status = ""
		if hp := ev.Keyword("hp"); hp != "" {
			pct, err := strconv.Atoi(hp)
			if err != nil {
				return err
			}
			e.HPPercent = pct
		} else {
			e.HPPercent = 100
		}
		return nil
	}
	d.Handle(event.TagSwitch, entryHandler)
	d.Handle(event.TagDrag, entryHandler)

	hpHandler := func(ctx context.Context, st *state.Store, ev event.Event) error {
		e := st.Entity(ev.Arg(0))
		if e == nil {
			return nil
		}
		pct, err := strconv.Atoi(ev.Arg(1))
		if err != nil {
			return err
		}
		e.HPPercent = pct
		return nil
	}
	d.Handle(event.TagDamage, hpHandler)
	d.Handle(event.TagHeal, hpHandler)

	d.Handle(event.TagStatus, func(ctx context.Context, st *state.Store, ev event.Event) error {
		if e := st.Entity(ev.Arg(0)); e != nil {
			e.Status = ev.Arg(1)
		}
		return nil
	})

	d.Handle(event.TagWeather, func(ctx context.Context, st *state.Store, ev event.Event) error {
		st.SetWeather(ev.Arg(0))
		return nil
	})

	d.Handle(event.TagFaint, func(ctx context.Context, st *state.Store, ev event.Event) error {
		if e := st.Entity(ev.Arg(0)); e != nil {
			e.HPPercent = 0
		}
		return nil
	})

	// Direct reveals: the log named the hidden attribute outright.
	d.Handle(event.TagAbility, func(ctx context.Context, st *state.Store, ev event.Event) error {
		return fixIfTracked(st, ev.Arg(0), state.AttrAbility, ev.Arg(1))
	})
	d.Handle(event.TagItem, func(ctx context.Context, st *state.Store, ev event.Event) error {
		return fixIfTracked(st, ev.Arg(0), state.AttrItem, ev.Arg(1))
	})
	d.Handle(event.TagEndItem, func(ctx context.Context, st *state.Store, ev event.Event) error {
		// The item is gone now, but having had it is proven.
		return fixIfTracked(st, ev.Arg(0), state.AttrItem, ev.Arg(1))
	})

	d.Handle(event.TagCopyAbility, func(ctx context.Context, st *state.Store, ev event.Event) error {
		if e := st.Entity(ev.Arg(0)); e != nil {
			e.EffectiveAbility = ev.Arg(1)
		}
		return nil
	})

	// Known tags with no projection effect.
	d.Consume(event.TagMove, event.TagBoost, event.TagUpkeep, event.TagWin, event.TagTie)

	return d
}

// fixIfTracked collapses a tracked possibility set onto a directly
// revealed label. Entities or attributes outside the projection are
// ignored; a revealed label the enumeration had already ruled out is an
// inference contradiction, not something to paper over.
func fixIfTracked(st *state.Store, entity, attr, label string) error {
	e := st.Entity(entity)
	if e == nil {
		return nil
	}
	set, ok := e.Possibilities(attr)
	if !ok {
		return nil
	}
	if !set.Contains(label) {
		return &infer.ContradictionError{
			Hypothesis: entity + " has " + attr + " " + label,
			Candidates: set.Labels(),
			Detail:     "directly revealed label was already ruled out",
		}
	}
	return set.Fix(label)
}

// subjectOf returns the entity a reveal is attributed to: the "of"
// keyword when present (indirect effects), the first positional arg
// otherwise.
func subjectOf(ev event.Event) string {
	if of := ev.Keyword("of"); of != "" {
		return of
	}
	return ev.Arg(0)
}
