package infer

import (
	"github.com/calderk/glean/internal/state"
)

// Verdict is the tri-state outcome of evaluating a proposition against
// the current projection. Only provable outcomes (Holds, Fails) cause
// narrowing; Unknown leaves possibility sets untouched.
type Verdict int

const (
	Unknown Verdict = iota
	Holds
	Fails
)

func (v Verdict) String() string {
	switch v {
	case Holds:
		return "holds"
	case Fails:
		return "fails"
	default:
		return "unknown"
	}
}

// Reason is a named boolean proposition about hidden state.
//
// Eval derives the proposition's truth from the projection without
// mutating it. Assert commits the proposition as true; Reject commits it
// as false. For pure conditions over already-known state both commits
// are no-ops; for trait propositions they narrow the possibility set.
type Reason interface {
	Name() string
	Eval(st *state.Store) Verdict
	Assert(st *state.Store) error
	Reject(st *state.Store) error
}

// HasTrait proposes that an entity's hidden attribute is Label.
type HasTrait struct {
	Entity string
	Attr   string
	Label  string
}

// Name implements Reason.
func (r *HasTrait) Name() string {
	return r.Entity + " has " + r.Attr + " " + r.Label
}

// Eval implements Reason: Fails once the label is ruled out, Holds once
// the set has collapsed onto it, Unknown while other candidates remain.
func (r *HasTrait) Eval(st *state.Store) Verdict {
	set, err := st.Possibilities(r.Entity, r.Attr)
	if err != nil {
		return Fails
	}
	if !set.Contains(r.Label) {
		return Fails
	}
	if _, definite := set.Definite(); definite {
		return Holds
	}
	return Unknown
}

// Assert implements Reason: the entity definitely has the label.
func (r *HasTrait) Assert(st *state.Store) error {
	if err := st.Fix(r.Entity, r.Attr, r.Label); err != nil {
		return &ContradictionError{Hypothesis: r.Name(), Detail: err.Error()}
	}
	return nil
}

// Reject implements Reason: the label is ruled out.
func (r *HasTrait) Reject(st *state.Store) error {
	return st.Prune(r.Entity, r.Attr, r.Label)
}

// Cond is a pure precondition over already-known state, e.g. "the
// required weather is up" or "the entity is not statused". Committing it
// records nothing: its truth is derived, not hidden.
type Cond struct {
	Label string
	Pred  func(st *state.Store) Verdict
}

// Name implements Reason.
func (r *Cond) Name() string { return r.Label }

// Eval implements Reason.
func (r *Cond) Eval(st *state.Store) Verdict { return r.Pred(st) }

// Assert implements Reason (no-op: nothing hidden to record).
func (r *Cond) Assert(st *state.Store) error { return nil }

// Reject implements Reason (no-op).
func (r *Cond) Reject(st *state.Store) error { return nil }

// Conjunction ANDs several reasons into one.
type Conjunction struct {
	Label string
	Rs    []Reason
}

// And builds a conjunction reason.
func And(label string, rs ...Reason) *Conjunction {
	return &Conjunction{Label: label, Rs: rs}
}

// Name implements Reason.
func (c *Conjunction) Name() string { return c.Label }

// Eval implements Reason: Fails dominates, then Unknown, else Holds.
func (c *Conjunction) Eval(st *state.Store) Verdict {
	out := Holds
	for _, r := range c.Rs {
		switch r.Eval(st) {
		case Fails:
			return Fails
		case Unknown:
			out = Unknown
		}
	}
	return out
}

// Assert implements Reason: every conjunct is true.
func (c *Conjunction) Assert(st *state.Store) error {
	for _, r := range c.Rs {
		if err := r.Assert(st); err != nil {
			return err
		}
	}
	return nil
}

// Reject implements Reason: at least one conjunct is false. Blame can
// only be assigned when exactly one conjunct is not already proven; if
// every conjunct provably holds the rejection itself is contradictory,
// and with several open conjuncts nothing can be concluded.
func (c *Conjunction) Reject(st *state.Store) error {
	var open Reason
	for _, r := range c.Rs {
		if r.Eval(st) != Holds {
			if open != nil {
				return nil // ambiguous blame, no narrowing
			}
			open = r
		}
	}
	if open == nil {
		return &ContradictionError{
			Hypothesis: c.Label,
			Detail:     "rejected, but every conjunct provably holds",
		}
	}
	return open.Reject(st)
}
