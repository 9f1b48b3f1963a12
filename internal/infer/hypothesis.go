package infer

import (
	"github.com/calderk/glean/internal/state"
)

// Hypothesis proposes that an entity has a candidate trait, guarded by
// the trait's activation preconditions. It resolves exactly once:
//
//	created -> resolved true | resolved false -> immutable
//
// Resolving true commits the trait (possibility set collapses to its
// label) and asserts the preconditions. Resolving false prunes the
// label. Re-resolving with a conflicting value is a ContradictionError.
type Hypothesis struct {
	// Name is a diagnostic label; it is not semantic.
	Name string

	Trait *HasTrait
	Pre   []Reason

	resolved *bool
}

// NewHypothesis builds a hypothesis for one candidate label.
func NewHypothesis(name string, trait *HasTrait, pre ...Reason) *Hypothesis {
	return &Hypothesis{Name: name, Trait: trait, Pre: pre}
}

// Resolved returns (value, true) once the hypothesis has settled.
func (h *Hypothesis) Resolved() (bool, bool) {
	if h.resolved == nil {
		return false, false
	}
	return *h.resolved, true
}

// PreVerdict evaluates the conjunction of activation preconditions.
func (h *Hypothesis) PreVerdict(st *state.Store) Verdict {
	out := Holds
	for _, r := range h.Pre {
		switch r.Eval(st) {
		case Fails:
			return Fails
		case Unknown:
			out = Unknown
		}
	}
	return out
}

// Resolve settles the hypothesis. Resolving an already-settled
// hypothesis with the same value is a no-op; a conflicting value is a
// ContradictionError.
func (h *Hypothesis) Resolve(st *state.Store, truth bool) error {
	if h.resolved != nil {
		if *h.resolved != truth {
			return &ContradictionError{
				Hypothesis: h.Name,
				Detail:     "already resolved with the opposite value",
			}
		}
		return nil
	}
	v := truth
	h.resolved = &v

	if truth {
		if err := h.Trait.Assert(st); err != nil {
			return err
		}
		for _, r := range h.Pre {
			if err := r.Assert(st); err != nil {
				return err
			}
		}
		return nil
	}
	return h.Trait.Reject(st)
}
