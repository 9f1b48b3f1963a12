package infer

import (
	"slices"

	"github.com/calderk/glean/internal/state"
)

// Group binds mutually exclusive hypotheses about one hidden attribute
// to the parser that will settle them.
//
// INVARIANT: at most one hypothesis in the group ever resolves true.
// Accepting one fixes the possibility set to its label and resolves
// every sibling false. If the driving parser's deadline passes with no
// acceptance, exactly the hypotheses whose preconditions provably held
// resolve false.
type Group struct {
	Name string
	Hyps []*Hypothesis

	accepted *Hypothesis
}

// NewGroup creates a group over the given hypotheses.
func NewGroup(name string, hyps ...*Hypothesis) *Group {
	return &Group{Name: name, Hyps: hyps}
}

// Accepted returns the accepted hypothesis, nil if none (yet).
func (g *Group) Accepted() *Hypothesis { return g.accepted }

// candidates lists the trait labels of every hypothesis, for diagnostics.
func (g *Group) candidates() []string {
	out := make([]string, len(g.Hyps))
	for i, h := range g.Hyps {
		out[i] = h.Trait.Label
	}
	return out
}

// Accept settles the group on h: h resolves true, every sibling resolves
// false, and the store's possibility set collapses to h's label.
//
// Accepting an empty group, a hypothesis that is not a member, or a
// label that has already been ruled out is a ContradictionError naming
// the group and its candidate set.
func (g *Group) Accept(st *state.Store, h *Hypothesis) error {
	if len(g.Hyps) == 0 {
		return &ContradictionError{Group: g.Name, Detail: "accept against an empty hypothesis set"}
	}
	if !slices.Contains(g.Hyps, h) {
		return &ContradictionError{
			Group:      g.Name,
			Hypothesis: h.Name,
			Candidates: g.candidates(),
			Detail:     "accepted hypothesis is not a member of the group",
		}
	}
	if g.accepted == h {
		return nil
	}
	if g.accepted != nil {
		return &ContradictionError{
			Group:      g.Name,
			Hypothesis: h.Name,
			Candidates: g.candidates(),
			Detail:     "group already accepted " + g.accepted.Name,
		}
	}

	set, err := st.Possibilities(h.Trait.Entity, h.Trait.Attr)
	if err != nil {
		return &ContradictionError{Group: g.Name, Hypothesis: h.Name, Detail: err.Error()}
	}
	if !set.Contains(h.Trait.Label) {
		return &ContradictionError{
			Group:      g.Name,
			Hypothesis: h.Name,
			Candidates: set.Labels(),
			Detail:     "accepted label already ruled out",
		}
	}

	if err := h.Resolve(st, true); err != nil {
		return err
	}
	for _, sib := range g.Hyps {
		if sib == h {
			continue
		}
		if err := sib.Resolve(st, false); err != nil {
			return err
		}
	}
	g.accepted = h
	return nil
}

// Deadline settles a group whose window closed with no acceptance. Every
// unresolved hypothesis whose preconditions provably held resolves
// false: the candidate could have activated and did not, so the entity
// lacks the trait. Hypotheses with failed or ambiguous preconditions are
// left unresolved and their labels untouched.
func (g *Group) Deadline(st *state.Store) error {
	if g.accepted != nil {
		return nil
	}
	for _, h := range g.Hyps {
		if _, done := h.Resolved(); done {
			continue
		}
		// A trait already proven through other evidence (e.g. named by a
		// copy indicator) is treated as shared with the holder: its own
		// silence explains nothing and must not prune.
		if h.Trait.Eval(st) == Holds {
			continue
		}
		if h.PreVerdict(st) != Holds {
			continue
		}
		if err := h.Resolve(st, false); err != nil {
			return err
		}
	}
	return nil
}

// TrueCount returns how many hypotheses have resolved true. It can only
// ever be 0 or 1; tests rely on it.
func (g *Group) TrueCount() int {
	n := 0
	for _, h := range g.Hyps {
		if v, done := h.Resolved(); done && v {
			n++
		}
	}
	return n
}
