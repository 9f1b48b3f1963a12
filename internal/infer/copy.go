package infer

import (
	"github.com/calderk/glean/internal/state"
)

// AcceptCopy settles a copier hypothesis atomically across two
// possibility sets: the copier definitely has the copier trait, and the
// copied-from entity definitely has the trait named by the copy
// indicator event. Both sets are validated before either is mutated, so
// a failed attempt leaves both unchanged and the caller can fall back to
// the next candidate explanation.
//
// The copier's effective ability is recorded on the entity so later
// preconditions see the copied trait in force, not the innate one.
func AcceptCopy(st *state.Store, g *Group, copier *Hypothesis, source, copied string) error {
	src := st.Entity(source)
	if src == nil {
		return &ContradictionError{
			Group:      g.Name,
			Hypothesis: copier.Name,
			Detail:     "copy source entity " + source + " is unknown",
		}
	}
	srcSet, err := st.Possibilities(source, copier.Trait.Attr)
	if err != nil {
		return &ContradictionError{Group: g.Name, Hypothesis: copier.Name, Detail: err.Error()}
	}
	dstSet, err := st.Possibilities(copier.Trait.Entity, copier.Trait.Attr)
	if err != nil {
		return &ContradictionError{Group: g.Name, Hypothesis: copier.Name, Detail: err.Error()}
	}

	// Validate both ends before touching either set.
	if !srcSet.Contains(copied) {
		return &ContradictionError{
			Group:      g.Name,
			Hypothesis: copier.Name,
			Candidates: srcSet.Labels(),
			Detail:     "copied label " + copied + " already ruled out for " + source,
		}
	}
	if !dstSet.Contains(copier.Trait.Label) {
		return &ContradictionError{
			Group:      g.Name,
			Hypothesis: copier.Name,
			Candidates: dstSet.Labels(),
			Detail:     "copier label already ruled out",
		}
	}

	if err := g.Accept(st, copier); err != nil {
		return err
	}
	if err := st.Fix(source, copier.Trait.Attr, copied); err != nil {
		return err
	}
	st.Entity(copier.Trait.Entity).EffectiveAbility = copied
	return nil
}
