package state

import (
	"fmt"
	"slices"
	"strings"
)

// PossibilitySet is the remaining candidate labels for one hidden
// attribute. It only ever shrinks: labels are removed by Prune, or the
// set collapses to a single label by Fix. It never grows.
//
// Label order is the enumeration order given at construction and is
// preserved across prunes, so iteration is deterministic.
type PossibilitySet struct {
	labels []string
}

// NewPossibilitySet creates a set over the given candidate labels.
// Duplicates are dropped, first occurrence wins.
func NewPossibilitySet(labels ...string) *PossibilitySet {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return &PossibilitySet{labels: out}
}

// Labels returns the remaining candidates in enumeration order.
// The returned slice is a copy.
func (s *PossibilitySet) Labels() []string {
	return slices.Clone(s.labels)
}

// Size returns the number of remaining candidates.
func (s *PossibilitySet) Size() int {
	return len(s.labels)
}

// Contains reports whether label is still a candidate.
func (s *PossibilitySet) Contains(label string) bool {
	return slices.Contains(s.labels, label)
}

// Definite returns the single remaining label, if the set has been
// narrowed all the way down.
func (s *PossibilitySet) Definite() (string, bool) {
	if len(s.labels) == 1 {
		return s.labels[0], true
	}
	return "", false
}

// Empty reports whether every candidate has been ruled out. An empty set
// means the observed events contradict the candidate enumeration; callers
// surface that as an inference contradiction.
func (s *PossibilitySet) Empty() bool {
	return len(s.labels) == 0
}

// Prune removes label from the set. Returns whether it was present.
// Pruning an absent label is a no-op, not an error: independent reasons
// may rule out the same label.
func (s *PossibilitySet) Prune(label string) bool {
	i := slices.Index(s.labels, label)
	if i < 0 {
		return false
	}
	s.labels = slices.Delete(s.labels, i, i+1)
	return true
}

// Fix collapses the set to exactly label. Fixing a label that has already
// been ruled out is a modeling error and is rejected: it would grow the
// set back.
func (s *PossibilitySet) Fix(label string) error {
	if !slices.Contains(s.labels, label) {
		return fmt.Errorf("cannot fix %q: not among remaining candidates [%s]",
			label, strings.Join(s.labels, " "))
	}
	s.labels = []string{label}
	return nil
}

func (s *PossibilitySet) String() string {
	return "{" + strings.Join(s.labels, " ") + "}"
}
