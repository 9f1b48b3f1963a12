// Package rules holds the declarative trait table: which hidden traits
// exist, which lifecycle hook activates each, what event its activation
// produces, and the precondition guarding it.
//
// The table is data consumed by the parser's hypothesis builder; the
// inference engine itself knows nothing about concrete traits. Tables
// are authored in CUE and compiled into Go values, the same way the
// engine's upstream projects compile their specs.
package rules

import (
	"fmt"
	"sort"
)

// HookKind names the lifecycle point at which a trait can activate.
// One generic hypothesis builder is parameterized by this enum; there is
// deliberately no per-hook factory function.
type HookKind string

const (
	HookEntry    HookKind = "on_entry"    // entity switches in
	HookResidual HookKind = "on_residual" // end-of-turn upkeep
	HookDamage   HookKind = "on_damage"   // after taking damage
)

// PrecondKind names the guard attached to a trait's activation.
type PrecondKind string

const (
	PrecondAlways   PrecondKind = "always"
	PrecondHPBelow  PrecondKind = "hp_below"  // displayed percent at or below a band
	PrecondLastUnit PrecondKind = "last_unit" // exactly one unit remaining
	PrecondWeather  PrecondKind = "weather"   // a named weather must be up
)

// Precond is a trait's activation guard.
type Precond struct {
	Kind    PrecondKind
	Percent int    // hp_below band, displayed percent
	Weather string // weather name
}

// TraitDef describes one hidden trait candidate.
type TraitDef struct {
	Name   string
	Attr   string // hidden attribute it belongs to: "ability" or "item"
	Hook   HookKind
	Reveal string // tag of the event its activation produces
	Pre    Precond
	Copies bool // activation copies an opponent trait (chained inference)
}

// Set is a compiled trait table.
type Set struct {
	byName map[string]TraitDef
}

// NewSet builds a set from definitions. Duplicate names are rejected.
func NewSet(defs ...TraitDef) (*Set, error) {
	s := &Set{byName: make(map[string]TraitDef, len(defs))}
	for _, d := range defs {
		if _, dup := s.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate trait %q", d.Name)
		}
		s.byName[d.Name] = d
	}
	return s, nil
}

// Trait returns the definition for name.
func (s *Set) Trait(name string) (TraitDef, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Len returns the number of known traits.
func (s *Set) Len() int { return len(s.byName) }

// ForHook returns definitions with the given hook and attribute, in
// name order for determinism.
func (s *Set) ForHook(hook HookKind, attr string) []TraitDef {
	var out []TraitDef
	for _, d := range s.byName {
		if d.Hook == hook && d.Attr == attr {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all trait names in sorted order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.byName))
	for n := range s.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
