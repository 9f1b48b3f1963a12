package state

import (
	"fmt"
	"sort"
)

// Hidden attribute names tracked per entity.
const (
	AttrAbility = "ability"
	AttrItem    = "item"
)

// Entity is one participant-controlled combatant in the projection.
//
// HPPercent is the displayed health percentage; the true maximum
// magnitude is hidden and only known to lie in [MaxLo, MaxHi]. Numeric
// threshold inference works off those bounds.
type Entity struct {
	Name    string
	Side    string
	Species string

	HPPercent int
	MaxLo     int
	MaxHi     int

	Status string

	// EffectiveAbility is the ability currently in force when it differs
	// from the innate one, e.g. after a copy effect resolved. Empty means
	// the innate ability (whatever the possibility set says) applies.
	EffectiveAbility string

	attrs map[string]*PossibilitySet
}

// Possibilities returns the possibility set for one of the entity's
// hidden attributes.
func (e *Entity) Possibilities(attr string) (*PossibilitySet, bool) {
	s, ok := e.attrs[attr]
	return s, ok
}

// Fainted reports whether the entity is out of the fight.
func (e *Entity) Fainted() bool {
	return e.HPPercent <= 0
}

// Store is the mutable projection shared by every active parser.
type Store struct {
	entities map[string]*Entity
	order    []string // entity names in registration order

	weather string
	turn    int
}

// NewStore creates an empty projection.
func NewStore() *Store {
	return &Store{entities: make(map[string]*Entity)}
}

// AddEntity registers an entity with candidate sets for each hidden
// attribute. Candidates maps attribute name (AttrAbility, AttrItem) to
// the enumerated labels.
func (st *Store) AddEntity(name, side, species string, candidates map[string][]string) *Entity {
	e := &Entity{
		Name:      name,
		Side:      side,
		Species:   species,
		HPPercent: 100,
		MaxLo:     1,
		MaxHi:     1,
		attrs:     make(map[string]*PossibilitySet, len(candidates)),
	}
	for attr, labels := range candidates {
		e.attrs[attr] = NewPossibilitySet(labels...)
	}
	st.entities[name] = e
	st.order = append(st.order, name)
	return e
}

// Entity returns the named entity, or nil if unknown.
func (st *Store) Entity(name string) *Entity {
	return st.entities[name]
}

// Entities returns all entities in registration order.
func (st *Store) Entities() []*Entity {
	out := make([]*Entity, 0, len(st.order))
	for _, n := range st.order {
		out = append(out, st.entities[n])
	}
	return out
}

// Possibilities returns the possibility set for an entity's attribute.
func (st *Store) Possibilities(entity, attr string) (*PossibilitySet, error) {
	e := st.entities[entity]
	if e == nil {
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
	s, ok := e.attrs[attr]
	if !ok {
		return nil, fmt.Errorf("entity %q has no tracked attribute %q", entity, attr)
	}
	return s, nil
}

// Prune removes label from (entity, attr)'s candidates.
func (st *Store) Prune(entity, attr, label string) error {
	s, err := st.Possibilities(entity, attr)
	if err != nil {
		return err
	}
	s.Prune(label)
	return nil
}

// Fix collapses (entity, attr)'s candidates to exactly label.
func (st *Store) Fix(entity, attr, label string) error {
	s, err := st.Possibilities(entity, attr)
	if err != nil {
		return err
	}
	if err := s.Fix(label); err != nil {
		return fmt.Errorf("entity %q attribute %q: %w", entity, attr, err)
	}
	return nil
}

// SetWeather records the active global weather condition.
func (st *Store) SetWeather(w string) { st.weather = w }

// Weather returns the active global weather condition, "" for none.
func (st *Store) Weather() string { return st.weather }

// SetTurn records the current turn number.
func (st *Store) SetTurn(n int) { st.turn = n }

// Turn returns the current turn number.
func (st *Store) Turn() int { return st.turn }

// Snapshot renders every entity's remaining possibilities keyed by
// "entity.attr", for traces and CLI output. Keys are sorted.
func (st *Store) Snapshot() map[string][]string {
	out := make(map[string][]string)
	for _, name := range st.order {
		e := st.entities[name]
		attrs := make([]string, 0, len(e.attrs))
		for attr := range e.attrs {
			attrs = append(attrs, attr)
		}
		sort.Strings(attrs)
		for _, attr := range attrs {
			out[name+"."+attr] = e.attrs[attr].Labels()
		}
	}
	return out
}
