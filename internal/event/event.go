package event

import (
	"fmt"
	"strings"
)

// Tag discriminates event kinds in the decoded battle log.
type Tag string

const (
	// Phase markers.
	TagTurn   Tag = "turn"   // start of a decision phase
	TagUpkeep Tag = "upkeep" // start of the end-of-turn residual phase

	// Combat events.
	TagMove   Tag = "move"
	TagSwitch Tag = "switch"
	TagDrag   Tag = "drag"
	TagDamage Tag = "damage"
	TagHeal   Tag = "heal"
	TagBoost  Tag = "boost"
	TagStatus Tag = "status"
	TagFaint  Tag = "faint"

	// Reveals. These expose a previously hidden attribute or its effect.
	TagWeather     Tag = "weather"
	TagAbility     Tag = "ability"
	TagItem        Tag = "item"
	TagEndItem     Tag = "enditem"
	TagCopyAbility Tag = "copyability"

	// Terminal events. Nothing follows either of these.
	TagWin Tag = "win"
	TagTie Tag = "tie"
)

// Event is one decoded occurrence from the ordered battle log.
//
// Events are immutable once constructed. Args carry positional fields
// (subject entity first, by convention); KV carries optional keyword
// fields such as "from" or "of".
type Event struct {
	Tag  Tag               `json:"tag" yaml:"tag"`
	Args []string          `json:"args,omitempty" yaml:"args,omitempty"`
	KV   map[string]string `json:"kv,omitempty" yaml:"kv,omitempty"`
}

// New constructs an event with positional args only.
func New(tag Tag, args ...string) Event {
	return Event{Tag: tag, Args: args}
}

// Arg returns the positional field at i, or "" if absent.
func (e Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// Keyword returns the keyword field for key, or "" if absent.
func (e Event) Keyword(key string) string {
	return e.KV[key]
}

// Terminal reports whether the event ends the simulation.
func (e Event) Terminal() bool {
	return e.Tag == TagWin || e.Tag == TagTie
}

// PhaseBoundary reports whether the event opens a new phase. Pending
// inference groups scoped to the previous phase can no longer match once
// a boundary is reached.
func (e Event) PhaseBoundary() bool {
	return e.Tag == TagTurn || e.Tag == TagUpkeep || e.Terminal()
}

// String renders the event in log form, e.g. "|damage|p2a|64|from=burn".
func (e Event) String() string {
	var b strings.Builder
	b.WriteByte('|')
	b.WriteString(string(e.Tag))
	for _, a := range e.Args {
		b.WriteByte('|')
		b.WriteString(a)
	}
	for _, k := range sortedKeys(e.KV) {
		fmt.Fprintf(&b, "|%s=%s", k, e.KV[k])
	}
	return b.String()
}
