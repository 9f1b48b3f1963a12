package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calderk/glean/internal/event"
)

// Scenario defines a conformance test scenario.
// A scenario sets up a projection, feeds an event log through a real
// parse, and asserts on the surviving possibility sets and the result.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is an optional path to a CUE trait table. Empty means the
	// built-in table.
	Rules string `yaml:"rules,omitempty"`

	// Entities describes the starting projection.
	Entities []EntityDef `yaml:"entities"`

	// Events is the scripted log fed to the parse, in order.
	Events []event.Event `yaml:"events"`

	// Expect validates the outcome.
	Expect Expect `yaml:"expect"`
}

// EntityDef is one combatant in the starting projection.
type EntityDef struct {
	Name    string `yaml:"name"`
	Side    string `yaml:"side"`
	Species string `yaml:"species"`

	// Max bounds the hidden health maximum. Nil leaves it unknown.
	Max *Bounds `yaml:"max,omitempty"`

	// Candidates maps attribute name to the enumerated labels.
	Candidates map[string][]string `yaml:"candidates,omitempty"`
}

// Bounds is a closed integer interval.
type Bounds struct {
	Lo int `yaml:"lo"`
	Hi int `yaml:"hi"`
}

// Expect specifies the expected outcome of a scenario.
type Expect struct {
	// Possibilities maps "entity.attr" to the exact surviving labels.
	// Only listed keys are validated.
	Possibilities map[string][]string `yaml:"possibilities,omitempty"`

	// Winner is the expected winning side, "" for none.
	Winner string `yaml:"winner,omitempty"`

	// Ended reports whether a terminal event is expected.
	Ended bool `yaml:"ended,omitempty"`

	// Turns is the expected last turn number. Zero skips the check.
	Turns int `yaml:"turns,omitempty"`

	// Error is a substring the fatal parse error must contain.
	// Empty means the parse must succeed.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Entities) == 0 {
		return fmt.Errorf("entities list is required and must be non-empty")
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
			return fmt.Errorf("rules file not found: %s", s.Rules)
		}
	}

	seen := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("entities[%d]: name is required", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("entities[%d]: duplicate entity %q", i, e.Name)
		}
		seen[e.Name] = true
		if e.Side == "" {
			return fmt.Errorf("entities[%d]: side is required", i)
		}
		if e.Species == "" {
			return fmt.Errorf("entities[%d]: species is required", i)
		}
		if e.Max != nil {
			if e.Max.Lo < 1 || e.Max.Hi < e.Max.Lo {
				return fmt.Errorf("entities[%d]: max bounds must satisfy 1 <= lo <= hi, got [%d, %d]",
					i, e.Max.Lo, e.Max.Hi)
			}
		}
	}

	for i, ev := range s.Events {
		if ev.Tag == "" {
			return fmt.Errorf("events[%d]: tag is required", i)
		}
	}

	return nil
}
