package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/calderk/glean/internal/parser"
	"github.com/calderk/glean/internal/rules"
	"github.com/calderk/glean/internal/state"
)

// runTimeout bounds one scenario parse. Scripted feeds settle in
// microseconds; hitting this means a deadlock, not a slow scenario.
const runTimeout = 10 * time.Second

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh projection and a fresh parse for
// isolation. The event feed is fully scripted, so the trace and final
// snapshot are reproducible.
//
// Execution flow:
//  1. Compile the trait table (scenario file or built-in)
//  2. Build the projection from the entity definitions
//  3. Feed the event log through a parse
//  4. Validate the expect clause against the outcome
func Run(scenario *Scenario) (*Result, error) {
	result, err := Execute(scenario)
	if err != nil {
		return nil, err
	}

	var parseErr error
	if result.ParseError != "" {
		parseErr = fmt.Errorf("%s", result.ParseError)
	}
	evaluateExpect(result, scenario.Expect, parseErr)
	return result, nil
}

// Execute runs a scenario's event log through a parse without
// evaluating its expect clause. Used by replay tooling that wants the
// outcome, not a verdict.
func Execute(scenario *Scenario) (*Result, error) {
	rs, err := loadRules(scenario)
	if err != nil {
		return nil, err
	}

	st := state.NewStore()
	for _, def := range scenario.Entities {
		e := st.AddEntity(def.Name, def.Side, def.Species, def.Candidates)
		if def.Max != nil {
			e.MaxLo = def.Max.Lo
			e.MaxHi = def.Max.Hi
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	// Suppress logs in tests.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := parser.Start(ctx, st, rs, parser.WithLogger(log))
	for _, ev := range scenario.Events {
		if err := h.Push(ev); err != nil {
			return nil, fmt.Errorf("push event: %w", err)
		}
	}
	h.Close()

	final, parseErr := h.Await(ctx)

	result := NewResult(scenario.Name)
	result.Final = final
	result.Snapshot = st.Snapshot()
	result.Trace = h.Trace()
	if parseErr != nil {
		result.ParseError = parseErr.Error()
	}

	return result, nil
}

func loadRules(scenario *Scenario) (*rules.Set, error) {
	if scenario.Rules == "" {
		return rules.Defaults(), nil
	}
	rs, err := rules.LoadFile(scenario.Rules)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return rs, nil
}

// evaluateExpect checks the scenario's expect clause against the
// outcome, recording every mismatch.
func evaluateExpect(r *Result, want Expect, parseErr error) {
	if want.Error != "" {
		if parseErr == nil {
			r.AddError(fmt.Sprintf("expected fatal error containing %q, parse succeeded", want.Error))
		} else if !strings.Contains(parseErr.Error(), want.Error) {
			r.AddError(fmt.Sprintf("expected fatal error containing %q, got %q", want.Error, parseErr))
		}
		// A scenario expecting a fatal error makes no claims about the
		// final projection.
		return
	}

	if parseErr != nil {
		r.AddError(fmt.Sprintf("unexpected fatal error: %v", parseErr))
		return
	}

	for key, labels := range want.Possibilities {
		got, ok := r.Snapshot[key]
		if !ok {
			r.AddError(fmt.Sprintf("possibilities: %s is not tracked", key))
			continue
		}
		if !slices.Equal(got, labels) {
			r.AddError(fmt.Sprintf("possibilities: %s = %v, expected %v", key, got, labels))
		}
	}

	if want.Winner != r.Final.Winner {
		r.AddError(fmt.Sprintf("winner = %q, expected %q", r.Final.Winner, want.Winner))
	}
	if want.Ended != r.Final.Ended {
		r.AddError(fmt.Sprintf("ended = %v, expected %v", r.Final.Ended, want.Ended))
	}
	if want.Turns != 0 && want.Turns != r.Final.Turns {
		r.AddError(fmt.Sprintf("turns = %d, expected %d", r.Final.Turns, want.Turns))
	}
}
