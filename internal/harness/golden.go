package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/calderk/glean/internal/parser"
)

// TraceSnapshot captures the complete outcome of a scenario execution.
// Map keys serialize sorted, so the encoding is deterministic.
type TraceSnapshot struct {
	ScenarioName  string              `json:"scenario_name"`
	Final         parser.Result       `json:"final"`
	ParseError    string              `json:"parse_error,omitempty"`
	Possibilities map[string][]string `json:"possibilities"`
	Trace         []parser.TraceStep  `json:"trace"`
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected trace and
// inference behavior. Expect-clause mismatches still fail through the
// returned Result; the golden comparison catches everything the expect
// clause doesn't pin down.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName:  scenario.Name,
		Final:         result.Final,
		ParseError:    result.ParseError,
		Possibilities: result.Snapshot,
		Trace:         result.Trace,
	}

	data, err := marshalSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}

func marshalSnapshot(s TraceSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
