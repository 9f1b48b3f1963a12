package harness

import "github.com/calderk/glean/internal/parser"

// Result is the outcome of a test scenario execution.
type Result struct {
	// ScenarioName identifies the scenario that produced this result.
	ScenarioName string `json:"scenario_name"`

	// Pass indicates overall test success.
	// True if every expect clause matched.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the parse result.
	Final parser.Result `json:"final"`

	// ParseError is the fatal parse error, "" if the parse succeeded.
	ParseError string `json:"parse_error,omitempty"`

	// Snapshot maps "entity.attr" to the surviving possibility labels.
	Snapshot map[string][]string `json:"snapshot"`

	// Trace contains every consumed event with its clock stamp.
	Trace []parser.TraceStep `json:"trace"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(scenarioName string) *Result {
	return &Result{
		ScenarioName: scenarioName,
		Pass:         true,
		Errors:       []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
