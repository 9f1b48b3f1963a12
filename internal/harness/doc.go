// Package harness provides conformance testing for the inference engine.
//
// The harness loads scenario files, runs each event log through a real
// parse, and validates the surviving possibility sets and parse result
// as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rules: path/to/rules.cue        # optional, defaults to built-in table
//	entities:
//	  - name: p1a
//	    side: p1
//	    species: finch
//	    max: { lo: 241, hi: 288 }   # optional, defaults to unknown
//	    candidates:
//	      ability: [dread, echo]
//	      item: [mendcharm]
//	events:
//	  - tag: switch
//	    args: [p1a, finch]
//	  - tag: heal
//	    args: [p1a, "90"]
//	    kv: { from: item }
//	expect:
//	  possibilities:
//	    p1a.ability: [dread]
//	  winner: p1
//	  ended: true
//	  error: ""                     # substring of a fatal error, "" = none
//
// # Deterministic Testing
//
// A scenario runs against a fresh projection and a fresh parse every
// time, and the event feed is fully scripted, so the trace and final
// snapshot are identical across runs. Golden files capture both per
// scenario; regenerate with
//
//	go test ./internal/harness -update
package harness
