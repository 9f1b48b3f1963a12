package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/calderk/glean/internal/harness"
	"github.com/calderk/glean/internal/journal"
	"github.com/calderk/glean/internal/parser"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Rules    string
	Record   bool
	Database string
	Label    string
}

// ReplayReport is the replay command's output payload.
type ReplayReport struct {
	Final         parser.Result       `json:"final"`
	Possibilities map[string][]string `json:"possibilities"`
	Events        int                 `json:"events"`
	Session       string              `json:"session,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions, cfg Config) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <match.yaml>",
		Short: "Replay a recorded event log and report what it proves",
		Long: `Replay an event log through the inference engine and report the final
possibility sets.

The match file is a YAML scenario: the starting entities with their
candidate sets, and the event log. An expect clause, if present, is
ignored; replay reports what the log actually proves.

Exit codes:
  0 - Replay finished
  1 - The log contradicts the candidate enumeration
  2 - Command error (file not found, malformed match file, etc.)

Examples:
  glean replay match.yaml
  glean replay match.yaml --rules custom.cue
  glean replay match.yaml --record --db glean.db --label "scrim vs wolf"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rules, "rules", cfg.Rules, "trait table CUE file (default: built-in)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the replayed log into the journal")
	cmd.Flags().StringVar(&opts.Database, "db", cfg.Journal, "path to the journal database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "session label when recording")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load match file", err)
	}
	if opts.Rules != "" {
		scenario.Rules = opts.Rules
	}

	opts.logger.Debug("replaying log", "match", path, "events", len(scenario.Events))

	result, err := harness.Execute(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay", err)
	}

	report := ReplayReport{
		Final:         result.Final,
		Possibilities: result.Snapshot,
		Events:        len(result.Trace),
	}

	if result.ParseError != "" {
		if opts.Format == "json" {
			_ = writeJSON(cmd.OutOrStdout(), CLIResponse{
				Status: "error",
				Error: &CLIError{
					Code:    ErrCodeContradiction,
					Message: result.ParseError,
					Details: report,
				},
			})
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ Replay failed: %s\n", result.ParseError)
		}
		return NewExitError(ExitFailure, "replay contradicted the candidate enumeration")
	}

	if opts.Record {
		session, err := recordTrace(cmd.Context(), opts, result.Trace)
		if err != nil {
			return WrapExitError(ExitCommandError, "record session", err)
		}
		report.Session = session
		opts.logger.Debug("recorded session", "token", session, "db", opts.Database)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: report})
	}
	return outputReplayText(cmd, report)
}

// recordTrace writes the consumed trace into the journal under a new
// session.
func recordTrace(ctx context.Context, opts *ReplayOptions, trace []parser.TraceStep) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer j.Close()

	token, err := j.CreateSession(ctx, opts.Label)
	if err != nil {
		return "", err
	}
	for _, step := range trace {
		if err := j.Append(ctx, token, step.Seq, step.Event); err != nil {
			return "", err
		}
	}
	return token, nil
}

func outputReplayText(cmd *cobra.Command, report ReplayReport) error {
	w := cmd.OutOrStdout()

	if report.Final.Ended {
		if report.Final.Winner != "" {
			fmt.Fprintf(w, "Winner: %s (turn %d)\n", report.Final.Winner, report.Final.Turns)
		} else {
			fmt.Fprintf(w, "Tie (turn %d)\n", report.Final.Turns)
		}
	} else {
		fmt.Fprintf(w, "Log ended without a result (turn %d)\n", report.Final.Turns)
	}
	fmt.Fprintf(w, "Events consumed: %d\n", report.Events)
	fmt.Fprintln(w)

	keys := make([]string, 0, len(report.Possibilities))
	for k := range report.Possibilities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "Remaining possibilities:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, report.Possibilities[k])
	}

	if report.Session != "" {
		fmt.Fprintf(w, "\nRecorded session: %s\n", report.Session)
	}
	return nil
}
