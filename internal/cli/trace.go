package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderk/glean/internal/event"
	"github.com/calderk/glean/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// TraceReport is the trace command's output payload.
type TraceReport struct {
	Session journal.Session `json:"session"`
	Events  []event.Event   `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions, cfg Config) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <session-token>",
		Short: "Dump a recorded session's event stream",
		Long: `Dump a recorded session's event stream in feed order.

Every stored payload is re-hashed on read; a mismatch means the journal
was altered and the dump fails.

Exit codes:
  0 - Session dumped
  1 - Journal integrity check failed
  2 - Command error (database or session not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", cfg.Journal, "path to the journal database")

	return cmd
}

func runTrace(opts *TraceOptions, token string, cmd *cobra.Command) error {
	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()

	session, err := j.Session(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "read session", err)
	}

	events, err := j.Events(ctx, token)
	if err != nil {
		return WrapExitError(ExitFailure, "read events", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{
			Status: "ok",
			Data:   TraceReport{Session: session, Events: events},
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session %s", session.Token)
	if session.Label != "" {
		fmt.Fprintf(w, " (%s)", session.Label)
	}
	fmt.Fprintf(w, " - %d event(s)\n", len(events))
	for _, ev := range events {
		fmt.Fprintln(w, ev.String())
	}
	return nil
}

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions, cfg Config) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "sessions",
		Short:         "List recorded sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", cfg.Journal, "path to the journal database")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer j.Close()

	sessions, err := j.Sessions(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "list sessions", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: sessions})
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No recorded sessions.")
		return nil
	}
	for _, s := range sessions {
		if s.Label != "" {
			fmt.Fprintf(w, "%s  %s  %s\n", s.Token, s.CreatedAt, s.Label)
		} else {
			fmt.Fprintf(w, "%s  %s\n", s.Token, s.CreatedAt)
		}
	}
	return nil
}
