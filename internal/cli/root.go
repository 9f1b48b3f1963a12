package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the glean CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cfg, cfgErr := LoadConfig()

	cmd := &cobra.Command{
		Use:   "glean",
		Short: "glean - hidden state inference over event logs",
		Long: `Parse turn-based event logs and infer hidden attributes from what
happened and from what conspicuously didn't.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return fmt.Errorf("read environment: %w", cfgErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose, cfg.LogLevel)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Subcommands
	cmd.AddCommand(NewReplayCommand(opts, cfg))
	cmd.AddCommand(NewTraceCommand(opts, cfg))
	cmd.AddCommand(NewSessionsCommand(opts, cfg))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// newLogger builds the CLI logger. Verbose forces debug regardless of
// the configured level; logs always go to stderr so JSON output on
// stdout stays parseable.
func newLogger(w io.Writer, verbose bool, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
