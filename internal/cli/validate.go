package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderk/glean/internal/rules"
)

// ValidationResult holds validation results for a trait table.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Traits []string `json:"traits,omitempty"`
	Error  string   `json:"error,omitempty"`
	Field  string   `json:"field,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules.cue>",
		Short: "Validate a trait table without running anything",
		Long: `Compile a CUE trait table and report whether it is usable.

Checks the CUE syntax plus the table's own constraints: every trait
names a tracked attribute and a hook, non-copy traits name a reveal
tag, and activation bands are in range.

Exit codes:
  0 - Table compiles
  1 - Table is invalid
  2 - Command error (file not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	rs, err := rules.LoadFile(path)
	if err != nil {
		var compileErr *rules.CompileError
		result := ValidationResult{Valid: false, Error: err.Error()}
		if errors.As(err, &compileErr) {
			result.Field = compileErr.Field
			result.Error = compileErr.Message
		} else {
			// Not a compile problem, e.g. the file is missing.
			return WrapExitError(ExitCommandError, "load rules", err)
		}

		if opts.Format == "json" {
			_ = writeJSON(cmd.OutOrStdout(), CLIResponse{
				Status: "error",
				Error: &CLIError{
					Code:    ErrCodeRules,
					Message: result.Error,
					Details: result,
				},
			})
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: invalid trait table\n", path)
			if result.Field != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", result.Field, result.Error)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", result.Error)
			}
		}
		return NewExitError(ExitFailure, "invalid trait table")
	}

	result := ValidationResult{Valid: true, Traits: rs.Names()}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d trait(s)\n", path, rs.Len())
	for _, name := range result.Traits {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
	return nil
}
