package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/volley/internal/compiler"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/loader"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool        `json:"valid"`
	Dir      string      `json:"dir"`
	Sources  int         `json:"sources,omitempty"`
	Emitters int         `json:"emitters,omitempty"`
	Triggers int         `json:"triggers,omitempty"`
	Hash     string      `json:"hash,omitempty"`
	Errors   []*CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-dir]",
		Short: "Load a configuration directory without installing it",
		Long: `Run the full two-phase load over every .cue and .json source in a
directory: collect emitter names, compile triggers and emitters, then
check counts, intervals and curve times.

The directory defaults to VOLLEY_CONFIG_DIR.

Exit codes:
  0 - Configuration valid
  1 - Configuration rejected
  2 - Command error (directory missing, no sources, unreadable file)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, configDir(rootOpts, args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // keeps JSON on stdout clean
		Verbose:   opts.Verbose,
	}

	docs, err := loader.Load(dir)
	if err != nil {
		e := describeError(err)
		_ = formatter.Error(e)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", e.Code, e.Message))
	}
	formatter.VerboseLog("Found %d source(s) in %s", len(docs), dir)

	gen, err := compileDocs(cmd.Context(), docs, plugins(opts))
	if err != nil {
		return outputValidationErrors(formatter, dir, err)
	}
	return outputValidateSuccess(formatter, dir, gen)
}

func compileDocs(ctx context.Context, docs []compiler.Document, plugins []string) (*ir.Generation, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return compiler.Compile(ctx, docs, compiler.WithPlugins(plugins))
}

// splitErrors unwraps a joined error into its parts.
func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func outputValidateSuccess(formatter *OutputFormatter, dir string, gen *ir.Generation) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			Dir:      dir,
			Sources:  len(gen.Sources),
			Emitters: len(gen.Emitters),
			Triggers: len(gen.Triggers),
			Hash:     gen.Hash,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ %s: %d source(s), %d emitter(s), %d trigger(s)\n",
		dir, len(gen.Sources), len(gen.Emitters), len(gen.Triggers))
	formatter.VerboseLog("hash %s", gen.Hash)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, dir string, err error) error {
	var errs []*CLIError
	for _, e := range splitErrors(err) {
		errs = append(errs, describeError(e))
	}

	if formatter.Format == "json" {
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Dir: dir, Errors: errs},
			Error:  errs[0],
		}); encErr != nil {
			return encErr
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		_ = formatter.Error(e)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// isLoadError reports whether err came from directory discovery or file
// reading rather than compilation.
func isLoadError(err error) bool {
	var le *loader.LoadError
	return errors.As(err, &le)
}
