package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Kind string // optional - keep only firings of this kind
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Scenario   string              `json:"scenario"`
	Generation string              `json:"generation,omitempty"`
	Timeline   []harness.TraceLine `json:"timeline"`
	Stats      TraceStats          `json:"stats"`
	Errors     []string            `json:"errors,omitempty"`
}

// TraceStats counts the firings of a trace by kind.
type TraceStats struct {
	Steps    int `json:"steps"`
	Triggers int `json:"triggers"`
	Applies  int `json:"applies"`
	Emits    int `json:"emits"`
	Disables int `json:"disables"`
	Destroys int `json:"destroys"`
}

var firingKinds = []engine.FiringKind{
	engine.FiringTrigger,
	engine.FiringApply,
	engine.FiringEmit,
	engine.FiringDisable,
	engine.FiringDestroy,
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario-file>",
		Short: "Print the firing trace of a scenario",
		Long: `Run one scenario and print every step header and firing in order.

Firing lines carry the logical clock sequence; step headers start with '#'.
The text form is the golden file format used by 'volley test'.

Examples:
  volley trace ./scenarios/thrice.yaml
  volley trace ./scenarios/thrice.yaml --kind emit
  volley trace ./scenarios/thrice.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show firings of this kind (trigger|apply|emit|disable|destroy)")

	return cmd
}

func runTrace(opts *TraceOptions, file string, cmd *cobra.Command) error {
	if opts.Kind != "" && !validKind(opts.Kind) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be one of %v", opts.Kind, firingKinds))
	}

	s, err := harness.LoadScenario(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	result, err := harness.Run(s)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	tr := TraceResult{
		Scenario: s.Name,
		Timeline: filterTrace(result.Trace, opts.Kind),
		Stats:    traceStats(result.Trace),
		Errors:   result.Errors,
	}
	if result.Generation != nil {
		tr.Generation = result.Generation.ID
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, tr)
	}
	return outputTraceText(cmd, tr)
}

func validKind(kind string) bool {
	for _, k := range firingKinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

func lineKind(l harness.TraceLine) string {
	kind, _, _ := strings.Cut(l.Text, " ")
	return kind
}

// filterTrace keeps firings of kind and drops step headers. An empty kind
// keeps everything.
func filterTrace(trace []harness.TraceLine, kind string) []harness.TraceLine {
	if kind == "" {
		return trace
	}
	out := []harness.TraceLine{}
	for _, l := range trace {
		if l.Seq != 0 && lineKind(l) == kind {
			out = append(out, l)
		}
	}
	return out
}

func traceStats(trace []harness.TraceLine) TraceStats {
	var st TraceStats
	for _, l := range trace {
		if l.Seq == 0 {
			st.Steps++
			continue
		}
		switch engine.FiringKind(lineKind(l)) {
		case engine.FiringTrigger:
			st.Triggers++
		case engine.FiringApply:
			st.Applies++
		case engine.FiringEmit:
			st.Emits++
		case engine.FiringDisable:
			st.Disables++
		case engine.FiringDestroy:
			st.Destroys++
		}
	}
	return st
}

func outputTraceJSON(cmd *cobra.Command, tr TraceResult) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(CLIResponse{Status: "ok", Data: tr}); err != nil {
		return err
	}
	if len(tr.Errors) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(tr.Errors)))
	}
	return nil
}

func outputTraceText(cmd *cobra.Command, tr TraceResult) error {
	w := cmd.OutOrStdout()

	if _, err := w.Write(harness.FormatTrace(tr.Timeline)); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d triggers, %d applies, %d emits, %d disables, %d destroys\n",
		tr.Stats.Triggers, tr.Stats.Applies, tr.Stats.Emits, tr.Stats.Disables, tr.Stats.Destroys)

	if len(tr.Errors) > 0 {
		for _, e := range tr.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(tr.Errors)))
	}
	return nil
}
