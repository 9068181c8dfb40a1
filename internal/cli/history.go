package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/volley/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryResult lists recorded generations, oldest first.
type HistoryResult struct {
	Generations []store.GenerationRecord `json:"generations"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generations recorded by watch",
		Long: `List every generation 'volley watch' installed, oldest first, with its
hash and table sizes.

Examples:
  volley history --db ./volley.db
  volley history --db ./volley.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default VOLLEY_DB)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only show the most recent N generations")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	path := dbPath(opts.RootOptions, opts.Database)
	if path == "" {
		return NewExitError(ExitCommandError, "no database: set --db or VOLLEY_DB")
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	gens, err := st.Generations(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read generations", err)
	}
	if opts.Limit > 0 && len(gens) > opts.Limit {
		gens = gens[len(gens)-opts.Limit:]
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if gens == nil {
			gens = []store.GenerationRecord{}
		}
		return formatter.Success(HistoryResult{Generations: gens})
	}

	w := cmd.OutOrStdout()
	if len(gens) == 0 {
		fmt.Fprintln(w, "No generations recorded.")
		return nil
	}
	for _, g := range gens {
		fmt.Fprintf(w, "%4d  %s  %s  %d emitter(s), %d trigger(s)  [%s]\n",
			g.Seq, g.ID, shortHash(g.Hash), g.Emitters, g.Triggers, strings.Join(g.Sources, ", "))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
