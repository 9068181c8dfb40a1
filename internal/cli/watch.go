package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/volley/internal/compiler"
	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/loader"
	"github.com/roach88/volley/internal/store"
	"github.com/roach88/volley/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Database string

	// IDs overrides the generation ID source (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs engine.IDGenerator

	// OnInstall is called after every installed generation, the initial
	// one included (for testing).
	OnInstall func(gen *ir.Generation)
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch [config-dir]",
		Short: "Load configuration and reload it on every change",
		Long: `Load a configuration directory, then watch it and reload after each
burst of changes. A rejected reload is logged and the previous generation
stays installed.

With --db (or VOLLEY_DB) every installed generation is recorded, the
emitter side-table is restored from the last snapshot when the
configuration hash matches, and a snapshot is written on shutdown.

Example:
  volley watch ./config
  volley watch ./config --db ./volley.db --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, configDir(rootOpts, args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default VOLLEY_DB)")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	table := engine.NewMemoryTable()
	eng := engine.New(
		engine.WithStateTable(table),
		engine.WithIDGenerator(ids),
		engine.WithCompilerOptions(compiler.WithPlugins(plugins(opts.RootOptions))),
	)

	slog.Info("loading configuration", "dir", dir)
	gen, err := reloadDir(ctx, eng, dir)
	if err != nil {
		code := ExitFailure
		if isLoadError(err) {
			code = ExitCommandError
		}
		return WrapExitError(code, "failed to load configuration", err)
	}

	var st *store.Store
	if path := dbPath(opts.RootOptions, opts.Database); path != "" {
		slog.Info("opening database", "path", path)
		st, err = store.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		restore(ctx, st, table, gen)
	}
	installed(ctx, opts, st, gen)

	w, err := watch.New(dir, opts.Config.WatchDebounce)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to watch configuration", err)
	}
	defer w.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (generation %s). Press Ctrl-C to stop.\n", dir, gen.ID)

	err = w.Run(ctx, func(ctx context.Context, changed []string) {
		slog.Info("configuration changed", "files", changed)
		gen, err := reloadDir(ctx, eng, dir)
		if err != nil {
			// Reload already logged the rejection.
			slog.Debug("reload failed", "error", err)
			return
		}
		installed(ctx, opts, st, gen)
	})

	if st != nil {
		// The run context is done; the final snapshot gets its own.
		if err := st.SaveSnapshot(context.Background(), eng.Generation(), table.Snapshot()); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "generation", eng.Generation().ID, "states", table.Len())
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "watcher error", err)
	}
	slog.Info("watch stopped")
	return nil
}

// reloadDir reads every source in dir and installs the result on eng.
func reloadDir(ctx context.Context, eng *engine.Engine, dir string) (*ir.Generation, error) {
	docs, err := loader.Load(dir)
	if err != nil {
		slog.Warn("reload rejected, previous generation kept",
			"generation", eng.Generation().ID,
			"error", err)
		return nil, err
	}
	return eng.Reload(ctx, docs)
}

func restore(ctx context.Context, st *store.Store, table *engine.MemoryTable, gen *ir.Generation) {
	states, err := st.LoadSnapshot(ctx, gen)
	switch {
	case errors.Is(err, store.ErrHashMismatch):
		slog.Warn("snapshot ignored", "error", err)
	case err != nil:
		slog.Error("failed to load snapshot", "error", err)
	default:
		table.Restore(states)
		slog.Info("snapshot restored", "generation", gen.ID, "states", len(states))
	}
}

func installed(ctx context.Context, opts *WatchOptions, st *store.Store, gen *ir.Generation) {
	if st != nil {
		if _, err := st.RecordGeneration(ctx, gen); err != nil {
			slog.Error("failed to record generation", "generation", gen.ID, "error", err)
		}
	}
	if opts.OnInstall != nil {
		opts.OnInstall(gen)
	}
}
