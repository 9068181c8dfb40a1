package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/volley/internal/config"
)

// RootOptions holds global flags and the environment configuration shared
// by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Plugins []string

	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the volley CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "volley",
		Short: "volley - data-driven projectile triggers and emitters",
		Long: `Load trigger and emitter configuration, check it, and drive it
through scenarios or a live watch loop.

Environment:
  VOLLEY_CONFIG_DIR      default configuration directory (config)
  VOLLEY_DB              SQLite database for generation history and snapshots
  VOLLEY_LOG_LEVEL       debug|info|warn|error (info)
  VOLLEY_WATCH_DEBOUNCE  reload debounce for 'watch' (100ms)
  VOLLEY_PLUGINS         comma-separated plugin load order`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			opts.Config = cfg
			setupLogging(cmd, opts)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringSliceVar(&opts.Plugins, "plugins", nil, "plugin load order for plugin|0xID form references (overrides VOLLEY_PLUGINS)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// setupLogging installs a text handler on stderr. --verbose forces debug;
// otherwise the level comes from VOLLEY_LOG_LEVEL.
func setupLogging(cmd *cobra.Command, opts *RootOptions) {
	level, err := config.ParseLevel(opts.Config.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// configDir returns the directory argument, or the configured default.
func configDir(opts *RootOptions, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return opts.Config.ConfigDir
}

// dbPath returns the --db flag value, or VOLLEY_DB.
func dbPath(opts *RootOptions, flag string) string {
	if flag != "" {
		return flag
	}
	return opts.Config.DB
}

// plugins returns the --plugins flag value, or VOLLEY_PLUGINS.
func plugins(opts *RootOptions) []string {
	if len(opts.Plugins) > 0 {
		return opts.Plugins
	}
	return opts.Config.Plugins
}
