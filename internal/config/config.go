// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the operator settings for the volley CLI. Flags override
// these values.
type Config struct {
	ConfigDir     string        `env:"VOLLEY_CONFIG_DIR"     envDefault:"config"`
	DB            string        `env:"VOLLEY_DB"`
	LogLevel      string        `env:"VOLLEY_LOG_LEVEL"      envDefault:"info"`
	WatchDebounce time.Duration `env:"VOLLEY_WATCH_DEBOUNCE" envDefault:"100ms"`
	Plugins       []string      `env:"VOLLEY_PLUGINS"        envSeparator:","`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Plugins = trimPlugins(cfg.Plugins)
	if cfg.WatchDebounce < 0 {
		return Config{}, fmt.Errorf("VOLLEY_WATCH_DEBOUNCE must not be negative, got %s", cfg.WatchDebounce)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return lvl, nil
}

func trimPlugins(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
