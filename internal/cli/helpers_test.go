package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const bowsConfig = `FormIDs: FireKwd: "0x1CEAD"

EmittersData: {
	Thrice: {
		interval: 0.5
		limited:  true
		count:    3
	}
	Homing: {
		interval: 1
		functions: [{type: "AccelerateToMaxSpeed", speedType: "Linear", time: 1}]
	}
}

Triggers: [{
	event: "ProjAppeared"
	conditions: SpellHasKwd: "FireKwd"
	TriggerFunctions: emitter: "Thrice"
}]
`

const thriceScenario = `name: thrice
description: "A limited emitter fires three times"
config: ../config
steps:
  - launch:
      projectile: p1
      speed: 100
      context:
        spell: {id: 0x800, keywords: [0x1CEAD]}
  - tick: {dt: 0.5, frames: 4}
assertions:
  - type: trace_count
    line: "emit Thrice p1"
    count: 3
`

const failingScenario = `name: failing
description: "Expects an emitter the spell never earns"
config: ../config
steps:
  - launch:
      projectile: p1
      context:
        spell: {id: 0x800}
assertions:
  - type: trace_contains
    line: "apply Thrice p1"
`

// quietEnv pins the environment the root command reads.
func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VOLLEY_LOG_LEVEL", "error")
	t.Setenv("VOLLEY_DB", "")
	t.Setenv("VOLLEY_PLUGINS", "")
	t.Setenv("VOLLEY_CONFIG_DIR", "config")
	t.Setenv("VOLLEY_WATCH_DEBOUNCE", "20ms")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeWorkspace lays out <root>/config/bows.cue and the given scenarios
// under <root>/scenarios.
func writeWorkspace(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "bows.cue"), bowsConfig)
	for name, body := range scenarios {
		writeFile(t, filepath.Join(root, "scenarios", name), body)
	}
	return root
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	quietEnv(t)

	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}
