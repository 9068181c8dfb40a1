package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloads struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *reloads) record(_ context.Context, changed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
}

func (r *reloads) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func startWatcher(t *testing.T, dir string, debounce time.Duration) *reloads {
	t.Helper()
	w, err := New(dir, debounce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := &reloads{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, r.record)
	}()
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
		<-done
	})
	return r
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_ReloadsOnSourceWrite(t *testing.T) {
	dir := t.TempDir()
	r := startWatcher(t, dir, 20*time.Millisecond)

	path := filepath.Join(dir, "bows.cue")
	writeFile(t, path, "a: 1\n")

	require.Eventually(t, func() bool { return len(r.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, r.snapshot()[0], path)
}

func TestWatcher_IgnoresNonSources(t *testing.T) {
	dir := t.TempDir()
	r := startWatcher(t, dir, 20*time.Millisecond)

	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, ".hidden.cue"), "a: 1\n")
	src := filepath.Join(dir, "spells.json")
	writeFile(t, src, "{}")

	require.Eventually(t, func() bool { return len(r.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	for _, call := range r.snapshot() {
		assert.Equal(t, []string{src}, call)
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	r := startWatcher(t, dir, 200*time.Millisecond)

	a := filepath.Join(dir, "a.cue")
	b := filepath.Join(dir, "b.cue")
	writeFile(t, a, "a: 1\n")
	writeFile(t, b, "b: 1\n")
	writeFile(t, a, "a: 2\n")

	require.Eventually(t, func() bool { return len(r.snapshot()) > 0 }, 3*time.Second, 10*time.Millisecond)
	calls := r.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{a, b}, calls[0])
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	r := startWatcher(t, dir, 20*time.Millisecond)

	sub := filepath.Join(dir, "mods")
	require.NoError(t, os.Mkdir(sub, 0o755))

	path := filepath.Join(sub, "extra.cue")
	require.Eventually(t, func() bool {
		// The directory is added asynchronously; rewrite until noticed.
		writeFile(t, path, "a: 1\n")
		for _, call := range r.snapshot() {
			for _, p := range call {
				if p == path {
					return true
				}
			}
		}
		return false
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, func(context.Context, []string) {}), context.Canceled)
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), time.Millisecond)
	assert.Error(t, err)
}
