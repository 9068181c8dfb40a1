package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/store"
)

func seedHistory(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "volley.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	for i := range n {
		_, err := st.RecordGeneration(context.Background(), &ir.Generation{
			ID:      fmt.Sprintf("gen-%d", i+1),
			Hash:    "0123456789abcdef0123",
			Sources: []string{"bows.cue"},
		})
		require.NoError(t, err)
	}
	return path
}

func TestHistory_Text(t *testing.T) {
	db := seedHistory(t, 2)

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "gen-1  0123456789ab  0 emitter(s), 0 trigger(s)  [bows.cue]")
	assert.Contains(t, out, "gen-2")
}

func TestHistory_JSONLimit(t *testing.T) {
	db := seedHistory(t, 3)

	out, err := execute(t, "history", "--db", db, "--limit", "2", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Generations, 2)
	assert.Equal(t, "gen-2", resp.Data.Generations[0].ID)
	assert.Equal(t, "gen-3", resp.Data.Generations[1].ID)
}

func TestHistory_Empty(t *testing.T) {
	db := seedHistory(t, 0)

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No generations recorded.")
}

func TestHistory_NoDatabase(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database")
}
