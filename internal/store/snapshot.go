package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/volley/internal/ir"
)

// ErrHashMismatch is returned by LoadSnapshot when the stored snapshot was
// taken under a different configuration.
var ErrHashMismatch = errors.New("snapshot generation hash mismatch")

// SaveSnapshot replaces the stored snapshot with the live entries of
// states, tagged with gen's hash. Inactive entries and entries stamped by
// another generation are skipped.
func (s *Store) SaveSnapshot(ctx context.Context, gen *ir.Generation, states map[ir.InstanceID]ir.InstanceState) error {
	if gen == nil {
		return errors.New("save snapshot: nil generation")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emitter_states"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO emitter_states (instance_id, emitter_index, remaining, generation_hash)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]ir.InstanceID, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		st := states[id]
		if !st.Active() || (st.Generation != "" && st.Generation != gen.ID) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, string(id), uint32(st.Index), st.Remaining, gen.Hash); err != nil {
			return fmt.Errorf("insert state %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot restamped with gen's ID. An empty
// store yields an empty map. A snapshot taken under another hash, or one
// naming an index gen does not define, is refused and nothing is returned.
func (s *Store) LoadSnapshot(ctx context.Context, gen *ir.Generation) (map[ir.InstanceID]ir.InstanceState, error) {
	if gen == nil {
		return nil, errors.New("load snapshot: nil generation")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT instance_id, emitter_index, remaining, generation_hash
		FROM emitter_states
		ORDER BY instance_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[ir.InstanceID]ir.InstanceState)
	for rows.Next() {
		var (
			id        string
			index     uint32
			remaining uint32
			hash      string
		)
		if err := rows.Scan(&id, &index, &remaining, &hash); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		if hash != gen.Hash {
			return nil, fmt.Errorf("%w: stored %s, current %s", ErrHashMismatch, short(hash), short(gen.Hash))
		}
		if _, ok := gen.Emitter(ir.Index(index)); !ok {
			return nil, fmt.Errorf("state %s: emitter index %d not defined", id, index)
		}
		out[ir.InstanceID(id)] = ir.InstanceState{
			Index:      ir.Index(index),
			Remaining:  remaining,
			Generation: gen.ID,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return out, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
