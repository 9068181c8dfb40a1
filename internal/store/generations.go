package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/volley/internal/ir"
)

// GenerationRecord is one row of reload history.
type GenerationRecord struct {
	Seq           int64    `json:"seq"`
	ID            string   `json:"id"`
	Hash          string   `json:"hash"`
	Sources       []string `json:"sources"`
	Emitters      int      `json:"emitters"`
	Triggers      int      `json:"triggers"`
	EngineVersion string   `json:"engine_version"`
	SchemaVersion string   `json:"schema_version"`
}

// RecordGeneration appends gen to the reload history and returns its seq.
// Recording the same generation ID twice is a no-op that returns the
// existing seq.
func (s *Store) RecordGeneration(ctx context.Context, gen *ir.Generation) (int64, error) {
	if gen == nil || gen.ID == "" {
		return 0, errors.New("record generation: generation has no id")
	}
	sources, err := json.Marshal(nonNil(gen.Sources))
	if err != nil {
		return 0, fmt.Errorf("marshal sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generations (id, hash, sources, emitters, triggers, engine_version, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, gen.ID, gen.Hash, string(sources), len(gen.Emitters), len(gen.Triggers),
		ir.EngineVersion, ir.SchemaVersion)
	if err != nil {
		return 0, fmt.Errorf("insert generation %s: %w", gen.ID, err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT seq FROM generations WHERE id = ?", gen.ID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read generation seq: %w", err)
	}
	return seq, nil
}

// Generations returns the reload history, oldest first.
func (s *Store) Generations(ctx context.Context) ([]GenerationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, hash, sources, emitters, triggers, engine_version, schema_version
		FROM generations
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var (
			rec     GenerationRecord
			sources string
		)
		if err := rows.Scan(&rec.Seq, &rec.ID, &rec.Hash, &sources,
			&rec.Emitters, &rec.Triggers, &rec.EngineVersion, &rec.SchemaVersion); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
			return nil, fmt.Errorf("generation %s: decode sources: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}

// LatestGeneration returns the most recently recorded generation, or false
// when the history is empty.
func (s *Store) LatestGeneration(ctx context.Context) (GenerationRecord, bool, error) {
	all, err := s.Generations(ctx)
	if err != nil {
		return GenerationRecord{}, false, err
	}
	if len(all) == 0 {
		return GenerationRecord{}, false, nil
	}
	return all[len(all)-1], true, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
