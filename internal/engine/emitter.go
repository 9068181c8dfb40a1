package engine

import (
	"fmt"

	"github.com/roach88/volley/internal/ir"
)

// EmitterTable holds the emitter definitions of one generation, indexed
// 1..Len, with the actions of their TriggerFunctions functions built.
type EmitterTable struct {
	defs    []ir.EmitterDef
	actions [][]Action // actions[i][j] is set when defs[i].Functions[j] is an action
}

// NewEmitterTable builds a table from defs, which must be in index order.
func NewEmitterTable(defs []ir.EmitterDef, build func(ir.ActionSpec) (Action, error)) (*EmitterTable, error) {
	t := &EmitterTable{
		defs:    defs,
		actions: make([][]Action, len(defs)),
	}
	for i := range defs {
		def := &defs[i]
		if def.Index != ir.Index(i+1) {
			return nil, fmt.Errorf("emitter %s/%s: index %d at position %d", def.Source, def.Name, def.Index, i+1)
		}
		t.actions[i] = make([]Action, len(def.Functions))
		for j, fn := range def.Functions {
			if fn.Kind != ir.FunctionAction {
				continue
			}
			a, err := build(fn.Action)
			if err != nil {
				return nil, fmt.Errorf("emitter %s/%s: functions[%d]: %w", def.Source, def.Name, j, err)
			}
			t.actions[i][j] = a
		}
	}
	return t, nil
}

// Get returns the definition at idx. Index 0 is a caller bug and returns a
// NOT_EMITTER RuntimeError.
func (t *EmitterTable) Get(idx ir.Index) (*ir.EmitterDef, error) {
	if idx == 0 {
		return nil, &RuntimeError{Code: ErrCodeNotEmitter, Message: "emitter index 0 looked up"}
	}
	if int(idx) > len(t.defs) {
		return nil, &RuntimeError{
			Code:    ErrCodeIndexOutOfRange,
			Message: fmt.Sprintf("emitter index %d beyond table size %d", idx, len(t.defs)),
			Index:   idx,
		}
	}
	return &t.defs[idx-1], nil
}

// Len returns the number of definitions.
func (t *EmitterTable) Len() int {
	return len(t.defs)
}

func (t *EmitterTable) action(idx ir.Index, fn int) Action {
	return t.actions[idx-1][fn]
}
