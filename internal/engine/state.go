package engine

import (
	"maps"
	"sync"

	"github.com/roach88/volley/internal/ir"
)

// StateTable is the side-table holding per-instance emitter state.
// An instance without an entry is Disabled.
type StateTable interface {
	Get(id ir.InstanceID) (ir.InstanceState, bool)
	Set(id ir.InstanceID, st ir.InstanceState)
	Delete(id ir.InstanceID)
}

// MemoryTable is an in-process StateTable. Safe for concurrent use.
type MemoryTable struct {
	mu     sync.RWMutex
	states map[ir.InstanceID]ir.InstanceState
}

// NewMemoryTable returns an empty table.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{states: make(map[ir.InstanceID]ir.InstanceState)}
}

// Get implements StateTable.
func (m *MemoryTable) Get(id ir.InstanceID) (ir.InstanceState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[id]
	return st, ok
}

// Set implements StateTable. Setting a Disabled state removes the entry.
func (m *MemoryTable) Set(id ir.InstanceID, st ir.InstanceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !st.Active() {
		delete(m.states, id)
		return
	}
	m.states[id] = st
}

// Delete implements StateTable.
func (m *MemoryTable) Delete(id ir.InstanceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
}

// Len returns the number of active entries.
func (m *MemoryTable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

// Snapshot returns a copy of every entry.
func (m *MemoryTable) Snapshot() map[ir.InstanceID]ir.InstanceState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.states)
}

// Restore replaces every entry with states.
func (m *MemoryTable) Restore(states map[ir.InstanceID]ir.InstanceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[ir.InstanceID]ir.InstanceState, len(states))
	for id, st := range states {
		if st.Active() {
			m.states[id] = st
		}
	}
}
