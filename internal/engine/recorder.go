package engine

import "github.com/roach88/volley/internal/ir"

// FiringKind classifies a recorded Firing.
type FiringKind string

const (
	FiringTrigger FiringKind = "trigger" // a trigger's conditions held and its action ran
	FiringApply   FiringKind = "apply"   // an emitter was assigned to an instance
	FiringEmit    FiringKind = "emit"    // an emitter passed its interval and ran its functions
	FiringDisable FiringKind = "disable" // an active emitter was removed
	FiringDestroy FiringKind = "destroy" // a limited emitter finished and deleted its instance
)

// Firing is one observable step of the engine.
type Firing struct {
	Seq      int64
	Kind     FiringKind
	Event    ir.Event // FiringTrigger only
	Trigger  string   // "source#position", FiringTrigger only
	Emitter  string   // emitter name
	Index    ir.Index
	Instance ir.InstanceID

	// Remaining is the limited count before this firing (FiringEmit) or
	// the initial count (FiringApply).
	Remaining uint32
}

// Recorder receives every Firing in order.
type Recorder interface {
	Record(f Firing)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(f Firing)

// Record implements Recorder.
func (fn RecorderFunc) Record(f Firing) { fn(f) }

// MemoryRecorder keeps firings in a slice. Not safe for concurrent use.
type MemoryRecorder struct {
	Firings []Firing
}

// Record implements Recorder.
func (m *MemoryRecorder) Record(f Firing) {
	m.Firings = append(m.Firings, f)
}

// Reset drops the recorded firings.
func (m *MemoryRecorder) Reset() {
	m.Firings = m.Firings[:0]
}
