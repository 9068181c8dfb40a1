package engine_test

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/testutil"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// testGeneration has three emitters:
//
//	1 Every:   interval 1, unlimited, one Linear curve over 1s
//	2 Thrice:  interval 0.5, limited 3
//	3 Burst:   interval 0, limited 2, destroyAfter
//
// and triggers on Swing (one per hand) and ProjAppeared (applies Thrice).
func testGeneration() *ir.Generation {
	return &ir.Generation{
		Hash:    "test",
		Sources: []string{"test.cue"},
		Emitters: []ir.EmitterDef{
			{Source: "test.cue", Name: "Every", Index: 1, Interval: 1, Count: 1,
				Functions: []ir.FunctionSpec{{Kind: ir.FunctionAccelerate, Curve: ir.SpeedLinear, Time: 1}}},
			{Source: "test.cue", Name: "Thrice", Index: 2, Interval: 0.5, Limited: true, Count: 3},
			{Source: "test.cue", Name: "Burst", Index: 3, Interval: 0, Limited: true, Count: 2, DestroyAfter: true},
		},
		Triggers: []ir.TriggerDef{
			{Source: "test.cue", Position: 0, Event: ir.EventSwing,
				Conditions: []ir.Condition{ir.HandCondition(ir.HandLeft)}},
			{Source: "test.cue", Position: 1, Event: ir.EventSwing,
				Conditions: []ir.Condition{ir.HandCondition(ir.HandRight)}},
			{Source: "test.cue", Position: 2, Event: ir.EventProjAppeared,
				Action: ir.ActionSpec{Source: "test.cue", EmitterName: "Thrice", Emitter: 2}},
		},
	}
}

// newTestEngine installs testGeneration with a recording factory.
func newTestEngine(t *testing.T, opts ...engine.EngineOption) (*engine.Engine, *testutil.RecordingFactory, *engine.MemoryRecorder) {
	t.Helper()
	factory := &testutil.RecordingFactory{}
	rec := &engine.MemoryRecorder{}
	opts = append([]engine.EngineOption{
		engine.WithActionFactory(factory),
		engine.WithRecorder(rec),
		engine.WithIDGenerator(testutil.NewSequentialIDs("")),
	}, opts...)
	e := engine.New(opts...)
	if _, err := e.Install(testGeneration()); err != nil {
		t.Fatalf("install: %v", err)
	}
	return e, factory, rec
}

func kinds(fs []engine.Firing) []engine.FiringKind {
	out := make([]engine.FiringKind, len(fs))
	for i, f := range fs {
		out[i] = f.Kind
	}
	return out
}
