package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/roach88/volley/internal/compiler"
	"github.com/roach88/volley/internal/ir"
)

var tracer = otel.Tracer("github.com/roach88/volley/internal/engine")

// Runtime is one installed generation with its tables built.
// A Runtime is immutable once installed.
type Runtime struct {
	Gen      *ir.Generation
	Triggers *TriggerRegistry
	Emitters *EmitterTable
}

// Engine owns the installed Runtime and the emitter side-table.
//
// Thread-safety model:
//   - Dispatch, OnUpdate, Apply, Disable: one simulation goroutine
//   - Install, Reload, Clear: any goroutine; installs are serialised and
//     the swap is atomic
type Engine struct {
	current atomic.Pointer[Runtime]
	mu      sync.Mutex // serialises installs

	states      StateTable
	factory     ActionFactory
	ids         IDGenerator
	clock       *Clock
	recorder    Recorder
	sched       *Scheduler
	compileOpts []compiler.Option
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStateTable sets the emitter side-table. Default: a MemoryTable.
func WithStateTable(t StateTable) EngineOption {
	return func(e *Engine) { e.states = t }
}

// WithActionFactory sets the host action factory. Default: NopActionFactory.
func WithActionFactory(f ActionFactory) EngineOption {
	return func(e *Engine) { e.factory = f }
}

// WithIDGenerator sets the generation ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) { e.ids = g }
}

// WithClock sets the logical clock used to stamp firings.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithRecorder sets the firing recorder.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithCompilerOptions sets the options Reload passes to the compiler.
func WithCompilerOptions(opts ...compiler.Option) EngineOption {
	return func(e *Engine) { e.compileOpts = opts }
}

// New creates an Engine with an empty generation installed.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		states:  NewMemoryTable(),
		factory: NopActionFactory{},
		ids:     UUIDv7Generator{},
		clock:   NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sched = NewScheduler(e.states, e.record)

	if _, err := e.Install(&ir.Generation{}); err != nil {
		// An empty generation has no actions to build.
		panic(fmt.Sprintf("engine: install empty generation: %v", err))
	}
	return e
}

// Runtime returns the installed runtime.
func (e *Engine) Runtime() *Runtime {
	return e.current.Load()
}

// Generation returns the installed generation.
func (e *Engine) Generation() *ir.Generation {
	return e.current.Load().Gen
}

// States returns the emitter side-table.
func (e *Engine) States() StateTable {
	return e.states
}

// Clock returns the logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Install builds tables for gen and swaps them in. gen is copied and
// given a fresh ID; the installed copy is returned. On error the previous
// generation stays installed.
func (e *Engine) Install(gen *ir.Generation) (*ir.Generation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := *gen
	rt := &Runtime{Gen: &cp}
	build := actionBuilder(e.factory, func(p Projectile, idx ir.Index) error {
		return e.sched.Apply(rt, p, idx)
	})

	var err error
	if rt.Triggers, err = NewTriggerRegistry(cp.Triggers, build); err != nil {
		return nil, err
	}
	if rt.Emitters, err = NewEmitterTable(cp.Emitters, build); err != nil {
		return nil, err
	}

	cp.ID = e.ids.Generate()
	prev := e.current.Swap(rt)

	attrs := []any{
		"generation", cp.ID,
		"hash", cp.Hash,
		"sources", len(cp.Sources),
		"emitters", len(cp.Emitters),
		"triggers", len(cp.Triggers),
	}
	if prev != nil {
		attrs = append(attrs, "previous", prev.Gen.ID)
	}
	slog.Info("generation installed", attrs...)
	return &cp, nil
}

// Reload compiles docs with the full two-phase load and installs the
// result. Nothing changes unless every step succeeds.
func (e *Engine) Reload(ctx context.Context, docs []compiler.Document) (*ir.Generation, error) {
	ctx, span := tracer.Start(ctx, "engine.Reload")
	defer span.End()

	gen, err := compiler.Compile(ctx, docs, e.compileOpts...)
	if err == nil {
		gen, err = e.Install(gen)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload rejected")
		slog.Warn("reload rejected, previous generation kept",
			"generation", e.Generation().ID,
			"error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("volley.generation.id", gen.ID),
		attribute.String("volley.generation.hash", gen.Hash),
	)
	return gen, nil
}

// Clear installs an empty generation. Every existing instance state
// becomes stale.
func (e *Engine) Clear() {
	if _, err := e.Install(&ir.Generation{}); err != nil {
		slog.Error("clear failed", "error", err)
	}
}

// Dispatch runs every trigger registered for ev. Returns the number of
// actions run.
func (e *Engine) Dispatch(ev ir.Event, ctx *EventContext, call Call) int {
	rt := e.current.Load()
	var inst ir.InstanceID
	if call.Projectile != nil {
		inst = call.Projectile.ID()
	}
	n := rt.Triggers.Dispatch(ev, ctx, call, func(t *Trigger) {
		e.record(Firing{Kind: FiringTrigger, Event: ev, Trigger: t.ID(), Instance: inst,
			Emitter: t.Def().Action.EmitterName, Index: t.Def().Action.Emitter})
	})
	slog.Debug("dispatch", "event", ev, "fired", n)
	return n
}

// ShouldDisableOrigin reports whether a ProjAppeared trigger suppresses
// the projectile about to spawn.
func (e *Engine) ShouldDisableOrigin(ctx *EventContext) bool {
	return e.current.Load().Triggers.ShouldDisableOrigin(ctx)
}

// Apply assigns emitter idx of the installed generation to p.
func (e *Engine) Apply(p Projectile, idx ir.Index) error {
	return e.sched.Apply(e.current.Load(), p, idx)
}

// Disable removes p's emitter.
func (e *Engine) Disable(p Projectile) {
	e.sched.Disable(e.current.Load(), p)
}

// IsEmitter reports whether p carries an emitter of the installed generation.
func (e *Engine) IsEmitter(p Projectile) bool {
	return e.sched.IsEmitter(e.current.Load(), p)
}

// OnUpdate advances p's emitter by dt. See Scheduler.OnUpdate.
func (e *Engine) OnUpdate(p Projectile, dt float64) error {
	return e.sched.OnUpdate(e.current.Load(), p, dt)
}

// OnImpact is called when p hits something; it disables p's emitter.
func (e *Engine) OnImpact(p Projectile) {
	if e.IsEmitter(p) {
		e.Disable(p)
	}
}

// OnRelease is called when the host unloads p; it disables p's emitter.
func (e *Engine) OnRelease(p Projectile) {
	if e.IsEmitter(p) {
		e.Disable(p)
	}
}

func (e *Engine) record(f Firing) {
	if e.recorder == nil {
		return
	}
	f.Seq = e.clock.Next()
	e.recorder.Record(f)
}
