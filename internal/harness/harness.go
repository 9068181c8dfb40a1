package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/volley/internal/compiler"
	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/loader"
	"github.com/roach88/volley/internal/store"
	"github.com/roach88/volley/internal/testutil"
)

// Harness executes one scenario against a fresh engine.
type Harness struct {
	engine  *engine.Engine
	states  *engine.MemoryTable
	factory *testutil.RecordingFactory
	clock   *testutil.SimClock
	store   *store.Store // opened on the first restart step
	logger  *slog.Logger

	configDir string
	order     []string // projectile spawn order
	result    *Result
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger for step progress. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and evaluates its assertions.
//
// An error means the scenario could not run at all: its initial
// configuration failed to load, or a step referenced something that does
// not exist. Assertion failures are reported in the Result.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	ctx := context.Background()
	result := NewResult()

	h := &Harness{
		states:  engine.NewMemoryTable(),
		factory: &testutil.RecordingFactory{},
		clock:   testutil.NewSimClock(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		result:  result,
	}
	for _, opt := range opts {
		opt(h)
	}
	defer h.close()

	h.engine = engine.New(
		engine.WithStateTable(h.states),
		engine.WithActionFactory(h.factory),
		engine.WithIDGenerator(testutil.NewSequentialIDs("gen")),
		engine.WithRecorder(engine.RecorderFunc(result.firing)),
		engine.WithCompilerOptions(compiler.WithPlugins(s.Plugins)),
	)

	result.header("load %s", filepath.Base(s.Config))
	if _, err := h.load(ctx, s.Config); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	for i := range s.Steps {
		if err := h.step(ctx, &s.Steps[i]); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		h.logger.Debug("step completed", "step", i, "trace", len(result.Trace))
	}

	result.Generation = h.engine.Generation()
	result.States = h.states.Snapshot()
	result.Actions = h.factory.Executions()

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) close() {
	if h.store != nil {
		_ = h.store.Close()
	}
}

func (h *Harness) load(ctx context.Context, dir string) (*ir.Generation, error) {
	docs, err := loader.Load(dir)
	if err != nil {
		return nil, err
	}
	gen, err := h.engine.Reload(ctx, docs)
	if err != nil {
		return nil, err
	}
	h.configDir = dir
	h.result.header("generation %s: %d emitters, %d triggers", gen.ID, len(gen.Emitters), len(gen.Triggers))
	return gen, nil
}

func (h *Harness) step(ctx context.Context, st *Step) error {
	switch {
	case st.Dispatch != nil:
		return h.dispatch(st.Dispatch)
	case st.Launch != nil:
		return h.launch(st.Launch)
	case st.Tick != nil:
		return h.tick(st.Tick)
	case st.Impact != "":
		p, err := h.projectile(st.Impact)
		if err != nil {
			return err
		}
		h.result.header("impact %s", st.Impact)
		h.engine.OnImpact(p)
	case st.Release != "":
		p, err := h.projectile(st.Release)
		if err != nil {
			return err
		}
		h.result.header("release %s", st.Release)
		h.engine.OnRelease(p)
	case st.Apply != nil:
		return h.apply(st.Apply)
	case st.Disable != "":
		p, err := h.projectile(st.Disable)
		if err != nil {
			return err
		}
		h.result.header("disable %s", st.Disable)
		h.engine.Disable(p)
	case st.Reload != nil:
		return h.reload(ctx, st.Reload)
	case st.Restart:
		return h.restart(ctx)
	}
	return nil
}

func (h *Harness) dispatch(d *DispatchStep) error {
	ev, _ := ir.ParseEvent(d.Event)
	ctx := d.Context.eventContext()
	call := engine.Call{}
	if d.Projectile != "" {
		p, err := h.projectile(d.Projectile)
		if err != nil {
			return err
		}
		call.Projectile = p
	}
	h.result.header("dispatch %s", ev)

	if d.Victim != nil {
		switch ev {
		case ir.EventHitMelee:
			h.engine.MeleeHit(&ctx, d.Victim.actor())
			return nil
		case ir.EventHitProjectile:
			h.engine.ProjectileHit(&ctx, d.Victim.actor())
			return nil
		}
		return fmt.Errorf("victim is only valid for HitMelee and HitProjectile")
	}
	h.engine.Dispatch(ev, &ctx, call)
	return nil
}

func (h *Harness) launch(l *LaunchStep) error {
	if _, ok := h.result.Projectiles[l.Projectile]; ok {
		return fmt.Errorf("projectile %q already spawned", l.Projectile)
	}
	ctx := l.Context.eventContext()
	if ctx.Origin == ir.OriginNone {
		ctx.Origin = ir.OriginSpell
		if l.Arrow {
			ctx.Origin = ir.OriginArrow
		}
	}
	h.result.header("launch %s", l.Projectile)

	var suppressed bool
	if l.Arrow {
		suppressed = h.engine.LaunchArrow(&ctx)
	} else {
		suppressed = h.engine.LaunchSpell(&ctx)
	}
	if suppressed {
		h.result.header("suppressed %s", l.Projectile)
		return nil
	}

	p := testutil.NewProjectile(l.Projectile, l.Speed, l.MaxSpeed)
	p.NoEmitter = l.NoEmitter
	p.Ctx = ctx
	h.result.Projectiles[l.Projectile] = p
	h.order = append(h.order, l.Projectile)

	h.engine.ProjectileLaunched(&p.Ctx, p)
	return nil
}

func (h *Harness) tick(t *TickStep) error {
	frames := t.Frames
	if frames == 0 {
		frames = 1
	}
	for range frames {
		now := h.clock.Advance(t.DT)
		h.result.header("tick t=%g", now)
		for _, name := range h.order {
			p := h.result.Projectiles[name]
			if p.Deleted {
				continue
			}
			err := h.engine.OnUpdate(p, t.DT)
			switch {
			case err == nil, engine.IsNotEmitter(err):
			case engine.IsStaleGeneration(err):
				h.result.header("stale %s", name)
			default:
				return err
			}
		}
	}
	return nil
}

func (h *Harness) apply(a *ApplyStep) error {
	p, err := h.projectile(a.Projectile)
	if err != nil {
		return err
	}
	idx, err := emitterIndex(h.engine.Generation(), a.Emitter)
	if err != nil {
		return err
	}
	h.result.header("apply %s %s", a.Emitter, a.Projectile)
	return h.engine.Apply(p, idx)
}

func (h *Harness) reload(ctx context.Context, r *ReloadStep) error {
	h.result.header("reload %s", filepath.Base(r.Config))
	_, err := h.load(ctx, r.Config)
	switch {
	case err != nil && r.ExpectError:
		h.result.header("reload rejected")
		return nil
	case err != nil:
		return err
	case r.ExpectError:
		h.result.AddError(fmt.Sprintf("reload %s: expected rejection, got success", r.Config))
	}
	return nil
}

// restart persists the side-table, installs the current configuration as
// a new generation and restores the snapshot into it.
func (h *Harness) restart(ctx context.Context) error {
	if h.store == nil {
		st, err := store.Open(":memory:")
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		h.store = st
	}

	h.result.header("restart")
	gen := h.engine.Generation()
	if err := h.store.SaveSnapshot(ctx, gen, h.states.Snapshot()); err != nil {
		return err
	}
	if _, err := h.load(ctx, h.configDir); err != nil {
		return err
	}
	restored, err := h.store.LoadSnapshot(ctx, h.engine.Generation())
	if err != nil {
		return err
	}
	h.states.Restore(restored)
	h.result.header("restored %d states", len(restored))
	return nil
}

func (h *Harness) projectile(name string) (*testutil.Projectile, error) {
	p, ok := h.result.Projectiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown projectile %q", name)
	}
	return p, nil
}

// emitterIndex finds the emitter named name. Names are unique per source
// only, so a name defined by several sources is ambiguous.
func emitterIndex(gen *ir.Generation, name string) (ir.Index, error) {
	var found ir.Index
	for _, def := range gen.Emitters {
		if def.Name != name {
			continue
		}
		if found.IsSet() {
			return 0, fmt.Errorf("emitter %q is defined by several sources", name)
		}
		found = def.Index
	}
	if !found.IsSet() {
		return 0, fmt.Errorf("unknown emitter %q", name)
	}
	return found, nil
}

// StateOf returns the emitter name and remaining count of a projectile, or
// NoEmitter when it is Disabled or its state is stale.
func (r *Result) StateOf(name string) (string, uint32) {
	p, ok := r.Projectiles[name]
	if !ok || r.Generation == nil {
		return NoEmitter, 0
	}
	st, ok := r.States[p.ID()]
	if !ok || st.Generation != r.Generation.ID {
		return NoEmitter, 0
	}
	def, ok := r.Generation.Emitter(st.Index)
	if !ok {
		return NoEmitter, 0
	}
	return def.Name, st.Remaining
}
