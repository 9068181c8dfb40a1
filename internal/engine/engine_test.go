package engine_test

import (
	"context"
	"errors"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/volley/internal/compiler"
	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/testutil"
)

func doc(t *testing.T, source, src string) compiler.Document {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return compiler.Document{Source: source, Value: v, Bytes: []byte(src)}
}

func TestEngineNewIsEmpty(t *testing.T) {
	e := engine.New()
	assert.Empty(t, e.Generation().Emitters)
	assert.Equal(t, 0, e.Runtime().Triggers.Len())
	assert.NotEmpty(t, e.Generation().ID)
	assert.Zero(t, e.Dispatch(ir.EventSwing, &engine.EventContext{}, engine.Call{}))
}

func TestEngineDispatchRecordsInOrder(t *testing.T) {
	e, f, rec := newTestEngine(t)

	n := e.Dispatch(ir.EventSwing, &engine.EventContext{Casting: ir.CastingInstant}, engine.Call{})
	assert.Equal(t, 1, n)
	assert.Empty(t, f.Actions[0].Calls)
	assert.Len(t, f.Actions[1].Calls, 1)

	require.Len(t, rec.Firings, 1)
	assert.Equal(t, engine.FiringTrigger, rec.Firings[0].Kind)
	assert.Equal(t, "test.cue#1", rec.Firings[0].Trigger)
	assert.Equal(t, ir.EventSwing, rec.Firings[0].Event)
	assert.Equal(t, int64(1), rec.Firings[0].Seq)
}

func TestEngineBuiltinEmitterAction(t *testing.T) {
	e, f, rec := newTestEngine(t)
	p := testutil.NewProjectile("p1", 1, 10)

	e.ProjectileLaunched(p.EventContext(), p)

	assert.True(t, e.IsEmitter(p))
	st, _ := e.States().Get(p.ID())
	assert.Equal(t, ir.Index(2), st.Index)
	assert.Equal(t, uint32(3), st.Remaining)
	assert.Len(t, f.Actions[2].Calls, 1, "host action runs after the emitter is applied")
	assert.Equal(t, []engine.FiringKind{engine.FiringTrigger, engine.FiringApply}, kinds(rec.Firings))
	assert.Equal(t, "Thrice", rec.Firings[0].Emitter)
}

func TestEngineVelocityComputedIsSpeedOnly(t *testing.T) {
	e, f, _ := newTestEngine(t)
	p := testutil.NewProjectile("p1", 1, 10)

	e.VelocityComputed(p)

	assert.False(t, e.IsEmitter(p), "speed-only dispatch does not apply emitters")
	require.Len(t, f.Actions[2].Calls, 1)
	assert.True(t, f.Actions[2].Calls[0].SpeedOnly)
}

func TestEngineLaunchSuppression(t *testing.T) {
	e, f, _ := newTestEngine(t)
	ctx := &engine.EventContext{Origin: ir.OriginSpell}

	assert.False(t, e.LaunchSpell(ctx))
	assert.Empty(t, f.Actions[2].Calls, "no dispatch when the origin is kept")

	f.Actions[2].Suppress = true
	assert.True(t, e.LaunchArrow(ctx))
	require.Len(t, f.Actions[2].Calls, 1)
	assert.Nil(t, f.Actions[2].Calls[0].Projectile)
}

func TestEngineMeleeHitSwapsShooter(t *testing.T) {
	src := `
		Triggers: [
			{event: "HitMelee", conditions: CasterIsFormID: "0x14", TriggerFunctions: {}},
			{event: "HitByMelee", conditions: CasterIsFormID: "0x14", TriggerFunctions: {}},
			{event: "HitByMelee", conditions: CasterIsFormID: "0x99", TriggerFunctions: {}},
		]
	`
	f := &testutil.RecordingFactory{}
	e := engine.New(engine.WithActionFactory(f))
	_, err := e.Reload(context.Background(), []compiler.Document{doc(t, "melee.cue", src)})
	require.NoError(t, err)

	attacker := &testutil.Actor{Form: testutil.Form{ID: 0x14}}
	victim := &testutil.Actor{Form: testutil.Form{ID: 0x99}}
	ctx := &engine.EventContext{Shooter: attacker, Casting: ir.CastingRightHand}

	e.MeleeHit(ctx, victim)

	assert.Len(t, f.Actions[0].Calls, 1)
	assert.Empty(t, f.Actions[1].Calls)
	assert.Len(t, f.Actions[2].Calls, 1)
	assert.Same(t, attacker, ctx.Shooter, "caller's context is not modified")

	e.ProjectileHit(ctx, victim)
	e.Swing(ctx)
	e.EffectStarted(ctx)
	assert.Equal(t, 2, f.Executions(), "no HitProjectile/Swing/EffectStart triggers")
}

func TestEngineReloadAtomicity(t *testing.T) {
	first := doc(t, "a.cue", `EmittersData: {A: interval: 1, B: interval: 1}`)
	second := doc(t, "a.cue", `EmittersData: {C: interval: 1}`)

	e := engine.New(engine.WithIDGenerator(testutil.NewSequentialIDs("")))
	g1, err := e.Reload(context.Background(), []compiler.Document{first})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", g1.ID)

	p := testutil.NewProjectile("p", 1, 10)
	require.NoError(t, e.Apply(p, 2))
	assert.True(t, e.IsEmitter(p))

	g2, err := e.Reload(context.Background(), []compiler.Document{second})
	require.NoError(t, err)
	assert.NotEqual(t, g1.Hash, g2.Hash)

	// old index 2 does not exist in the new generation
	assert.True(t, engine.IsIndexOutOfRange(e.Apply(p, 2)))

	// state stamped by the old generation is Disabled and dropped on update
	assert.False(t, e.IsEmitter(p))
	err = e.OnUpdate(p, 1)
	assert.True(t, engine.IsStaleGeneration(err))
	_, ok := e.States().Get(p.ID())
	assert.False(t, ok)
}

func TestEngineReloadFailureKeepsPrevious(t *testing.T) {
	good := doc(t, "a.cue", `
		EmittersData: E: interval: 1
		Triggers: [{event: "Swing", TriggerFunctions: {}}]
	`)
	bad := doc(t, "a.cue", `Triggers: [{event: "Swing", conditions: Hand: "Middle", TriggerFunctions: {}}]`)

	e := engine.New()
	g1, err := e.Reload(context.Background(), []compiler.Document{good})
	require.NoError(t, err)

	p := testutil.NewProjectile("p", 1, 10)
	require.NoError(t, e.Apply(p, 1))

	_, err = e.Reload(context.Background(), []compiler.Document{bad})
	require.Error(t, err)
	assert.Equal(t, g1.ID, e.Generation().ID)
	assert.Equal(t, 1, e.Runtime().Triggers.Len())
	assert.True(t, e.IsEmitter(p))
}

func TestEngineInstallFactoryErrorKeepsPrevious(t *testing.T) {
	fail := false
	factory := engine.ActionFactoryFunc(func(ir.ActionSpec) (engine.Action, error) {
		if fail {
			return nil, errors.New("no such spell")
		}
		return &testutil.RecordingAction{}, nil
	})
	e := engine.New(engine.WithActionFactory(factory))
	g1, err := e.Install(testGeneration())
	require.NoError(t, err)

	fail = true
	_, err = e.Install(testGeneration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such spell")
	assert.Equal(t, g1.ID, e.Generation().ID)
}

func TestEngineClear(t *testing.T) {
	e, _, _ := newTestEngine(t)
	p := testutil.NewProjectile("p", 1, 10)
	require.NoError(t, e.Apply(p, 1))

	e.Clear()
	assert.Empty(t, e.Generation().Emitters)
	assert.False(t, e.IsEmitter(p))
}

func TestEngineReloadWithPlugins(t *testing.T) {
	src := `Triggers: [{event: "Swing", conditions: WeaponHasKwd: "Dawnguard.esm|0x2F5E", TriggerFunctions: {}}]`
	e := engine.New(engine.WithCompilerOptions(compiler.WithPlugins([]string{"Skyrim.esm", "Update.esm", "Dawnguard.esm"})))

	gen, err := e.Reload(context.Background(), []compiler.Document{doc(t, "a.cue", src)})
	require.NoError(t, err)
	assert.Equal(t, ir.FormID(0x02002F5E), gen.Triggers[0].Conditions[0].Form)
}
