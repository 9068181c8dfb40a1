package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/testutil"
)

func TestSchedulerIntervalGating(t *testing.T) {
	e, _, rec := newTestEngine(t)
	p := testutil.NewProjectile("p1", 10, 10) // at max speed: curve is a no-op
	require.NoError(t, e.Apply(p, 1))
	rec.Reset()

	for _, dt := range []float64{0.25, 0.25, 0.25} {
		require.NoError(t, e.OnUpdate(p, dt))
	}
	assert.Empty(t, rec.Firings, "0.75s of a 1s interval must not fire")
	assert.InDelta(t, 0.75, p.LivingTime(), 1e-12)

	require.NoError(t, e.OnUpdate(p, 0.25))
	assert.Equal(t, []engine.FiringKind{engine.FiringEmit}, kinds(rec.Firings))
	assert.Equal(t, engine.LivingTimeReset, p.LivingTime())
	assert.NotZero(t, p.LivingTime(), "reset is a sentinel, not zero")

	// the next interval starts from the sentinel
	for i := 0; i < 3; i++ {
		require.NoError(t, e.OnUpdate(p, 0.25))
	}
	assert.Len(t, rec.Firings, 1)
	require.NoError(t, e.OnUpdate(p, 0.25))
	assert.Len(t, rec.Firings, 2)
	assert.True(t, e.IsEmitter(p), "unlimited emitters stay active")
}

func TestSchedulerLimitedExhaustion(t *testing.T) {
	e, _, rec := newTestEngine(t)
	p := testutil.NewProjectile("p1", 1, 10)
	require.NoError(t, e.Apply(p, 2)) // Thrice: interval 0.5, count 3

	st, ok := e.States().Get(p.ID())
	require.True(t, ok)
	remaining := []uint32{st.Remaining}

	for i := 0; i < 3; i++ {
		require.NoError(t, e.OnUpdate(p, 0.5))
		if st, ok := e.States().Get(p.ID()); ok {
			remaining = append(remaining, st.Remaining)
		}
	}

	assert.Equal(t, []uint32{3, 2, 1}, remaining)
	assert.False(t, e.IsEmitter(p), "third firing disables")
	assert.False(t, p.Deleted)
	assert.Equal(t,
		[]engine.FiringKind{engine.FiringApply, engine.FiringEmit, engine.FiringEmit, engine.FiringEmit, engine.FiringDisable},
		kinds(rec.Firings))

	var emitted []uint32
	for _, f := range rec.Firings {
		if f.Kind == engine.FiringEmit {
			emitted = append(emitted, f.Remaining)
		}
	}
	assert.Equal(t, []uint32{3, 2, 1}, emitted)

	err := e.OnUpdate(p, 0.5)
	assert.True(t, engine.IsNotEmitter(err))
}

func TestSchedulerDestroyAfter(t *testing.T) {
	e, _, rec := newTestEngine(t)
	p := testutil.NewProjectile("p1", 1, 10)
	require.NoError(t, e.Apply(p, 3)) // Burst: interval 0, count 2, destroyAfter

	require.NoError(t, e.OnUpdate(p, 0.016))
	assert.False(t, p.Deleted)
	require.NoError(t, e.OnUpdate(p, 0.016))
	assert.True(t, p.Deleted)
	assert.False(t, e.IsEmitter(p))

	last := rec.Firings[len(rec.Firings)-1]
	assert.Equal(t, engine.FiringDestroy, last.Kind)
	assert.Equal(t, "Burst", last.Emitter)
}

func TestSchedulerLimitedZeroRemainingQuiesces(t *testing.T) {
	e, _, rec := newTestEngine(t)
	p := testutil.NewProjectile("p1", 1, 10)
	require.NoError(t, e.Apply(p, 2))

	st, _ := e.States().Get(p.ID())
	st.Remaining = 0
	e.States().Set(p.ID(), st)
	rec.Reset()

	require.NoError(t, e.OnUpdate(p, 1))
	assert.Empty(t, rec.Firings)
	assert.True(t, e.IsEmitter(p), "exhausted but not cleaned up")
	assert.InDelta(t, 1.0, p.LivingTime(), 1e-12, "timer is not reset without firing")
}

func TestSpeedDelta(t *testing.T) {
	const cur, max, total, dt = 4.0, 16.0, 2.0, 0.5

	assert.InDelta(t, max/total*dt, engine.SpeedDelta(ir.SpeedLinear, cur, max, total, dt), 1e-12)
	// Quadratic multiplies by the duration
	assert.InDelta(t, 2*8.0*total*dt, engine.SpeedDelta(ir.SpeedQuadratic, cur, max, total, dt), 1e-12)
	assert.InDelta(t, cur*math.Log(max)/total*dt, engine.SpeedDelta(ir.SpeedExponential, cur, max, total, dt), 1e-12)
}

func TestSchedulerLinearFullDuration(t *testing.T) {
	e, _, _ := newTestEngine(t)
	p := testutil.NewProjectile("p1", 2, 10)
	p.Vel = ir.Vec3{X: 0, Y: 1.2, Z: 1.6}

	// Every: interval 1, Linear over 1s
	require.NoError(t, e.Apply(p, 1))

	require.NoError(t, e.OnUpdate(p, 1))
	assert.InDelta(t, 12.0, p.Speed(), 1e-9, "one step of dt=T adds exactly max speed")
	assert.InDelta(t, 0.0, p.Vel.X, 1e-12)
	assert.InDelta(t, 0.6, p.Vel.Y/p.Speed(), 1e-9, "direction is preserved")
	assert.InDelta(t, 0.8, p.Vel.Z/p.Speed(), 1e-9)
}

func TestSchedulerSpeedCap(t *testing.T) {
	for _, curve := range []ir.SpeedCurve{ir.SpeedLinear, ir.SpeedQuadratic, ir.SpeedExponential} {
		t.Run(curve.String(), func(t *testing.T) {
			gen := &ir.Generation{Emitters: []ir.EmitterDef{{
				Name: "E", Index: 1, Interval: 0, Count: 1,
				Functions: []ir.FunctionSpec{{Kind: ir.FunctionAccelerate, Curve: curve, Time: 1}},
			}}}
			e := engine.New()
			_, err := e.Install(gen)
			require.NoError(t, err)

			for _, speed := range []float64{10, 15} {
				p := testutil.NewProjectile("p", speed, 10)
				require.NoError(t, e.Apply(p, 1))
				require.NoError(t, e.OnUpdate(p, 0.1))
				assert.Equal(t, ir.Vec3{X: speed}, p.Vel, "at or over max speed nothing changes")
			}

			still := testutil.NewProjectile("still", 0, 10)
			require.NoError(t, e.Apply(still, 1))
			require.NoError(t, e.OnUpdate(still, 0.1))
			assert.Equal(t, ir.Vec3{}, still.Vel)

			slow := testutil.NewProjectile("slow", 2, 10)
			require.NoError(t, e.Apply(slow, 1))
			require.NoError(t, e.OnUpdate(slow, 0.1))
			assert.Greater(t, slow.Speed(), 2.0)
		})
	}
}

func TestSchedulerActionFunctions(t *testing.T) {
	gen := &ir.Generation{
		ID: "ignored",
		Emitters: []ir.EmitterDef{
			{Name: "Caster", Index: 1, Interval: 0, Count: 1, Functions: []ir.FunctionSpec{
				{Kind: ir.FunctionAction, Action: ir.ActionSpec{Raw: []byte(`{"Cast":"x"}`)}},
				{Kind: ir.FunctionAction, Action: ir.ActionSpec{EmitterName: "Other", Emitter: 2}},
			}},
			{Name: "Other", Index: 2, Interval: 5, Limited: true, Count: 4},
		},
	}
	f := &testutil.RecordingFactory{}
	e := engine.New(engine.WithActionFactory(f))
	_, err := e.Install(gen)
	require.NoError(t, err)
	require.Len(t, f.Actions, 2)

	p := testutil.NewProjectile("p", 1, 10)
	require.NoError(t, e.Apply(p, 1))
	require.NoError(t, e.OnUpdate(p, 0.1))

	require.Len(t, f.Actions[0].Calls, 1)
	assert.Same(t, p, f.Actions[0].Calls[0].Projectile)

	// the second function switched the instance to Other
	st, ok := e.States().Get(p.ID())
	require.True(t, ok)
	assert.Equal(t, ir.Index(2), st.Index)
	assert.Equal(t, uint32(4), st.Remaining)
}

func TestSchedulerPreconditions(t *testing.T) {
	e, _, _ := newTestEngine(t)

	p := testutil.NewProjectile("p", 1, 10)
	assert.True(t, engine.IsNotEmitter(e.OnUpdate(p, 1)))

	err := e.Apply(p, 0)
	assert.True(t, engine.IsNotEmitter(err))

	err = e.Apply(p, 9)
	assert.True(t, engine.IsIndexOutOfRange(err))

	arrow := testutil.NewProjectile("arrow", 1, 10)
	arrow.NoEmitter = true
	err = e.Apply(arrow, 1)
	assert.True(t, engine.IsUnsupportedInstance(err))
	assert.False(t, e.IsEmitter(arrow))
}

func TestEmitterTableGet(t *testing.T) {
	table, err := engine.NewEmitterTable([]ir.EmitterDef{{Name: "A", Index: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	def, err := table.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "A", def.Name)

	_, err = table.Get(0)
	assert.True(t, engine.IsNotEmitter(err))
	_, err = table.Get(2)
	assert.True(t, engine.IsIndexOutOfRange(err))

	_, err = engine.NewEmitterTable([]ir.EmitterDef{{Name: "A", Index: 2}}, nil)
	require.Error(t, err)
}

func TestImpactAndRelease(t *testing.T) {
	e, _, _ := newTestEngine(t)
	a := testutil.NewProjectile("a", 1, 10)
	b := testutil.NewProjectile("b", 1, 10)
	require.NoError(t, e.Apply(a, 1))
	require.NoError(t, e.Apply(b, 1))

	e.OnImpact(a)
	e.OnRelease(b)
	assert.False(t, e.IsEmitter(a))
	assert.False(t, e.IsEmitter(b))

	// no-ops on disabled instances
	e.OnImpact(a)
	assert.False(t, e.IsEmitter(a))
}
