package compiler

import (
	"context"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/volley/internal/ir"
)

func docFromString(t *testing.T, source, src string) Document {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return Document{Source: source, Value: v, Bytes: []byte(src)}
}

func TestCompileTwoPhaseForwardReferences(t *testing.T) {
	// a.cue references an emitter declared later in its own file and an
	// alias declared in b.cue.
	a := docFromString(t, "a.cue", `
		Triggers: [{
			event: "ProjAppeared"
			conditions: SpellHasKwd: "FireKwd"
			TriggerFunctions: emitter: "Late"
		}]
		EmittersData: {
			Early: interval: 1
			Late: {
				interval: 0.25
				functions: [{type: "TriggerFunctions", TriggerFunctions: emitter: "Early"}]
			}
		}
	`)
	b := docFromString(t, "b.cue", `
		FormIDs: FireKwd: "Skyrim.esm|0x1CEAD"
		EmittersData: Early: interval: 2
		Triggers: [{event: "Swing", TriggerFunctions: {}}]
	`)

	gen, err := Compile(context.Background(), []Document{a, b}, WithPlugins([]string{"Skyrim.esm"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.cue", "b.cue"}, gen.Sources)
	require.Len(t, gen.Emitters, 3)
	for i, e := range gen.Emitters {
		assert.Equal(t, ir.Index(i+1), e.Index)
	}
	assert.Equal(t, "Early", gen.Emitters[0].Name)
	assert.Equal(t, "Late", gen.Emitters[1].Name)
	assert.Equal(t, "b.cue", gen.Emitters[2].Source)

	// same-named emitter in b.cue does not shadow a.cue's
	assert.Equal(t, ir.Index(1), gen.Emitters[1].Functions[0].Action.Emitter)

	require.Len(t, gen.Triggers, 2)
	assert.Equal(t, ir.Index(2), gen.Triggers[0].Action.Emitter)
	assert.Equal(t, ir.FormCondition(ir.CondSpellHasKwd, 0x0001CEAD), gen.Triggers[0].Conditions[0])
	assert.Equal(t, ir.EventSwing, gen.Triggers[1].Event)
	assert.NotEmpty(t, gen.Hash)
	assert.Empty(t, gen.ID)
}

func TestCompileHashStable(t *testing.T) {
	a := docFromString(t, "a.cue", `EmittersData: X: interval: 1`)
	b := docFromString(t, "b.cue", `Triggers: []`)

	g1, err := Compile(context.Background(), []Document{a, b})
	require.NoError(t, err)
	g2, err := Compile(context.Background(), []Document{a, b})
	require.NoError(t, err)
	assert.Equal(t, g1.Hash, g2.Hash)

	c := docFromString(t, "b.cue", `Triggers: [] // edited`)
	g3, err := Compile(context.Background(), []Document{a, c})
	require.NoError(t, err)
	assert.NotEqual(t, g1.Hash, g3.Hash)
}

func TestCompileRejectsWholeLoad(t *testing.T) {
	good := docFromString(t, "good.cue", `EmittersData: X: interval: 1`)
	bad := docFromString(t, "bad.cue", `Triggers: [{event: "Explode", TriggerFunctions: {}}]`)

	gen, err := Compile(context.Background(), []Document{good, bad})
	require.Error(t, err)
	assert.Nil(t, gen)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bad.cue", ce.Source)
}

func TestCompileUnknownEmitterReference(t *testing.T) {
	doc := docFromString(t, "a.cue", `Triggers: [{event: "Swing", TriggerFunctions: emitter: "Ghost"}]`)

	_, err := Compile(context.Background(), []Document{doc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown key "Ghost"`)
}

func TestCompileValidationErrors(t *testing.T) {
	doc := docFromString(t, "a.cue", `EmittersData: {
		Z: {interval: 1, limited: true, count: 0}
		N: {interval: -1}
	}`)

	_, err := Compile(context.Background(), []Document{doc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), CodeLimitedZeroCount)
	assert.Contains(t, err.Error(), CodeNegativeInterval)
}

func TestBuilderInitBeforeKeys(t *testing.T) {
	b := NewBuilder()
	err := b.Init(docFromString(t, "a.cue", `EmittersData: X: interval: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body pass before key pass")
}

func TestBuilderLockstep(t *testing.T) {
	a := docFromString(t, "a.cue", `EmittersData: A: interval: 1`)
	b := docFromString(t, "b.cue", `EmittersData: B: interval: 1`)

	// bodies in a different order than keys break registry/table lockstep
	bld := NewBuilder()
	require.NoError(t, bld.InitKeys(a))
	require.NoError(t, bld.InitKeys(b))
	err := bld.Init(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of step")
}

func TestBuilderClear(t *testing.T) {
	a := docFromString(t, "a.cue", `
		FormIDs: K: "0x10"
		EmittersData: {A: interval: 1, B: interval: 1}
	`)
	b := docFromString(t, "b.cue", `
		EmittersData: C: interval: 1
		Triggers: [{event: "Swing", conditions: WeaponHasKwd: "K", TriggerFunctions: {}}]
	`)

	bld := NewBuilder()
	require.NoError(t, bld.InitKeys(a))
	require.NoError(t, bld.Init(a))
	assert.Equal(t, 2, bld.Emitters().Len())

	bld.Clear()
	assert.Equal(t, 0, bld.Emitters().Len())

	// aliases from the previous generation are gone
	require.NoError(t, bld.InitKeys(b))
	err := bld.Init(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown form alias "K"`)

	bld.Clear()
	require.NoError(t, bld.InitKeys(b))
	idx, err := bld.Emitters().Get("b.cue", "C")
	require.NoError(t, err)
	assert.Equal(t, ir.Index(1), idx)
}

type staticResolver map[string]ir.FormID

func (r staticResolver) ResolveForm(ref string) (ir.FormID, error) {
	if id, ok := r[ref]; ok {
		return id, nil
	}
	return 0, assert.AnError
}

func TestCompileWithFormResolver(t *testing.T) {
	doc := docFromString(t, "a.cue", `
		FormIDs: Ignored: "0x1"
		Triggers: [{event: "HitMelee", conditions: WeaponBaseIsFormID: "IronSword", TriggerFunctions: {}}]
	`)

	gen, err := Compile(context.Background(), []Document{doc}, WithFormResolver(staticResolver{"IronSword": 0x12EB7}))
	require.NoError(t, err)
	assert.Equal(t, ir.FormID(0x12EB7), gen.Triggers[0].Conditions[0].Form)
}
