package harness

import (
	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/testutil"
)

func (f *FormSpec) form() *testutil.Form {
	return &testutil.Form{ID: f.ID, Keywords: f.Keywords}
}

func (a *ActorSpec) actor() *testutil.Actor {
	act := &testutil.Actor{
		Form:           testutil.Form{ID: a.ID, Keywords: a.Keywords},
		EffectKeywords: a.EffectKeywords,
	}
	if a.Base != nil {
		act.Base = a.Base.form()
	}
	return act
}

func (s *SpellSpec) spell() *testutil.Spell {
	sp := &testutil.Spell{Form: testutil.Form{ID: s.ID, Keywords: s.Keywords}}
	for i := range s.Effects {
		sp.EffectList = append(sp.EffectList, s.Effects[i].form())
	}
	return sp
}

// eventContext builds an engine context. Absent references stay nil
// interfaces.
func (c *ContextSpec) eventContext() engine.EventContext {
	ctx := engine.EventContext{Casting: ir.CastingOther}
	if c.Weapon != nil {
		ctx.Weapon = c.Weapon.form()
	}
	if c.Shooter != nil {
		ctx.Shooter = c.Shooter.actor()
	}
	if c.ProjBase != nil {
		ctx.ProjBase = c.ProjBase.form()
	}
	if c.Spell != nil {
		ctx.Spell = c.Spell.spell()
	}
	if c.Effect != nil {
		ctx.Effect = c.Effect.form()
	}
	if c.Ammo != nil {
		ctx.Ammo = c.Ammo.form()
	}
	if cs, ok := ir.ParseCastingSource(c.Casting); ok {
		ctx.Casting = cs
	}
	if o, ok := ir.ParseOriginKind(c.Origin); ok {
		ctx.Origin = o
	}
	return ctx
}
