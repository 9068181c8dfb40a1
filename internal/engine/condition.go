package engine

import "github.com/roach88/volley/internal/ir"

// EvalCondition evaluates one predicate against ctx. Absent references
// evaluate to false.
func EvalCondition(c ir.Condition, ctx *EventContext) bool {
	switch c.Kind {
	case ir.CondHand:
		return evalHand(c.Hand, ctx.Casting)
	case ir.CondProjBaseIsFormID:
		return isForm(ctx.ProjBase, c.Form)
	case ir.CondEffectIsFormID:
		return ctx.Effect != nil && ctx.Effect.FormID() == c.Form
	case ir.CondEffectHasKwd:
		return ctx.Effect != nil && ctx.Effect.HasKeyword(c.Form)
	case ir.CondEffectsIsFormID:
		return anyEffect(ctx.Spell, c.Form, false)
	case ir.CondEffectsHasKwd:
		return anyEffect(ctx.Spell, c.Form, true)
	case ir.CondSpellIsFormID:
		return ctx.Spell != nil && ctx.Spell.FormID() == c.Form
	case ir.CondSpellHasKwd:
		return ctx.Spell != nil && ctx.Spell.HasKeyword(c.Form)
	case ir.CondCasterIsFormID:
		return ctx.Shooter != nil && ctx.Shooter.FormID() == c.Form
	case ir.CondCasterBaseIsFormID:
		return ctx.Shooter != nil && isForm(ctx.Shooter.BaseObject(), c.Form)
	case ir.CondCasterHasKwd:
		return casterHasKeyword(ctx.Shooter, c.Form)
	case ir.CondWeaponBaseIsFormID:
		return ctx.Weapon != nil && ctx.Weapon.FormID() == c.Form
	case ir.CondWeaponHasKwd:
		return ctx.Weapon != nil && ctx.Weapon.HasKeyword(c.Form)
	default:
		return false
	}
}

// evalHand accepts Right for the right hand and for sources with no hand
// at all (instant, other).
func evalHand(h ir.Hand, src ir.CastingSource) bool {
	switch h {
	case ir.HandBoth:
		return true
	case ir.HandLeft:
		return src == ir.CastingLeftHand
	case ir.HandRight:
		return src == ir.CastingRightHand || src == ir.CastingInstant || src == ir.CastingOther
	default:
		return false
	}
}

func isForm(f Form, id ir.FormID) bool {
	return f != nil && f.FormID() == id
}

// anyEffect reports whether any effect of item has id, or carries keyword
// id when byKeyword is set.
func anyEffect(item MagicItem, id ir.FormID, byKeyword bool) bool {
	if item == nil {
		return false
	}
	for _, e := range item.Effects() {
		if e == nil {
			continue
		}
		if byKeyword && e.HasKeyword(id) || !byKeyword && e.FormID() == id {
			return true
		}
	}
	return false
}

func casterHasKeyword(shooter Ref, kwd ir.FormID) bool {
	a, ok := shooter.(Actor)
	if !ok || a == nil {
		return false
	}
	if a.HasKeyword(kwd) {
		return true
	}
	if base := a.ActorBase(); base != nil && base.HasKeyword(kwd) {
		return true
	}
	return a.HasEffectKeyword(kwd)
}
