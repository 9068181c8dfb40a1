package engine

import "github.com/roach88/volley/internal/ir"

// Form is any host object with a stable form identifier.
type Form interface {
	FormID() ir.FormID
}

// KeywordForm is a form carrying a keyword set: weapons, spells, magic
// effects.
type KeywordForm interface {
	Form
	HasKeyword(kwd ir.FormID) bool
}

// MagicItem is a spell or other item with an ordered list of effects.
type MagicItem interface {
	KeywordForm
	Effects() []KeywordForm
}

// Ref is a placed object in the world. BaseObject returns its template
// and may return nil.
type Ref interface {
	Form
	BaseObject() Form
}

// Actor is a Ref with keyword capabilities. ActorBase may return nil.
// HasEffectKeyword reports keywords granted by active magic effects.
type Actor interface {
	Ref
	HasKeyword(kwd ir.FormID) bool
	ActorBase() KeywordForm
	HasEffectKeyword(kwd ir.FormID) bool
}

// EventContext is the read-only snapshot handed to conditions and actions.
//
// Every reference field is optional; a nil interface means absent. Callers
// must not store typed nil pointers in these fields.
type EventContext struct {
	Weapon   KeywordForm
	Shooter  Ref // caster, attacker, or victim for the HitBy* events
	ProjBase Form
	Spell    MagicItem
	Effect   KeywordForm
	Ammo     Form

	Casting  ir.CastingSource
	Origin   ir.OriginKind
	Angles   ir.Angles
	Position ir.Vec3
}

// WithShooter returns a copy of c whose shooter is r.
func (c *EventContext) WithShooter(r Ref) *EventContext {
	cp := *c
	cp.Shooter = r
	return &cp
}
