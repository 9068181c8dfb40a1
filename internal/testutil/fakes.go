package testutil

import (
	"slices"

	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
)

// Form is a fake form with an ID and keywords. It serves as weapon,
// spell effect, projectile base or actor base.
type Form struct {
	ID       ir.FormID
	Keywords []ir.FormID
}

// FormID implements engine.Form.
func (f *Form) FormID() ir.FormID { return f.ID }

// HasKeyword implements engine.KeywordForm.
func (f *Form) HasKeyword(kwd ir.FormID) bool { return slices.Contains(f.Keywords, kwd) }

// Spell is a fake magic item.
type Spell struct {
	Form
	EffectList []*Form
}

// Effects implements engine.MagicItem.
func (s *Spell) Effects() []engine.KeywordForm {
	out := make([]engine.KeywordForm, len(s.EffectList))
	for i, e := range s.EffectList {
		out[i] = e
	}
	return out
}

// Actor is a fake actor. Base may be nil.
type Actor struct {
	Form
	Base           *Form
	EffectKeywords []ir.FormID
}

// BaseObject implements engine.Ref.
func (a *Actor) BaseObject() engine.Form {
	if a.Base == nil {
		return nil
	}
	return a.Base
}

// ActorBase implements engine.Actor.
func (a *Actor) ActorBase() engine.KeywordForm {
	if a.Base == nil {
		return nil
	}
	return a.Base
}

// HasEffectKeyword implements engine.Actor.
func (a *Actor) HasEffectKeyword(kwd ir.FormID) bool {
	return slices.Contains(a.EffectKeywords, kwd)
}

// Projectile is a fake projectile.
type Projectile struct {
	Name      ir.InstanceID
	Living    float64
	Max       float64
	Vel       ir.Vec3
	NoEmitter bool // class cannot carry an emitter
	Deleted   bool
	Ctx       engine.EventContext
}

// NewProjectile returns a projectile moving along +X at speed with the
// given max speed.
func NewProjectile(id string, speed, maxSpeed float64) *Projectile {
	return &Projectile{
		Name: ir.InstanceID(id),
		Max:  maxSpeed,
		Vel:  ir.Vec3{X: speed},
		Ctx:  engine.EventContext{Origin: ir.OriginSpell},
	}
}

func (p *Projectile) ID() ir.InstanceID                  { return p.Name }
func (p *Projectile) LivingTime() float64                { return p.Living }
func (p *Projectile) SetLivingTime(t float64)            { p.Living = t }
func (p *Projectile) MaxSpeed() float64                  { return p.Max }
func (p *Projectile) Velocity() ir.Vec3                  { return p.Vel }
func (p *Projectile) SetVelocity(v ir.Vec3)              { p.Vel = v }
func (p *Projectile) SupportsEmitter() bool              { return !p.NoEmitter }
func (p *Projectile) MarkForDeletion()                   { p.Deleted = true }
func (p *Projectile) EventContext() *engine.EventContext { return &p.Ctx }

// Speed returns the magnitude of the velocity.
func (p *Projectile) Speed() float64 { return p.Vel.Length() }

// RecordingAction records each Execute call.
type RecordingAction struct {
	Spec     ir.ActionSpec
	Suppress bool
	Calls    []engine.Call
}

// Execute implements engine.Action.
func (a *RecordingAction) Execute(_ *engine.EventContext, call engine.Call) {
	a.Calls = append(a.Calls, call)
}

// SuppressesOrigin implements engine.Action.
func (a *RecordingAction) SuppressesOrigin() bool { return a.Suppress }

// RecordingFactory builds RecordingActions and keeps them in build order.
type RecordingFactory struct {
	Actions []*RecordingAction
}

// NewAction implements engine.ActionFactory.
func (f *RecordingFactory) NewAction(spec ir.ActionSpec) (engine.Action, error) {
	a := &RecordingAction{Spec: spec}
	f.Actions = append(f.Actions, a)
	return a, nil
}

// Executions returns the total number of Execute calls.
func (f *RecordingFactory) Executions() int {
	n := 0
	for _, a := range f.Actions {
		n += len(a.Calls)
	}
	return n
}
