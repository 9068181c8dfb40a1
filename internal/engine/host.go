package engine

import "github.com/roach88/volley/internal/ir"

// Host call sites. Each helper is what a host hook runs at the matching
// lifecycle point.

// LaunchSpell is called before a spell projectile spawns. When a trigger
// suppresses the origin, ProjAppeared is dispatched without a projectile
// and true is returned: the host must not spawn the real one.
func (e *Engine) LaunchSpell(ctx *EventContext) bool {
	return e.launch(ctx)
}

// LaunchArrow is LaunchSpell for arrows.
func (e *Engine) LaunchArrow(ctx *EventContext) bool {
	return e.launch(ctx)
}

func (e *Engine) launch(ctx *EventContext) bool {
	if !e.ShouldDisableOrigin(ctx) {
		return false
	}
	e.Dispatch(ir.EventProjAppeared, ctx, Call{})
	return true
}

// ProjectileLaunched is called after p has spawned.
func (e *Engine) ProjectileLaunched(ctx *EventContext, p Projectile) {
	e.Dispatch(ir.EventProjAppeared, ctx, Call{Projectile: p})
}

// VelocityComputed is called after the host computed p's launch velocity.
// Only speed-affecting behavior runs.
func (e *Engine) VelocityComputed(p Projectile) {
	e.Dispatch(ir.EventProjAppeared, p.EventContext(), Call{Projectile: p, SpeedOnly: true})
}

// MeleeHit dispatches HitMelee for the attacker in ctx, then HitByMelee
// with the victim as shooter.
func (e *Engine) MeleeHit(ctx *EventContext, victim Actor) {
	e.Dispatch(ir.EventHitMelee, ctx, Call{})
	e.Dispatch(ir.EventHitByMelee, ctx.WithShooter(victim), Call{})
}

// ProjectileHit dispatches HitProjectile for the shooter in ctx, then
// HitByProjectile with the victim as shooter.
func (e *Engine) ProjectileHit(ctx *EventContext, victim Actor) {
	e.Dispatch(ir.EventHitProjectile, ctx, Call{})
	e.Dispatch(ir.EventHitByProjectile, ctx.WithShooter(victim), Call{})
}

// Swing dispatches Swing for a melee attack.
func (e *Engine) Swing(ctx *EventContext) {
	e.Dispatch(ir.EventSwing, ctx, Call{})
}

// EffectStarted dispatches EffectStart when a magic effect lands on an actor.
func (e *Engine) EffectStarted(ctx *EventContext) {
	e.Dispatch(ir.EventEffectStart, ctx, Call{})
}
