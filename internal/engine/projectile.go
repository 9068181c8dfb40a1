package engine

import "github.com/roach88/volley/internal/ir"

// Projectile is a live host entity that can carry an emitter.
//
// The engine never stores a Projectile; it keeps emitter state in a
// StateTable keyed by ID.
type Projectile interface {
	ID() ir.InstanceID

	// LivingTime is the instance's interval timer in seconds. The scheduler
	// advances it by dt each update and resets it after firing.
	LivingTime() float64
	SetLivingTime(t float64)

	// MaxSpeed is the configured maximum speed of the projectile.
	MaxSpeed() float64
	Velocity() ir.Vec3
	SetVelocity(v ir.Vec3)

	// SupportsEmitter reports whether the entity's class may carry an
	// emitter.
	SupportsEmitter() bool

	// MarkForDeletion disables the entity and schedules it for removal.
	MarkForDeletion()

	// EventContext describes the projectile for actions it triggers.
	EventContext() *EventContext
}
