package ir

import "fmt"

// Event is a lifecycle point in the host simulation at which triggers run.
type Event uint8

const (
	// EventProjAppeared fires when a projectile is about to spawn, has spawned,
	// or has just had its launch velocity computed.
	EventProjAppeared Event = iota
	// EventHitMelee fires for the attacker of a melee hit.
	EventHitMelee
	// EventHitByMelee fires for the victim of a melee hit.
	EventHitByMelee
	// EventHitProjectile fires for the shooter of a projectile that hit.
	EventHitProjectile
	// EventHitByProjectile fires for the victim of a projectile hit.
	EventHitByProjectile
	// EventSwing fires when a melee attack is swung.
	EventSwing
	// EventEffectStart fires when a magic effect is applied to an actor.
	EventEffectStart

	// EventCount is the number of events; dispatch tables are sized by it.
	EventCount
)

var eventNames = [EventCount]string{
	EventProjAppeared:    "ProjAppeared",
	EventHitMelee:        "HitMelee",
	EventHitByMelee:      "HitByMelee",
	EventHitProjectile:   "HitProjectile",
	EventHitByProjectile: "HitByProjectile",
	EventSwing:           "Swing",
	EventEffectStart:     "EffectStart",
}

// String returns the configuration name of the event.
func (e Event) String() string {
	if e < EventCount {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

// Valid reports whether e is one of the declared events.
func (e Event) Valid() bool {
	return e < EventCount
}

// ParseEvent resolves a configuration name to an Event.
// Names are matched exactly.
func ParseEvent(name string) (Event, bool) {
	for i, n := range eventNames {
		if n == name {
			return Event(i), true
		}
	}
	return 0, false
}

// EventNames returns all event names in declaration order.
func EventNames() []string {
	names := make([]string, len(eventNames))
	copy(names, eventNames[:])
	return names
}
