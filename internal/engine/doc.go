// Package engine implements trigger dispatch and the emitter scheduler.
//
// The engine owns one installed generation at a time: the compiled
// configuration plus the trigger registry and emitter table built from it.
// Hosts call into the engine at lifecycle points (Dispatch and the Host
// helpers) and once per tick for every projectile carrying an emitter
// (OnUpdate).
//
// ARCHITECTURE:
//
// Generations:
// A Runtime bundles an ir.Generation with its TriggerRegistry and
// EmitterTable. Reload compiles a new generation aside and swaps the
// Runtime pointer only when every step succeeded, so a failed reload leaves
// the previous configuration live. Instance state written by an older
// generation is stale and reads as Disabled.
//
// Dispatch:
// Triggers registered under an event run in registration order and every
// trigger is evaluated, whatever earlier triggers did. Conditions are ANDed
// in declaration order with short-circuit. ShouldDisableOrigin is the one
// query that stops at the first hit.
//
// Scheduler:
// Per-instance state lives in a StateTable keyed by InstanceID, never on the
// host entity. OnUpdate gates on the instance's living time, runs the
// emitter's functions, and counts down limited emitters.
//
// CRITICAL PATTERNS:
//
// Single writer:
// Dispatch, OnUpdate, Apply and Disable are synchronous and expected from
// one simulation goroutine. Reload may run on another goroutine; the swap
// is atomic but callers still serialise it against a tick in flight when
// they need a frame to see one generation throughout.
//
// Logical clock:
// Every recorded firing is stamped with Clock.Next(), never wall time.
package engine
