// Package harness runs YAML scenarios against a real engine.
//
// A scenario names a configuration directory, drives host events through
// the engine with fake forms and projectiles, and asserts on the firing
// trace and final state.
//
// # Scenario Format
//
//	name: thrice_then_stop
//	description: "A limited emitter fires three times, then disables"
//	config: configs/basic          # relative to the scenario file
//	plugins: [Skyrim.esm]          # optional load order for plugin|id forms
//	steps:
//	  - launch:
//	      projectile: p1
//	      speed: 100
//	      max_speed: 2000
//	      context:
//	        casting: RightHand
//	        spell: {id: 0x800}
//	  - tick: {dt: 0.5, frames: 4}
//	  - impact: p1
//	assertions:
//	  - type: trace_count
//	    line: "emit Thrice p1"
//	    count: 3
//	  - type: emitter_state
//	    projectile: p1
//	    emitter: none
//
// # Steps
//
// Each step sets exactly one field:
//
//   - dispatch: run the triggers of one event
//   - launch: LaunchSpell/LaunchArrow, then spawn and ProjectileLaunched
//   - tick: OnUpdate every live projectile, frames times
//   - impact, release: OnImpact/OnRelease for one projectile
//   - apply, disable: direct emitter assignment and removal
//   - reload: load a configuration directory; failures keep the
//     previous generation
//   - restart: persist the side-table, reload the current configuration
//     as a new generation, restore the snapshot
//
// # Assertion Types
//
//   - trace_contains: a firing line is present
//   - trace_order: firing lines appear in order, gaps allowed
//   - trace_count: number of firing lines with a prefix
//   - emitter_state: emitter name and remaining count of a projectile
//   - projectile: speed and deletion flag of a projectile
//   - generation: emitter and trigger counts of the installed generation
//
// # Deterministic Testing
//
// Runs use sequential generation IDs, the engine's logical clock and a
// simulated frame clock, so traces are byte-identical across runs and can
// be compared against golden files with RunWithGolden.
package harness
