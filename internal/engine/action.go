package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/volley/internal/ir"
)

// Call carries the dispatch-specific parameters of an action invocation.
type Call struct {
	// Projectile is the projectile the event concerns; nil before it
	// exists (suppressed launches, hits, swings).
	Projectile Projectile

	// TargetOverride replaces the action's default target when set.
	TargetOverride Actor

	// SpeedOnly restricts the action to speed-affecting behavior. Set for
	// the velocity-computed pass of ProjAppeared.
	SpeedOnly bool
}

// Action is the opaque effect behind a TriggerFunctions block.
type Action interface {
	// Execute performs the effect.
	Execute(ctx *EventContext, call Call)

	// SuppressesOrigin reports whether the triggering origin (the real
	// projectile about to spawn) should be cancelled.
	SuppressesOrigin() bool
}

// ActionFactory builds host actions from compiled action specs. It is
// called once per action when a generation is installed.
type ActionFactory interface {
	NewAction(spec ir.ActionSpec) (Action, error)
}

// ActionFactoryFunc adapts a function to ActionFactory.
type ActionFactoryFunc func(spec ir.ActionSpec) (Action, error)

// NewAction implements ActionFactory.
func (f ActionFactoryFunc) NewAction(spec ir.ActionSpec) (Action, error) {
	return f(spec)
}

// NopActionFactory builds actions with no host effect. The built-in
// behavior (emitter application, origin suppression) still applies.
type NopActionFactory struct{}

// NewAction implements ActionFactory.
func (NopActionFactory) NewAction(ir.ActionSpec) (Action, error) {
	return nopAction{}, nil
}

type nopAction struct{}

func (nopAction) Execute(*EventContext, Call) {}
func (nopAction) SuppressesOrigin() bool      { return false }

// builtinAction wraps a host action with the fields the engine interprets
// itself: emitter application and disableOrigin.
type builtinAction struct {
	spec  ir.ActionSpec
	host  Action
	apply func(p Projectile, idx ir.Index) error
}

func (a *builtinAction) Execute(ctx *EventContext, call Call) {
	if a.spec.Emitter.IsSet() && call.Projectile != nil && !call.SpeedOnly {
		if err := a.apply(call.Projectile, a.spec.Emitter); err != nil {
			slog.Warn("emitter not applied",
				"emitter", a.spec.EmitterName,
				"instance", call.Projectile.ID(),
				"error", err)
		}
	}
	a.host.Execute(ctx, call)
}

func (a *builtinAction) SuppressesOrigin() bool {
	return a.spec.DisableOrigin || a.host.SuppressesOrigin()
}

// actionBuilder returns the constructor used while building a runtime.
func actionBuilder(factory ActionFactory, apply func(Projectile, ir.Index) error) func(ir.ActionSpec) (Action, error) {
	return func(spec ir.ActionSpec) (Action, error) {
		host, err := factory.NewAction(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: build action: %w", spec.Source, err)
		}
		if host == nil {
			host = nopAction{}
		}
		return &builtinAction{spec: spec, host: host, apply: apply}, nil
	}
}
