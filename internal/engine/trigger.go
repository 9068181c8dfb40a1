package engine

import (
	"fmt"

	"github.com/roach88/volley/internal/ir"
)

// Trigger is a compiled rule: conditions ANDed in declared order, then one
// action.
type Trigger struct {
	def    *ir.TriggerDef
	id     string
	action Action
}

// NewTrigger binds def to action.
func NewTrigger(def *ir.TriggerDef, action Action) *Trigger {
	return &Trigger{
		def:    def,
		id:     fmt.Sprintf("%s#%d", def.Source, def.Position),
		action: action,
	}
}

// ID returns "source#position".
func (t *Trigger) ID() string { return t.id }

// Def returns the compiled definition.
func (t *Trigger) Def() *ir.TriggerDef { return t.def }

// Holds evaluates the conditions, stopping at the first false one.
func (t *Trigger) Holds(ctx *EventContext) bool {
	for _, c := range t.def.Conditions {
		if !EvalCondition(c, ctx) {
			return false
		}
	}
	return true
}

// Eval runs the action if the conditions hold and reports whether it ran.
func (t *Trigger) Eval(ctx *EventContext, call Call) bool {
	if !t.Holds(ctx) {
		return false
	}
	t.action.Execute(ctx, call)
	return true
}

// ShouldDisableOrigin reports whether the conditions hold and the action
// suppresses the origin. The action is not executed.
func (t *Trigger) ShouldDisableOrigin(ctx *EventContext) bool {
	return t.Holds(ctx) && t.action.SuppressesOrigin()
}

// TriggerRegistry indexes triggers by event in registration order.
type TriggerRegistry struct {
	byEvent [ir.EventCount][]*Trigger
}

// NewTriggerRegistry builds a registry from defs.
func NewTriggerRegistry(defs []ir.TriggerDef, build func(ir.ActionSpec) (Action, error)) (*TriggerRegistry, error) {
	r := &TriggerRegistry{}
	if err := r.Init(defs, build); err != nil {
		return nil, err
	}
	return r, nil
}

// Init replaces every table with triggers built from defs. On error the
// registry is left unchanged.
func (r *TriggerRegistry) Init(defs []ir.TriggerDef, build func(ir.ActionSpec) (Action, error)) error {
	var next [ir.EventCount][]*Trigger
	for i := range defs {
		def := &defs[i]
		if !def.Event.Valid() {
			return fmt.Errorf("%s#%d: invalid event %d", def.Source, def.Position, def.Event)
		}
		action, err := build(def.Action)
		if err != nil {
			return err
		}
		next[def.Event] = append(next[def.Event], NewTrigger(def, action))
	}
	r.byEvent = next
	return nil
}

// Dispatch evaluates every trigger registered for e, in order, whatever
// the earlier ones did. observe, if non-nil, is called for each trigger
// whose conditions hold, just before its action runs. Returns the number
// of actions run.
func (r *TriggerRegistry) Dispatch(e ir.Event, ctx *EventContext, call Call, observe func(*Trigger)) int {
	if !e.Valid() {
		return 0
	}
	fired := 0
	for _, t := range r.byEvent[e] {
		if !t.Holds(ctx) {
			continue
		}
		if observe != nil {
			observe(t)
		}
		t.action.Execute(ctx, call)
		fired++
	}
	return fired
}

// ShouldDisableOrigin reports whether any ProjAppeared trigger suppresses
// the origin. Stops at the first one that does.
func (r *TriggerRegistry) ShouldDisableOrigin(ctx *EventContext) bool {
	for _, t := range r.byEvent[ir.EventProjAppeared] {
		if t.ShouldDisableOrigin(ctx) {
			return true
		}
	}
	return false
}

// Triggers returns the triggers registered for e.
func (r *TriggerRegistry) Triggers(e ir.Event) []*Trigger {
	if !e.Valid() {
		return nil
	}
	return r.byEvent[e]
}

// Len returns the total number of triggers.
func (r *TriggerRegistry) Len() int {
	n := 0
	for _, ts := range r.byEvent {
		n += len(ts)
	}
	return n
}
