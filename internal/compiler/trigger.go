package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/keys"
)

// CompileTrigger compiles one element of a source's Triggers list.
//
//	{
//	    event: "HitMelee"
//	    conditions: { Hand: "Right", WeaponHasKwd: "0x1E711" }
//	    TriggerFunctions: { ... }
//	}
func CompileTrigger(source string, position int, v cue.Value, forms FormResolver, emitters *keys.Registry) (*ir.TriggerDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &ir.TriggerDef{Source: source, Position: position}

	eventName, eventVal, err := requireString(v, "event")
	if err != nil {
		return nil, err
	}
	ev, ok := ir.ParseEvent(eventName)
	if !ok {
		return nil, &CompileError{
			Field:   "event",
			Message: fmt.Sprintf("unknown event %q, must be one of %s", eventName, strings.Join(ir.EventNames(), ", ")),
			Pos:     eventVal.Pos(),
		}
	}
	def.Event = ev

	if cv := lookup(v, "conditions"); cv.Exists() {
		conds, err := compileConditions(cv, forms)
		if err != nil {
			return nil, withSource(err, source, "conditions")
		}
		def.Conditions = conds
	}

	def.Action, err = requireAction(source, v, emitters)
	if err != nil {
		return nil, err
	}

	return def, nil
}

// compileTriggers compiles a source's Triggers list in order.
func compileTriggers(source string, v cue.Value, forms FormResolver, emitters *keys.Registry) ([]ir.TriggerDef, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Source: source, Field: "Triggers", Message: "must be a list", Pos: v.Pos()}
	}

	var defs []ir.TriggerDef
	for i := 0; iter.Next(); i++ {
		def, err := CompileTrigger(source, i, iter.Value(), forms, emitters)
		if err != nil {
			return nil, withSource(err, source, fmt.Sprintf("Triggers[%d]", i))
		}
		defs = append(defs, *def)
	}
	return defs, nil
}
