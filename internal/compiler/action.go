package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/keys"
)

// fieldTriggerFunctions is the configuration name of an action block.
const fieldTriggerFunctions = "TriggerFunctions"

// CompileAction compiles a TriggerFunctions block.
//
// Only disableOrigin and emitter are interpreted. An emitter name is
// resolved against emitters registered by the same source, so the key pass
// must have run for that source.
func CompileAction(source string, v cue.Value, emitters *keys.Registry) (ir.ActionSpec, error) {
	spec := ir.ActionSpec{Source: source}

	if err := v.Err(); err != nil {
		return spec, formatCUEError(err)
	}
	if _, err := v.Fields(); err != nil {
		return spec, &CompileError{Field: fieldTriggerFunctions, Message: "must be a mapping", Pos: v.Pos()}
	}

	var err error
	spec.DisableOrigin, err = optionalBool(v, "disableOrigin", false)
	if err != nil {
		return spec, err
	}

	if ev := lookup(v, "emitter"); ev.Exists() {
		name, err := ev.String()
		if err != nil {
			return spec, &CompileError{Field: "emitter", Message: "must be an emitter name", Pos: ev.Pos()}
		}
		idx, err := emitters.Get(source, name)
		if err != nil {
			return spec, &CompileError{Field: "emitter", Message: err.Error(), Pos: ev.Pos()}
		}
		spec.EmitterName = name
		spec.Emitter = idx
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return spec, formatCUEError(err)
	}
	spec.Raw = raw

	return spec, nil
}

// requireAction looks up and compiles the TriggerFunctions field of v.
func requireAction(source string, v cue.Value, emitters *keys.Registry) (ir.ActionSpec, error) {
	av := lookup(v, fieldTriggerFunctions)
	if !av.Exists() {
		return ir.ActionSpec{}, &CompileError{
			Field:   fieldTriggerFunctions,
			Message: fieldTriggerFunctions + " is required",
			Pos:     v.Pos(),
		}
	}
	spec, err := CompileAction(source, av, emitters)
	if err != nil {
		return spec, withSource(err, source, fieldTriggerFunctions)
	}
	return spec, nil
}
