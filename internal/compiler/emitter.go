package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/keys"
)

// Emitter field defaults.
const (
	defaultLimited      = false
	defaultCount        = 1
	defaultDestroyAfter = false
)

// CompileEmitter compiles one EmittersData entry.
//
//	Homing: {
//	    interval: 0.1
//	    functions: [{type: "AccelerateToMaxSpeed", speedType: "Linear", time: 0.5}]
//	    limited: true
//	    count: 5
//	}
//
// index is the value the key pass registered for (source, name).
func CompileEmitter(source, name string, index ir.Index, v cue.Value, emitters *keys.Registry) (*ir.EmitterDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &ir.EmitterDef{Source: source, Name: name, Index: index}

	var err error
	if def.Interval, err = requireFloat(v, "interval"); err != nil {
		return nil, err
	}
	if def.Limited, err = optionalBool(v, "limited", defaultLimited); err != nil {
		return nil, err
	}
	count, err := optionalUint(v, "count", defaultCount)
	if err != nil {
		return nil, err
	}
	if count > ir.MaxCount {
		return nil, &CompileError{
			Field:   "count",
			Message: fmt.Sprintf("count %d exceeds maximum %d", count, ir.MaxCount),
			Pos:     lookup(v, "count").Pos(),
		}
	}
	def.Count = uint32(count)
	if def.DestroyAfter, err = optionalBool(v, "destroyAfter", defaultDestroyAfter); err != nil {
		return nil, err
	}

	if fv := lookup(v, "functions"); fv.Exists() {
		iter, err := fv.List()
		if err != nil {
			return nil, &CompileError{Field: "functions", Message: "must be a list", Pos: fv.Pos()}
		}
		for i := 0; iter.Next(); i++ {
			fn, err := compileFunction(source, iter.Value(), emitters)
			if err != nil {
				return nil, withSource(err, source, fmt.Sprintf("functions[%d]", i))
			}
			def.Functions = append(def.Functions, fn)
		}
	}

	return def, nil
}

func compileFunction(source string, v cue.Value, emitters *keys.Registry) (ir.FunctionSpec, error) {
	typeName, typeVal, err := requireString(v, "type")
	if err != nil {
		return ir.FunctionSpec{}, err
	}
	kind, ok := ir.ParseFunctionKind(typeName)
	if !ok {
		return ir.FunctionSpec{}, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unknown function type %q, must be \"AccelerateToMaxSpeed\" or \"TriggerFunctions\"", typeName),
			Pos:     typeVal.Pos(),
		}
	}

	fn := ir.FunctionSpec{Kind: kind}
	switch kind {
	case ir.FunctionAccelerate:
		curveName, curveVal, err := requireString(v, "speedType")
		if err != nil {
			return fn, err
		}
		curve, ok := ir.ParseSpeedCurve(curveName)
		if !ok {
			return fn, &CompileError{
				Field:   "speedType",
				Message: fmt.Sprintf("unknown speed type %q, must be one of %s", curveName, strings.Join([]string{"Linear", "Quadratic", "Exponential"}, ", ")),
				Pos:     curveVal.Pos(),
			}
		}
		fn.Curve = curve
		if fn.Time, err = requireFloat(v, "time"); err != nil {
			return fn, err
		}
	case ir.FunctionAction:
		if fn.Action, err = requireAction(source, v, emitters); err != nil {
			return fn, err
		}
	}
	return fn, nil
}
