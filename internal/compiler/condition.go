package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/volley/internal/ir"
)

// CompileCondition compiles one entry of a trigger's conditions mapping.
// kindName is the mapping key (e.g. "WeaponHasKwd"); v is its string value.
func CompileCondition(kindName string, v cue.Value, forms FormResolver) (ir.Condition, error) {
	kind, ok := ir.ParseConditionKind(kindName)
	if !ok {
		return ir.Condition{}, &CompileError{
			Field:   kindName,
			Message: fmt.Sprintf("unknown condition %q, must be one of %s", kindName, strings.Join(ir.ConditionKindNames(), ", ")),
			Pos:     v.Pos(),
		}
	}

	s, err := v.String()
	if err != nil {
		return ir.Condition{}, &CompileError{
			Field:   kindName,
			Message: "condition value must be a string",
			Pos:     v.Pos(),
		}
	}

	if kind == ir.CondHand {
		hand, ok := ir.ParseHand(s)
		if !ok {
			return ir.Condition{}, &CompileError{
				Field:   kindName,
				Message: fmt.Sprintf("invalid hand %q, must be \"Both\", \"Left\", or \"Right\"", s),
				Pos:     v.Pos(),
			}
		}
		return ir.HandCondition(hand), nil
	}

	id, err := forms.ResolveForm(s)
	if err != nil {
		return ir.Condition{}, &CompileError{
			Field:   kindName,
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return ir.FormCondition(kind, id), nil
}

// compileConditions compiles a conditions mapping in declaration order.
func compileConditions(v cue.Value, forms FormResolver) ([]ir.Condition, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: "conditions", Message: "conditions must be a mapping", Pos: v.Pos()}
	}

	var conds []ir.Condition
	for iter.Next() {
		c, err := CompileCondition(iter.Label(), iter.Value(), forms)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}
