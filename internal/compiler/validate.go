package compiler

import (
	"fmt"

	"github.com/roach88/volley/internal/ir"
)

// ValidationError is a semantic error in a compiled generation.
type ValidationError struct {
	Code    string
	Source  string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Source, e.Field, e.Message)
}

// Validation codes.
const (
	CodeLimitedZeroCount = "E201" // limited emitter that can never fire
	CodeNegativeInterval = "E202"
	CodeNonPositiveTime  = "E203" // speed curve with time <= 0
	CodeEmitterOrder     = "E204" // table index out of lockstep with its position
)

// Validate checks a compiled generation for semantic errors that the CUE
// values alone cannot express. It returns every error found.
func Validate(gen *ir.Generation) []ValidationError {
	var errs []ValidationError

	for i := range gen.Emitters {
		e := &gen.Emitters[i]
		field := "EmittersData." + e.Name

		if e.Index != ir.Index(i+1) {
			errs = append(errs, ValidationError{
				Code:    CodeEmitterOrder,
				Source:  e.Source,
				Field:   field,
				Message: fmt.Sprintf("index %d at position %d", e.Index, i+1),
			})
		}
		if e.Interval < 0 {
			errs = append(errs, ValidationError{
				Code:    CodeNegativeInterval,
				Source:  e.Source,
				Field:   field + ".interval",
				Message: fmt.Sprintf("interval %g is negative", e.Interval),
			})
		}
		if e.Limited && e.Count == 0 {
			errs = append(errs, ValidationError{
				Code:    CodeLimitedZeroCount,
				Source:  e.Source,
				Field:   field + ".count",
				Message: "limited emitter with count 0 never fires",
			})
		}
		for j, fn := range e.Functions {
			if fn.Kind == ir.FunctionAccelerate && fn.Time <= 0 {
				errs = append(errs, ValidationError{
					Code:    CodeNonPositiveTime,
					Source:  e.Source,
					Field:   fmt.Sprintf("%s.functions[%d].time", field, j),
					Message: fmt.Sprintf("time %g must be positive", fn.Time),
				})
			}
		}
	}

	return errs
}
