package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/volley/internal/ir"
)

// RuntimeError is an error detected while driving emitters.
//
// Predicates never produce errors. RuntimeErrors come only from the
// scheduler, when the host calls it outside its preconditions or with
// state from a previous generation.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Instance identifies the affected instance, if any.
	Instance ir.InstanceID

	// Index is the emitter index involved, if any.
	Index ir.Index
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNotEmitter indicates index 0 reached the emitter table, or an
	// update arrived for an instance without an emitter.
	ErrCodeNotEmitter RuntimeErrorCode = "NOT_EMITTER"

	// ErrCodeIndexOutOfRange indicates an index beyond the emitter table.
	ErrCodeIndexOutOfRange RuntimeErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeStaleGeneration indicates instance state written by a
	// generation that is no longer installed.
	ErrCodeStaleGeneration RuntimeErrorCode = "STALE_GENERATION"

	// ErrCodeUnsupportedInstance indicates Apply on an instance whose class
	// cannot carry an emitter.
	ErrCodeUnsupportedInstance RuntimeErrorCode = "UNSUPPORTED_INSTANCE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Instance != "" {
		return fmt.Sprintf("%s: %s (instance=%s, index=%d)", e.Code, e.Message, e.Instance, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotEmitter reports whether err is a NOT_EMITTER RuntimeError.
func IsNotEmitter(err error) bool {
	return hasCode(err, ErrCodeNotEmitter)
}

// IsStaleGeneration reports whether err is a STALE_GENERATION RuntimeError.
func IsStaleGeneration(err error) bool {
	return hasCode(err, ErrCodeStaleGeneration)
}

// IsIndexOutOfRange reports whether err is an INDEX_OUT_OF_RANGE RuntimeError.
func IsIndexOutOfRange(err error) bool {
	return hasCode(err, ErrCodeIndexOutOfRange)
}

// IsUnsupportedInstance reports whether err is an UNSUPPORTED_INSTANCE RuntimeError.
func IsUnsupportedInstance(err error) bool {
	return hasCode(err, ErrCodeUnsupportedInstance)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func newNotEmitterError(id ir.InstanceID) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeNotEmitter,
		Message:  "instance has no emitter",
		Instance: id,
	}
}

func newStaleError(id ir.InstanceID, st ir.InstanceState, current string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeStaleGeneration,
		Message:  fmt.Sprintf("state from generation %q, current is %q", st.Generation, current),
		Instance: id,
		Index:    st.Index,
	}
}
