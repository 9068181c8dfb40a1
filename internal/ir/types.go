package ir

import (
	"encoding/json"
	"fmt"
	"math"
)

// FormID is the host's stable numeric identifier for a form or keyword.
type FormID uint32

func (id FormID) String() string { return fmt.Sprintf("0x%08X", uint32(id)) }

// Index is a dense 1-based identifier index. Zero means unset.
type Index uint32

// IsSet reports whether the index refers to an entry.
func (i Index) IsSet() bool { return i != 0 }

// MaxCount is the largest firing count an emitter may declare.
const MaxCount = 1<<30 - 1

// Condition is a single typed predicate over an event context.
//
// It is a tagged variant: Kind selects which payload is meaningful.
// Hand is read only for CondHand; Form is read for every other kind.
// The value is small and copied by value; evaluating it never allocates.
type Condition struct {
	Kind ConditionKind `json:"kind"`
	Hand Hand          `json:"hand,omitempty"`
	Form FormID        `json:"form,omitempty"`
}

// HandCondition builds a CondHand condition.
func HandCondition(h Hand) Condition {
	return Condition{Kind: CondHand, Hand: h}
}

// FormCondition builds an identifier or keyword condition.
func FormCondition(kind ConditionKind, id FormID) Condition {
	return Condition{Kind: kind, Form: id}
}

func (c Condition) String() string {
	if c.Kind == CondHand {
		return fmt.Sprintf("%s=%s", c.Kind, c.Hand)
	}
	return fmt.Sprintf("%s=%s", c.Kind, c.Form)
}

// ActionSpec is a compiled TriggerFunctions block.
//
// The engine treats the action as opaque: DisableOrigin and Emitter are the
// only fields it interprets. Raw carries the whole block for the host's
// action factory.
type ActionSpec struct {
	Source        string          `json:"source"`
	DisableOrigin bool            `json:"disable_origin,omitempty"`
	EmitterName   string          `json:"emitter_name,omitempty"`
	Emitter       Index           `json:"emitter,omitempty"` // 0 = no emitter to apply
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// TriggerDef is a compiled trigger: conditions ANDed in declared order
// plus one action.
type TriggerDef struct {
	Source     string      `json:"source"`
	Position   int         `json:"position"` // index within the source's Triggers list
	Event      Event       `json:"event"`
	Conditions []Condition `json:"conditions"`
	Action     ActionSpec  `json:"action"`
}

// FunctionSpec is one periodic function of an emitter.
// Curve and Time are read for FunctionAccelerate, Action for FunctionAction.
type FunctionSpec struct {
	Kind   FunctionKind `json:"kind"`
	Curve  SpeedCurve   `json:"curve,omitempty"`
	Time   float64      `json:"time,omitempty"`
	Action ActionSpec   `json:"action,omitempty"`
}

// EmitterDef is the immutable, shared definition behind an emitter index.
type EmitterDef struct {
	Source       string         `json:"source"`
	Name         string         `json:"name"`
	Index        Index          `json:"index"`
	Interval     float64        `json:"interval"`
	Functions    []FunctionSpec `json:"functions"`
	Limited      bool           `json:"limited"`
	Count        uint32         `json:"count"`
	DestroyAfter bool           `json:"destroy_after"`
}

// InstanceID identifies a live host entity carrying emitter state.
type InstanceID string

// InstanceState is the per-instance emitter state kept in a side table.
//
// Index 0 means Disabled. Remaining is meaningful only while the assigned
// definition is limited. Generation stamps the configuration generation
// that assigned the index.
type InstanceState struct {
	Index      Index  `json:"index"`
	Remaining  uint32 `json:"remaining"`
	Generation string `json:"generation,omitempty"`
}

// Active reports whether the state carries an emitter.
func (s InstanceState) Active() bool { return s.Index.IsSet() }

// Vec3 is a world-space vector.
type Vec3 struct {
	X, Y, Z float64
}

// Length returns the Euclidean magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns v multiplied by k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Angles is an aim rotation pair in radians.
type Angles struct {
	X, Z float64
}
