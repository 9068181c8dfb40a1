package ir

import "fmt"

// Hand selects which casting source a Hand condition accepts.
type Hand uint8

const (
	HandBoth Hand = iota
	HandLeft
	HandRight
)

var handNames = []string{"Both", "Left", "Right"}

func (h Hand) String() string { return enumName(handNames, h) }

// ParseHand resolves a configuration name to a Hand.
func ParseHand(name string) (Hand, bool) { return parseEnum[Hand](handNames, name) }

// CastingSource is the host's notion of where a spell or attack came from.
type CastingSource uint8

const (
	CastingLeftHand CastingSource = iota
	CastingRightHand
	CastingOther
	CastingInstant
)

var castingNames = []string{"LeftHand", "RightHand", "Other", "Instant"}

func (c CastingSource) String() string { return enumName(castingNames, c) }

// ParseCastingSource resolves a name to a CastingSource.
func ParseCastingSource(name string) (CastingSource, bool) {
	return parseEnum[CastingSource](castingNames, name)
}

// OriginKind tags what produced the event.
type OriginKind uint8

const (
	OriginNone OriginKind = iota
	OriginArrow
	OriginSpell
)

var originNames = []string{"None", "Arrow", "Spell"}

func (o OriginKind) String() string { return enumName(originNames, o) }

// ParseOriginKind resolves a name to an OriginKind.
func ParseOriginKind(name string) (OriginKind, bool) {
	return parseEnum[OriginKind](originNames, name)
}

// SpeedCurve is the acceleration profile of an AccelerateToMaxSpeed function.
type SpeedCurve uint8

const (
	SpeedLinear SpeedCurve = iota
	SpeedQuadratic
	SpeedExponential
)

var speedCurveNames = []string{"Linear", "Quadratic", "Exponential"}

func (s SpeedCurve) String() string { return enumName(speedCurveNames, s) }

// ParseSpeedCurve resolves a configuration name to a SpeedCurve.
func ParseSpeedCurve(name string) (SpeedCurve, bool) {
	return parseEnum[SpeedCurve](speedCurveNames, name)
}

// FunctionKind discriminates FunctionSpec.
type FunctionKind uint8

const (
	// FunctionAccelerate accelerates the projectile toward its max speed.
	FunctionAccelerate FunctionKind = iota
	// FunctionAction delegates to an action with the projectile as target.
	FunctionAction
)

var functionNames = []string{"AccelerateToMaxSpeed", "TriggerFunctions"}

func (f FunctionKind) String() string { return enumName(functionNames, f) }

// ParseFunctionKind resolves a configuration `type` to a FunctionKind.
func ParseFunctionKind(name string) (FunctionKind, bool) {
	return parseEnum[FunctionKind](functionNames, name)
}

// ConditionKind discriminates Condition.
type ConditionKind uint8

const (
	CondHand ConditionKind = iota
	CondProjBaseIsFormID
	CondEffectIsFormID
	CondEffectHasKwd
	CondEffectsIsFormID
	CondEffectsHasKwd
	CondSpellHasKwd
	CondSpellIsFormID
	CondCasterIsFormID
	CondCasterBaseIsFormID
	CondCasterHasKwd
	CondWeaponBaseIsFormID
	CondWeaponHasKwd
)

var conditionNames = []string{
	"Hand",
	"ProjBaseIsFormID",
	"EffectIsFormID",
	"EffectHasKwd",
	"EffectsIsFormID",
	"EffectsHasKwd",
	"SpellHasKwd",
	"SpellIsFormID",
	"CasterIsFormID",
	"CasterBaseIsFormID",
	"CasterHasKwd",
	"WeaponBaseIsFormID",
	"WeaponHasKwd",
}

func (k ConditionKind) String() string { return enumName(conditionNames, k) }

// ParseConditionKind resolves a configuration name to a ConditionKind.
func ParseConditionKind(name string) (ConditionKind, bool) {
	return parseEnum[ConditionKind](conditionNames, name)
}

// ConditionKindNames returns all condition kind names in declaration order.
func ConditionKindNames() []string {
	return append([]string(nil), conditionNames...)
}

func enumName[T ~uint8](names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%T(%d)", v, uint8(v))
}

func parseEnum[T ~uint8](names []string, name string) (T, bool) {
	for i, n := range names {
		if n == name {
			return T(i), true
		}
	}
	return 0, false
}
