package engine

import (
	"math"

	"github.com/roach88/volley/internal/ir"
)

// LivingTimeReset is the value the interval timer restarts from after a
// firing. It is deliberately not zero.
const LivingTimeReset = 0.000001

// SpeedDelta returns the speed gained over dt on curve, for a projectile
// at cur heading to max over total seconds.
//
// Quadratic multiplies by total where the other curves divide.
func SpeedDelta(curve ir.SpeedCurve, cur, max, total, dt float64) float64 {
	switch curve {
	case ir.SpeedLinear:
		return max / total * dt
	case ir.SpeedQuadratic:
		return 2 * math.Sqrt(cur*max) * total * dt
	case ir.SpeedExponential:
		return cur * math.Log(max) / total * dt
	default:
		return 0
	}
}

// accelerate applies one AccelerateToMaxSpeed step. Direction is kept and
// nothing changes at or above max speed, or when the projectile is still.
func accelerate(p Projectile, fn ir.FunctionSpec, dt float64) {
	maxSpeed := p.MaxSpeed()
	v := p.Velocity()
	cur := v.Length()
	if cur >= maxSpeed || cur == 0 {
		return
	}
	next := cur + SpeedDelta(fn.Curve, cur, maxSpeed, fn.Time, dt)
	p.SetVelocity(v.Scale(next / cur))
}
