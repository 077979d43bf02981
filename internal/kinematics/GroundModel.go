package kinematics

import (
	"math"

	"github.com/cxd309/strike-engine/internal/physics"
)

// GroundModelName is the JSON discriminator string for the ground model.
const GroundModelName = "ground"

// GroundModel implements MotionModel with the same throttle curve, boost,
// braking and turning tables the physics package drives with.
//
// JSON discriminator: "model": "ground"
type GroundModel struct {
	// NoBoost bakes profiles as if the boost tank were empty.
	NoBoost bool `json:"no_boost,omitempty"`
}

func (GroundModel) VMax() float64 { return physics.MaxCarVelocity }

func (g GroundModel) BoostRate() float64 {
	if g.NoBoost {
		return 0
	}
	return physics.BoostConsumption
}

func (g GroundModel) Acceleration(v float64, boost bool) float64 {
	if v >= physics.MaxCarVelocity {
		return 0
	}
	a := physics.ThrottleAcceleration(v)
	if boost && !g.NoBoost {
		a += physics.BoostAccel
	}
	return a
}

func (GroundModel) BrakingDistanceTo(v, targetV float64) float64 {
	if v <= targetV {
		return 0
	}
	return (v*v - targetV*targetV) / (2 * physics.BrakeAccel)
}

// SpeedAfterAccelerating integrates the throttle curve over dist in short slices,
// since the acceleration falls off with speed.
func (g GroundModel) SpeedAfterAccelerating(v, dist float64, boost bool) float64 {
	const slices = 4
	ds := dist / slices
	for i := 0; i < slices; i++ {
		a := g.Acceleration(v, boost)
		v = math.Sqrt(math.Max(0, v*v+2*a*ds))
	}
	return math.Min(v, physics.MaxCarVelocity)
}

func (GroundModel) SpeedBeforeBraking(v, dist float64) float64 {
	return math.Sqrt(v*v + 2*physics.BrakeAccel*math.Max(0, dist))
}

func (g GroundModel) AccelerateStep(v, targetV, dt float64) (float64, float64) {
	a := g.Acceleration(v, false)
	if a <= 0 || v >= targetV {
		return v * dt, v
	}
	newV := math.Min(targetV, v+a*dt)
	return 0.5 * (v + newV) * dt, newV
}

func (GroundModel) DecelerateStep(v, targetV, dt float64) (float64, float64) {
	if v <= targetV {
		return targetV * dt, targetV
	}
	newV := math.Max(targetV, v-physics.BrakeAccel*dt)
	return 0.5 * (v + newV) * dt, newV
}

func (GroundModel) MaxCurvature(v float64) float64 { return physics.MaxCurvature(v) }

func (GroundModel) SpeedForCurvature(k float64) float64 { return physics.SpeedForCurvature(k) }
