package kinematics

import "math"

// ConstantModelName is the JSON discriminator string for the Constant model.
const ConstantModelName = "constant"

// ConstantAcceleration implements MotionModel using fixed acceleration and braking
// rates and a lateral acceleration limit for turns. It is the simplest model and
// the one closed-form tests bake against.
//
// JSON discriminator: "model": "constant"
type ConstantAcceleration struct {
	AAcc      float64 `json:"a_acc"`      // throttle acceleration, uu/s²
	ABoost    float64 `json:"a_boost"`    // extra acceleration while boosting, uu/s²
	ADcc      float64 `json:"a_dcc"`      // braking deceleration, uu/s² (positive)
	ALat      float64 `json:"a_lat"`      // lateral acceleration limit, uu/s²
	MinRadius float64 `json:"min_radius"` // tightest turning radius, uu
	VMaxVal   float64 `json:"v_max"`      // maximum speed, uu/s
	Boost     float64 `json:"boost_rate"` // boost consumed per second
}

func (c ConstantAcceleration) VMax() float64 { return c.VMaxVal }

func (c ConstantAcceleration) BoostRate() float64 { return c.Boost }

func (c ConstantAcceleration) Acceleration(v float64, boost bool) float64 {
	if v >= c.VMaxVal {
		return 0
	}
	if boost {
		return c.AAcc + c.ABoost
	}
	return c.AAcc
}

func (c ConstantAcceleration) BrakingDistanceTo(v, targetV float64) float64 {
	if c.ADcc <= 0 {
		return math.Inf(1)
	}
	if v <= targetV {
		return 0
	}
	return (v*v - targetV*targetV) / (2 * c.ADcc)
}

func (c ConstantAcceleration) SpeedAfterAccelerating(v, dist float64, boost bool) float64 {
	a := c.Acceleration(v, boost)
	return math.Min(c.VMaxVal, math.Sqrt(math.Max(0, v*v+2*a*dist)))
}

func (c ConstantAcceleration) SpeedBeforeBraking(v, dist float64) float64 {
	return math.Sqrt(v*v + 2*math.Max(0, c.ADcc)*dist)
}

func (c ConstantAcceleration) AccelerateStep(v, targetV, dt float64) (float64, float64) {
	if c.AAcc <= 0 || v >= targetV {
		return targetV * dt, targetV
	}
	tToTarget := (targetV - v) / c.AAcc
	if tToTarget <= dt {
		// Reaches targetV mid-step: accelerate, then cruise for the remainder.
		s1 := v*tToTarget + 0.5*c.AAcc*tToTarget*tToTarget
		s2 := targetV * (dt - tToTarget)
		return s1 + s2, targetV
	}
	return v*dt + 0.5*c.AAcc*dt*dt, v + c.AAcc*dt
}

func (c ConstantAcceleration) DecelerateStep(v, targetV, dt float64) (float64, float64) {
	if c.ADcc <= 0 || v <= targetV {
		return targetV * dt, targetV
	}
	tToTarget := (v - targetV) / c.ADcc
	if tToTarget <= dt {
		s1 := v*tToTarget - 0.5*c.ADcc*tToTarget*tToTarget
		s2 := targetV * (dt - tToTarget)
		return math.Max(0, s1) + s2, targetV
	}
	return math.Max(0, v*dt-0.5*c.ADcc*dt*dt), v - c.ADcc*dt
}

func (c ConstantAcceleration) MaxCurvature(v float64) float64 {
	k := math.Inf(1)
	if c.MinRadius > 0 {
		k = 1 / c.MinRadius
	}
	if c.ALat > 0 && v > 0 {
		k = math.Min(k, c.ALat/(v*v))
	}
	return k
}

func (c ConstantAcceleration) SpeedForCurvature(k float64) float64 {
	k = math.Abs(k)
	if c.MinRadius > 0 && k > 1/c.MinRadius {
		return 0
	}
	if c.ALat <= 0 || k == 0 {
		return c.VMaxVal
	}
	return math.Min(c.VMaxVal, math.Sqrt(c.ALat/k))
}
