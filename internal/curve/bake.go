package curve

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/kinematics"
)

// minProfileSpeed keeps corners tighter than the minimum turning radius drivable
// at a crawl instead of stalling the profile.
const minProfileSpeed = 50.0

// CalculateMaxSpeeds bakes the feasible speed profile and returns the time
// estimate to drive the curve.
//
// The profile is the curvature limit, lowered by a backward braking pass from
// endSpeed, then raised from startSpeed by a forward pass at full throttle (with
// boost while the boost budget lasts), then swept backwards once more. A
// negative endSpeed leaves the arrival speed unconstrained. Start or end speeds
// the car cannot reach are clipped without error.
func (c *Curve) CalculateMaxSpeeds(startSpeed, endSpeed, boost float64, m kinematics.MotionModel) (float64, error) {
	if c.maxSpeeds != nil {
		return c.duration, ErrAlreadyBaked
	}
	n := len(c.points)
	if n < 2 {
		return 0, fmt.Errorf("baking %d points: %w", n, ErrTooShort)
	}

	caps := make([]float64, n)
	for i, k := range c.curvatures {
		caps[i] = math.Min(m.VMax(), math.Max(minProfileSpeed, m.SpeedForCurvature(k)))
	}
	if endSpeed >= 0 {
		caps[n-1] = math.Min(caps[n-1], math.Max(endSpeed, 0))
	}
	for i := n - 2; i >= 0; i-- {
		caps[i] = math.Min(caps[i], m.SpeedBeforeBraking(caps[i+1], c.segment(i)))
	}

	v := make([]float64, n)
	v[0] = mgl64.Clamp(startSpeed, 0, caps[0])
	budget := boost
	for i := 1; i < n; i++ {
		ds := c.segment(i - 1)
		useBoost := budget > 0 && m.BoostRate() > 0
		reach := m.SpeedAfterAccelerating(v[i-1], ds, useBoost)
		v[i] = math.Min(caps[i], reach)
		if useBoost && v[i] > m.SpeedAfterAccelerating(v[i-1], ds, false) {
			budget -= m.BoostRate() * segmentTime(ds, v[i-1], v[i])
		}
	}

	for i := n - 2; i >= 0; i-- {
		v[i] = math.Min(v[i], m.SpeedBeforeBraking(v[i+1], c.segment(i)))
	}

	var total float64
	for i := 1; i < n; i++ {
		total += segmentTime(c.segment(i-1), v[i-1], v[i])
	}

	c.maxSpeeds = v
	c.duration = total
	return total, nil
}

// Speeds returns a copy of the baked profile, nil before the bake.
func (c *Curve) Speeds() []float64 {
	if c.maxSpeeds == nil {
		return nil
	}
	return append([]float64(nil), c.maxSpeeds...)
}

// Distances returns a copy of the cumulative arc length at each control point.
func (c *Curve) Distances() []float64 {
	return append([]float64(nil), c.distances...)
}

func (c *Curve) segment(i int) float64 {
	return c.distances[i+1] - c.distances[i]
}

func segmentTime(ds, v0, v1 float64) float64 {
	if avg := 0.5 * (v0 + v1); avg > 1e-9 {
		return ds / avg
	}
	return ds / minProfileSpeed
}
