package path

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/physics"
)

const (
	completionDistance = 30.0 // uu from the curve end
	timeoutFactor      = 2.0  // of the baked duration
	timeoutSlack       = 1.0  // seconds

	lookaheadTime = 0.25 // seconds of travel
	minLookahead  = 80.0
	maxLookahead  = 500.0
	speedLookTime = 0.1 // seconds ahead the profile is sampled
	steerGain     = 3.0

	boostMargin  = 250.0 // uu/s below the profile before boosting
	coastMargin  = 150.0 // uu/s above the profile before braking
	throttleBand = 100.0

	driftAngle = 0.3 // radians off the lookahead point before the handbrake goes on

	airLookahead   = 200.0
	airborneHeight = 50.0
)

// Step returns this tick's controls for following the segment and whether the
// segment is finished. It panics on an unbaked segment.
func (s *Segment) Step(car physics.CarState, dt float64) (physics.ControlsOutput, bool) {
	b := s.mustBaked()
	if s.done {
		return physics.ControlsOutput{}, true
	}
	s.elapsed += dt

	c := b.Curve
	s.progress = math.Max(s.progress, c.Closest(car.Position, s.progress))
	remaining := c.Length() - s.progress
	if remaining <= completionDistance || s.elapsed > s.deadline(b) {
		s.done = true
		return physics.ControlsOutput{}, true
	}

	speed := car.ForwardSpeed()
	look := s.progress + mgl64.Clamp(math.Abs(speed)*lookaheadTime, minLookahead, maxLookahead)
	local := car.Local(c.PointAt(look).Sub(car.Position))
	angle := math.Atan2(local.Y(), local.X())

	desired := c.MaxSpeedAt(s.progress + math.Max(speed, 0)*speedLookTime)
	if st, ok := s.shape.(Straight); ok && st.ArrivalTime > 0 {
		if left := st.ArrivalTime - s.elapsed; left > dt {
			desired = math.Min(desired, remaining/left)
		}
	}

	out := physics.ControlsOutput{Steer: mgl64.Clamp(-steerGain*angle, -1, 1)}
	out.Throttle, out.Boost = speedControl(speed, desired, car.Boost > 0)
	if s.Kind() == KindDrift && s.progress < b.DriftLength && math.Abs(angle) > driftAngle {
		out.Handbrake = true
	}
	return out, false
}

// deadline is the elapsed time after which the follower gives up.
func (s *Segment) deadline(b Baked) float64 {
	expected := b.Duration
	if st, ok := s.shape.(Straight); ok {
		expected = math.Max(expected, st.ArrivalTime)
	}
	return expected*timeoutFactor + timeoutSlack
}

// Progress returns the arc length reached so far.
func (s *Segment) Progress() float64 { return s.progress }

// speedControl maps the gap to the profile speed onto throttle and boost.
func speedControl(speed, desired float64, haveBoost bool) (float64, bool) {
	diff := desired - speed
	switch {
	case diff > boostMargin && haveBoost && speed < physics.MaxCarVelocity-50:
		return 1, true
	case diff > 0:
		return math.Min(1, diff/throttleBand+0.2), false
	case diff > -coastMargin:
		return 0, false
	default:
		return -1, false
	}
}
