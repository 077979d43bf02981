package optimizer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/physics"
)

const aimGain = 3.0

type strikePhase int

const (
	phaseDrive strikePhase = iota
	phaseJump
	phaseRelease
	phaseDodge
	phaseAir
)

// Strike turns a DodgePlan into per-tick controls. It counts ticks from the
// first Step call.
type Strike struct {
	plan       DodgePlan
	driveTicks int
	holdTicks  int
	tick       int
}

// NewStrike schedules plan at the tick length dt.
func NewStrike(plan DodgePlan, dt float64) *Strike {
	return &Strike{
		plan:       plan,
		driveTicks: int(math.Round(plan.Delay / dt)),
		holdTicks:  max(1, int(math.Round(plan.Duration/dt))),
	}
}

func (s *Strike) phase() strikePhase {
	switch k := s.tick; {
	case s.plan.Inert() || k < s.driveTicks:
		return phaseDrive
	case k < s.driveTicks+s.holdTicks:
		return phaseJump
	case k == s.driveTicks+s.holdTicks:
		return phaseRelease
	case k == s.driveTicks+s.holdTicks+1:
		return phaseDodge
	default:
		return phaseAir
	}
}

// Dodged reports whether the dodge press has been issued.
func (s *Strike) Dodged() bool { return s.phase() == phaseAir }

// Step returns the controls for this tick, aiming at target.
func (s *Strike) Step(car physics.CarState, target mgl64.Vec3) physics.ControlsOutput {
	defer func() { s.tick++ }()

	local := car.Local(target.Sub(car.Position))
	angle := math.Atan2(local.Y(), local.X())

	switch s.phase() {
	case phaseDrive:
		return physics.ControlsOutput{Throttle: 1, Steer: mgl64.Clamp(-aimGain*angle, -1, 1)}
	case phaseJump:
		return physics.ControlsOutput{Throttle: 1, Jump: true}
	case phaseRelease:
		return physics.ControlsOutput{Throttle: 1}
	case phaseDodge:
		a := angle + s.plan.Angle
		c, sn := math.Cos(a), math.Sin(a)
		m := math.Max(math.Abs(c), math.Abs(sn))
		return physics.ControlsOutput{Throttle: 1, Jump: true, Pitch: -c / m, Yaw: -sn / m}
	default:
		return physics.ControlsOutput{Throttle: 1}
	}
}
