package path

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/curve"
)

// Shape is the closed set of segment geometries.
type Shape interface {
	Kind() Kind
	points(e Entry, step float64) (pts []curve.ControlPoint, driftLength float64, err error)
	arrivalSpeed() float64
}

// Straight drives to Target. A positive ArrivalTime (seconds after the segment
// starts) paces the car to arrive then instead of as early as possible. An
// ArrivalSpeed of 0 leaves the arrival speed free.
type Straight struct {
	Target       mgl64.Vec3
	ArrivalTime  float64
	ArrivalSpeed float64
}

// TurnCircle drives to the tangent point of the circle (Center, Radius) in the
// car's turn sense and then around it until it faces Exit.
type TurnCircle struct {
	Center       mgl64.Vec3
	Radius       float64
	Exit         mgl64.Vec3
	ArrivalSpeed float64
}

// ArcLineArc reaches Target heading along TargetTangent with a turn, a straight
// and a turn of the given Radius.
type ArcLineArc struct {
	Target        mgl64.Vec3
	TargetTangent mgl64.Vec3
	Radius        float64
	ArrivalSpeed  float64
}

// Drift powerslides round a circle of Radius until the nose points at Target,
// then drives straight to it.
type Drift struct {
	Target       mgl64.Vec3
	Radius       float64
	ArrivalSpeed float64
}

// Route follows a precomputed curve, usually one returned by the navigator.
type Route struct {
	Curve        *curve.Curve
	ArrivalSpeed float64
}

func (Straight) Kind() Kind   { return KindStraight }
func (TurnCircle) Kind() Kind { return KindTurnCircle }
func (ArcLineArc) Kind() Kind { return KindArcLineArc }
func (Drift) Kind() Kind      { return KindDrift }
func (Route) Kind() Kind      { return KindRoute }

func (s Straight) arrivalSpeed() float64   { return s.ArrivalSpeed }
func (s TurnCircle) arrivalSpeed() float64 { return s.ArrivalSpeed }
func (s ArcLineArc) arrivalSpeed() float64 { return s.ArrivalSpeed }
func (s Drift) arrivalSpeed() float64      { return s.ArrivalSpeed }
func (s Route) arrivalSpeed() float64      { return s.ArrivalSpeed }

func (s Straight) points(e Entry, step float64) ([]curve.ControlPoint, float64, error) {
	target := s.Target
	target[2] = e.Position.Z()
	if target.Sub(e.Position).Len() < step {
		return nil, 0, fmt.Errorf("target %.0f uu away: %w", target.Sub(e.Position).Len(), curve.ErrTooShort)
	}
	return curve.Line(e.Position, target, step), 0, nil
}

func (s TurnCircle) points(e Entry, step float64) ([]curve.ControlPoint, float64, error) {
	center := s.Center
	center[2] = e.Position.Z()
	t, ok := curve.TangentPoint(e.Position, e.Tangent, e.AngularZ, center, s.Radius)
	if !ok {
		return nil, 0, fmt.Errorf("start inside turning circle: %w", curve.ErrInfeasible)
	}
	sense := curve.TurnSense(e.Position, e.Tangent, e.AngularZ, center)
	exit := s.Exit.Sub(center)
	exit[2] = 0
	if exit.Len() < 1e-9 {
		return nil, 0, fmt.Errorf("exit at circle centre: %w", curve.ErrInfeasible)
	}
	exitPoint := center.Add(exit.Normalize().Mul(s.Radius))
	sweep := curve.Sweep(center, t, exitPoint, sense)
	return curve.Join(curve.Line(e.Position, t, step), curve.Arc(center, t, sweep, step)), 0, nil
}

func (s ArcLineArc) points(e Entry, step float64) ([]curve.ControlPoint, float64, error) {
	target := s.Target
	target[2] = e.Position.Z()
	d, ok := curve.ArcLineArc(e.Position, e.Tangent, s.Radius, target, s.TargetTangent, s.Radius)
	if !ok {
		return nil, 0, fmt.Errorf("no arc-line-arc connection: %w", curve.ErrInfeasible)
	}
	return d.Points(step), 0, nil
}

func (s Drift) points(e Entry, step float64) ([]curve.ControlPoint, float64, error) {
	target := s.Target
	target[2] = e.Position.Z()
	heading := e.Tangent
	sense := curve.TurnSense(e.Position, heading, e.AngularZ, target)
	center := e.Position.Add(mgl64.Vec3{-heading.Y(), heading.X(), 0}.Mul(sense * s.Radius))

	a, b, ok := curve.TangentPoints(target, center, s.Radius)
	if !ok {
		return nil, 0, fmt.Errorf("target inside drift circle: %w", curve.ErrInfeasible)
	}
	leave := a
	if orbit(target, b, center)*sense > 0 {
		leave = b
	}
	sweep := curve.Sweep(center, e.Position, leave, sense)
	arc := curve.Arc(center, e.Position, sweep, step)
	pts := curve.Join(arc, curve.Line(leave, target, step))
	length := sweep * s.Radius
	if length < 0 {
		length = -length
	}
	return pts, length, nil
}

func (s Route) points(e Entry, step float64) ([]curve.ControlPoint, float64, error) {
	if s.Curve == nil || s.Curve.Len() < 2 {
		return nil, 0, fmt.Errorf("route: %w", curve.ErrTooShort)
	}
	start := s.Curve.Start().Position
	return curve.Join(curve.Line(e.Position, start, step), s.Curve.ControlPoints()), 0, nil
}

// orbit is the turn sense of leaving circle center at t toward target.
func orbit(target, t, center mgl64.Vec3) float64 {
	dir := target.Sub(t)
	rel := center.Sub(t)
	return dir.X()*rel.Y() - dir.Y()*rel.X()
}
