// Package path turns driving goals into baked curves and follows them tick by tick.
//
// A Segment pairs a Shape (what to drive) with the car state it starts from. It
// is Unbaked until Bake builds its curve and speed profile against a
// kinematics.MotionModel; from then on it is Baked and immutable apart from
// the follower's progress. A SegmentedPath runs baked segments in order.
package path

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/curve"
	"github.com/cxd309/strike-engine/internal/kinematics"
	"github.com/cxd309/strike-engine/internal/physics"
)

// ErrUnbaked is returned when an unbaked segment is handed to a SegmentedPath.
var ErrUnbaked = errors.New("segment not baked")

// Kind names a segment shape.
type Kind string

const (
	KindStraight   Kind = "straight"
	KindTurnCircle Kind = "turn_circle"
	KindArcLineArc Kind = "arc_line_arc"
	KindDrift      Kind = "drift"
	KindRoute      Kind = "route"
)

// Entry is the car state a segment starts from.
type Entry struct {
	Position mgl64.Vec3
	Tangent  mgl64.Vec3
	Speed    float64
	Boost    float64
	AngularZ float64
}

// EntryFromCar reads the segment entry off a car.
func EntryFromCar(c physics.CarState) Entry {
	return Entry{
		Position: c.Position,
		Tangent:  physics.Unit(physics.Flat(c.Forward())),
		Speed:    math.Max(0, c.ForwardSpeed()),
		Boost:    c.Boost,
		AngularZ: c.AngularVelocity.Z(),
	}
}

// BakeState is either Unbaked or Baked.
type BakeState interface {
	bakeState()
}

// Unbaked is the state of a segment whose curve has not been built.
type Unbaked struct{}

// Baked holds a segment's curve with its speed profile.
type Baked struct {
	Curve    *curve.Curve
	Duration float64 // seconds, from the speed profile
	// DriftLength is the arc length driven with the handbrake, 0 for grip segments.
	DriftLength float64
}

func (Unbaked) bakeState() {}
func (Baked) bakeState()   {}

// Segment is one drivable piece of a path.
type Segment struct {
	shape Shape
	entry Entry
	state BakeState

	progress float64 // arc length reached by the follower
	elapsed  float64
	done     bool
}

// NewSegment creates an unbaked segment.
func NewSegment(shape Shape, entry Entry) *Segment {
	return &Segment{shape: shape, entry: entry, state: Unbaked{}}
}

func (s *Segment) Kind() Kind       { return s.shape.Kind() }
func (s *Segment) State() BakeState { return s.state }
func (s *Segment) Entry() Entry     { return s.entry }

// Bake builds the segment's curve and speed profile. A baked segment returns
// its memoized result.
func (s *Segment) Bake(m kinematics.MotionModel) (Baked, error) {
	if b, ok := s.state.(Baked); ok {
		return b, nil
	}
	pts, drift, err := s.shape.points(s.entry, curve.DefaultStep)
	if err != nil {
		return Baked{}, fmt.Errorf("baking %s segment: %w", s.Kind(), err)
	}

	c := curve.NewCurve(pts)
	end := -1.0
	if v := s.shape.arrivalSpeed(); v > 0 {
		end = v
	}
	duration, err := c.CalculateMaxSpeeds(s.entry.Speed, end, s.entry.Boost, m)
	if err != nil {
		return Baked{}, fmt.Errorf("baking %s segment: %w", s.Kind(), err)
	}

	b := Baked{Curve: c, Duration: duration, DriftLength: drift}
	s.state = b
	return b, nil
}

// Exit is the entry state for a segment that follows this one. It panics on an
// unbaked segment.
func (s *Segment) Exit(m kinematics.MotionModel) Entry {
	b := s.mustBaked()
	end := b.Curve.End()
	speeds := b.Curve.Speeds()
	return Entry{
		Position: end.Position,
		Tangent:  end.Tangent,
		Speed:    speeds[len(speeds)-1],
		Boost:    math.Max(0, s.entry.Boost-m.BoostRate()*b.Duration),
	}
}

// IsDone reports whether the follower finished the segment.
func (s *Segment) IsDone() bool { return s.done }

// CanInterrupt is false while a drift is under way.
func (s *Segment) CanInterrupt() bool {
	b, ok := s.state.(Baked)
	if !ok {
		return true
	}
	return s.done || s.progress >= b.DriftLength
}

// ShouldBeInAir reports whether the curve ahead leaves the floor.
func (s *Segment) ShouldBeInAir() bool {
	b, ok := s.state.(Baked)
	if !ok || s.done {
		return false
	}
	p := b.Curve.PointAt(s.progress + airLookahead)
	return p.Z() > physics.CarRestHeight+airborneHeight
}

func (s *Segment) mustBaked() Baked {
	b, ok := s.state.(Baked)
	if !ok {
		panic(fmt.Sprintf("path: %s segment used before Bake", s.Kind()))
	}
	return b
}
