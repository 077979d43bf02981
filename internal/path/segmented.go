package path

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/kinematics"
	"github.com/cxd309/strike-engine/internal/physics"
)

// Renderer receives debug geometry.
type Renderer interface {
	Polyline(points []mgl64.Vec3)
}

// drawStep is the spacing of drawn curve samples.
const drawStep = 50.0

// SegmentedPath runs baked segments in order. The segment list is fixed at
// construction; replanning builds a new path.
type SegmentedPath struct {
	segments []*Segment
	cursor   int
}

// NewSegmentedPath wraps already baked segments.
func NewSegmentedPath(segments ...*Segment) (*SegmentedPath, error) {
	for i, s := range segments {
		if _, ok := s.State().(Baked); !ok {
			return nil, fmt.Errorf("segment %d (%s): %w", i, s.Kind(), ErrUnbaked)
		}
	}
	return &SegmentedPath{segments: segments}, nil
}

// Plan chains shapes from entry, baking each one from the previous segment's exit.
func Plan(m kinematics.MotionModel, entry Entry, shapes ...Shape) (*SegmentedPath, error) {
	segments := make([]*Segment, 0, len(shapes))
	for i, shape := range shapes {
		seg := NewSegment(shape, entry)
		if _, err := seg.Bake(m); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, seg)
		entry = seg.Exit(m)
	}
	return NewSegmentedPath(segments...)
}

// Step returns the controls of the current segment. When a segment finishes the
// cursor moves on once and the next segment drives this tick. The bool is true
// when the last segment has finished.
func (p *SegmentedPath) Step(car physics.CarState, dt float64) (physics.ControlsOutput, bool) {
	for p.cursor < len(p.segments) {
		out, done := p.segments[p.cursor].Step(car, dt)
		if !done {
			return out, false
		}
		p.cursor++
	}
	return physics.ControlsOutput{}, true
}

// IsDone reports whether every segment has finished.
func (p *SegmentedPath) IsDone() bool { return p.cursor >= len(p.segments) }

// Cursor is the index of the segment being driven.
func (p *SegmentedPath) Cursor() int { return p.cursor }

// Len is the number of segments.
func (p *SegmentedPath) Len() int { return len(p.segments) }

// Current returns the segment being driven, nil when done.
func (p *SegmentedPath) Current() *Segment {
	if p.IsDone() {
		return nil
	}
	return p.segments[p.cursor]
}

// CanInterrupt reports whether the current segment may be abandoned for a new plan.
func (p *SegmentedPath) CanInterrupt() bool {
	if s := p.Current(); s != nil {
		return s.CanInterrupt()
	}
	return true
}

// ShouldBeInAir passes through the current segment's answer.
func (p *SegmentedPath) ShouldBeInAir() bool {
	if s := p.Current(); s != nil {
		return s.ShouldBeInAir()
	}
	return false
}

// Duration is the baked time of all segments.
func (p *SegmentedPath) Duration() float64 {
	var total float64
	for _, s := range p.segments {
		total += s.mustBaked().Duration
	}
	return total
}

// End is the final position of the path.
func (p *SegmentedPath) End() mgl64.Vec3 {
	if len(p.segments) == 0 {
		return mgl64.Vec3{}
	}
	return p.segments[len(p.segments)-1].mustBaked().Curve.End().Position
}

// Draw sends the unfinished segments to r.
func (p *SegmentedPath) Draw(r Renderer) {
	for _, s := range p.segments[p.cursor:] {
		r.Polyline(s.mustBaked().Curve.Points(drawStep))
	}
}
