// Package prediction holds time-stamped ball trajectories and the queries the
// planners run against them.
package prediction

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/physics"
)

// Slice is the ball state at one instant.
type Slice struct {
	Time            float64    `json:"time"`
	Position        mgl64.Vec3 `json:"position"`
	Velocity        mgl64.Vec3 `json:"velocity"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
}

// SliceOf snapshots a ball.
func SliceOf(b physics.BallState) Slice {
	return Slice{Time: b.Time, Position: b.Position, Velocity: b.Velocity, AngularVelocity: b.AngularVelocity}
}

// Ball turns the slice back into a simulator state.
func (s Slice) Ball() physics.BallState {
	b := physics.NewBall(s.Position)
	b.Velocity = s.Velocity
	b.AngularVelocity = s.AngularVelocity
	b.Time = s.Time
	return b
}

// Prediction is an immutable run of slices ordered by time.
type Prediction struct {
	slices []Slice
}

// New copies slices and orders them by time.
func New(slices []Slice) *Prediction {
	s := append([]Slice(nil), slices...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time < s[j].Time })
	return &Prediction{slices: s}
}

// Predict steps ball forward for horizon seconds at dt, recording every step.
// The first slice is ball itself.
func Predict(ball physics.BallState, gravity, horizon, dt float64) *Prediction {
	n := int(math.Ceil(horizon/dt - 1e-9))
	slices := make([]Slice, 0, n+1)
	slices = append(slices, SliceOf(ball))
	for i := 0; i < n; i++ {
		physics.StepBall(&ball, gravity, dt)
		slices = append(slices, SliceOf(ball))
	}
	return &Prediction{slices: slices}
}

// Len is the slice count.
func (p *Prediction) Len() int {
	if p == nil {
		return 0
	}
	return len(p.slices)
}

// Slices returns the slices. The result must not be modified.
func (p *Prediction) Slices() []Slice {
	if p == nil {
		return nil
	}
	return p.slices
}

// Start is the time of the first slice.
func (p *Prediction) Start() float64 {
	if p.Len() == 0 {
		return 0
	}
	return p.slices[0].Time
}

// End is the time of the last slice.
func (p *Prediction) End() float64 {
	if p.Len() == 0 {
		return 0
	}
	return p.slices[len(p.slices)-1].Time
}

// Horizon is End minus Start.
func (p *Prediction) Horizon() float64 { return p.End() - p.Start() }

// At returns the slice nearest to the absolute time t. ok is false when the
// prediction is empty or t lies outside [Start, End]; the nearest end slice is
// still returned in the latter case.
func (p *Prediction) At(t float64) (Slice, bool) {
	n := p.Len()
	if n == 0 {
		return Slice{}, false
	}
	i := sort.Search(n, func(i int) bool { return p.slices[i].Time >= t })
	switch {
	case i == 0:
		return p.slices[0], t >= p.slices[0].Time-1e-9
	case i == n:
		return p.slices[n-1], t <= p.slices[n-1].Time+1e-9
	}
	if t-p.slices[i-1].Time < p.slices[i].Time-t {
		return p.slices[i-1], true
	}
	return p.slices[i], true
}

// After returns the slice nearest to dt seconds after Start.
func (p *Prediction) After(dt float64) (Slice, bool) {
	return p.At(p.Start() + dt)
}

// Find returns the first slice satisfying pred.
func (p *Prediction) Find(pred func(Slice) bool) (Slice, bool) {
	for _, s := range p.Slices() {
		if pred(s) {
			return s, true
		}
	}
	return Slice{}, false
}

// Merge resamples two predictions at rate Hz over the union of their spans.
// Each tick takes the nearest slice of primary while the tick lies inside
// primary's span, and the nearest slice of secondary otherwise. Slices are
// restamped to the tick time.
func Merge(primary, secondary *Prediction, rate float64) *Prediction {
	switch {
	case primary.Len() == 0:
		return New(secondary.Slices())
	case secondary.Len() == 0:
		return New(primary.Slices())
	}
	start := math.Min(primary.Start(), secondary.Start())
	end := math.Max(primary.End(), secondary.End())
	dt := 1 / rate
	n := int(math.Floor((end-start)/dt + 1e-9))

	out := make([]Slice, 0, n+1)
	for i := 0; i <= n; i++ {
		t := start + float64(i)*dt
		s, ok := primary.At(t)
		if !ok {
			s, _ = secondary.At(t)
		}
		s.Time = t
		out = append(out, s)
	}
	return &Prediction{slices: out}
}
