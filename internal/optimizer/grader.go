package optimizer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/physics"
)

// Hypothetical is the simulated state right after an accepted touch.
type Hypothetical struct {
	Car       physics.CarState  `json:"car"`
	Ball      physics.BallState `json:"ball"`
	Touch     physics.Touch     `json:"touch"`
	Plan      DodgePlan         `json:"plan"`
	Elapsed   float64           `json:"elapsed"` // seconds from the start of the simulation
	Dodged    bool              `json:"dodged"`
	PreSpeed  float64           `json:"pre_speed"` // ball speed on the tick before the touch
	Gravity   float64           `json:"gravity"`
	TickDelta float64           `json:"tick_delta"`
}

// Grader decides whether a candidate beats the best seen since the last Reset.
// Ties must return false so the first candidate found keeps its place.
type Grader interface {
	IsImproved(h Hypothetical) bool
	Diagnostics() []string
	Reset()
}

// HorizonHinter is implemented by graders that look past the touch. The value
// is how many seconds of ball prediction they need.
type HorizonHinter interface {
	PredictionHorizon() float64
}

// GraderKind names a built-in grader.
type GraderKind string

const (
	GraderBallSpeed GraderKind = "ball_speed"
	GraderTarget    GraderKind = "target"
	GraderHeight    GraderKind = "height"
)

// Spec selects and parameterises a built-in grader.
type Spec struct {
	Kind    GraderKind `json:"kind"`
	Target  mgl64.Vec3 `json:"target"`
	Horizon float64    `json:"horizon"` // seconds the ball is carried forward, target and height only
}

const defaultHorizon = 2.0

// NewGrader builds the grader spec names. An empty kind means ball_speed.
func NewGrader(spec Spec) (Grader, error) {
	horizon := spec.Horizon
	if horizon <= 0 {
		horizon = defaultHorizon
	}
	switch spec.Kind {
	case GraderBallSpeed, "":
		g := &ballSpeedGrader{}
		g.Reset()
		return g, nil
	case GraderTarget:
		g := &targetGrader{target: spec.Target, horizon: horizon}
		g.Reset()
		return g, nil
	case GraderHeight:
		g := &heightGrader{horizon: horizon}
		g.Reset()
		return g, nil
	default:
		return nil, fmt.Errorf("unknown grader kind %q", spec.Kind)
	}
}

// carry steps the ball forward for horizon seconds and calls visit after
// every step. visit returning false stops early.
func carry(h Hypothetical, horizon float64, visit func(b physics.BallState) bool) {
	b := h.Ball
	dt := h.TickDelta
	if dt <= 0 {
		dt = physics.TickDT
	}
	for t := 0.0; t < horizon; t += dt {
		physics.StepBall(&b, h.Gravity, dt)
		if !visit(b) {
			return
		}
	}
}

// ballSpeedGrader prefers the fastest ball right after the touch.
type ballSpeedGrader struct {
	best  float64
	calls int
}

func (g *ballSpeedGrader) Reset() { g.best, g.calls = math.Inf(-1), 0 }

func (g *ballSpeedGrader) IsImproved(h Hypothetical) bool {
	g.calls++
	speed := h.Ball.Velocity.Len()
	if speed <= g.best {
		return false
	}
	g.best = speed
	return true
}

func (g *ballSpeedGrader) Diagnostics() []string {
	if g.calls == 0 {
		return []string{"ball_speed: no candidates"}
	}
	return []string{fmt.Sprintf("ball_speed: best %.0f uu/s over %d calls", g.best, g.calls)}
}

// targetGrader prefers the ball that passes closest to a point within the
// horizon.
type targetGrader struct {
	target  mgl64.Vec3
	horizon float64
	best    float64
	calls   int
}

func (g *targetGrader) Reset() { g.best, g.calls = math.Inf(1), 0 }

func (g *targetGrader) PredictionHorizon() float64 { return g.horizon }

func (g *targetGrader) IsImproved(h Hypothetical) bool {
	g.calls++
	closest := h.Ball.Position.Sub(g.target).Len()
	carry(h, g.horizon, func(b physics.BallState) bool {
		closest = math.Min(closest, b.Position.Sub(g.target).Len())
		return closest > physics.BallRadius
	})
	if closest >= g.best {
		return false
	}
	g.best = closest
	return true
}

func (g *targetGrader) Diagnostics() []string {
	if g.calls == 0 {
		return []string{"target: no candidates"}
	}
	return []string{fmt.Sprintf("target: closest %.0f uu to %v over %d calls", g.best, g.target, g.calls)}
}

// heightGrader prefers the highest ball apex within the horizon.
type heightGrader struct {
	horizon float64
	best    float64
	calls   int
}

func (g *heightGrader) Reset() { g.best, g.calls = math.Inf(-1), 0 }

func (g *heightGrader) PredictionHorizon() float64 { return g.horizon }

func (g *heightGrader) IsImproved(h Hypothetical) bool {
	g.calls++
	apex := h.Ball.Position.Z()
	carry(h, g.horizon, func(b physics.BallState) bool {
		apex = math.Max(apex, b.Position.Z())
		return b.Velocity.Z() > 0
	})
	if apex <= g.best {
		return false
	}
	g.best = apex
	return true
}

func (g *heightGrader) Diagnostics() []string {
	if g.calls == 0 {
		return []string{"height: no candidates"}
	}
	return []string{fmt.Sprintf("height: apex %.0f uu over %d calls", g.best, g.calls)}
}
