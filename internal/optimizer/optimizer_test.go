package optimizer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/strike-engine/internal/physics"
)

func newOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	o, err := New(DefaultSettings(), nil)
	require.NoError(t, err)
	return o
}

func straightAhead() Input {
	return Input{
		Car:           physics.NewCar(mgl64.Vec3{}, 0, 1000),
		Ball:          physics.NewBall(mgl64.Vec3{500, 0, physics.BallRadius}),
		Gravity:       physics.DefaultGravity,
		DT:            physics.TickDT,
		InterceptTime: 0.5,
	}
}

func TestSolve_HitsBallAhead(t *testing.T) {
	o := newOptimizer(t)
	in := straightAhead()
	g, err := NewGrader(Spec{Kind: GraderBallSpeed})
	require.NoError(t, err)

	var plan DodgePlan
	d := o.Solve(in, g, &plan)

	require.True(t, d.Solved, "%v", d.Messages)
	assert.True(t, plan.Solved)
	assert.Greater(t, plan.Delay, 0.0)
	assert.GreaterOrEqual(t, plan.Duration, 0.05)
	assert.LessOrEqual(t, plan.Duration, 0.2)
	assert.Positive(t, d.Simulations)
	assert.Positive(t, d.GraderCalls)
	require.NotNil(t, d.Best)

	h, ok := o.Evaluate(in, plan)
	require.True(t, ok)
	assert.Greater(t, h.Ball.Velocity.Len(), in.Ball.Velocity.Len())
	assert.Greater(t, h.Ball.Velocity.Len(), h.PreSpeed)
	assert.InDelta(t, d.Best.Ball.Velocity.Len(), h.Ball.Velocity.Len(), 1e-9, "replay is deterministic")
}

func TestSolve_DoesNotTouchCallerState(t *testing.T) {
	o := newOptimizer(t)
	in := straightAhead()
	car, ball := in.Car, in.Ball
	g, _ := NewGrader(Spec{})

	var plan DodgePlan
	o.Solve(in, g, &plan)
	assert.Equal(t, car, in.Car)
	assert.Equal(t, ball, in.Ball)
}

func TestSolve_UnreachableBallResetsPlan(t *testing.T) {
	o := newOptimizer(t)
	in := straightAhead()
	in.Ball = physics.NewBall(mgl64.Vec3{0, 4000, physics.BallRadius})
	in.InterceptTime = 0.3
	g, _ := NewGrader(Spec{})

	plan := DodgePlan{Delay: 0.1, Duration: 0.2, Solved: true}
	d := o.Solve(in, g, &plan)
	assert.False(t, d.Solved)
	assert.False(t, plan.Solved)
	assert.True(t, plan.Inert())
	assert.Equal(t, float64(InertDelay), plan.Delay)
	assert.Zero(t, plan.Duration)
	assert.Zero(t, d.GraderCalls)
	assert.Nil(t, d.Best)
	assert.NotEmpty(t, d.Messages)
}

func TestSolve_PanicsWithoutInterceptTime(t *testing.T) {
	o := newOptimizer(t)
	in := straightAhead()
	in.InterceptTime = 0
	g, _ := NewGrader(Spec{})
	assert.Panics(t, func() { o.Solve(in, g, &DodgePlan{}) })
}

// firstOnly accepts exactly one candidate: the first it is shown.
type firstOnly struct{ calls int }

func (f *firstOnly) IsImproved(Hypothetical) bool { f.calls++; return f.calls == 1 }
func (f *firstOnly) Diagnostics() []string        { return nil }
func (f *firstOnly) Reset()                       { f.calls = 0 }

// equalScores reports every candidate as tied with the first.
type equalScores struct{ seen bool }

func (e *equalScores) IsImproved(Hypothetical) bool {
	if e.seen {
		return false
	}
	e.seen = true
	return true
}
func (e *equalScores) Diagnostics() []string { return []string{"equal"} }
func (e *equalScores) Reset()                { e.seen = false }

func TestSolve_TiesKeepFirstFound(t *testing.T) {
	o := newOptimizer(t)
	in := straightAhead()

	var first DodgePlan
	o.Solve(in, &firstOnly{}, &first)
	require.True(t, first.Solved)
	assert.Equal(t, 0.05, first.Duration, "durations are searched in order")

	var tied DodgePlan
	d := o.Solve(in, &equalScores{}, &tied)
	assert.Equal(t, first, tied)
	assert.Contains(t, d.Messages, "equal")
}

func TestSolve_LongWindowWidensSteps(t *testing.T) {
	o := newOptimizer(t)
	g, _ := NewGrader(Spec{})

	short := straightAhead()
	short.Ball = physics.NewBall(mgl64.Vec3{0, 4000, physics.BallRadius})
	short.InterceptTime = 1
	long := short
	long.InterceptTime = 2

	ds := o.Solve(short, g, &DodgePlan{})
	dl := o.Solve(long, g, &DodgePlan{})
	assert.Equal(t, ds.Simulations, dl.Simulations)
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, err := New(Settings{Durations: []float64{-1}}, nil)
	assert.Error(t, err)
	_, err = New(Settings{AngleSteps: -1}, nil)
	assert.Error(t, err)

	o, err := New(Settings{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Durations, o.Settings().Durations)
}

func TestStrike_Phases(t *testing.T) {
	dt := physics.TickDT
	s := NewStrike(DodgePlan{Delay: 2 * dt, Duration: 2 * dt}, dt)
	car := physics.NewCar(mgl64.Vec3{}, 0, 0)
	target := mgl64.Vec3{1000, 0, 0}

	var got []physics.ControlsOutput
	for i := 0; i < 7; i++ {
		got = append(got, s.Step(car, target))
	}
	assert.False(t, got[0].Jump)
	assert.False(t, got[1].Jump)
	assert.True(t, got[2].Jump)
	assert.True(t, got[3].Jump)
	assert.False(t, got[4].Jump, "release before the dodge press")
	assert.True(t, got[5].Jump)
	assert.InDelta(t, -1, got[5].Pitch, 1e-9)
	assert.InDelta(t, 0, got[5].Yaw, 1e-9)
	assert.False(t, got[6].Jump)
	assert.True(t, s.Dodged())
}

func TestStrike_AngleOffsetTurnsDodge(t *testing.T) {
	dt := physics.TickDT
	s := NewStrike(DodgePlan{Delay: dt, Duration: dt, Angle: 0.5}, dt)
	car := physics.NewCar(mgl64.Vec3{}, 0, 0)
	var out physics.ControlsOutput
	for i := 0; i < 4; i++ {
		out = s.Step(car, mgl64.Vec3{1000, 0, 0})
	}
	require.True(t, out.Jump)
	assert.Less(t, out.Yaw, 0.0, "a positive offset dodges to the left")
	assert.InDelta(t, -1, out.Pitch, 1e-9)
}

func TestStrike_InertPlanOnlyDrives(t *testing.T) {
	var p DodgePlan
	p.Reset()
	s := NewStrike(p, physics.TickDT)
	car := physics.NewCar(mgl64.Vec3{}, 0, 0)
	for i := 0; i < 200; i++ {
		out := s.Step(car, mgl64.Vec3{0, 1000, 0})
		require.False(t, out.Jump)
		assert.Less(t, out.Steer, 0.0)
	}
	assert.Equal(t, "inert", p.String())
}

func TestGraders(t *testing.T) {
	slow := Hypothetical{Ball: physics.BallState{Position: mgl64.Vec3{0, 0, 200}, Velocity: mgl64.Vec3{500, 0, 0}}, Gravity: physics.DefaultGravity}
	fast := Hypothetical{Ball: physics.BallState{Position: mgl64.Vec3{0, 0, 200}, Velocity: mgl64.Vec3{1500, 0, 800}}, Gravity: physics.DefaultGravity}

	t.Run("ball_speed", func(t *testing.T) {
		g, err := NewGrader(Spec{Kind: GraderBallSpeed})
		require.NoError(t, err)
		assert.True(t, g.IsImproved(slow))
		assert.False(t, g.IsImproved(slow), "ties do not replace")
		assert.True(t, g.IsImproved(fast))
		assert.False(t, g.IsImproved(slow))
		assert.Zero(t, Horizon(g))
		g.Reset()
		assert.True(t, g.IsImproved(slow))
	})

	t.Run("target", func(t *testing.T) {
		g, err := NewGrader(Spec{Kind: GraderTarget, Target: mgl64.Vec3{1200, 0, 200}, Horizon: 1.5})
		require.NoError(t, err)
		assert.InDelta(t, 1.5, Horizon(g), 1e-9)
		away := slow
		away.Ball.Velocity = mgl64.Vec3{-500, 0, 0}
		assert.True(t, g.IsImproved(away))
		assert.True(t, g.IsImproved(slow))
		assert.False(t, g.IsImproved(away))
		assert.NotEmpty(t, g.Diagnostics())
	})

	t.Run("height", func(t *testing.T) {
		g, err := NewGrader(Spec{Kind: GraderHeight})
		require.NoError(t, err)
		assert.InDelta(t, defaultHorizon, Horizon(g), 1e-9)
		assert.True(t, g.IsImproved(slow))
		assert.True(t, g.IsImproved(fast))
		assert.False(t, g.IsImproved(slow))
	})

	_, err := NewGrader(Spec{Kind: "style"})
	assert.Error(t, err)
}
