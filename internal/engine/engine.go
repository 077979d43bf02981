// Package engine runs the agent against a simulated world.
//
// A scenario advances in fixed timesteps. Each step has two passes:
//
//  1. Sense pass - the ball is predicted forward from its current state (merged
//     with any externally supplied prediction until the first touch) and packed
//     with the car states into a Context.
//
//  2. Act pass - the agent turns the Context into controls, then the world steps
//     every car and the ball, resolving contact between the agent's car and the
//     ball.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/graph"
	"github.com/cxd309/strike-engine/internal/kinematics"
	"github.com/cxd309/strike-engine/internal/model"
	"github.com/cxd309/strike-engine/internal/optimizer"
	"github.com/cxd309/strike-engine/internal/physics"
	"github.com/cxd309/strike-engine/internal/prediction"
)

// RunRecorder registers runs and stores their searches.
type RunRecorder interface {
	Recorder
	StartRun(r *model.Run) error
}

// Options carry everything a run needs besides its input. The zero value is
// usable.
type Options struct {
	Logger    *slog.Logger
	Optimizer optimizer.Settings
	Agent     AgentSettings
	Navigator *graph.Navigator
	Recorder  RunRecorder
}

// Scenario is the state of one run.
type Scenario struct {
	meta     ScenarioMeta
	dt       float64
	gravity  float64
	car      physics.CarState
	ball     physics.BallState
	others   []physics.CarState
	external *prediction.Prediction
	agent    *Agent
	runID    string
	log      *slog.Logger
	curTime  float64
}

// NewScenario validates input and places the cars and the ball.
func NewScenario(input ScenarioInput, opts Options) (*Scenario, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	meta := input.Meta
	if !(meta.RunTime > 0) {
		return nil, fmt.Errorf("run_time must be positive, got %v", meta.RunTime)
	}
	dt := meta.TimeStep
	switch {
	case dt == 0:
		dt = physics.TickDT
		meta.TimeStep = dt
	case dt < 0 || math.IsNaN(dt):
		return nil, fmt.Errorf("time_step must be positive, got %v", dt)
	}
	gravity := input.Gravity
	if gravity == 0 {
		gravity = physics.DefaultGravity
	}

	m, err := kinematics.Decode(input.Kinematics)
	if err != nil {
		return nil, err
	}
	grader, err := optimizer.NewGrader(input.Grader)
	if err != nil {
		return nil, fmt.Errorf("building grader: %w", err)
	}
	opt, err := optimizer.New(opts.Optimizer, log)
	if err != nil {
		return nil, fmt.Errorf("building optimizer: %w", err)
	}

	var runID string
	if opts.Recorder != nil {
		kind := input.Grader.Kind
		if kind == "" {
			kind = optimizer.GraderBallSpeed
		}
		run := &model.Run{ScenarioID: meta.ScenarioID, Grader: string(kind), RunTime: meta.RunTime, TimeStep: dt}
		if err := opts.Recorder.StartRun(run); err != nil {
			return nil, fmt.Errorf("starting run: %w", err)
		}
		runID = run.ID
	}

	agent, err := NewAgent(opts.Agent, AgentDeps{
		Model:     m,
		Optimizer: opt,
		Grader:    grader,
		Navigator: opts.Navigator,
		Recorder:  opts.Recorder,
		RunID:     runID,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	others := make([]physics.CarState, 0, len(input.Cars))
	for _, c := range input.Cars {
		others = append(others, newCar(c))
	}
	var external *prediction.Prediction
	if len(input.Prediction) > 0 {
		external = prediction.New(input.Prediction)
	}

	return &Scenario{
		meta:     meta,
		dt:       dt,
		gravity:  gravity,
		car:      newCar(input.Car),
		ball:     newBall(input.Ball),
		others:   others,
		external: external,
		agent:    agent,
		runID:    runID,
		log:      log,
	}, nil
}

func newCar(in CarInput) physics.CarState {
	c := physics.NewCar(in.Position, in.Yaw, 0)
	if in.Position.Z() > physics.CarRestHeight+1 {
		c.Position[2] = in.Position.Z()
		c.OnGround = false
	}
	c.Velocity = in.Velocity
	c.AngularVelocity = in.AngularVelocity
	if in.Boost != nil {
		c.Boost = mgl64.Clamp(*in.Boost, 0, physics.MaxBoost)
	}
	if in.Team < 0 {
		c.Team = -1
	}
	c.ID = in.ID
	return c
}

func newBall(in BallInput) physics.BallState {
	b := physics.NewBall(in.Position)
	b.Velocity = in.Velocity
	b.AngularVelocity = in.AngularVelocity
	return b
}

// Agent exposes the scenario's agent.
func (s *Scenario) Agent() *Agent { return s.agent }

// Run executes the full scenario and returns the log.
func (s *Scenario) Run(ctx context.Context) (ScenarioLog, error) {
	out := ScenarioLog{Meta: s.meta, RunID: s.runID}
	ticks := int(math.Floor(s.meta.RunTime/s.dt + 1e-9))
	out.Output = make([]LogRow, 0, ticks+1)

	for i := 0; i <= ticks; i++ {
		if err := ctx.Err(); err != nil {
			return ScenarioLog{}, fmt.Errorf("at t=%.3f: %w", s.curTime, err)
		}
		row, touch := s.step()
		out.Output = append(out.Output, row)
		if touch != nil && out.FirstTouch == nil {
			out.FirstTouch = touch
		}
		s.curTime = float64(i+1) * s.dt
	}
	out.Solves = s.agent.Solves()

	s.log.Info("scenario finished",
		"scenario", s.meta.ScenarioID,
		"ticks", len(out.Output),
		"solves", len(out.Solves),
		"touched", out.FirstTouch != nil,
	)
	return out, nil
}

// step advances the world by one timestep and returns the row of the state the
// agent acted on, plus the touch the step produced if any.
func (s *Scenario) step() (LogRow, *physics.Touch) {
	// Sense: predict the ball and build the agent's view.
	pred := prediction.Predict(s.ball, s.gravity, s.agent.PredictionHorizon(), s.dt)
	if s.external != nil && !s.ball.Touched {
		pred = prediction.Merge(s.external, pred, 1/s.dt)
	}
	ctx := &Context{
		Car:        s.car,
		Ball:       s.ball,
		Cars:       append([]physics.CarState(nil), s.others...),
		Gravity:    s.gravity,
		DT:         s.dt,
		Time:       s.curTime,
		Prediction: pred,
	}

	// Act: the agent drives, the world follows.
	controls := s.agent.Tick(ctx).Clamped()
	row := LogRow{Timestamp: s.curTime, Mode: s.agent.Mode(), Car: s.car, Ball: s.ball, Controls: controls}

	physics.StepCar(&s.car, controls, s.gravity, s.dt)
	for i := range s.others {
		physics.StepCar(&s.others[i], physics.ControlsOutput{}, s.gravity, s.dt)
	}
	touch, hit := physics.StepBallWithCollision(&s.ball, &s.car, s.gravity, s.dt)
	if !hit {
		return row, nil
	}
	return row, &touch
}

// RunJSON is the entry point shared by the CLI and WASM builds. It accepts a
// JSON-encoded ScenarioInput, runs it with default options, and returns a
// JSON-encoded ScenarioLog.
func RunJSON(jsonInput string) (string, error) {
	return RunJSONWith(context.Background(), jsonInput, Options{})
}

// RunJSONWith is RunJSON with explicit options.
func RunJSONWith(ctx context.Context, jsonInput string, opts Options) (string, error) {
	var input ScenarioInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sc, err := NewScenario(input, opts)
	if err != nil {
		return "", err
	}

	scLog, err := sc.Run(ctx)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(scLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
