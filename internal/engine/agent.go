package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/graph"
	"github.com/cxd309/strike-engine/internal/kinematics"
	"github.com/cxd309/strike-engine/internal/model"
	"github.com/cxd309/strike-engine/internal/optimizer"
	"github.com/cxd309/strike-engine/internal/path"
	"github.com/cxd309/strike-engine/internal/physics"
	"github.com/cxd309/strike-engine/internal/prediction"
)

const (
	travelStep     = 1.0 / 30 // integration step of intercept estimates
	turnPenalty    = 0.25     // seconds per radian the nose is off the target
	interceptScale = 1.2      // solve windows cover the estimate with slack
	interceptSlack = 0.15
	approachGap    = 60.0  // uu between the ball surface and the path end
	routeOffset    = 400.0 // straight run-in before a navigator route's end
	chaseGain      = 3.0
)

// AgentSettings tunes the agent's tick loop.
type AgentSettings struct {
	StrikeWindow      float64 `json:"strike_window"`      // seconds: solve when the intercept is closer than this
	SolveInterval     float64 `json:"solve_interval"`     // seconds between solves while unsolved
	ReplanInterval    float64 `json:"replan_interval"`    // seconds between path replans
	PredictionHorizon float64 `json:"prediction_horizon"` // seconds of ball prediction per tick
	MaxStrikeHeight   float64 `json:"max_strike_height"`  // balls above this are not intercepted
	RouteDistance     float64 `json:"route_distance"`     // targets further than this go through the navigator
	RecoveryTime      float64 `json:"recovery_time"`      // seconds a strike may run past its dodge
}

func DefaultAgentSettings() AgentSettings {
	return AgentSettings{
		StrikeWindow:      1.0,
		SolveInterval:     0.1,
		ReplanInterval:    0.5,
		PredictionHorizon: 3.0,
		MaxStrikeHeight:   300,
		RouteDistance:     2500,
		RecoveryTime:      1.0,
	}
}

// Recorder persists optimizer searches.
type Recorder interface {
	RecordSolve(s *model.SolveRecord) error
}

// AgentDeps are the collaborators an Agent drives. Navigator and Recorder are
// optional.
type AgentDeps struct {
	Model     kinematics.MotionModel
	Optimizer *optimizer.Optimizer
	Grader    optimizer.Grader
	Navigator *graph.Navigator
	Recorder  Recorder
	RunID     string
	Logger    *slog.Logger
}

// Agent turns one Context per tick into controls. It either executes a solved
// strike or follows a segmented path toward the predicted ball, re-solving
// while the intercept is inside the strike window.
type Agent struct {
	settings AgentSettings
	deps     AgentDeps
	log      *slog.Logger

	plan        optimizer.DodgePlan
	strike      *optimizer.Strike
	strikeStart float64

	path      *path.SegmentedPath
	lastPlan  float64
	lastSolve float64

	mode   Mode
	solves []SolveEvent
}

// NewAgent validates deps and fills unset settings from DefaultAgentSettings.
func NewAgent(settings AgentSettings, deps AgentDeps) (*Agent, error) {
	if deps.Optimizer == nil {
		return nil, fmt.Errorf("agent needs an optimizer")
	}
	if deps.Grader == nil {
		return nil, fmt.Errorf("agent needs a grader")
	}
	if deps.Model == nil {
		deps.Model = kinematics.GroundModel{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	d := DefaultAgentSettings()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&settings.StrikeWindow, d.StrikeWindow)
	fill(&settings.SolveInterval, d.SolveInterval)
	fill(&settings.ReplanInterval, d.ReplanInterval)
	fill(&settings.PredictionHorizon, d.PredictionHorizon)
	fill(&settings.MaxStrikeHeight, d.MaxStrikeHeight)
	fill(&settings.RouteDistance, d.RouteDistance)
	fill(&settings.RecoveryTime, d.RecoveryTime)

	a := &Agent{
		settings:  settings,
		deps:      deps,
		log:       deps.Logger,
		lastPlan:  math.Inf(-1),
		lastSolve: math.Inf(-1),
		mode:      ModeIdle,
	}
	a.plan.Reset()
	return a, nil
}

// Settings returns the effective settings.
func (a *Agent) Settings() AgentSettings { return a.settings }

// PredictionHorizon is the seconds of ball prediction each tick needs: the
// configured horizon, stretched when the grader looks past the strike window.
func (a *Agent) PredictionHorizon() float64 {
	return math.Max(a.settings.PredictionHorizon, a.settings.StrikeWindow+optimizer.Horizon(a.deps.Grader))
}

// Mode is what the last Tick did.
func (a *Agent) Mode() Mode { return a.mode }

// Plan is the plan being executed, inert when none.
func (a *Agent) Plan() optimizer.DodgePlan { return a.plan }

// Solves lists every search run so far.
func (a *Agent) Solves() []SolveEvent { return a.solves }

// Tick returns the controls for ctx.
func (a *Agent) Tick(ctx *Context) physics.ControlsOutput {
	if a.strike != nil {
		if out, ok := a.continueStrike(ctx); ok {
			return out
		}
	}

	slice, eta, found := a.intercept(ctx)
	if found && eta <= a.settings.StrikeWindow && ctx.Time-a.lastSolve >= a.settings.SolveInterval-1e-9 {
		if a.solve(ctx, eta) {
			a.strike = optimizer.NewStrike(a.plan, ctx.DT)
			a.strikeStart = ctx.Time
			a.path = nil
			out, _ := a.continueStrike(ctx)
			return out
		}
	}

	if !ctx.Car.OnGround {
		a.mode = ModeIdle
		return physics.ControlsOutput{}
	}

	target := ctx.Ball.Position
	arrival := 0.0
	if found {
		target, arrival = slice.Position, eta
	}
	if a.shouldReplan(ctx) {
		a.replan(ctx, target, arrival)
	}
	if a.path != nil {
		out, done := a.path.Step(ctx.Car, ctx.DT)
		if !done {
			a.mode = ModePath
			return out
		}
		a.path = nil
	}
	return a.chase(ctx.Car, target)
}

// continueStrike runs the active strike. ok is false once it has ended.
func (a *Agent) continueStrike(ctx *Context) (physics.ControlsOutput, bool) {
	elapsed := ctx.Time - a.strikeStart
	landed := a.strike.Dodged() && ctx.Car.OnGround
	if landed || elapsed > a.plan.Delay+a.plan.Duration+a.settings.RecoveryTime {
		a.log.Debug("strike finished", "time", ctx.Time, "landed", landed)
		a.strike = nil
		a.plan.Reset()
		return physics.ControlsOutput{}, false
	}
	a.mode = ModeStrike
	return a.strike.Step(ctx.Car, ctx.Ball.Position), true
}

// intercept finds the first predicted ball the car can reach in time. eta is
// relative to ctx.Time.
func (a *Agent) intercept(ctx *Context) (prediction.Slice, float64, bool) {
	car := ctx.Car
	speed := math.Max(0, car.ForwardSpeed())
	reach := physics.BallRadius + car.Hitbox.HalfExtents.X() + car.Hitbox.Offset.X()
	m := a.deps.Model

	for _, s := range ctx.Prediction.Slices() {
		eta := s.Time - ctx.Time
		if eta <= 0 || s.Position.Z() > a.settings.MaxStrikeHeight {
			continue
		}
		to := physics.Flat(s.Position.Sub(car.Position))
		local := car.Local(to)
		angle := math.Abs(math.Atan2(local.Y(), local.X()))
		t := kinematics.TravelTime(m, to.Len()-reach, speed, m.VMax(), travelStep) + angle*turnPenalty
		if t <= eta {
			return s, eta, true
		}
	}
	return prediction.Slice{}, 0, false
}

// solve runs the optimizer for an intercept eta seconds away. It reports
// whether a plan was found.
func (a *Agent) solve(ctx *Context, eta float64) bool {
	a.lastSolve = ctx.Time
	in := optimizer.Input{
		Car:           ctx.Car,
		Ball:          ctx.Ball,
		Gravity:       ctx.Gravity,
		DT:            ctx.DT,
		InterceptTime: eta*interceptScale + interceptSlack,
	}
	d := a.deps.Optimizer.Solve(in, a.deps.Grader, &a.plan)

	ev := SolveEvent{
		Timestamp:     ctx.Time,
		InterceptTime: in.InterceptTime,
		Plan:          a.plan,
		Simulations:   d.Simulations,
		Touches:       d.Touches,
		WheelClips:    d.WheelClips,
		GraderCalls:   d.GraderCalls,
		Messages:      d.Messages,
	}
	a.solves = append(a.solves, ev)
	a.record(ev, d)
	return d.Solved
}

func (a *Agent) record(ev SolveEvent, d optimizer.Diagnostics) {
	if a.deps.Recorder == nil {
		return
	}
	rec := &model.SolveRecord{
		RunID:         a.deps.RunID,
		Time:          ev.Timestamp,
		InterceptTime: ev.InterceptTime,
		Solved:        d.Solved,
		Simulations:   d.Simulations,
		Touches:       d.Touches,
		WheelClips:    d.WheelClips,
		GraderCalls:   d.GraderCalls,
	}
	if d.Solved {
		rec.Delay, rec.Duration, rec.Angle = ev.Plan.Delay, ev.Plan.Duration, ev.Plan.Angle
	}
	if d.Best != nil {
		rec.BallSpeed = d.Best.Ball.Velocity.Len()
	}
	if err := a.deps.Recorder.RecordSolve(rec); err != nil {
		a.log.Warn("recording solve failed", "error", err)
	}
}

func (a *Agent) shouldReplan(ctx *Context) bool {
	if a.path == nil || a.path.IsDone() {
		return ctx.Time-a.lastPlan >= a.settings.SolveInterval-1e-9
	}
	return ctx.Time-a.lastPlan >= a.settings.ReplanInterval-1e-9 && a.path.CanInterrupt()
}

// replan builds a path that arrives behind target facing the opponent goal.
// Shapes are tried from the most to the least ambitious.
func (a *Agent) replan(ctx *Context, target mgl64.Vec3, arrival float64) {
	a.lastPlan = ctx.Time
	car := ctx.Car
	m := a.deps.Model

	goal := mgl64.Vec3{0, float64(team(car)) * physics.ArenaHalfY, 0}
	tangent := physics.Unit(physics.Flat(goal.Sub(target)))
	if tangent.Len() == 0 {
		tangent = physics.Unit(physics.Flat(car.Forward()))
	}
	dest := target.Sub(tangent.Mul(physics.BallRadius + approachGap))
	dest[2] = car.Position.Z()

	speed := math.Max(car.ForwardSpeed(), 1000)
	shapes := make([]path.Shape, 0, 3)
	if nav := a.deps.Navigator; nav != nil && physics.Flat(dest.Sub(car.Position)).Len() > a.settings.RouteDistance {
		heading := physics.Unit(physics.Flat(car.Forward()))
		if c, ok := nav.FindPath(car.Position, heading, dest, tangent, routeOffset); ok {
			shapes = append(shapes, path.Route{Curve: c})
		}
	}
	shapes = append(shapes,
		path.ArcLineArc{Target: dest, TargetTangent: tangent, Radius: 1 / m.MaxCurvature(speed)},
		path.Straight{Target: dest, ArrivalTime: arrival},
	)

	entry := path.EntryFromCar(car)
	for _, shape := range shapes {
		p, err := path.Plan(m, entry, shape)
		if err != nil {
			a.log.Debug("path shape rejected", "kind", shape.Kind(), "error", err)
			continue
		}
		a.path = p
		a.log.Debug("path planned", "time", ctx.Time, "kind", shape.Kind(), "duration", p.Duration())
		return
	}
	a.path = nil
}

// chase steers straight at target.
func (a *Agent) chase(car physics.CarState, target mgl64.Vec3) physics.ControlsOutput {
	a.mode = ModeChase
	local := car.Local(target.Sub(car.Position))
	angle := math.Atan2(local.Y(), local.X())
	return physics.ControlsOutput{
		Throttle:  1,
		Steer:     mgl64.Clamp(-chaseGain*angle, -1, 1),
		Handbrake: math.Abs(angle) > 2,
	}
}

func team(c physics.CarState) int {
	if c.Team < 0 {
		return -1
	}
	return 1
}
