package optimizer

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cxd309/strike-engine/internal/physics"
)

// Settings bound the search grid.
type Settings struct {
	Durations   []float64 `json:"durations"`   // jump hold times, tried in order
	DelayStep   float64   `json:"delay_step"`  // seconds between tried delays
	AngleStep   float64   `json:"angle_step"`  // radians between tried dodge offsets
	AngleSteps  int       `json:"angle_steps"` // offsets tried on each side of the direct line
	LongWindow  float64   `json:"long_window"` // windows longer than this widen both steps
	TimeBudget  float64   `json:"time_budget"` // seconds simulated past the window
	ArenaMargin float64   `json:"arena_margin"`
}

// DefaultSettings is a 2 × (window/DelayStep) × 5 grid.
func DefaultSettings() Settings {
	return Settings{
		Durations:  []float64{0.05, 0.2},
		DelayStep:  1.0 / 30,
		AngleStep:  0.2,
		AngleSteps: 2,
		LongWindow: 1.0,
		TimeBudget: 1.0,
	}
}

// Input is what one Solve needs. InterceptTime is the estimated seconds until
// the car reaches the ball and bounds the tried delays.
type Input struct {
	Car           physics.CarState
	Ball          physics.BallState
	Gravity       float64
	DT            float64
	InterceptTime float64
}

// Diagnostics summarise one Solve.
type Diagnostics struct {
	Solved      bool          `json:"solved"`
	Simulations int           `json:"simulations"`
	Touches     int           `json:"touches"`
	WheelClips  int           `json:"wheel_clips"`
	Misses      int           `json:"misses"`
	Exits       int           `json:"exits"`
	GraderCalls int           `json:"grader_calls"`
	Best        *Hypothetical `json:"best,omitempty"`
	Messages    []string      `json:"messages"`
}

type outcome int

const (
	outcomeMiss outcome = iota
	outcomeTouch
	outcomeWheelClip
	outcomeExit
)

// Optimizer runs strike searches. It holds no per-search state and may be
// reused across ticks.
type Optimizer struct {
	settings Settings
	log      *slog.Logger
	metrics  *metrics
}

// New validates settings and registers the optimizer's counters.
func New(settings Settings, log *slog.Logger) (*Optimizer, error) {
	d := DefaultSettings()
	if len(settings.Durations) == 0 {
		settings.Durations = d.Durations
	}
	if settings.DelayStep <= 0 {
		settings.DelayStep = d.DelayStep
	}
	if settings.AngleStep <= 0 {
		settings.AngleStep = d.AngleStep
	}
	if settings.AngleSteps < 0 {
		return nil, fmt.Errorf("angle_steps must not be negative, got %d", settings.AngleSteps)
	}
	if settings.LongWindow <= 0 {
		settings.LongWindow = d.LongWindow
	}
	if settings.TimeBudget <= 0 {
		settings.TimeBudget = d.TimeBudget
	}
	for _, dur := range settings.Durations {
		if dur <= 0 {
			return nil, fmt.Errorf("durations must be positive, got %g", dur)
		}
	}
	if log == nil {
		log = slog.Default()
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &Optimizer{settings: settings, log: log, metrics: m}, nil
}

// Settings returns the effective settings.
func (o *Optimizer) Settings() Settings { return o.settings }

// Horizon is the prediction length g asks for, 0 when it gives no hint.
func Horizon(g Grader) float64 {
	if h, ok := g.(HorizonHinter); ok {
		return h.PredictionHorizon()
	}
	return 0
}

// Solve searches the grid and writes the best accepted candidate into plan.
// When nothing is accepted plan is reset to inert. g is reset first. Solve
// panics when in carries no intercept time estimate.
func (o *Optimizer) Solve(in Input, g Grader, plan *DodgePlan) Diagnostics {
	if !(in.InterceptTime > 0) {
		panic(fmt.Sprintf("optimizer: Solve needs an intercept time estimate, got %v", in.InterceptTime))
	}
	if plan == nil {
		panic("optimizer: Solve needs a plan to write to")
	}
	if in.DT <= 0 {
		in.DT = physics.TickDT
	}
	g.Reset()

	window := in.InterceptTime
	scale := math.Max(1, window/o.settings.LongWindow)
	delayStep := o.settings.DelayStep * scale
	offsets := o.angleOffsets(o.settings.AngleStep * scale)

	var d Diagnostics
	for _, dur := range o.settings.Durations {
		for i := 1; float64(i)*delayStep < window; i++ {
			for _, off := range offsets {
				candidate := DodgePlan{Delay: float64(i) * delayStep, Duration: dur, Angle: off}
				h, res := o.simulate(in, candidate, window)
				d.Simulations++
				switch res {
				case outcomeWheelClip:
					d.Touches++
					d.WheelClips++
				case outcomeExit:
					d.Exits++
				case outcomeMiss:
					d.Misses++
				case outcomeTouch:
					d.Touches++
					d.GraderCalls++
					if g.IsImproved(h) {
						best := h
						d.Best = &best
					}
				}
			}
		}
	}

	if d.Best != nil {
		*plan = d.Best.Plan
		plan.Solved = true
		d.Solved = true
	} else {
		plan.Reset()
	}
	d.Messages = append(d.Messages, fmt.Sprintf(
		"%d simulations, %d touches, %d wheel clips, %d grader calls: %s",
		d.Simulations, d.Touches, d.WheelClips, d.GraderCalls, plan))
	d.Messages = append(d.Messages, g.Diagnostics()...)

	o.log.Debug("strike search",
		"window", window,
		"simulations", d.Simulations,
		"touches", d.Touches,
		"wheel_clips", d.WheelClips,
		"solved", d.Solved,
		"plan", plan.String(),
	)
	o.metrics.record(d)
	return d
}

// Evaluate replays a single plan. ok is false when it produced no accepted
// touch.
func (o *Optimizer) Evaluate(in Input, plan DodgePlan) (Hypothetical, bool) {
	if in.DT <= 0 {
		in.DT = physics.TickDT
	}
	h, res := o.simulate(in, plan, in.InterceptTime)
	return h, res == outcomeTouch
}

// angleOffsets lists 0, +s, -s, +2s, -2s and so on.
func (o *Optimizer) angleOffsets(step float64) []float64 {
	out := []float64{0}
	for k := 1; k <= o.settings.AngleSteps; k++ {
		a := math.Min(float64(k)*step, math.Pi/2)
		out = append(out, a, -a)
	}
	return out
}

// simulate forks car and ball and runs plan until the first touch, an arena
// exit or the time budget.
func (o *Optimizer) simulate(in Input, plan DodgePlan, window float64) (Hypothetical, outcome) {
	car, ball := in.Car, in.Ball
	strike := NewStrike(plan, in.DT)
	limit := math.Max(window, plan.Delay+plan.Duration) + o.settings.TimeBudget

	for elapsed := 0.0; elapsed < limit; {
		pre := ball.Velocity.Len()
		controls := strike.Step(car, ball.Position)
		physics.StepCar(&car, controls, in.Gravity, in.DT)
		touch, hit := physics.StepBallWithCollision(&ball, &car, in.Gravity, in.DT)
		elapsed += in.DT

		if hit {
			dodged := car.Dodging()
			if !dodged && touch.IsWheel(car.Hitbox) {
				return Hypothetical{}, outcomeWheelClip
			}
			return Hypothetical{
				Car:       car,
				Ball:      ball,
				Touch:     touch,
				Plan:      plan,
				Elapsed:   elapsed,
				Dodged:    dodged,
				PreSpeed:  pre,
				Gravity:   in.Gravity,
				TickDelta: in.DT,
			}, outcomeTouch
		}
		if !physics.InArena(car.Position, o.settings.ArenaMargin) || !physics.InArena(ball.Position, o.settings.ArenaMargin) {
			return Hypothetical{}, outcomeExit
		}
	}
	return Hypothetical{}, outcomeMiss
}
