package engine

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/optimizer"
	"github.com/cxd309/strike-engine/internal/physics"
	"github.com/cxd309/strike-engine/internal/prediction"
)

// ScenarioMeta holds the identity and timing parameters for a scenario run.
type ScenarioMeta struct {
	ScenarioID string  `json:"scenario_id"`
	RunTime    float64 `json:"run_time"`  // seconds
	TimeStep   float64 `json:"time_step"` // seconds, 0 selects the 120 Hz tick
}

// CarInput places a car. Missing fields take NewCar's defaults.
type CarInput struct {
	ID              int        `json:"id"`
	Team            int        `json:"team"` // +1 attacks +y, -1 attacks -y; 0 means +1
	Position        mgl64.Vec3 `json:"position"`
	Velocity        mgl64.Vec3 `json:"velocity"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
	Yaw             float64    `json:"yaw"` // radians, 0 faces +x
	Boost           *float64   `json:"boost,omitempty"`
}

// BallInput places the ball.
type BallInput struct {
	Position        mgl64.Vec3 `json:"position"`
	Velocity        mgl64.Vec3 `json:"velocity"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
}

// ScenarioInput is the JSON-serialisable input to the engine.
type ScenarioInput struct {
	Meta       ScenarioMeta       `json:"scenario_meta"`
	Car        CarInput           `json:"car"`
	Ball       BallInput          `json:"ball"`
	Cars       []CarInput         `json:"cars"`    // other cars, driven with neutral input
	Gravity    float64            `json:"gravity"` // uu/s², 0 selects the default
	Kinematics json.RawMessage    `json:"kinematics"`
	Grader     optimizer.Spec     `json:"grader"`
	Prediction []prediction.Slice `json:"prediction"` // optional external ball prediction, absolute times
}

// Context is everything the agent sees on one tick. It is rebuilt every tick
// and passed down explicitly.
type Context struct {
	Car        physics.CarState
	Ball       physics.BallState
	Cars       []physics.CarState
	Gravity    float64
	DT         float64
	Time       float64
	Prediction *prediction.Prediction
}

// Mode is what the agent did on a tick.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModePath   Mode = "path"
	ModeChase  Mode = "chase"
	ModeStrike Mode = "strike"
)

// LogRow is the state of the scenario at a single tick.
type LogRow struct {
	Timestamp float64                `json:"timestamp"` // seconds
	Mode      Mode                   `json:"mode"`
	Car       physics.CarState       `json:"car"`
	Ball      physics.BallState      `json:"ball"`
	Controls  physics.ControlsOutput `json:"controls"`
}

// SolveEvent is one optimizer search the agent ran.
type SolveEvent struct {
	Timestamp     float64             `json:"timestamp"`
	InterceptTime float64             `json:"intercept_time"`
	Plan          optimizer.DodgePlan `json:"plan"`
	Simulations   int                 `json:"simulations"`
	Touches       int                 `json:"touches"`
	WheelClips    int                 `json:"wheel_clips"`
	GraderCalls   int                 `json:"grader_calls"`
	Messages      []string            `json:"messages"`
}

// ScenarioLog is the complete output of a scenario run.
type ScenarioLog struct {
	Meta       ScenarioMeta   `json:"scenario_meta"`
	RunID      string         `json:"run_id,omitempty"`
	FirstTouch *physics.Touch `json:"first_touch,omitempty"`
	Solves     []SolveEvent   `json:"solves"`
	Output     []LogRow       `json:"output"`
}
