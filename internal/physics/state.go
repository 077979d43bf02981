package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hitbox is an oriented box attached to a car. Offset is the box centre in the
// car's local frame.
type Hitbox struct {
	HalfExtents mgl64.Vec3 `json:"half_extents"`
	Offset      mgl64.Vec3 `json:"offset"`
}

// OctaneHitbox is the default car body.
var OctaneHitbox = Hitbox{
	HalfExtents: mgl64.Vec3{59.00, 42.10, 18.08},
	Offset:      mgl64.Vec3{13.88, 0, 20.75},
}

// CarState is the full simulated state of one car. It is a plain value: copying
// it forks the car.
type CarState struct {
	Position        mgl64.Vec3 `json:"position"`
	Velocity        mgl64.Vec3 `json:"velocity"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
	Orientation     mgl64.Mat3 `json:"orientation"` // columns: forward, left, up

	Boost        float64 `json:"boost"` // [0, MaxBoost]
	OnGround     bool    `json:"on_ground"`
	Jumped       bool    `json:"jumped"`
	DoubleJumped bool    `json:"double_jumped"`
	JumpTimer    float64 `json:"jump_timer"`  // seconds since the jump started, < 0 when unused
	DodgeTimer   float64 `json:"dodge_timer"` // seconds since the dodge started, < 0 when none

	// DodgeTorque is the local angular acceleration applied while a dodge spins the car.
	DodgeTorque mgl64.Vec3 `json:"dodge_torque"`

	Hitbox Hitbox  `json:"hitbox"`
	Team   int     `json:"team"` // +1 or -1, the sign of the goal the team attacks
	ID     int     `json:"id"`
	Time   float64 `json:"time"`

	jumpHeld    bool // jump input on the previous tick
	jumpHolding bool // jump hold acceleration still armed
}

// NewCar places a grounded car at pos facing yaw, moving forward at speed.
func NewCar(pos mgl64.Vec3, yaw, speed float64) CarState {
	o := Euler(0, yaw, 0)
	pos[2] = CarRestHeight
	return CarState{
		Position:    pos,
		Velocity:    o.Col(0).Mul(speed),
		Orientation: o,
		Boost:       33,
		OnGround:    true,
		JumpTimer:   -1,
		DodgeTimer:  -1,
		Hitbox:      OctaneHitbox,
		Team:        1,
	}
}

func (c CarState) Forward() mgl64.Vec3 { return c.Orientation.Col(0) }
func (c CarState) Left() mgl64.Vec3    { return c.Orientation.Col(1) }
func (c CarState) Up() mgl64.Vec3      { return c.Orientation.Col(2) }

// Local expresses a world-frame vector in the car's frame.
func (c CarState) Local(v mgl64.Vec3) mgl64.Vec3 {
	return c.Orientation.Transpose().Mul3x1(v)
}

// ForwardSpeed is the signed speed along the car's nose.
func (c CarState) ForwardSpeed() float64 {
	return c.Velocity.Dot(c.Forward())
}

// Dodging reports whether a dodge has been started since the last landing.
func (c CarState) Dodging() bool {
	return c.DodgeTimer >= 0
}

// BallState is the simulated state of the ball.
type BallState struct {
	Position        mgl64.Vec3 `json:"position"`
	Velocity        mgl64.Vec3 `json:"velocity"`
	AngularVelocity mgl64.Vec3 `json:"angular_velocity"`
	Touched         bool       `json:"touched"`
	LastTouch       Touch      `json:"last_touch"`
	Time            float64    `json:"time"`
}

// NewBall places a resting ball at pos.
func NewBall(pos mgl64.Vec3) BallState {
	if pos[2] < BallRadius {
		pos[2] = BallRadius
	}
	return BallState{Position: pos}
}

// Touch describes a car-ball contact.
type Touch struct {
	Point  mgl64.Vec3 `json:"point"`
	Normal mgl64.Vec3 `json:"normal"` // from the car towards the ball
	Local  mgl64.Vec3 `json:"local"`  // contact point relative to the hitbox centre, car frame
	CarID  int        `json:"car_id"`
	Time   float64    `json:"time"`
}

// IsWheel reports whether the contact sits on the bottom face of the hitbox.
func (t Touch) IsWheel(h Hitbox) bool {
	return t.Local.Z() <= -0.5*h.HalfExtents.Z()
}

// ControlsOutput is one tick of car input.
type ControlsOutput struct {
	Throttle  float64 `json:"throttle"`
	Steer     float64 `json:"steer"` // +1 turns right
	Pitch     float64 `json:"pitch"` // +1 lifts the nose
	Yaw       float64 `json:"yaw"`   // +1 turns right
	Roll      float64 `json:"roll"`  // +1 rolls right
	Boost     bool    `json:"boost"`
	Jump      bool    `json:"jump"`
	Handbrake bool    `json:"handbrake"`
}

// Clamped returns a copy with every analogue axis in [-1, 1]. NaN axes become 0.
func (c ControlsOutput) Clamped() ControlsOutput {
	c.Throttle = clampUnit(c.Throttle)
	c.Steer = clampUnit(c.Steer)
	c.Pitch = clampUnit(c.Pitch)
	c.Yaw = clampUnit(c.Yaw)
	c.Roll = clampUnit(c.Roll)
	return c
}

func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return mgl64.Clamp(x, -1, 1)
}
