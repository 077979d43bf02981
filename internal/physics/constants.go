// Package physics steps car and ball state at a fixed tick rate.
//
// Every function works on caller-owned values. A plan forks the world by copying
// a CarState and a BallState, replays candidate inputs on the copies and throws
// them away; nothing in this package keeps state between calls.
//
// Units follow the target game: unreal units (uu) for distance, uu/s for speed,
// radians for angles. The world frame is right-handed with +z up. A car's
// orientation matrix has the columns forward, left and up.
package physics

const (
	TickRate = 120.0
	TickDT   = 1.0 / TickRate

	DefaultGravity = -650.0 // uu/s²
)

// Arena geometry.
const (
	ArenaHalfX    = 4096.0
	ArenaHalfY    = 5120.0
	ArenaHeight   = 2044.0
	GoalHalfWidth = 893.0
	GoalHeight    = 642.775
	GoalDepth     = 880.0
)

// Ball.
const (
	BallRadius      = 92.75
	BallMass        = 30.0
	BallDrag        = -0.0305 // fraction of velocity removed per second
	MaxBallVelocity = 6000.0
	MaxBallAngular  = 6.0
	BallRestitution = 0.6
	BallFriction    = 0.035 // tangential speed lost per bounce

	// Vertical speed below which a floor contact becomes resting contact.
	ballRestingSpeed = 20.0
)

// Car.
const (
	CarMass        = 180.0
	MaxCarVelocity = 2300.0
	MaxCarAngular  = 5.5
	CarRestHeight  = 17.01
	MaxBoost       = 100.0

	JumpSpeed       = 291.667
	JumpAccel       = 1458.333
	JumpMinDuration = 0.025
	JumpMaxDuration = 0.2

	DodgeTimeout     = 1.25
	DodgeThreshold   = 0.5
	DodgeImpulse     = 500.0
	DodgeTorqueTime  = 0.65
	DodgeLockoutTime = 0.95

	// Local angular acceleration during a dodge, rad/s² per unit of input.
	DodgeRollTorque  = 260.0 / Inertia
	DodgePitchTorque = 224.0 / Inertia

	BoostAccel       = 991.667
	AirBoostAccel    = 1000.0
	BoostConsumption = 33.333 // boost units per second
	AirThrottleAccel = 66.667

	BrakeAccel    = 3500.0
	CoastAccel    = 525.0
	ThrottleSpeed = 1410.0 // top speed reachable without boost

	HandbrakeCurvatureScale = 1.5
)

// Aerial attitude model: alpha = (torque·input + damping·omega) / Inertia, local frame.
const (
	Inertia = 10.5

	TorqueRoll  = 400.0
	TorquePitch = 130.0
	TorqueYaw   = 95.0

	DampRoll  = 50.0
	DampPitch = 30.0
	DampYaw   = 20.0
)

// Car-ball hit model.
const (
	carBallRestitution = 0.0
	touchCooldown      = 0.1
	hitVerticalScale   = 0.35
	hitForwardScale    = 0.35
	maxHitSpeed        = 4600.0
)
