package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// StepCar advances c by dt under the given input.
func StepCar(c *CarState, in ControlsOutput, gravity, dt float64) {
	in = in.Clamped()
	pressed := in.Jump && !c.jumpHeld

	switch {
	case c.OnGround && pressed:
		startJump(c)
		stepAir(c, in, false, gravity, dt)
	case c.OnGround:
		stepGround(c, in, dt)
	default:
		stepAir(c, in, pressed, gravity, dt)
	}

	c.Velocity = clampMagnitude(c.Velocity, MaxCarVelocity)
	c.AngularVelocity = clampMagnitude(c.AngularVelocity, MaxCarAngular)
	c.jumpHeld = in.Jump
	c.Time += dt
}

// stepGround drives a grounded car: longitudinal acceleration along the nose and
// a yaw rate bounded by the speed-dependent turning radius. There is no slip.
func stepGround(c *CarState, in ControlsOutput, dt float64) {
	speed := c.ForwardSpeed()
	accel := groundAcceleration(speed, in.Throttle)
	if in.Boost && c.Boost > 0 {
		accel += BoostAccel
		c.Boost = math.Max(0, c.Boost-BoostConsumption*dt)
	}

	next := speed + accel*dt
	coasting := math.Abs(in.Throttle) < 0.01 || in.Throttle*speed < 0
	if coasting && !in.Boost && speed != 0 && math.Signbit(next) != math.Signbit(speed) {
		next = 0
	}
	limit := MaxCarVelocity
	if !in.Boost {
		limit = math.Max(math.Abs(speed), ThrottleSpeed)
	}
	next = mgl64.Clamp(next, -limit, limit)

	k := MaxCurvature(next)
	if in.Handbrake {
		k *= HandbrakeCurvatureScale
	}
	yawRate := -in.Steer * k * next

	o := level(rotation(mgl64.Vec3{0, 0, yawRate * dt}).Mul3(c.Orientation))
	c.Orientation = o
	c.Velocity = o.Col(0).Mul(next)
	c.AngularVelocity = mgl64.Vec3{0, 0, yawRate}
	c.Position = c.Position.Add(c.Velocity.Mul(dt))
	c.Position[2] = CarRestHeight
	keepInArena(c)
}

// groundAcceleration is the signed longitudinal acceleration for throttle at speed.
func groundAcceleration(speed, throttle float64) float64 {
	switch {
	case math.Abs(throttle) < 0.01:
		if speed == 0 {
			return 0
		}
		return -math.Copysign(CoastAccel, speed)
	case throttle*speed < 0:
		return -math.Copysign(BrakeAccel, speed)
	default:
		return throttle * ThrottleAcceleration(speed)
	}
}

func startJump(c *CarState) {
	c.Velocity = c.Velocity.Add(c.Up().Mul(JumpSpeed))
	c.OnGround = false
	c.Jumped = true
	c.JumpTimer = 0
	c.jumpHolding = true
}

// stepAir integrates an airborne car. pressed is a fresh jump press this tick.
func stepAir(c *CarState, in ControlsOutput, pressed bool, gravity, dt float64) {
	if c.jumpHolding {
		held := in.Jump || c.JumpTimer < JumpMinDuration
		if held && c.JumpTimer < JumpMaxDuration {
			c.Velocity = c.Velocity.Add(c.Up().Mul(JumpAccel * dt))
		} else {
			c.jumpHolding = false
		}
	}

	if pressed && canDodge(c) {
		dodge(c, in)
	}

	c.AngularVelocity = c.AngularVelocity.Add(c.Orientation.Mul3x1(attitude(c, in)).Mul(dt))

	switch {
	case in.Boost && c.Boost > 0:
		c.Velocity = c.Velocity.Add(c.Forward().Mul(AirBoostAccel * dt))
		c.Boost = math.Max(0, c.Boost-BoostConsumption*dt)
	case in.Throttle != 0:
		c.Velocity = c.Velocity.Add(c.Forward().Mul(AirThrottleAccel * in.Throttle * dt))
	}
	c.Velocity[2] += gravity * dt

	c.Velocity = clampMagnitude(c.Velocity, MaxCarVelocity)
	c.AngularVelocity = clampMagnitude(c.AngularVelocity, MaxCarAngular)

	c.Orientation = orthonormalize(rotation(c.AngularVelocity.Mul(dt)).Mul3(c.Orientation))
	c.Position = c.Position.Add(c.Velocity.Mul(dt))

	if c.JumpTimer >= 0 {
		c.JumpTimer += dt
	}
	if c.DodgeTimer >= 0 {
		c.DodgeTimer += dt
	}

	if c.Position.Z() <= CarRestHeight && c.Velocity.Z() <= 0 {
		land(c)
	}
	keepInArena(c)
}

func canDodge(c *CarState) bool {
	return c.Jumped && !c.DoubleJumped && c.JumpTimer <= DodgeTimeout
}

// dodge starts a directional dodge or, for small stick input, a second jump.
func dodge(c *CarState, in ControlsOutput) {
	c.DoubleJumped = true
	c.jumpHolding = false

	if math.Abs(in.Pitch)+math.Abs(in.Yaw)+math.Abs(in.Roll) < DodgeThreshold {
		c.Velocity = c.Velocity.Add(c.Up().Mul(JumpSpeed))
		c.DodgeTorque = mgl64.Vec3{}
		c.DodgeTimer = DodgeTorqueTime + 0.01
		return
	}

	// Dodge direction in (forward, right) coordinates.
	dir := mgl64.Vec2{-in.Pitch, in.Yaw}
	if n := dir.Len(); n > 1e-9 {
		dir = dir.Mul(1 / n)
	}

	forward := Unit(Flat(c.Forward()))
	if forward == (mgl64.Vec3{}) {
		forward = Unit(Flat(c.Up().Mul(-1)))
	}
	right := forward.Cross(worldUp)

	ratio := math.Abs(c.Velocity.Dot(forward)) / MaxCarVelocity
	fx := dir.X()
	if fx >= 0 {
		fx *= 1 + 0.9*ratio
	} else {
		fx *= 1 + 1.5*ratio
	}
	fy := dir.Y() * (1 + 0.9*ratio)

	c.Velocity = c.Velocity.Add(forward.Mul(fx * DodgeImpulse)).Add(right.Mul(fy * DodgeImpulse))
	if c.Velocity.Z() < 0 {
		c.Velocity[2] = 0
	}

	// Nose-down spin is +y in the car frame, roll right is +x.
	c.DodgeTorque = mgl64.Vec3{dir.Y() * DodgeRollTorque, dir.X() * DodgePitchTorque, 0}
	c.DodgeTimer = 0
}

// attitude returns the local angular acceleration for this tick.
func attitude(c *CarState, in ControlsOutput) mgl64.Vec3 {
	if c.DodgeTimer >= 0 && c.DodgeTimer < DodgeTorqueTime && c.DodgeTorque != (mgl64.Vec3{}) {
		return c.DodgeTorque
	}
	roll := in.Roll
	if c.DodgeTimer >= DodgeTorqueTime && c.DodgeTimer < DodgeLockoutTime {
		roll = 0
	}
	w := c.Local(c.AngularVelocity)
	return mgl64.Vec3{
		(TorqueRoll*roll - DampRoll*w.X()) / Inertia,
		(-TorquePitch*in.Pitch - DampPitch*(1-math.Abs(in.Pitch))*w.Y()) / Inertia,
		(-TorqueYaw*in.Yaw - DampYaw*(1-math.Abs(in.Yaw))*w.Z()) / Inertia,
	}
}

// land puts an airborne car back on its wheels.
func land(c *CarState) {
	c.Position[2] = CarRestHeight
	c.Velocity[2] = 0
	c.Orientation = level(c.Orientation)
	c.AngularVelocity = mgl64.Vec3{0, 0, c.AngularVelocity.Z()}
	c.OnGround = true
	c.Jumped = false
	c.DoubleJumped = false
	c.JumpTimer = -1
	c.DodgeTimer = -1
	c.DodgeTorque = mgl64.Vec3{}
	c.jumpHolding = false
}

// keepInArena stops the car at the side and back walls.
func keepInArena(c *CarState) {
	for axis, limit := range [2]float64{ArenaHalfX, ArenaHalfY} {
		if math.Abs(c.Position[axis]) > limit {
			c.Position[axis] = math.Copysign(limit, c.Position[axis])
			if c.Velocity[axis]*c.Position[axis] > 0 {
				c.Velocity[axis] = 0
			}
		}
	}
	if c.Position.Z() > ArenaHeight {
		c.Position[2] = ArenaHeight
		if c.Velocity.Z() > 0 {
			c.Velocity[2] = 0
		}
	}
}
