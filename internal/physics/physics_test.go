package physics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVec(r *rand.Rand, scale float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(r.Float64()*2 - 1) * scale,
		(r.Float64()*2 - 1) * scale,
		(r.Float64()*2 - 1) * scale,
	}
}

func randomControls(r *rand.Rand) ControlsOutput {
	return ControlsOutput{
		Throttle:  r.Float64()*4 - 2,
		Steer:     r.Float64()*4 - 2,
		Pitch:     r.Float64()*4 - 2,
		Yaw:       r.Float64()*4 - 2,
		Roll:      r.Float64()*4 - 2,
		Boost:     r.IntN(2) == 0,
		Jump:      r.IntN(3) == 0,
		Handbrake: r.IntN(4) == 0,
	}
}

func TestStepBall_ClampsVelocity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := range 500 {
		b := BallState{
			Position:        mgl64.Vec3{0, 0, 1000},
			Velocity:        randomVec(r, 20000),
			AngularVelocity: randomVec(r, 50),
		}
		StepBall(&b, DefaultGravity, TickDT)
		require.LessOrEqual(t, b.Velocity.Len(), MaxBallVelocity+1e-9, "iteration %d", i)
		require.LessOrEqual(t, b.AngularVelocity.Len(), MaxBallAngular+1e-9, "iteration %d", i)
	}
}

func TestStepCar_ClampsVelocity(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := range 500 {
		c := NewCar(randomVec(r, 3000), r.Float64()*2*math.Pi, 0)
		c.OnGround = r.IntN(2) == 0
		if !c.OnGround {
			c.Position[2] = 500
			c.Jumped = true
			c.JumpTimer = 0.1
		}
		c.Velocity = randomVec(r, 10000)
		c.AngularVelocity = randomVec(r, 30)
		c.Boost = 100

		for range 10 {
			StepCar(&c, randomControls(r), DefaultGravity, TickDT)
			require.LessOrEqual(t, c.Velocity.Len(), MaxCarVelocity+1e-9, "iteration %d", i)
			require.LessOrEqual(t, c.AngularVelocity.Len(), MaxCarAngular+1e-9, "iteration %d", i)
		}
	}
}

func TestStepBallWithCollision_ClampsVelocity(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for i := range 200 {
		car := NewCar(mgl64.Vec3{}, 0, 0)
		car.Velocity = randomVec(r, 2300)
		ball := NewBall(mgl64.Vec3{100, 0, 60})
		ball.Velocity = randomVec(r, 6000)
		StepBallWithCollision(&ball, &car, DefaultGravity, TickDT)
		require.LessOrEqual(t, ball.Velocity.Len(), MaxBallVelocity+1e-9, "iteration %d", i)
		require.LessOrEqual(t, car.Velocity.Len(), MaxCarVelocity+1e-9, "iteration %d", i)
	}
}

func TestStep_Deterministic(t *testing.T) {
	run := func() (CarState, BallState) {
		r := rand.New(rand.NewPCG(7, 8))
		car := NewCar(mgl64.Vec3{-500, 0, 0}, 0, 800)
		car.Boost = 100
		ball := NewBall(mgl64.Vec3{0, 0, 300})
		for range 360 {
			StepCar(&car, randomControls(r), DefaultGravity, TickDT)
			StepBallWithCollision(&ball, &car, DefaultGravity, TickDT)
		}
		return car, ball
	}

	car1, ball1 := run()
	car2, ball2 := run()
	assert.Equal(t, car1, car2)
	assert.Equal(t, ball1, ball2)
}

func TestStepBall_RestingBallStaysPut(t *testing.T) {
	b := NewBall(mgl64.Vec3{100, 200, 0})
	for range 240 {
		StepBall(&b, DefaultGravity, TickDT)
	}
	assert.InDelta(t, BallRadius, b.Position.Z(), 1e-9)
	assert.InDelta(t, 100, b.Position.X(), 1e-9)
	assert.Zero(t, b.Velocity.Len())
}

func TestStepBall_BouncesOffFloor(t *testing.T) {
	b := NewBall(mgl64.Vec3{0, 0, 500})
	peakAfterBounce := 0.0
	bounced := false
	for range 600 {
		StepBall(&b, DefaultGravity, TickDT)
		if b.Velocity.Z() > 0 {
			bounced = true
		}
		if bounced {
			peakAfterBounce = math.Max(peakAfterBounce, b.Position.Z())
		}
		require.GreaterOrEqual(t, b.Position.Z(), BallRadius)
	}
	assert.True(t, bounced)
	assert.Less(t, peakAfterBounce, 500.0)
}

func TestStepBall_WallReflects(t *testing.T) {
	b := NewBall(mgl64.Vec3{ArenaHalfX - BallRadius - 1, 0, 500})
	b.Velocity = mgl64.Vec3{2000, 0, 0}
	StepBall(&b, 0, TickDT)
	assert.Less(t, b.Velocity.X(), 0.0)
	assert.LessOrEqual(t, b.Position.X(), ArenaHalfX-BallRadius)
}

func TestInArena(t *testing.T) {
	assert.True(t, InArena(mgl64.Vec3{0, 0, 100}, 0))
	assert.False(t, InArena(mgl64.Vec3{ArenaHalfX + 1, 0, 100}, 0))
	assert.False(t, InArena(mgl64.Vec3{0, ArenaHalfY + 100, 1000}, 0))
	assert.True(t, InArena(mgl64.Vec3{0, ArenaHalfY + 100, 100}, 0), "goal mouth is inside")
	assert.False(t, InArena(mgl64.Vec3{0, 0, 100}, 200))
}

func TestStepCar_DrivesForward(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 0)
	for range 120 {
		StepCar(&c, ControlsOutput{Throttle: 1}, DefaultGravity, TickDT)
	}
	assert.True(t, c.OnGround)
	assert.Greater(t, c.Position.X(), 0.0)
	assert.InDelta(t, 0, c.Position.Y(), 1e-6)
	assert.LessOrEqual(t, c.ForwardSpeed(), ThrottleSpeed+1e-9)
	assert.InDelta(t, CarRestHeight, c.Position.Z(), 1e-9)
}

func TestStepCar_SteerRightTurnsClockwise(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 1000)
	for range 30 {
		StepCar(&c, ControlsOutput{Throttle: 1, Steer: 1}, DefaultGravity, TickDT)
	}
	assert.Less(t, Yaw(c.Orientation), 0.0)
	assert.Less(t, c.Position.Y(), 0.0)
}

func TestStepCar_BoostConsumes(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 0)
	c.Boost = 10
	for range 120 {
		StepCar(&c, ControlsOutput{Throttle: 1, Boost: true}, DefaultGravity, TickDT)
	}
	assert.Zero(t, c.Boost)
}

func TestStepCar_JumpAndLand(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 0)
	StepCar(&c, ControlsOutput{Jump: true}, DefaultGravity, TickDT)
	require.False(t, c.OnGround)
	require.True(t, c.Jumped)
	assert.Greater(t, c.Velocity.Z(), JumpSpeed-10)

	peak := 0.0
	for i := 0; i < 240 && !c.OnGround; i++ {
		StepCar(&c, ControlsOutput{Jump: i < 20}, DefaultGravity, TickDT)
		peak = math.Max(peak, c.Position.Z())
	}
	assert.True(t, c.OnGround)
	assert.False(t, c.Jumped)
	assert.Greater(t, peak, 100.0)
	assert.Equal(t, -1.0, c.DodgeTimer)
}

func TestStepCar_ForwardDodge(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 1000)
	StepCar(&c, ControlsOutput{Jump: true}, DefaultGravity, TickDT)
	for range 5 {
		StepCar(&c, ControlsOutput{Jump: true}, DefaultGravity, TickDT)
	}
	StepCar(&c, ControlsOutput{}, DefaultGravity, TickDT)
	before := c.ForwardSpeed()

	StepCar(&c, ControlsOutput{Jump: true, Pitch: -1}, DefaultGravity, TickDT)
	require.True(t, c.DoubleJumped)
	assert.GreaterOrEqual(t, c.DodgeTimer, 0.0)
	assert.Less(t, c.DodgeTimer, DodgeTorqueTime)
	assert.Greater(t, Flat(c.Velocity).Len(), before+DodgeImpulse)

	StepCar(&c, ControlsOutput{}, DefaultGravity, TickDT)
	assert.Greater(t, c.Local(c.AngularVelocity).Y(), 0.0, "forward dodge spins nose down")
}

func TestStepCar_NeutralDoubleJump(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 0)
	StepCar(&c, ControlsOutput{Jump: true}, DefaultGravity, TickDT)
	StepCar(&c, ControlsOutput{}, DefaultGravity, TickDT)
	vz := c.Velocity.Z()
	StepCar(&c, ControlsOutput{Jump: true}, DefaultGravity, TickDT)
	assert.True(t, c.DoubleJumped)
	assert.Greater(t, c.Velocity.Z(), vz+JumpSpeed/2)
	assert.Equal(t, mgl64.Vec3{}, c.DodgeTorque)
	assert.Greater(t, c.DodgeTimer, DodgeTorqueTime)
}

func TestStepCar_HeldJumpDoesNotDodge(t *testing.T) {
	c := NewCar(mgl64.Vec3{}, 0, 0)
	for range 30 {
		StepCar(&c, ControlsOutput{Jump: true, Pitch: -1}, DefaultGravity, TickDT)
	}
	assert.False(t, c.DoubleJumped)
}

func TestAttitude_RollLockedAfterDodgeTorque(t *testing.T) {
	c := NewCar(mgl64.Vec3{0, 0, 500}, 0, 0)
	c.OnGround = false
	c.DodgeTimer = DodgeTorqueTime + 0.05
	alpha := attitude(&c, ControlsOutput{Roll: 1})
	assert.Zero(t, alpha.X())

	c.DodgeTimer = DodgeLockoutTime + 0.01
	alpha = attitude(&c, ControlsOutput{Roll: 1})
	assert.Greater(t, alpha.X(), 0.0)
}

func TestControlsOutput_Clamped(t *testing.T) {
	c := ControlsOutput{Throttle: 3, Steer: -7, Pitch: math.NaN(), Yaw: 0.5, Roll: -1}.Clamped()
	assert.Equal(t, 1.0, c.Throttle)
	assert.Equal(t, -1.0, c.Steer)
	assert.Equal(t, 0.0, c.Pitch)
	assert.Equal(t, 0.5, c.Yaw)
	assert.Equal(t, -1.0, c.Roll)
}

func TestSpeedForCurvature_InvertsTable(t *testing.T) {
	for _, v := range []float64{100, 500, 900, 1400, 2000} {
		assert.InDelta(t, v, SpeedForCurvature(MaxCurvature(v)), 0.01)
	}
	assert.Equal(t, MaxCarVelocity, SpeedForCurvature(0))
	assert.Equal(t, 0.0, SpeedForCurvature(1))
}

func TestCollide_FrontHit(t *testing.T) {
	car := NewCar(mgl64.Vec3{}, 0, 1400)
	ball := NewBall(mgl64.Vec3{car.Hitbox.Offset.X() + car.Hitbox.HalfExtents.X() + BallRadius - 30, 0, BallRadius})

	touch, hit := StepBallWithCollision(&ball, &car, DefaultGravity, TickDT)
	require.True(t, hit)
	assert.True(t, ball.Touched)
	assert.False(t, touch.IsWheel(car.Hitbox))
	assert.Greater(t, ball.Velocity.X(), 1400.0)
	assert.Greater(t, touch.Normal.X(), 0.5)
}

func TestCollide_NoContact(t *testing.T) {
	car := NewCar(mgl64.Vec3{}, 0, 0)
	ball := NewBall(mgl64.Vec3{1000, 0, 0})
	_, hit := StepBallWithCollision(&ball, &car, DefaultGravity, TickDT)
	assert.False(t, hit)
	assert.False(t, ball.Touched)
}
