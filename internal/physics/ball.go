package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// StepBall advances b by dt under gravity, drag and arena contact.
func StepBall(b *BallState, gravity, dt float64) {
	accel := b.Velocity.Mul(BallDrag).Add(mgl64.Vec3{0, 0, gravity})
	b.Velocity = b.Velocity.Add(accel.Mul(dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	bounceArena(b)

	b.AngularVelocity = clampMagnitude(b.AngularVelocity, MaxBallAngular)
	b.Velocity = clampMagnitude(b.Velocity, MaxBallVelocity)
	b.Time += dt
}

// StepBallWithCollision steps the ball and then resolves contact with car. The
// car is expected to have been stepped to the same time already.
func StepBallWithCollision(b *BallState, car *CarState, gravity, dt float64) (Touch, bool) {
	StepBall(b, gravity, dt)
	touch, hit := collide(b, car)
	if hit {
		b.AngularVelocity = clampMagnitude(b.AngularVelocity, MaxBallAngular)
		b.Velocity = clampMagnitude(b.Velocity, MaxBallVelocity)
		car.Velocity = clampMagnitude(car.Velocity, MaxCarVelocity)
	}
	return touch, hit
}

// InArena reports whether p lies inside the playable volume shrunk by margin.
// Goal mouths count as inside.
func InArena(p mgl64.Vec3, margin float64) bool {
	if p.Z() < -margin || p.Z() > ArenaHeight-margin {
		return false
	}
	if math.Abs(p.X()) > ArenaHalfX-margin {
		return false
	}
	halfY := ArenaHalfY
	if inGoalMouth(p, 0) {
		halfY += GoalDepth
	}
	return math.Abs(p.Y()) <= halfY-margin
}

func inGoalMouth(p mgl64.Vec3, radius float64) bool {
	return math.Abs(p.X()) < GoalHalfWidth-radius && p.Z() < GoalHeight-radius
}

// bounceArena reflects the ball off the floor, ceiling and walls.
func bounceArena(b *BallState) {
	r := BallRadius

	if b.Position.Z() < r {
		b.Position[2] = r
		if b.Velocity.Z() < 0 {
			rebound := -b.Velocity.Z() * BallRestitution
			b.Velocity[2] = 0
			if rebound >= ballRestingSpeed {
				b.Velocity[2] = rebound
				b.Velocity[0] *= 1 - BallFriction
				b.Velocity[1] *= 1 - BallFriction
			}
		}
		if b.Velocity.Z() == 0 {
			b.Velocity[2] = 0
			// Rolling without slipping on the floor.
			b.AngularVelocity = mgl64.Vec3{-b.Velocity.Y() / r, b.Velocity.X() / r, 0}
		}
	}
	if b.Position.Z() > ArenaHeight-r {
		b.Position[2] = ArenaHeight - r
		if b.Velocity.Z() > 0 {
			b.Velocity[2] = -b.Velocity.Z() * BallRestitution
		}
	}

	reflectAxis(b, 0, ArenaHalfX-r)

	halfY := ArenaHalfY - r
	if inGoalMouth(b.Position, r) {
		halfY = ArenaHalfY + GoalDepth - r
	}
	reflectAxis(b, 1, halfY)
}

func reflectAxis(b *BallState, axis int, limit float64) {
	p := b.Position[axis]
	switch {
	case p > limit:
		b.Position[axis] = limit
		if b.Velocity[axis] > 0 {
			b.Velocity[axis] = -b.Velocity[axis] * BallRestitution
		}
	case p < -limit:
		b.Position[axis] = -limit
		if b.Velocity[axis] < 0 {
			b.Velocity[axis] = -b.Velocity[axis] * BallRestitution
		}
	}
}
