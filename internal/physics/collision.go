package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// hitScale is the extra impulse factor as a function of relative speed.
var hitScale = []curvePoint{
	{0, 0.65},
	{500, 0.65},
	{2300, 0.55},
	{maxHitSpeed, 0.30},
}

// HitboxCenter returns the world position of the car's hitbox centre.
func HitboxCenter(c CarState) mgl64.Vec3 {
	return c.Position.Add(c.Orientation.Mul3x1(c.Hitbox.Offset))
}

// collide resolves an oriented-box versus sphere contact between car and b.
func collide(b *BallState, car *CarState) (Touch, bool) {
	center := HitboxCenter(*car)
	h := car.Hitbox.HalfExtents
	local := car.Local(b.Position.Sub(center))

	closest := mgl64.Vec3{
		mgl64.Clamp(local.X(), -h.X(), h.X()),
		mgl64.Clamp(local.Y(), -h.Y(), h.Y()),
		mgl64.Clamp(local.Z(), -h.Z(), h.Z()),
	}
	d := local.Sub(closest)
	dist := d.Len()
	if dist >= BallRadius {
		return Touch{}, false
	}

	var localNormal mgl64.Vec3
	if dist > 1e-9 {
		localNormal = d.Mul(1 / dist)
	} else {
		// Ball centre inside the box: push out through the nearest face.
		localNormal = nearestFace(local, h)
	}
	normal := car.Orientation.Mul3x1(localNormal)
	point := center.Add(car.Orientation.Mul3x1(closest))

	// Separate the bodies along the normal.
	b.Position = b.Position.Add(normal.Mul(BallRadius - dist))

	carPointVel := car.Velocity.Add(car.AngularVelocity.Cross(point.Sub(car.Position)))
	rel := b.Velocity.Sub(carPointVel)
	vn := rel.Dot(normal)
	if vn < 0 {
		total := CarMass + BallMass
		j := -(1 + carBallRestitution) * vn
		b.Velocity = b.Velocity.Add(normal.Mul(j * CarMass / total))
		car.Velocity = car.Velocity.Sub(normal.Mul(j * BallMass / total))
	}

	fresh := !(b.Touched && b.LastTouch.CarID == car.ID && b.Time-b.LastTouch.Time < touchCooldown)
	if fresh {
		speed := math.Min(rel.Len(), maxHitSpeed)
		dir := b.Position.Sub(car.Position)
		dir[2] *= hitVerticalScale
		f := car.Forward()
		dir = Unit(dir.Sub(f.Mul(hitForwardScale * dir.Dot(f))))
		b.Velocity = b.Velocity.Add(dir.Mul(speed * interpolate(hitScale, speed)))
	}

	touch := Touch{
		Point:  point,
		Normal: normal,
		Local:  closest,
		CarID:  car.ID,
		Time:   b.Time,
	}
	b.Touched = true
	b.LastTouch = touch
	return touch, true
}

func nearestFace(local, h mgl64.Vec3) mgl64.Vec3 {
	best, axis, sign := math.Inf(1), 0, 1.0
	for i := 0; i < 3; i++ {
		for _, s := range []float64{1, -1} {
			if gap := h[i] - s*local[i]; gap < best {
				best, axis, sign = gap, i, s
			}
		}
	}
	var n mgl64.Vec3
	n[axis] = sign
	return n
}
