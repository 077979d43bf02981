package curve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const senseEpsilon = 1e-9

// cross2 is the z component of a×b in the ground plane.
func cross2(a, b mgl64.Vec3) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// left rotates u a quarter turn counter-clockwise in the ground plane.
func left(u mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{-u.Y(), u.X(), 0}
}

// TurnSense returns +1 when orbiting center from pos means turning left
// (counter-clockwise) and -1 for right. The centre's side of the heading
// decides; with the centre dead ahead the current yaw rate decides, and with
// neither the turn is to the left.
func TurnSense(pos, heading mgl64.Vec3, angularZ float64, center mgl64.Vec3) float64 {
	c := cross2(heading, center.Sub(pos))
	switch {
	case c > senseEpsilon:
		return 1
	case c < -senseEpsilon:
		return -1
	case angularZ > senseEpsilon:
		return 1
	case angularZ < -senseEpsilon:
		return -1
	}
	return 1
}

// TangentPoints returns both points where a line from pos touches the circle
// around center. ok is false when pos is on or inside the circle.
func TangentPoints(pos, center mgl64.Vec3, radius float64) (a, b mgl64.Vec3, ok bool) {
	d := center.Sub(pos)
	dist := math.Hypot(d.X(), d.Y())
	if dist <= radius || radius <= 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	base := math.Atan2(pos.Y()-center.Y(), pos.X()-center.X())
	phi := math.Acos(radius / dist)
	at := func(angle float64) mgl64.Vec3 {
		return mgl64.Vec3{
			center.X() + radius*math.Cos(angle),
			center.Y() + radius*math.Sin(angle),
			pos.Z(),
		}
	}
	return at(base + phi), at(base - phi), true
}

// TangentPoint picks the tangent point on the circle (center, radius) that lets a
// car at pos, heading along heading, join the circle in its own turn sense.
func TangentPoint(pos, heading mgl64.Vec3, angularZ float64, center mgl64.Vec3, radius float64) (mgl64.Vec3, bool) {
	a, b, ok := TangentPoints(pos, center, radius)
	if !ok {
		return mgl64.Vec3{}, false
	}
	sense := TurnSense(pos, heading, angularZ, center)
	for _, t := range []mgl64.Vec3{a, b} {
		if orbit := cross2(t.Sub(pos), center.Sub(t)); orbit*sense > 0 {
			return t, true
		}
	}
	return mgl64.Vec3{}, false
}
