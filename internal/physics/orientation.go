package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var worldUp = mgl64.Vec3{0, 0, 1}

// Euler builds an orientation from pitch (nose up positive), yaw (counter-clockwise
// from +x) and roll (right side down positive).
func Euler(pitch, yaw, roll float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(yaw).Mul3(mgl64.Rotate3DY(-pitch)).Mul3(mgl64.Rotate3DX(roll))
}

// Yaw returns the heading angle of an orientation's forward axis in the xy plane.
func Yaw(o mgl64.Mat3) float64 {
	f := o.Col(0)
	return math.Atan2(f.Y(), f.X())
}

// Flat projects v onto the ground plane.
func Flat(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), v.Y(), 0}
}

// Unit normalizes v, returning the zero vector for degenerate input.
func Unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-9 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// rotation is the rotation matrix for the axis-angle vector w (Rodrigues).
func rotation(w mgl64.Vec3) mgl64.Mat3 {
	theta := w.Len()
	if theta < 1e-12 {
		return mgl64.Ident3()
	}
	k := w.Mul(1 / theta)
	kx := mgl64.Mat3{
		0, k.Z(), -k.Y(),
		-k.Z(), 0, k.X(),
		k.Y(), -k.X(), 0,
	}
	return mgl64.Ident3().
		Add(kx.Mul(math.Sin(theta))).
		Add(kx.Mul3(kx).Mul(1 - math.Cos(theta)))
}

// orthonormalize removes integration drift from an orientation.
func orthonormalize(o mgl64.Mat3) mgl64.Mat3 {
	f := Unit(o.Col(0))
	l := o.Col(1)
	l = Unit(l.Sub(f.Mul(f.Dot(l))))
	u := f.Cross(l)
	return mgl64.Mat3FromCols(f, l, u)
}

// level keeps the heading of o and puts it flat on the floor.
func level(o mgl64.Mat3) mgl64.Mat3 {
	f := Unit(Flat(o.Col(0)))
	if f == (mgl64.Vec3{}) {
		// Nose straight up or down: fall back to the up axis for heading.
		f = Unit(Flat(o.Col(2)))
		if f == (mgl64.Vec3{}) {
			f = mgl64.Vec3{1, 0, 0}
		}
	}
	l := worldUp.Cross(f)
	return mgl64.Mat3FromCols(f, l, worldUp)
}

// clampMagnitude rescales v so |v| <= limit. It never amplifies.
func clampMagnitude(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	l := v.Len()
	if l <= limit || l == 0 {
		return v
	}
	return v.Mul(limit / l)
}
