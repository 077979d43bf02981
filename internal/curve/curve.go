// Package curve provides arc-length parameterised paths for a grounded car and
// the feasible speed profile along them.
//
// A Curve is built once from control points and baked once against a
// kinematics.MotionModel. After the bake it is immutable; a new route needs a
// new Curve.
package curve

import (
	"errors"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrAlreadyBaked is returned by a second CalculateMaxSpeeds call on the same curve.
	ErrAlreadyBaked = errors.New("curve already baked")
	// ErrInfeasible marks geometry a car cannot drive, such as a target inside a turning circle.
	ErrInfeasible = errors.New("infeasible geometry")
	// ErrTooShort is returned when a curve has fewer than two distinct points.
	ErrTooShort = errors.New("curve needs at least two distinct points")
)

var up = mgl64.Vec3{0, 0, 1}

// ControlPoint is one sample of a curve.
type ControlPoint struct {
	Position mgl64.Vec3 `json:"position"`
	Tangent  mgl64.Vec3 `json:"tangent"`
	Normal   mgl64.Vec3 `json:"normal"`
}

// Curve is a polyline through control points with cumulative arc length.
type Curve struct {
	points     []ControlPoint
	distances  []float64
	curvatures []float64

	maxSpeeds []float64 // nil until baked
	duration  float64
}

// NewCurve builds a curve from points. Consecutive duplicates are dropped,
// missing tangents are taken from the neighbouring chord and missing normals
// default to +z.
func NewCurve(points []ControlPoint) *Curve {
	pts := make([]ControlPoint, 0, len(points))
	for _, p := range points {
		if n := len(pts); n > 0 && pts[n-1].Position.Sub(p.Position).Len() < 1e-6 {
			continue
		}
		pts = append(pts, p)
	}

	for i := range pts {
		if pts[i].Tangent.Len() < 1e-9 {
			prev, next := max(i-1, 0), min(i+1, len(pts)-1)
			pts[i].Tangent = pts[next].Position.Sub(pts[prev].Position)
		}
		pts[i].Tangent = unit(pts[i].Tangent)
		if pts[i].Normal.Len() < 1e-9 {
			pts[i].Normal = up
		}
	}

	c := &Curve{points: pts, distances: make([]float64, len(pts))}
	for i := 1; i < len(pts); i++ {
		c.distances[i] = c.distances[i-1] + pts[i].Position.Sub(pts[i-1].Position).Len()
	}
	c.curvatures = c.estimateCurvature()
	return c
}

// estimateCurvature turns tangent rotation per unit length into curvature.
func (c *Curve) estimateCurvature() []float64 {
	n := len(c.points)
	k := make([]float64, n)
	if n < 2 {
		return k
	}
	for i := 0; i < n; i++ {
		a, b := max(i-1, 0), min(i+1, n-1)
		ds := c.distances[b] - c.distances[a]
		if ds <= 0 {
			continue
		}
		k[i] = angleBetween(c.points[a].Tangent, c.points[b].Tangent) / ds
	}
	return k
}

// Length is the total arc length.
func (c *Curve) Length() float64 {
	if len(c.distances) == 0 {
		return 0
	}
	return c.distances[len(c.distances)-1]
}

// Len returns the number of control points.
func (c *Curve) Len() int { return len(c.points) }

// ControlPoints returns a copy of the curve's control points.
func (c *Curve) ControlPoints() []ControlPoint {
	return append([]ControlPoint(nil), c.points...)
}

// Start and End return the first and last control points.
func (c *Curve) Start() ControlPoint { return c.points[0] }
func (c *Curve) End() ControlPoint   { return c.points[len(c.points)-1] }

// locate finds the segment containing arc length s and the fraction along it.
func (c *Curve) locate(s float64) (int, float64) {
	n := len(c.points)
	if n < 2 {
		return 0, 0
	}
	s = mgl64.Clamp(s, 0, c.Length())
	i := sort.Search(n, func(k int) bool { return c.distances[k] > s }) - 1
	i = min(max(i, 0), n-2)
	span := c.distances[i+1] - c.distances[i]
	if span <= 0 {
		return i, 0
	}
	return i, (s - c.distances[i]) / span
}

// PointAt returns the position at arc length s, clamped to the curve.
func (c *Curve) PointAt(s float64) mgl64.Vec3 {
	if len(c.points) == 1 {
		return c.points[0].Position
	}
	i, f := c.locate(s)
	return lerp(c.points[i].Position, c.points[i+1].Position, f)
}

// TangentAt returns the unit tangent at arc length s.
func (c *Curve) TangentAt(s float64) mgl64.Vec3 {
	if len(c.points) == 1 {
		return c.points[0].Tangent
	}
	i, f := c.locate(s)
	return unit(lerp(c.points[i].Tangent, c.points[i+1].Tangent, f))
}

// CurvatureAt returns the unsigned curvature at arc length s.
func (c *Curve) CurvatureAt(s float64) float64 {
	if len(c.points) == 1 {
		return 0
	}
	i, f := c.locate(s)
	return c.curvatures[i] + f*(c.curvatures[i+1]-c.curvatures[i])
}

// MaxSpeedAt returns the baked speed limit at arc length s. It panics on an
// unbaked curve.
func (c *Curve) MaxSpeedAt(s float64) float64 {
	if c.maxSpeeds == nil {
		panic("curve: MaxSpeedAt called before CalculateMaxSpeeds")
	}
	if len(c.points) == 1 {
		return c.maxSpeeds[0]
	}
	i, f := c.locate(s)
	return c.maxSpeeds[i] + f*(c.maxSpeeds[i+1]-c.maxSpeeds[i])
}

// Baked reports whether CalculateMaxSpeeds has run.
func (c *Curve) Baked() bool { return c.maxSpeeds != nil }

// Duration is the baked time estimate, 0 before the bake.
func (c *Curve) Duration() float64 { return c.duration }

// Closest returns the arc length of the point on the curve nearest to p. Only
// arc lengths from hint-backtrack onwards are searched, so a follower keeps
// moving forward through self-intersecting routes. A negative hint searches
// the whole curve.
func (c *Curve) Closest(p mgl64.Vec3, hint float64) float64 {
	const backtrack = 200.0
	n := len(c.points)
	if n < 2 {
		return 0
	}
	from := 0
	if hint >= 0 {
		from, _ = c.locate(hint - backtrack)
	}

	best, bestDist := c.distances[from], math.Inf(1)
	for i := from; i < n-1; i++ {
		a, b := c.points[i].Position, c.points[i+1].Position
		ab := b.Sub(a)
		l2 := ab.LenSqr()
		t := 0.0
		if l2 > 0 {
			t = mgl64.Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
		}
		if d := p.Sub(a.Add(ab.Mul(t))).LenSqr(); d < bestDist {
			bestDist = d
			best = c.distances[i] + t*(c.distances[i+1]-c.distances[i])
		}
	}
	return best
}

// Points samples the curve every step uu, always including both ends.
func (c *Curve) Points(step float64) []mgl64.Vec3 {
	if len(c.points) == 0 {
		return nil
	}
	length := c.Length()
	if step <= 0 || length == 0 {
		return []mgl64.Vec3{c.points[0].Position}
	}
	out := make([]mgl64.Vec3, 0, int(length/step)+2)
	for s := 0.0; s < length; s += step {
		out = append(out, c.PointAt(s))
	}
	return append(out, c.End().Position)
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

func angleBetween(a, b mgl64.Vec3) float64 {
	return math.Atan2(a.Cross(b).Len(), a.Dot(b))
}
