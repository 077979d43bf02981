package curve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultStep is the control point spacing builders use when given step <= 0.
const DefaultStep = 25.0

// Line samples the straight segment from one point to another.
func Line(from, to mgl64.Vec3, step float64) []ControlPoint {
	if step <= 0 {
		step = DefaultStep
	}
	d := to.Sub(from)
	length := d.Len()
	if length < 1e-9 {
		return []ControlPoint{{Position: from, Normal: up}}
	}
	t := d.Mul(1 / length)
	n := max(1, int(math.Ceil(length/step)))
	out := make([]ControlPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, ControlPoint{
			Position: lerp(from, to, float64(i)/float64(n)),
			Tangent:  t,
			Normal:   up,
		})
	}
	return out
}

// Arc samples a circular arc around center starting at start. A positive sweep
// turns counter-clockwise.
func Arc(center, start mgl64.Vec3, sweep, step float64) []ControlPoint {
	if step <= 0 {
		step = DefaultStep
	}
	r := math.Hypot(start.X()-center.X(), start.Y()-center.Y())
	a0 := math.Atan2(start.Y()-center.Y(), start.X()-center.X())
	sense := 1.0
	if sweep < 0 {
		sense = -1
	}
	n := max(1, int(math.Ceil(math.Abs(sweep)*r/step)))
	out := make([]ControlPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		out = append(out, ControlPoint{
			Position: mgl64.Vec3{center.X() + r*math.Cos(a), center.Y() + r*math.Sin(a), start.Z()},
			Tangent:  mgl64.Vec3{-math.Sin(a) * sense, math.Cos(a) * sense, 0},
			Normal:   up,
		})
	}
	return out
}

// Join concatenates point runs, dropping a run's first point when it repeats
// the previous run's last one.
func Join(parts ...[]ControlPoint) []ControlPoint {
	var out []ControlPoint
	for _, part := range parts {
		for i, p := range part {
			if i == 0 && len(out) > 0 && out[len(out)-1].Position.Sub(p.Position).Len() < 1e-6 {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// Polyline joins straight runs through waypoints.
func Polyline(waypoints []mgl64.Vec3, step float64) []ControlPoint {
	if len(waypoints) == 1 {
		return []ControlPoint{{Position: waypoints[0], Normal: up}}
	}
	var parts [][]ControlPoint
	for i := 1; i < len(waypoints); i++ {
		parts = append(parts, Line(waypoints[i-1], waypoints[i], step))
	}
	return Join(parts...)
}

// Dubins is an arc-line-arc connection between two oriented points.
type Dubins struct {
	Start, End             mgl64.Vec3
	StartCenter, EndCenter mgl64.Vec3
	StartRadius, EndRadius float64
	StartSweep, EndSweep   float64 // signed, positive counter-clockwise
	LineStart, LineEnd     mgl64.Vec3
	Length                 float64
}

// ArcLineArc finds the shortest turn-straight-turn path from p1 heading t1 to p2
// heading t2 over the four turn sense combinations. ok is false when no
// combination is feasible.
func ArcLineArc(p1, t1 mgl64.Vec3, r1 float64, p2, t2 mgl64.Vec3, r2 float64) (Dubins, bool) {
	t1, t2 = unit(flat(t1)), unit(flat(t2))
	if t1 == (mgl64.Vec3{}) || t2 == (mgl64.Vec3{}) {
		return Dubins{}, false
	}

	best, found := Dubins{Length: math.Inf(1)}, false
	for _, s1 := range []float64{1, -1} {
		for _, s2 := range []float64{1, -1} {
			d, ok := csc(p1, t1, r1, s1, p2, t2, r2, s2)
			if ok && d.Length < best.Length {
				best, found = d, true
			}
		}
	}
	return best, found
}

// csc solves one turn sense combination. A circle of sense s touching point q
// with tangent u has its centre at q + s·r·left(u).
func csc(p1, t1 mgl64.Vec3, r1, s1 float64, p2, t2 mgl64.Vec3, r2, s2 float64) (Dubins, bool) {
	c1 := p1.Add(left(t1).Mul(s1 * r1))
	c2 := p2.Add(left(t2).Mul(s2 * r2))
	dv := flat(c2.Sub(c1))
	d2 := dv.LenSqr()
	k := s2*r2 - s1*r1
	if d2 < 1e-9 || d2 < k*k {
		return Dubins{}, false
	}
	l := math.Sqrt(d2 - k*k)
	u := mgl64.Vec3{(l*dv.X() + k*dv.Y()) / d2, (l*dv.Y() - k*dv.X()) / d2, 0}

	q1 := c1.Sub(left(u).Mul(s1 * r1))
	q2 := c2.Sub(left(u).Mul(s2 * r2))
	q1[2], q2[2] = p1.Z(), p2.Z()

	sweep1 := Sweep(c1, p1, q1, s1)
	sweep2 := Sweep(c2, q2, p2, s2)
	return Dubins{
		Start:       p1,
		End:         p2,
		StartCenter: c1,
		EndCenter:   c2,
		StartRadius: r1,
		EndRadius:   r2,
		StartSweep:  sweep1,
		EndSweep:    sweep2,
		LineStart:   q1,
		LineEnd:     q2,
		Length:      math.Abs(sweep1)*r1 + l + math.Abs(sweep2)*r2,
	}, true
}

// Sweep is the signed angle travelled around center from a to b in direction
// sense (+1 counter-clockwise), in (-2π, 2π).
func Sweep(center, a, b mgl64.Vec3, sense float64) float64 {
	from := math.Atan2(a.Y()-center.Y(), a.X()-center.X())
	to := math.Atan2(b.Y()-center.Y(), b.X()-center.X())
	diff := math.Mod(sense*(to-from), 2*math.Pi)
	if diff < 0 {
		diff += 2 * math.Pi
	}
	if diff > 2*math.Pi-1e-9 {
		diff = 0
	}
	return sense * diff
}

// Points samples the path every step uu.
func (d Dubins) Points(step float64) []ControlPoint {
	return Join(
		Arc(d.StartCenter, d.Start, d.StartSweep, step),
		Line(d.LineStart, d.LineEnd, step),
		Arc(d.EndCenter, d.LineEnd, d.EndSweep, step),
	)
}

func flat(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), v.Y(), 0}
}
