package graph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/curve"
	"github.com/cxd309/strike-engine/internal/kinematics"
)

// lutStep is the integration step used to price table entries.
const lutStep = 1.0 / 30

// LocalLUT prices short moves without searching the graph. Entries are indexed
// by (distance bucket, bearing bucket, heading bucket) in the start frame: the
// car sits at the origin facing +x, the target lies at the given distance and
// bearing and must be reached facing the given heading. Each entry holds the
// arc-line-arc travel time in seconds, +Inf when no such path exists.
//
// A LocalLUT is immutable after NewLocalLUT.
type LocalLUT struct {
	maxDistance  float64
	distBuckets  int
	angleBuckets int
	radius       float64
	times        []float32
}

// NewLocalLUT builds a table for a car moving at speed, covering targets up to
// maxDistance away.
func NewLocalLUT(m kinematics.MotionModel, speed, maxDistance float64, distBuckets, angleBuckets int) *LocalLUT {
	t := &LocalLUT{
		maxDistance:  maxDistance,
		distBuckets:  distBuckets,
		angleBuckets: angleBuckets,
		radius:       1 / m.MaxCurvature(speed),
		times:        make([]float32, distBuckets*angleBuckets*angleBuckets),
	}
	for i := 0; i < distBuckets; i++ {
		d := (float64(i) + 0.5) * maxDistance / float64(distBuckets)
		for j := 0; j < angleBuckets; j++ {
			b := t.bucketAngle(j)
			target := mgl64.Vec3{d * math.Cos(b), d * math.Sin(b), 0}
			for k := 0; k < angleBuckets; k++ {
				h := t.bucketAngle(k)
				cost := math.Inf(1)
				path, ok := curve.ArcLineArc(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, t.radius,
					target, mgl64.Vec3{math.Cos(h), math.Sin(h), 0}, t.radius)
				if ok {
					cost = kinematics.TravelTime(m, path.Length, speed, m.VMax(), lutStep)
				}
				t.times[t.index(i, j, k)] = float32(cost)
			}
		}
	}
	return t
}

// Radius is the turning radius the table was built with.
func (t *LocalLUT) Radius() float64 { return t.radius }

// MaxDistance is the table's reach.
func (t *LocalLUT) MaxDistance() float64 { return t.maxDistance }

func (t *LocalLUT) index(i, j, k int) int {
	return (i*t.angleBuckets+j)*t.angleBuckets + k
}

func (t *LocalLUT) bucketAngle(j int) float64 {
	return float64(j)*2*math.Pi/float64(t.angleBuckets) - math.Pi
}

func (t *LocalLUT) angleBucket(a float64) int {
	n := float64(t.angleBuckets)
	j := int(math.Round((a + math.Pi) * n / (2 * math.Pi)))
	return ((j % t.angleBuckets) + t.angleBuckets) % t.angleBuckets
}

// Lookup returns the tabulated time from pos facing heading to target facing
// targetHeading. ok is false when the target is out of reach or the bucket
// holds no path.
func (t *LocalLUT) Lookup(pos, heading, target, targetHeading mgl64.Vec3) (float64, bool) {
	yaw := math.Atan2(heading.Y(), heading.X())
	rel := target.Sub(pos)
	c, s := math.Cos(-yaw), math.Sin(-yaw)
	x, y := c*rel.X()-s*rel.Y(), s*rel.X()+c*rel.Y()

	d := math.Hypot(x, y)
	if d >= t.maxDistance {
		return 0, false
	}
	i := int(d * float64(t.distBuckets) / t.maxDistance)
	j := t.angleBucket(math.Atan2(y, x))
	k := t.angleBucket(math.Atan2(targetHeading.Y(), targetHeading.X()) - yaw)

	v := float64(t.times[t.index(i, j, k)])
	if math.IsInf(v, 1) {
		return 0, false
	}
	return v, true
}
