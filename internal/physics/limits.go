package physics

import (
	"math"
	"sort"
)

// curvePoint is one knot of a piecewise-linear lookup table.
type curvePoint struct {
	speed float64
	value float64
}

var throttleCurve = []curvePoint{
	{0, 1600},
	{1400, 160},
	{ThrottleSpeed, 0},
	{MaxCarVelocity, 0},
}

var curvatureCurve = []curvePoint{
	{0, 0.0069},
	{500, 0.00398},
	{1000, 0.00235},
	{1500, 0.001375},
	{1750, 0.0011},
	{MaxCarVelocity, 0.00088},
}

// ThrottleAcceleration returns the full-throttle forward acceleration at speed.
func ThrottleAcceleration(speed float64) float64 {
	return interpolate(throttleCurve, math.Abs(speed))
}

// MaxCurvature returns the tightest curvature (1/radius) a grounded car can hold at speed.
func MaxCurvature(speed float64) float64 {
	return interpolate(curvatureCurve, math.Abs(speed))
}

// SpeedForCurvature inverts MaxCurvature: the highest speed at which curvature k is
// still drivable. Curvatures tighter than the minimum turning radius return 0.
func SpeedForCurvature(k float64) float64 {
	k = math.Abs(k)
	if k <= MaxCurvature(MaxCarVelocity) {
		return MaxCarVelocity
	}
	if k >= MaxCurvature(0) {
		return 0
	}
	lo, hi := 0.0, MaxCarVelocity
	for i := 0; i < 50; i++ {
		mid := 0.5 * (lo + hi)
		if MaxCurvature(mid) >= k {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

func interpolate(table []curvePoint, x float64) float64 {
	if x <= table[0].speed {
		return table[0].value
	}
	last := table[len(table)-1]
	if x >= last.speed {
		return last.value
	}
	i := sort.Search(len(table), func(i int) bool { return table[i].speed > x })
	a, b := table[i-1], table[i]
	t := (x - a.speed) / (b.speed - a.speed)
	return a.value + t*(b.value-a.value)
}
