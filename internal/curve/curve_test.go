package curve

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/strike-engine/internal/kinematics"
	"github.com/cxd309/strike-engine/internal/physics"
)

func TestNewCurve_ArcLength(t *testing.T) {
	c := NewCurve(Line(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1000, 0, 0}, 30))
	assert.InDelta(t, 1000, c.Length(), 1e-9)
	assert.InDelta(t, 250, c.PointAt(250).X(), 1e-9)
	assert.Equal(t, mgl64.Vec3{1000, 0, 0}, c.PointAt(5000), "arc length is clamped")
	assert.InDelta(t, 1, c.TangentAt(500).X(), 1e-9)
	assert.InDelta(t, 0, c.CurvatureAt(500), 1e-9)
}

func TestNewCurve_DropsDuplicatesAndFillsTangents(t *testing.T) {
	c := NewCurve([]ControlPoint{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{0, 100, 0}},
	})
	require.Equal(t, 2, c.Len())
	assert.InDelta(t, 1, c.TangentAt(0).Y(), 1e-9)
	assert.Equal(t, up, c.Start().Normal)
}

func TestCurvatureOfArc(t *testing.T) {
	c := NewCurve(Arc(mgl64.Vec3{}, mgl64.Vec3{500, 0, 0}, math.Pi, 20))
	assert.InDelta(t, math.Pi*500, c.Length(), 2)
	assert.InDelta(t, 1.0/500, c.CurvatureAt(c.Length()/2), 1e-5)
}

func TestClosest(t *testing.T) {
	c := NewCurve(Line(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1000, 0, 0}, 50))
	assert.InDelta(t, 420, c.Closest(mgl64.Vec3{420, 300, 0}, -1), 1e-9)
	assert.InDelta(t, 0, c.Closest(mgl64.Vec3{-100, 0, 0}, -1), 1e-9)
	assert.InDelta(t, 1000, c.Closest(mgl64.Vec3{2000, 0, 0}, 900), 1e-9)
}

func TestMaxSpeedAt_PanicsBeforeBake(t *testing.T) {
	c := NewCurve(Line(mgl64.Vec3{}, mgl64.Vec3{100, 0, 0}, 10))
	assert.Panics(t, func() { c.MaxSpeedAt(10) })
}

func TestCalculateMaxSpeeds_ProfileIsFeasible(t *testing.T) {
	d, ok := ArcLineArc(
		mgl64.Vec3{0, 0, physics.CarRestHeight}, mgl64.Vec3{1, 0, 0}, 400,
		mgl64.Vec3{2500, 1500, physics.CarRestHeight}, mgl64.Vec3{0, -1, 0}, 400,
	)
	require.True(t, ok)
	c := NewCurve(d.Points(20))
	m := kinematics.GroundModel{}

	duration, err := c.CalculateMaxSpeeds(800, -1, 50, m)
	require.NoError(t, err)
	assert.Greater(t, duration, 0.0)

	speeds, dists := c.Speeds(), c.Distances()
	require.Len(t, speeds, c.Len())
	accel := m.Acceleration(0, true)
	for i := 0; i+1 < len(speeds); i++ {
		ds := dists[i+1] - dists[i]
		v0, v1 := speeds[i], speeds[i+1]
		assert.LessOrEqual(t, v1*v1-v0*v0, 2*accel*ds+1e-6, "acceleration at point %d", i)
		assert.LessOrEqual(t, v0*v0-v1*v1, 2*physics.BrakeAccel*ds+1e-6, "braking at point %d", i)
		assert.LessOrEqual(t, v0, physics.MaxCarVelocity)
	}
	assert.LessOrEqual(t, speeds[0], 800.0)
}

func TestCalculateMaxSpeeds_ClosedForm(t *testing.T) {
	c := NewCurve(Line(mgl64.Vec3{}, mgl64.Vec3{2000, 0, 0}, 25))
	m := kinematics.ConstantAcceleration{AAcc: 1000, ADcc: 1000, VMaxVal: 1000}

	// 1 s to reach v_max over 500 uu, then 1500 uu at v_max.
	duration, err := c.CalculateMaxSpeeds(0, -1, 0, m)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, duration, 1e-6)
	assert.InDelta(t, 1000, c.MaxSpeedAt(1000), 1e-9)
}

func TestCalculateMaxSpeeds_ArrivalSpeed(t *testing.T) {
	c := NewCurve(Line(mgl64.Vec3{}, mgl64.Vec3{3000, 0, 0}, 25))
	_, err := c.CalculateMaxSpeeds(1400, 0, 100, kinematics.GroundModel{})
	require.NoError(t, err)
	speeds := c.Speeds()
	assert.Zero(t, speeds[len(speeds)-1])
	assert.Greater(t, c.MaxSpeedAt(1500), 1400.0, "boost carries the car above throttle speed")
}

func TestCalculateMaxSpeeds_ClipsUnreachableStart(t *testing.T) {
	c := NewCurve(Arc(mgl64.Vec3{}, mgl64.Vec3{200, 0, 0}, math.Pi, 10))
	_, err := c.CalculateMaxSpeeds(5000, -1, 0, kinematics.GroundModel{})
	require.NoError(t, err)
	assert.Less(t, c.Speeds()[0], physics.SpeedForCurvature(1.0/200)+1)
}

func TestCalculateMaxSpeeds_AlreadyBaked(t *testing.T) {
	c := NewCurve(Line(mgl64.Vec3{}, mgl64.Vec3{500, 0, 0}, 25))
	first, err := c.CalculateMaxSpeeds(0, -1, 0, kinematics.GroundModel{})
	require.NoError(t, err)

	second, err := c.CalculateMaxSpeeds(1000, -1, 100, kinematics.GroundModel{})
	assert.ErrorIs(t, err, ErrAlreadyBaked)
	assert.Equal(t, first, second)
}

func TestCalculateMaxSpeeds_TooShort(t *testing.T) {
	c := NewCurve([]ControlPoint{{Position: mgl64.Vec3{1, 2, 3}}})
	_, err := c.CalculateMaxSpeeds(0, -1, 0, kinematics.GroundModel{})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestTangentPoint_MatchesTurnSense(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	heading := mgl64.Vec3{-1, 0, 0}
	center := mgl64.Vec3{-1000, 500, 0}

	a, b, ok := TangentPoints(pos, center, 300)
	require.True(t, ok)
	assert.InDelta(t, a.Len(), b.Len(), 1e-6, "both candidates are equally far")

	got, ok := TangentPoint(pos, heading, 0, center, 300)
	require.True(t, ok)
	assert.InDelta(t, -1057.3, got.X(), 0.1)
	assert.InDelta(t, 205.5, got.Y(), 0.1)
	assert.InDelta(t, 300, got.Sub(center).Len(), 1e-6)
}

func TestTangentPoint_FallsBackToYawRate(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	heading := mgl64.Vec3{1, 0, 0}
	center := mgl64.Vec3{1000, 0, 0}

	assert.Equal(t, 1.0, TurnSense(pos, heading, 0, center))
	assert.Equal(t, -1.0, TurnSense(pos, heading, -0.5, center))

	right, ok := TangentPoint(pos, heading, -0.5, center, 300)
	require.True(t, ok)
	assert.Greater(t, right.Y(), 0.0, "a clockwise orbit joins on the left side of the circle")
}

func TestTangentPoint_InsideCircle(t *testing.T) {
	_, ok := TangentPoint(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{1, 0, 0}, 0, mgl64.Vec3{}, 300)
	assert.False(t, ok)
}

func TestArcLineArc(t *testing.T) {
	p1, t1 := mgl64.Vec3{0, 0, 17}, mgl64.Vec3{1, 0, 0}
	p2, t2 := mgl64.Vec3{1500, 1000, 17}, mgl64.Vec3{0, 1, 0}

	d, ok := ArcLineArc(p1, t1, 300, p2, t2, 300)
	require.True(t, ok)

	pts := d.Points(20)
	require.NotEmpty(t, pts)
	assert.True(t, pts[0].Position.ApproxEqualThreshold(p1, 1e-6))
	assert.True(t, pts[len(pts)-1].Position.ApproxEqualThreshold(p2, 1e-6))
	assert.Greater(t, pts[len(pts)-1].Tangent.Dot(t2), 0.99)

	c := NewCurve(pts)
	assert.InDelta(t, d.Length, c.Length(), d.Length*0.01)
	assert.GreaterOrEqual(t, d.Length, p2.Sub(p1).Len())
}

func TestArcLineArc_StraightAhead(t *testing.T) {
	d, ok := ArcLineArc(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 200, mgl64.Vec3{1000, 0, 0}, mgl64.Vec3{1, 0, 0}, 200)
	require.True(t, ok)
	assert.InDelta(t, 1000, d.Length, 1e-6)
}

func TestArcLineArc_DegenerateHeading(t *testing.T) {
	_, ok := ArcLineArc(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 200, mgl64.Vec3{1000, 0, 0}, mgl64.Vec3{1, 0, 0}, 200)
	assert.False(t, ok)
}
