package prediction

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/strike-engine/internal/physics"
)

func TestPredict(t *testing.T) {
	ball := physics.NewBall(mgl64.Vec3{0, 0, 1000})
	ball.Time = 10
	p := Predict(ball, physics.DefaultGravity, 1, physics.TickDT)

	require.Equal(t, 121, p.Len())
	assert.InDelta(t, 10, p.Start(), 1e-9)
	assert.InDelta(t, 11, p.End(), 1e-6)
	assert.Equal(t, ball.Position, p.Slices()[0].Position)

	s, ok := p.After(0.5)
	require.True(t, ok)
	assert.InDelta(t, 10.5, s.Time, physics.TickDT/2)
	assert.Less(t, s.Position.Z(), 1000.0)
	assert.Less(t, s.Velocity.Z(), 0.0)
}

func TestAt_NearestAndBounds(t *testing.T) {
	p := New([]Slice{{Time: 2}, {Time: 0}, {Time: 1}})
	assert.Equal(t, 0.0, p.Start())

	s, ok := p.At(0.4)
	assert.True(t, ok)
	assert.Equal(t, 0.0, s.Time)

	s, ok = p.At(0.6)
	assert.True(t, ok)
	assert.Equal(t, 1.0, s.Time)

	s, ok = p.At(5)
	assert.False(t, ok)
	assert.Equal(t, 2.0, s.Time)

	_, ok = p.At(-1)
	assert.False(t, ok)

	_, ok = (*Prediction)(nil).At(0)
	assert.False(t, ok)
}

func TestFind(t *testing.T) {
	ball := physics.NewBall(mgl64.Vec3{0, 0, 500})
	p := Predict(ball, physics.DefaultGravity, 2, physics.TickDT)
	s, ok := p.Find(func(s Slice) bool { return s.Position.Z() < 200 })
	require.True(t, ok)
	assert.Greater(t, s.Time, 0.5)

	_, ok = p.Find(func(s Slice) bool { return s.Position.Z() > 5000 })
	assert.False(t, ok)
}

func TestMerge_PrefersPrimaryInsideItsSpan(t *testing.T) {
	fine := New([]Slice{
		{Time: 0, Position: mgl64.Vec3{1, 0, 0}},
		{Time: 0.5, Position: mgl64.Vec3{1, 0, 0}},
		{Time: 1, Position: mgl64.Vec3{1, 0, 0}},
	})
	coarse := New([]Slice{
		{Time: 0, Position: mgl64.Vec3{2, 0, 0}},
		{Time: 2, Position: mgl64.Vec3{2, 0, 0}},
		{Time: 4, Position: mgl64.Vec3{2, 0, 0}},
	})

	m := Merge(fine, coarse, 2)
	require.Equal(t, 9, m.Len())
	for _, s := range m.Slices() {
		want := 2.0
		if s.Time <= 1 {
			want = 1
		}
		assert.Equal(t, want, s.Position.X(), "t=%g", s.Time)
	}
	assert.InDelta(t, 4, m.End(), 1e-9)
}

func TestMerge_EmptySide(t *testing.T) {
	a := New([]Slice{{Time: 1}})
	assert.Equal(t, 1, Merge(a, nil, 120).Len())
	assert.Equal(t, 1, Merge(nil, a, 120).Len())
}

func TestSlice_BallRoundTrip(t *testing.T) {
	b := physics.NewBall(mgl64.Vec3{1, 2, 300})
	b.Velocity = mgl64.Vec3{10, 0, 0}
	b.Time = 3
	got := SliceOf(b).Ball()
	assert.Equal(t, b.Position, got.Position)
	assert.Equal(t, b.Velocity, got.Velocity)
	assert.Equal(t, b.Time, got.Time)
}
