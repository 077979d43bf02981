package kinematics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/strike-engine/internal/physics"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MotionModel
		wantErr bool
	}{
		{name: "empty selects ground", input: "", want: GroundModel{}},
		{name: "ground", input: `{"model":"ground","no_boost":true}`, want: GroundModel{NoBoost: true}},
		{
			name:  "constant",
			input: `{"model":"constant","a_acc":1000,"a_dcc":3000,"v_max":2000,"min_radius":200}`,
			want:  ConstantAcceleration{AAcc: 1000, ADcc: 3000, VMaxVal: 2000, MinRadius: 200},
		},
		{name: "constant without v_max", input: `{"model":"constant","a_acc":1000}`, wantErr: true},
		{name: "unknown", input: `{"model":"hover"}`, wantErr: true},
		{name: "malformed", input: `{"model":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(json.RawMessage(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroundModel_MatchesPhysicsTables(t *testing.T) {
	g := GroundModel{}
	assert.Equal(t, physics.ThrottleAcceleration(500), g.Acceleration(500, false))
	assert.Equal(t, physics.ThrottleAcceleration(500)+physics.BoostAccel, g.Acceleration(500, true))
	assert.Equal(t, 0.0, g.Acceleration(physics.MaxCarVelocity, true))
	assert.Equal(t, physics.MaxCurvature(1200), g.MaxCurvature(1200))
	assert.Equal(t, physics.ThrottleAcceleration(500), GroundModel{NoBoost: true}.Acceleration(500, true))
}

func TestBrakingRoundTrip(t *testing.T) {
	models := []MotionModel{
		GroundModel{},
		ConstantAcceleration{AAcc: 1000, ADcc: 3000, VMaxVal: 2000},
	}
	for _, m := range models {
		v := m.SpeedBeforeBraking(500, 300)
		assert.InDelta(t, 300, m.BrakingDistanceTo(v, 500), 1e-6)
		assert.Zero(t, m.BrakingDistanceTo(400, 500))
	}
}

func TestSpeedAfterAccelerating_NeverExceedsVMax(t *testing.T) {
	g := GroundModel{}
	assert.LessOrEqual(t, g.SpeedAfterAccelerating(2200, 10000, true), physics.MaxCarVelocity)
	assert.Greater(t, g.SpeedAfterAccelerating(0, 100, false), 0.0)
	assert.Greater(t, g.SpeedAfterAccelerating(0, 100, true), g.SpeedAfterAccelerating(0, 100, false))
}

func TestConstantAcceleration_Curvature(t *testing.T) {
	c := ConstantAcceleration{ALat: 2000, MinRadius: 100, VMaxVal: 2300}
	assert.Equal(t, 0.01, c.MaxCurvature(0))
	assert.InDelta(t, 2000.0/(1000*1000), c.MaxCurvature(1000), 1e-12)
	assert.InDelta(t, 1000, c.SpeedForCurvature(c.MaxCurvature(1000)), 1e-6)
	assert.Zero(t, c.SpeedForCurvature(0.02))
	assert.Equal(t, 2300.0, c.SpeedForCurvature(0))
}

func TestAccelerateStep_ReachesTargetMidStep(t *testing.T) {
	c := ConstantAcceleration{AAcc: 1000, ADcc: 1000, VMaxVal: 2000}
	dist, v := c.AccelerateStep(990, 1000, 0.1)
	assert.Equal(t, 1000.0, v)
	assert.InDelta(t, 990*0.01+0.5*1000*0.0001+1000*0.09, dist, 1e-9)
}

func TestTravelTime(t *testing.T) {
	c := ConstantAcceleration{AAcc: 1000, ADcc: 1000, VMaxVal: 1000}
	// 1 s up to v_max over 500 uu, 1 s cruising, 1 s braking over the last 500 uu.
	got := TravelTime(c, 2000, 0, 0, 1.0/120)
	assert.InDelta(t, 3.0, got, 0.05)
	assert.Zero(t, TravelTime(c, 0, 0, 0, 1.0/120))
}
