// Package kinematics defines the MotionModel interface for the longitudinal and
// turning limits of a grounded car, along with built-in implementations.
//
// Curves bake their speed profiles against a MotionModel, and the navigation
// graph prices its local moves with one, so adding a new model only requires
// implementing MotionModel and registering it in Decode below.
package kinematics

import (
	"encoding/json"
	"fmt"
	"math"
)

// MotionModel is the contract every kinematics implementation must satisfy.
// Distances are in unreal units (uu), speeds in uu/s and time in seconds.
type MotionModel interface {
	// VMax returns the car's maximum speed.
	VMax() float64

	// Acceleration returns the full-throttle forward acceleration at speed v.
	Acceleration(v float64, boost bool) float64

	// BrakingDistanceTo returns the distance needed to slow from v to targetV.
	// Returns 0 if v ≤ targetV.
	BrakingDistanceTo(v, targetV float64) float64

	// SpeedAfterAccelerating returns the speed reached after dist uu at full throttle from v.
	SpeedAfterAccelerating(v, dist float64, boost bool) float64

	// SpeedBeforeBraking returns the highest speed from which braking over dist uu
	// still reaches v.
	SpeedBeforeBraking(v, dist float64) float64

	// AccelerateStep advances the car toward targetV over dt seconds without boost.
	// Returns (distance travelled, new velocity).
	AccelerateStep(v, targetV, dt float64) (dist, newV float64)

	// DecelerateStep brakes the car toward targetV (≥ 0) over dt seconds.
	// Returns (distance travelled, new velocity).
	DecelerateStep(v, targetV, dt float64) (dist, newV float64)

	// MaxCurvature returns the tightest drivable curvature (1/radius) at speed v.
	MaxCurvature(v float64) float64

	// SpeedForCurvature is the inverse of MaxCurvature.
	SpeedForCurvature(k float64) float64

	// BoostRate returns boost consumed per second while boosting.
	BoostRate() float64
}

// kinematicsDisc is the minimum JSON structure needed to read the model discriminator.
type kinematicsDisc struct {
	Model string `json:"model"`
}

// Decode selects a MotionModel from a JSON object carrying a "model" discriminator.
// The rest of the object is forwarded to that implementation's own unmarshaler.
// An empty document selects the ground model.
//
// Supported models:
//   - "ground": the target game's throttle, boost and turning tables.
//   - "constant": fixed a_acc / a_dcc rates.
func Decode(data json.RawMessage) (MotionModel, error) {
	if len(data) == 0 || string(data) == "null" {
		return GroundModel{}, nil
	}

	var disc kinematicsDisc
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, fmt.Errorf("reading kinematics model discriminator: %w", err)
	}

	switch disc.Model {
	case GroundModelName, "":
		var m GroundModel
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing %q kinematics: %w", GroundModelName, err)
		}
		return m, nil
	case ConstantModelName:
		var m ConstantAcceleration
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing %q kinematics: %w", ConstantModelName, err)
		}
		if m.VMaxVal <= 0 {
			return nil, fmt.Errorf("%q kinematics: v_max must be positive", ConstantModelName)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown kinematics model %q", disc.Model)
	}
}

// TravelTime estimates the seconds needed to cover dist starting at v0 and
// arriving at no more than vEnd, by stepping the model at dt.
func TravelTime(m MotionModel, dist, v0, vEnd, dt float64) float64 {
	if dist <= 0 {
		return 0
	}
	v, t, covered := v0, 0.0, 0.0
	vmax := m.VMax()
	for covered < dist-1e-6 {
		var step float64
		if m.BrakingDistanceTo(v, vEnd) >= dist-covered {
			step, v = m.DecelerateStep(v, vEnd, dt)
		} else {
			step, v = m.AccelerateStep(v, vmax, dt)
		}
		if step <= 0 {
			return math.Inf(1)
		}
		covered += step
		t += dt
	}
	return t
}
