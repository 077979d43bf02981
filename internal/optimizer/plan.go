// Package optimizer searches strike parameters by simulating each candidate
// against the ball and letting a Grader pick the best outcome.
//
// The search is a sequential grid over jump duration, jump delay and the
// dodge angle offset. Every candidate forks the car and ball by value and
// replays the simulator at the tick rate, so nothing outside Solve changes
// except the caller's DodgePlan.
package optimizer

import (
	"fmt"
	"math"
)

// InertDelay is the delay of a plan that must never fire.
const InertDelay = 1e6

// DodgePlan is a strike: drive for Delay seconds, hold jump for Duration, then
// dodge at Angle radians off the direct line to the ball (positive to the
// left).
type DodgePlan struct {
	Delay    float64 `json:"delay"`
	Duration float64 `json:"duration"`
	Angle    float64 `json:"angle"`
	Solved   bool    `json:"solved"`
}

// Reset makes the plan inert.
func (p *DodgePlan) Reset() {
	*p = DodgePlan{Delay: InertDelay}
}

// Inert reports whether the plan will never jump.
func (p DodgePlan) Inert() bool {
	return p.Delay >= InertDelay
}

func (p DodgePlan) String() string {
	if p.Inert() {
		return "inert"
	}
	return fmt.Sprintf("delay=%.3fs duration=%.3fs angle=%.1f°", p.Delay, p.Duration, p.Angle*180/math.Pi)
}
