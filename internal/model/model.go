// Package model holds the records the storage backends persist.
package model

import "time"

// Run is one scenario run.
type Run struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	ScenarioID string    `json:"scenarioId" gorm:"size:127;index:idx_run_scenario_id"`
	Grader     string    `json:"grader" gorm:"size:32"`
	RunTime    float64   `json:"runTime"`
	TimeStep   float64   `json:"timeStep"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (*Run) TableName() string {
	return "runs"
}

// SolveRecord is one optimizer search made during a run.
type SolveRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	RunID         string    `json:"runId" gorm:"size:36;index:idx_solve_run_id"`
	Run           Run       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:RunID"`
	Time          float64   `json:"time" gorm:"index:idx_solve_time"` // scenario seconds
	InterceptTime float64   `json:"interceptTime"`
	Solved        bool      `json:"solved"`
	Delay         float64   `json:"delay"`
	Duration      float64   `json:"duration"`
	Angle         float64   `json:"angle"`
	Simulations   int       `json:"simulations"`
	Touches       int       `json:"touches"`
	WheelClips    int       `json:"wheelClips"`
	GraderCalls   int       `json:"graderCalls"`
	BallSpeed     float64   `json:"ballSpeed"` // post-touch speed of the best candidate, 0 when unsolved
	CreatedAt     time.Time `json:"createdAt"`
}

func (*SolveRecord) TableName() string {
	return "solve_records"
}
