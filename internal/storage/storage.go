// Package storage records optimizer searches for offline analysis.
package storage

import "github.com/cxd309/strike-engine/internal/model"

// Backend is the interface all storage implementations must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StartRun registers a run. An empty ID is assigned.
	StartRun(r *model.Run) error

	// RecordSolve stores one search. An empty ID is assigned.
	RecordSolve(s *model.SolveRecord) error

	// Solves returns the searches of a run in recording order.
	Solves(runID string) ([]model.SolveRecord, error)
}
