// Package memory keeps solve records in process memory.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cxd309/strike-engine/internal/model"
)

// Backend stores runs and their searches in maps.
type Backend struct {
	runs   map[string]*model.Run
	solves map[string][]model.SolveRecord // keyed by run ID
	mu     sync.RWMutex
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runs = make(map[string]*model.Run)
	b.solves = make(map[string][]model.SolveRecord)
	return nil
}

func (b *Backend) Close() error { return nil }

func (b *Backend) StartRun(r *model.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.runs == nil {
		return fmt.Errorf("memory backend not initialised")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if _, ok := b.runs[r.ID]; ok {
		return fmt.Errorf("run %s already started", r.ID)
	}
	run := *r
	b.runs[r.ID] = &run
	return nil
}

func (b *Backend) RecordSolve(s *model.SolveRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.runs[s.RunID]; !ok {
		return fmt.Errorf("unknown run %q", s.RunID)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	b.solves[s.RunID] = append(b.solves[s.RunID], *s)
	return nil
}

func (b *Backend) Solves(runID string) ([]model.SolveRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.runs[runID]; !ok {
		return nil, fmt.Errorf("unknown run %q", runID)
	}
	out := make([]model.SolveRecord, len(b.solves[runID]))
	copy(out, b.solves[runID])
	return out, nil
}
