package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/strike-engine/internal/config"
	"github.com/cxd309/strike-engine/internal/model"
	"github.com/cxd309/strike-engine/internal/storage"
)

func TestNewBackend_UnknownType(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestBackends_RecordAndReadSolves(t *testing.T) {
	cases := map[string]config.StorageConfig{
		"memory":        {Type: "memory"},
		"sqlite":        {Type: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "solves.db")}},
		"sqlite-memory": {Type: "sqlite"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := storage.NewBackend(cfg)
			require.NoError(t, err)
			require.NoError(t, b.Init())
			t.Cleanup(func() { _ = b.Close() })

			run := &model.Run{ScenarioID: "kickoff-left", Grader: "ball_speed", RunTime: 2, TimeStep: 1.0 / 120}
			require.NoError(t, b.StartRun(run))
			require.Len(t, run.ID, 36)

			first := &model.SolveRecord{RunID: run.ID, Time: 0.5, InterceptTime: 0.6, Simulations: 90}
			second := &model.SolveRecord{RunID: run.ID, Time: 0.6, InterceptTime: 0.5, Solved: true,
				Delay: 0.3, Duration: 0.05, Angle: -0.2, Simulations: 80, Touches: 12, GraderCalls: 11, BallSpeed: 1850}
			require.NoError(t, b.RecordSolve(first))
			require.NoError(t, b.RecordSolve(second))
			assert.NotEmpty(t, first.ID)
			assert.NotEqual(t, first.ID, second.ID)

			got, err := b.Solves(run.ID)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, first.ID, got[0].ID)
			assert.False(t, got[0].Solved)
			assert.True(t, got[1].Solved)
			assert.Equal(t, 0.3, got[1].Delay)
			assert.Equal(t, 11, got[1].GraderCalls)
			assert.Equal(t, 1850.0, got[1].BallSpeed)
		})
	}
}
