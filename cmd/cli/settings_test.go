package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/strike-engine/internal/config"
	"github.com/cxd309/strike-engine/internal/engine"
	"github.com/cxd309/strike-engine/internal/graph"
	"github.com/cxd309/strike-engine/internal/optimizer"
)

func loadDefaults(t *testing.T) config.Settings {
	t.Helper()
	t.Cleanup(viper.Reset)
	require.NoError(t, config.Load(""))
	s, err := config.Get()
	require.NoError(t, err)
	return s
}

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	s := loadDefaults(t)

	assert.Equal(t, optimizer.DefaultSettings(), optimizerSettings(s.Optimizer))
	assert.Equal(t, engine.DefaultAgentSettings(), agentSettings(s.Agent))

	nav := navigatorOptions(s.Navigation)
	d := graph.DefaultOptions()
	assert.Equal(t, d.TopSpeed, nav.TopSpeed)
	assert.Equal(t, d.HeuristicSlack, nav.HeuristicSlack)
	assert.Equal(t, d.MaxWeight, nav.MaxWeight)
	assert.Equal(t, d.LocalRange, nav.LocalRange)
	assert.Equal(t, d.LocalSpeed, nav.LocalSpeed)
	assert.Equal(t, 30*time.Second, s.Navigation.WaitTimeout)
}

func TestNavigatorOptions_FromOverrides(t *testing.T) {
	t.Setenv("STRIKE_NAVIGATION_TOPSPEED", "1800.5")
	t.Setenv("STRIKE_NAVIGATION_LOCALRANGE", "0")
	s := loadDefaults(t)

	opts := navigatorOptions(s.Navigation)
	assert.Equal(t, 1800.5, opts.TopSpeed)
	assert.Zero(t, opts.LocalRange)

	ds := graph.Synthetic(graph.SyntheticOptions{
		Cols: 3, Rows: 3, Spacing: 500, Directions: 8, Height: 17, Speed: 1400, TurnPenalty: 0.2,
	})
	nav, err := graph.NewNavigator(ds, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 9*8, nav.Graph().NumVertices())
}
