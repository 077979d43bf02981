package main

import (
	"github.com/cxd309/strike-engine/internal/config"
	"github.com/cxd309/strike-engine/internal/engine"
	"github.com/cxd309/strike-engine/internal/graph"
	"github.com/cxd309/strike-engine/internal/optimizer"
)

func optimizerSettings(c config.OptimizerConfig) optimizer.Settings {
	return optimizer.Settings{
		Durations:   c.Durations,
		DelayStep:   c.DelayStep,
		AngleStep:   c.AngleStep,
		AngleSteps:  c.AngleSteps,
		LongWindow:  c.LongWindow,
		TimeBudget:  c.TimeBudget,
		ArenaMargin: c.ArenaMargin,
	}
}

func agentSettings(c config.AgentConfig) engine.AgentSettings {
	return engine.AgentSettings{
		StrikeWindow:      c.StrikeWindow,
		SolveInterval:     c.SolveInterval,
		ReplanInterval:    c.ReplanInterval,
		PredictionHorizon: c.PredictionHorizon,
		MaxStrikeHeight:   c.MaxStrikeHeight,
		RouteDistance:     c.RouteDistance,
		RecoveryTime:      c.RecoveryTime,
	}
}

// navigatorOptions leaves Step and Model zero so the navigator fills them.
func navigatorOptions(c config.NavigationConfig) graph.Options {
	return graph.Options{
		TopSpeed:       c.TopSpeed,
		HeuristicSlack: c.HeuristicSlack,
		MaxWeight:      c.MaxWeight,
		LocalRange:     c.LocalRange,
		LocalSpeed:     c.LocalSpeed,
	}
}
