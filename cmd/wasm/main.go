//go:build js && wasm

// Command wasm runs strike scenarios in the browser. It registers one global:
//
//	runScenario(json) -> json | {error}
//
// The argument is a scenario: scenario_meta (scenario_id, run_time, time_step),
// the agent's car, the ball, optional other cars, gravity, a kinematics model,
// a grader and an optional external ball prediction. The result is the
// scenario log with the per-tick output rows, every strike search the agent
// ran and the first touch, if any. Nothing is recorded and no navigation
// graph is loaded, so long moves fall back to arc-line-arc paths.
package main

import (
	"syscall/js"

	"github.com/cxd309/strike-engine/internal/engine"
)

func main() {
	js.Global().Set("runScenario", js.FuncOf(runScenario))
	select {}
}

func runScenario(_ js.Value, args []js.Value) any {
	if len(args) == 0 || args[0].Type() != js.TypeString {
		return map[string]any{"error": "runScenario expects a JSON string"}
	}
	log, err := engine.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return log
}
