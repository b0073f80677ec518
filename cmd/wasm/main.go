//go:build js && wasm

// Command wasm exposes the reflex engine to the browser via WebAssembly.
// After loading, it registers a global JavaScript function:
//
//	runSimulation(jsonString) -> jsonString
//
// The input and output are JSON-encoded SimulationInput and SimulationLog
// respectively, the same contract the reflexarc simulate command uses.
package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"github.com/cxd309/reflex-engine/internal/engine"
	"github.com/cxd309/reflex-engine/internal/logging"
)

// logger writes to stderr, which the Go wasm runtime forwards to the
// browser console.
var logger *slog.Logger

func main() {
	logger = logging.NewLogger("info", os.Stderr)
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String(), logger)
	if err != nil {
		logger.Error("simulation failed", "error", err)
		return map[string]any{"error": err.Error()}
	}
	return result
}
