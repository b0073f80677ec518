package engine

import (
	"github.com/paulmach/orb"

	"github.com/cxd309/reflex-engine/internal/impulse"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
}

// ImpulseConfig is the starting speed and synapse delays. Zero values fall
// back to the demo defaults.
type ImpulseConfig struct {
	Speed  float64        `json:"speed,omitempty"`  // distance units per second
	Delay1 *float64       `json:"delay1,omitempty"` // seconds
	Delay2 *float64       `json:"delay2,omitempty"` // seconds
	Limits impulse.Limits `json:"limits"`
}

// Action names a control applied to the impulse at a scheduled time.
type Action string

const (
	ActionStart       Action = "start"
	ActionTogglePause Action = "toggle_pause"
	ActionReset       Action = "reset"
	ActionSetSpeed    Action = "set_speed"
	ActionSetDelay1   Action = "set_delay1"
	ActionSetDelay2   Action = "set_delay2"
	ActionSpeedUp     Action = "speed_up"
	ActionSpeedDown   Action = "speed_down"
	ActionDelay1Up    Action = "delay1_up"
	ActionDelay1Down  Action = "delay1_down"
	ActionDelay2Up    Action = "delay2_up"
	ActionDelay2Down  Action = "delay2_down"
)

// Command applies Action at the first frame whose time is at or after At.
// Value is only read by the set_* actions.
type Command struct {
	At     float64 `json:"at"` // seconds
	Action Action  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta     SimulationMeta `json:"simulation_meta"`
	Impulse  ImpulseConfig  `json:"impulse"`
	Commands []Command      `json:"commands"`
}

// ImpulseLog is a point-in-time snapshot of the impulse.
type ImpulseLog struct {
	Status          impulse.Status `json:"status"`
	Position        orb.Point      `json:"position"`
	Destination     string         `json:"destination,omitempty"`
	Focus           string         `json:"focus"`
	ProgressPercent float64        `json:"progress_percent"`
	SynapseWaitMs   float64        `json:"synapse_wait_ms"`
	Speed           float64        `json:"speed"`
	Delay1          float64        `json:"delay1"`
	Delay2          float64        `json:"delay2"`
	TrialCount      int            `json:"trial_count"`
	LastMeasuredMs  *float64       `json:"last_measured_ms"`
	PredictedMs     float64        `json:"predicted_ms"`
}

// SimulationLogRow is the impulse state after a single frame.
type SimulationLogRow struct {
	Timestamp float64    `json:"timestamp"` // seconds
	Impulse   ImpulseLog `json:"impulse"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta        SimulationMeta     `json:"simulation_meta"`
	TotalLength float64            `json:"total_length"`
	Output      []SimulationLogRow `json:"output"`
	Trials      []impulse.Trial    `json:"trials"`
}
