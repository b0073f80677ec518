// Package engine drives the impulse headlessly.
//
// The simulation advances in fixed timesteps. Each step:
//
//  1. Command pass - every scheduled command whose time has come is applied
//     to the impulse, in input order.
//
//  2. Motion pass - the step clock moves forward by the timestep, the impulse
//     is updated by the same amount, and its state is snapshotted. A run that
//     finished during the step is appended to the trial list.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cxd309/reflex-engine/internal/arc"
	"github.com/cxd309/reflex-engine/internal/impulse"
)

// epoch anchors the step clock; only differences between timestamps matter.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Simulation is a scripted, fixed-timestep run of a single impulse.
type Simulation struct {
	meta     SimulationMeta
	layout   arc.Layout
	clock    *clockwork.FakeClock
	imp      *impulse.Impulse
	commands []Command
	next     int
	curTime  float64
	log      *slog.Logger
}

// New validates input and builds the impulse on layout.
func New(input SimulationInput, layout arc.Layout, logger *slog.Logger) (*Simulation, error) {
	if !(input.Meta.TimeStep > 0) {
		return nil, fmt.Errorf("time_step must be positive, got %v", input.Meta.TimeStep)
	}
	if !(input.Meta.RunTime > 0) {
		return nil, fmt.Errorf("run_time must be positive, got %v", input.Meta.RunTime)
	}
	for i, c := range input.Commands {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
	}

	opts := impulse.DefaultOptions()
	if input.Impulse.Speed != 0 {
		opts.Speed = input.Impulse.Speed
	}
	if input.Impulse.Delay1 != nil {
		opts.Delay1 = *input.Impulse.Delay1
	}
	if input.Impulse.Delay2 != nil {
		opts.Delay2 = *input.Impulse.Delay2
	}
	if input.Impulse.Limits != (impulse.Limits{}) {
		opts.Limits = input.Impulse.Limits
	}
	clock := clockwork.NewFakeClockAt(epoch)
	opts.Clock = clock
	opts.Logger = logger

	imp, err := impulse.New(layout, opts)
	if err != nil {
		return nil, fmt.Errorf("creating impulse: %w", err)
	}

	commands := make([]Command, len(input.Commands))
	copy(commands, input.Commands)
	sort.SliceStable(commands, func(i, j int) bool { return commands[i].At < commands[j].At })

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulation{
		meta:     input.Meta,
		layout:   layout,
		clock:    clock,
		imp:      imp,
		commands: commands,
		log:      logger,
	}, nil
}

// Impulse exposes the simulated impulse for inspection.
func (s *Simulation) Impulse() *impulse.Impulse { return s.imp }

// Run executes the full simulation and returns the log.
func (s *Simulation) Run() (SimulationLog, error) {
	log := SimulationLog{Meta: s.meta, TotalLength: s.layout.TotalLength()}
	for s.curTime <= s.meta.RunTime {
		row, trial, err := s.step()
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%.4f: %w", s.curTime, err)
		}
		log.Output = append(log.Output, row)
		if trial != nil {
			log.Trials = append(log.Trials, *trial)
		}
		s.curTime += s.meta.TimeStep
	}
	s.log.Info("simulation finished",
		"simulation_id", s.meta.SimulationID, "frames", len(log.Output), "trials", len(log.Trials))
	return log, nil
}

// step advances the simulation by one timestep and returns the resulting log
// row, plus the trial that completed during the step, if any.
func (s *Simulation) step() (SimulationLogRow, *impulse.Trial, error) {
	dt := s.meta.TimeStep

	// Pass 1: apply due commands.
	for s.next < len(s.commands) && s.commands[s.next].At <= s.curTime {
		if err := s.apply(s.commands[s.next]); err != nil {
			return SimulationLogRow{}, nil, err
		}
		s.next++
	}

	// Pass 2: advance time and motion together.
	before := s.imp.Status()
	s.clock.Advance(impulse.Seconds(dt))
	s.imp.Update(dt)

	var trial *impulse.Trial
	if before != impulse.StatusFinished && s.imp.Status() == impulse.StatusFinished {
		if t, ok := s.imp.LastTrial(); ok {
			trial = &t
		}
	}

	return SimulationLogRow{Timestamp: s.curTime + dt, Impulse: Snapshot(s.imp)}, trial, nil
}

func (s *Simulation) apply(c Command) error {
	imp := s.imp
	switch c.Action {
	case ActionStart:
		imp.Start()
	case ActionTogglePause:
		imp.TogglePause()
	case ActionReset:
		imp.Reset()
	case ActionSetSpeed:
		if err := imp.SetSpeed(c.Value); err != nil {
			return fmt.Errorf("%s: %w", c.Action, err)
		}
	case ActionSetDelay1:
		imp.SetDelay1(c.Value)
	case ActionSetDelay2:
		imp.SetDelay2(c.Value)
	case ActionSpeedUp, ActionSpeedDown:
		steps := 1
		if c.Action == ActionSpeedDown {
			steps = -1
		}
		if err := imp.NudgeSpeed(steps); err != nil {
			return fmt.Errorf("%s: %w", c.Action, err)
		}
	case ActionDelay1Up:
		imp.NudgeDelay1(1)
	case ActionDelay1Down:
		imp.NudgeDelay1(-1)
	case ActionDelay2Up:
		imp.NudgeDelay2(1)
	case ActionDelay2Down:
		imp.NudgeDelay2(-1)
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
	s.log.Debug("command applied", "at", s.curTime, "action", c.Action)
	return nil
}

func (c Command) validate() error {
	if c.At < 0 || math.IsNaN(c.At) {
		return fmt.Errorf("at must be non-negative, got %v", c.At)
	}
	switch c.Action {
	case ActionStart, ActionTogglePause, ActionReset,
		ActionSetSpeed, ActionSetDelay1, ActionSetDelay2,
		ActionSpeedUp, ActionSpeedDown,
		ActionDelay1Up, ActionDelay1Down, ActionDelay2Up, ActionDelay2Down:
		return nil
	}
	return fmt.Errorf("unknown action %q", c.Action)
}

// Snapshot captures everything a presentation layer reads from imp in a frame.
func Snapshot(imp *impulse.Impulse) ImpulseLog {
	row := ImpulseLog{
		Status:          imp.Status(),
		Position:        imp.Position(),
		Destination:     imp.CurrentDestination(),
		Focus:           imp.CurrentFocusStation(),
		ProgressPercent: imp.ProgressPercent(),
		SynapseWaitMs:   imp.SynapseWaitRemainingMs(),
		Speed:           imp.Speed(),
		Delay1:          imp.Delay1(),
		Delay2:          imp.Delay2(),
		TrialCount:      imp.TrialCount(),
		PredictedMs:     imp.PredictedLatencyMs(),
	}
	if ms, ok := imp.LastMeasuredLatencyMs(); ok {
		row.LastMeasuredMs = &ms
	}
	return row
}

// RunJSON is the entry point shared by the CLI and WASM targets. It accepts a
// JSON-encoded SimulationInput, runs it on the default arc, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string, logger *slog.Logger) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sim, err := New(input, arc.Default(), logger)
	if err != nil {
		return "", err
	}

	simLog, err := sim.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
