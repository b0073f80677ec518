package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/cxd309/reflex-engine/internal/arc"
	"github.com/cxd309/reflex-engine/internal/impulse"
)

// maxFrames guards against runs that can never finish at the given step.
const maxFrames = 10_000_000

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fire stimuli and print each reflex timeline",
		Long: `Fire one or more stimuli back to back, stepping the impulse at a fixed
frame time on a simulated clock, and print each trial's timeline with the
measured and predicted latency.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			trials, _ := cmd.Flags().GetInt("trials")
			if trials < 1 {
				return fmt.Errorf("--trials must be at least 1, got %d", trials)
			}

			dt := cfg.Simulation.TimeStep
			if cmd.Flags().Changed("dt") {
				dt, _ = cmd.Flags().GetFloat64("dt")
			}
			if !(dt > 0) {
				return fmt.Errorf("--dt must be positive, got %v", dt)
			}

			opts := cfg.ImpulseOptions()
			if cmd.Flags().Changed("speed") {
				opts.Speed, _ = cmd.Flags().GetFloat64("speed")
			}
			if cmd.Flags().Changed("delay1") {
				opts.Delay1, _ = cmd.Flags().GetFloat64("delay1")
			}
			if cmd.Flags().Changed("delay2") {
				opts.Delay2, _ = cmd.Flags().GetFloat64("delay2")
			}
			clock := clockwork.NewFakeClockAt(time.Now())
			opts.Clock = clock
			opts.Logger = logger

			imp, err := impulse.New(arc.Default(), opts)
			if err != nil {
				return err
			}

			results := make([]impulse.Trial, 0, trials)
			for i := 0; i < trials; i++ {
				trial, err := runTrial(imp, clock, dt)
				if err != nil {
					return err
				}
				results = append(results, trial)
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(results)
			}
			for _, trial := range results {
				if err := trial.WriteTimeline(out); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().Int("trials", 1, "Number of stimuli to fire")
	cmd.Flags().Float64("dt", 1.0/60, "Frame time in seconds (default from config)")
	cmd.Flags().Float64("speed", 0, "Impulse speed in distance units per second (default from config)")
	cmd.Flags().Float64("delay1", 0, "Sensory -> spinal synapse delay in seconds (default from config)")
	cmd.Flags().Float64("delay2", 0, "Spinal -> motor synapse delay in seconds (default from config)")
	return cmd
}

// runTrial fires one stimulus and steps until the muscle contracts.
func runTrial(imp *impulse.Impulse, clock *clockwork.FakeClock, dt float64) (impulse.Trial, error) {
	imp.Start()
	for frames := 0; imp.Status() != impulse.StatusFinished; frames++ {
		if frames >= maxFrames {
			return impulse.Trial{}, fmt.Errorf("trial %d did not finish after %d frames", imp.TrialCount(), maxFrames)
		}
		clock.Advance(impulse.Seconds(dt))
		imp.Update(dt)
	}
	trial, _ := imp.LastTrial()
	return trial, nil
}
