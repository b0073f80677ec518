package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cxd309/reflex-engine/internal/arc"
	"github.com/cxd309/reflex-engine/internal/latency"
)

type prediction struct {
	TotalLength float64 `json:"total_length"`
	Speed       float64 `json:"speed"`
	SpeedMPS    float64 `json:"speed_mps"`
	Delay1      float64 `json:"delay1"`
	Delay2      float64 `json:"delay2"`
	PredictedMs float64 `json:"predicted_ms"`
}

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Print the predicted reflex latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			total := arc.Default().TotalLength()
			p := prediction{
				TotalLength: total,
				Speed:       cfg.Impulse.Speed,
				SpeedMPS:    latency.MetresPerSecond(cfg.Impulse.Speed, latency.DefaultUnitsPerMetre),
				Delay1:      cfg.Impulse.Delay1,
				Delay2:      cfg.Impulse.Delay2,
				PredictedMs: latency.PredictedMs(total, cfg.Impulse.Speed, cfg.Impulse.Delay1, cfg.Impulse.Delay2),
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(p)
			}
			fmt.Fprintf(out, "Path length:           %.1f units\n", p.TotalLength)
			fmt.Fprintf(out, "Speed:                 %.0f units/s (%.3f m/s)\n", p.Speed, p.SpeedMPS)
			fmt.Fprintf(out, "Synapse delays:        %.0f ms, %.0f ms\n", p.Delay1*1000, p.Delay2*1000)
			fmt.Fprintf(out, "Predicted reflex time: %.1f ms\n", p.PredictedMs)
			return nil
		},
	}
}
