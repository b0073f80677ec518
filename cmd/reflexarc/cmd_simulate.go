package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxd309/reflex-engine/internal/engine"
)

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate [file]",
		Short: "Run a scripted simulation from JSON",
		Long: `Read a SimulationInput JSON from a file argument (or stdin), run the
scripted simulation, and write the SimulationLog JSON to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var data []byte
			if len(args) > 0 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			result, err := engine.RunJSON(string(data), logger)
			if err != nil {
				return fmt.Errorf("simulation error: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}
}
