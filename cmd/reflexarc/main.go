// Command reflexarc runs the reflex-arc impulse simulation headlessly.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxd309/reflex-engine/internal/config"
	"github.com/cxd309/reflex-engine/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reflexarc",
		Short: "Reflex arc impulse simulator",
		Long: `reflexarc simulates a signal travelling a reflex arc:
receptor -> sensory neuron -> spinal cord -> motor neuron -> muscle.

It predicts the stimulus-to-contraction latency from path length, speed and
synapse delays, and measures it by stepping the impulse frame by frame.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.reflexarc/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newPredictCmd(),
		newSimulateCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig resolves the effective configuration and a logger writing to
// the command's stderr.
func loadConfig(cmd *cobra.Command) (*config.ReflexConfig, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()), nil
}
