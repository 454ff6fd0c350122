package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/layout"
)

// runCmd executes one batch simulation to the horizon and prints the
// final report. No broker is involved: status and response traffic is
// discarded.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch simulation and print the final report",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildFactoryConfig(cmd)

		f, err := sim.NewFactory(cfg, nil, nil)
		if err != nil {
			logrus.Fatalf("Assembling factory: %v", err)
		}

		logrus.Infof("Starting batch run: %d lines, seed=%d, horizon=%ds",
			len(cfg.Lines), cfg.Seed, durationS)
		startTime := time.Now()

		f.RunUntil(sim.TicksFromSeconds(float64(durationS)))

		f.Metrics().Print(f.Clock())
		f.Snapshot().Print()
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// buildFactoryConfig loads the layout, applies the shared CLI overrides,
// and assembles the engine configuration. Exits on any error.
func buildFactoryConfig(cmd *cobra.Command) sim.FactoryConfig {
	spec, err := loadLayoutSpec(layoutPath)
	if err != nil {
		logrus.Fatalf("Loading layout: %v", err)
	}
	applyOverrides(cmd, spec)

	cfg, err := spec.Build()
	if err != nil {
		logrus.Fatalf("Building layout: %v", err)
	}
	return cfg
}

// applyOverrides folds the CLI flags into the layout document. The seed
// flag wins only when set on the command line, so a layout can pin its
// own seed.
func applyOverrides(cmd *cobra.Command, spec *layout.Spec) {
	if cmd.Flags().Changed("seed") || spec.Seed == 0 {
		spec.Seed = seed
	}
	if noFaults {
		spec.DisableFaults = true
	}
}

func init() {
	runCmd.Flags().StringVar(&layoutPath, "layout", "", "Layout YAML path (default: embedded three-line factory)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for the partitioned RNG")
	runCmd.Flags().Int64Var(&durationS, "duration", 3600, "Virtual duration in seconds")
	runCmd.Flags().BoolVar(&noFaults, "no-faults", false, "Disable random fault injection")

	rootCmd.AddCommand(runCmd)
}
