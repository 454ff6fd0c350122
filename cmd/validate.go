package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-sim/factory-sim/sim"
)

// validateCmd checks a layout document end to end: YAML shape, document
// rules, and the engine constructors. Prints a short inventory when the
// layout is sound.
var validateCmd = &cobra.Command{
	Use:   "validate [layout.yaml]",
	Short: "Validate a layout document and print its inventory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := layoutPath
		if len(args) == 1 {
			path = args[0]
		}
		spec, err := loadLayoutSpec(path)
		if err != nil {
			logrus.Fatalf("Invalid layout: %v", err)
		}
		cfg, err := spec.Build()
		if err != nil {
			logrus.Fatalf("Invalid layout: %v", err)
		}
		f, err := sim.NewFactory(cfg, nil, nil)
		if err != nil {
			logrus.Fatalf("Invalid layout: %v", err)
		}

		fmt.Println("Layout OK")
		fmt.Printf("Topic root : %s\n", f.Topics().Root())
		for _, line := range f.Lines() {
			fmt.Printf("Line %-6s: %d devices, %d AGVs, %d points, charge point %s (capacity %d)\n",
				line.ID, len(line.Devices()), len(line.AGVs()), len(line.Graph().Points()),
				line.ChargePoint().Point, line.ChargePoint().Capacity())
		}
		for _, w := range spec.Warehouses {
			fmt.Printf("Global %-9s: %s at %s, capacity %d\n", w.ID, w.Type, w.Position, w.Capacity)
		}
	},
}

func init() {
	validateCmd.Flags().StringVar(&layoutPath, "layout", "", "Layout YAML path (default: embedded three-line factory)")

	rootCmd.AddCommand(validateCmd)
}
