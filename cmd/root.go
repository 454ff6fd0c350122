package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags shared by run and serve
	logLevel   string // Log verbosity level
	layoutPath string // Layout YAML path; empty selects the embedded default factory
	seed       int64  // Master seed for the partitioned RNG
	durationS  int64  // Virtual duration in seconds
	noFaults   bool   // Disable random fault injection

	// CLI flags for the broker connection in serve mode
	brokerHost   string // MQTT broker host
	brokerPort   int    // MQTT broker port
	brokerScheme string // MQTT transport scheme (tcp or ws)
	metricsAddr  string // Prometheus listen address
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "factory-sim",
	Short: "Discrete-event simulator for multi-line smart factories",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
