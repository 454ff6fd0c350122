package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/telemetry"
	"github.com/factory-sim/factory-sim/sim/transport"
)

// serveCmd runs the factory against a live broker, paced at one virtual
// second per wall second, until the duration elapses or the process is
// interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the factory in real time against an MQTT broker",
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		cfg := buildFactoryConfig(cmd)

		client, err := transport.NewMQTTClient(transport.MQTTConfig{
			Host:     settings.BrokerHost,
			Port:     settings.BrokerPort,
			Scheme:   settings.BrokerScheme,
			Username: settings.Username,
			Password: settings.Password,
		})
		if err != nil {
			logrus.Fatalf("Connecting broker: %v", err)
		}
		defer client.Close()

		registry := prometheus.NewRegistry()
		recorder := telemetry.NewPrometheusRecorder(registry)

		f, err := sim.NewFactory(cfg, client, recorder)
		if err != nil {
			logrus.Fatalf("Assembling factory: %v", err)
		}

		err = client.Subscribe(f.Topics().CommandSubscription(), func(topic string, payload []byte) {
			if err := f.SubmitRaw(topic, payload); err != nil {
				logrus.Warnf("Dropping command on %s: %v", topic, err)
			}
		})
		if err != nil {
			logrus.Fatalf("Subscribing commands: %v", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsSrv := &http.Server{Addr: settings.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("Metrics server: %v", err)
			}
		}()
		defer metricsSrv.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logrus.Infof("Factory online: topic root %q, %d lines, commands on %s, metrics on %s",
			f.Topics().Root(), len(cfg.Lines), f.Topics().CommandSubscription(), settings.MetricsAddr)
		startTime := time.Now()

		if err := f.RunRealTime(ctx, durationS); err != nil && !errors.Is(err, context.Canceled) {
			logrus.Errorf("Run stopped: %v", err)
		}

		f.Metrics().Print(f.Clock())
		f.Snapshot().Print()
		logrus.Infof("Factory offline after %s.", time.Since(startTime).Round(time.Second))
	},
}

func init() {
	serveCmd.Flags().StringVar(&layoutPath, "layout", "", "Layout YAML path (default: embedded three-line factory)")
	serveCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for the partitioned RNG")
	serveCmd.Flags().Int64Var(&durationS, "duration", 0, "Virtual duration in seconds; 0 runs until interrupted")
	serveCmd.Flags().BoolVar(&noFaults, "no-faults", false, "Disable random fault injection")

	serveCmd.Flags().StringVar(&brokerHost, "broker-host", "", "MQTT broker host (overrides MQTT_HOST)")
	serveCmd.Flags().IntVar(&brokerPort, "broker-port", 0, "MQTT broker port (overrides MQTT_PORT)")
	serveCmd.Flags().StringVar(&brokerScheme, "broker-scheme", "", "MQTT transport scheme: tcp or ws")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (default :9090)")

	rootCmd.AddCommand(serveCmd)
}
