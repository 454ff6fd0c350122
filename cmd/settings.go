package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/factory-sim/factory-sim/sim/transport"
)

// Settings carries the broker and telemetry endpoints for serve mode.
type Settings struct {
	BrokerHost   string
	BrokerPort   int
	BrokerScheme string
	Username     string
	Password     string
	MetricsAddr  string
}

// loadSettings resolves serve-mode settings. Precedence: explicit flag,
// then FACTORYSIM_*-prefixed environment, then the bare MQTT_* names the
// hosted deployment uses, then built-in defaults. A .env file in the
// working directory is folded into the environment first.
func loadSettings() Settings {
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded settings from .env")
	}

	v := viper.New()
	v.SetEnvPrefix("FACTORYSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bind := func(key string, aliases ...string) {
		if err := v.BindEnv(append([]string{key}, aliases...)...); err != nil {
			logrus.Warnf("Binding %s: %v", key, err)
		}
	}
	bind("mqtt.host", "FACTORYSIM_MQTT_HOST", "MQTT_HOST")
	bind("mqtt.port", "FACTORYSIM_MQTT_PORT", "MQTT_PORT")
	bind("mqtt.scheme", "FACTORYSIM_MQTT_SCHEME", "MQTT_SCHEME")
	bind("mqtt.username", "FACTORYSIM_MQTT_USERNAME", "MQTT_USERNAME")
	bind("mqtt.password", "FACTORYSIM_MQTT_PASSWORD", "MQTT_PASSWORD")
	bind("metrics.addr", "FACTORYSIM_METRICS_ADDR")

	v.SetDefault("mqtt.host", transport.DefaultBrokerHost)
	v.SetDefault("mqtt.port", transport.DefaultBrokerPort)
	v.SetDefault("mqtt.scheme", "tcp")
	v.SetDefault("metrics.addr", ":9090")

	s := Settings{
		BrokerHost:   v.GetString("mqtt.host"),
		BrokerPort:   v.GetInt("mqtt.port"),
		BrokerScheme: v.GetString("mqtt.scheme"),
		Username:     v.GetString("mqtt.username"),
		Password:     v.GetString("mqtt.password"),
		MetricsAddr:  v.GetString("metrics.addr"),
	}
	if brokerHost != "" {
		s.BrokerHost = brokerHost
	}
	if brokerPort != 0 {
		s.BrokerPort = brokerPort
	}
	if brokerScheme != "" {
		s.BrokerScheme = brokerScheme
	}
	if metricsAddr != "" {
		s.MetricsAddr = metricsAddr
	}
	return s
}
