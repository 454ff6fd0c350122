package transport

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Broker defaults matching the hosted evaluation instance.
const (
	DefaultBrokerHost = "supos-ce-instance4.supos.app"
	DefaultBrokerPort = 8083
)

// MQTTConfig configures the broker adapter.
type MQTTConfig struct {
	Host           string
	Port           int
	Scheme         string // "tcp" or "ws"
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTClient adapts a paho connection to Publisher and Subscriber.
// Payloads are marshalled to JSON on publish.
type MQTTClient struct {
	client mqtt.Client
	qos    byte
}

var (
	_ Publisher  = (*MQTTClient)(nil)
	_ Subscriber = (*MQTTClient)(nil)
)

// NewMQTTClient connects to the broker and returns the adapter.
func NewMQTTClient(cfg MQTTConfig) (*MQTTClient, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultBrokerHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultBrokerPort
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "tcp"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("factory-sim-%d", time.Now().UnixNano())
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", cfg.Scheme, cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(mqtt.Client) {
		logrus.Infof("mqtt connected to %s:%d as %s", cfg.Host, cfg.Port, cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logrus.Warnf("mqtt connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s:%d timed out after %s", cfg.Host, cfg.Port, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &MQTTClient{client: client, qos: cfg.QoS}, nil
}

// Publish marshals the payload to JSON and sends it.
func (m *MQTTClient) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	token := m.client.Publish(topic, m.qos, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler for a topic filter. The handler runs
// on paho's delivery goroutine and must not block.
func (m *MQTTClient) Subscribe(filter string, handler MessageHandler) error {
	token := m.client.Subscribe(filter, m.qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", filter, err)
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight messages a
// short drain window.
func (m *MQTTClient) Close() {
	m.client.Disconnect(250)
}
