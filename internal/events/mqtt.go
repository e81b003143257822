package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig configures the MQTT bridge.
type MQTTConfig struct {
	Broker      string // e.g. tcp://localhost:1883
	ClientID    string
	TopicPrefix string // topics are <prefix>/intent, <prefix>/error and <prefix>/state
	QoS         byte
}

// DefaultMQTTConfig returns a config with the prefix "mudra" and no broker.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{ClientID: "mudra", TopicPrefix: "mudra"}
}

// publishTimeout bounds how long one publish may hold up the bridge.
const publishTimeout = 2 * time.Second

// mqttPublisher is the part of mqtt.Client the bridge uses.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTBridge republishes hub events as JSON on an MQTT broker.
type MQTTBridge struct {
	client mqttPublisher
	conn   mqtt.Client
	cfg    MQTTConfig
	log    *slog.Logger
}

// DialMQTT connects to the broker in cfg.
func DialMQTT(cfg MQTTConfig, logger *slog.Logger) (*MQTTBridge, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: no broker configured")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	b := newMQTTBridge(client, cfg, logger)
	b.conn = client
	return b, nil
}

func newMQTTBridge(client mqttPublisher, cfg MQTTConfig, logger *slog.Logger) *MQTTBridge {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.TopicPrefix = strings.TrimSuffix(cfg.TopicPrefix, "/")
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "mudra"
	}
	return &MQTTBridge{client: client, cfg: cfg, log: logger}
}

// Topic returns the topic an event of type t is published on.
func (b *MQTTBridge) Topic(t Type) string {
	switch t {
	case TypeSnapshot:
		return b.cfg.TopicPrefix + "/state"
	case TypeError:
		return b.cfg.TopicPrefix + "/error"
	default:
		return b.cfg.TopicPrefix + "/intent"
	}
}

// Run publishes events from ch until ctx is done or ch is closed.
// State snapshots are retained so late subscribers see the current state.
func (b *MQTTBridge) Run(ctx context.Context, ch <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := b.publish(e); err != nil {
				b.log.Warn("mqtt publish failed", "topic", b.Topic(e.Type), "error", err)
			}
		}
	}
}

func (b *MQTTBridge) publish(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	token := b.client.Publish(b.Topic(e.Type), b.cfg.QoS, e.Type == TypeSnapshot, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out after %s", publishTimeout)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (b *MQTTBridge) Close() {
	if b.conn != nil {
		b.conn.Disconnect(250)
	}
}
