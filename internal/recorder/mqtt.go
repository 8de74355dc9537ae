// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recorder

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of mqtt.Client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes each sample as retained JSON on a topic.
type MQTTSink struct {
	client Publisher
	topic  string
}

// NewMQTTSink publishes on topic through client. The caller owns the connection.
func NewMQTTSink(client Publisher, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

func (m *MQTTSink) Write(s Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal error (sample): %w", err)
	}
	if token := m.client.Publish(m.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", m.topic, token.Error())
	}
	return nil
}

func (m *MQTTSink) Close() error {
	return nil
}

// Connect dials broker with clientID.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	return client, nil
}
