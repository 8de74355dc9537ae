// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

// RunConsoleMQTT prints every sample published on TOPIC_SAMPLE until Ctrl+C.
func RunConsoleMQTT(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("console: MQTT_BROKER is not set")
	}

	client, err := recorder.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicSample, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := PrintSample(os.Stdout, msg.Payload()); err != nil {
			log.Printf("console: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSample)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

// PrintSample decodes a published sample and prints it on one line.
func PrintSample(w io.Writer, payload []byte) error {
	var s recorder.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return fmt.Errorf("sample unmarshal error: %w", err)
	}
	_, err := fmt.Fprintf(w,
		"[MPU] %s  ax=%7.4f ay=%7.4f az=%7.4f  gx=%8.2f gy=%8.2f gz=%8.2f  temp=%5.2f\n",
		recorder.FormatTimestamp(s.Time),
		s.Accel.X, s.Accel.Y, s.Accel.Z,
		s.Gyro.X, s.Gyro.Y, s.Gyro.Z,
		s.Temperature,
	)
	return err
}
