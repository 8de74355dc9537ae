// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

// RunReader prints accelerometer, gyroscope and temperature readings every
// SAMPLE_INTERVAL until interrupted. Samples are also published on
// TOPIC_SAMPLE when MQTT_BROKER is set.
func RunReader(cfg *config.Config) error {
	fmt.Println("Initializing MPU6050.")
	dev, err := OpenSensor(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	var pub recorder.Publisher
	if cfg.MQTTBroker != "" {
		client, err := recorder.Connect(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		log.Printf("reader: connected to MQTT broker at %s", cfg.MQTTBroker)
		pub = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Reading data from Gyro and Accelerometer - ")
	n, err := Stream(ctx, cfg, dev, os.Stdout, pub, nil)
	log.Printf("reader: stopped after %d samples", n)
	return err
}

// Stream runs the print loop on dev until ctx is done. pub may be nil.
func Stream(ctx context.Context, cfg *config.Config, dev mpu6050.RegisterReader, out io.Writer, pub recorder.Publisher, clk recorder.Clock) (int, error) {
	sinks := []recorder.Sink{recorder.NewConsoleSink(out, true)}
	if pub != nil {
		sinks = append(sinks, recorder.NewMQTTSink(pub, cfg.TopicSample))
	}

	rec, err := recorder.New(dev, recorder.Options{
		Accel:           cfg.AccelSampler(),
		Gyro:            cfg.GyroSampler(),
		ReadGyro:        true,
		ReadTemperature: true,
		Interval:        cfg.Interval(),
		Clock:           clk,
	}, sinks...)
	if err != nil {
		return 0, err
	}
	defer rec.Close()

	return rec.Run(ctx)
}
