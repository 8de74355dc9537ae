// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

// SensorDevice is an initialized MPU6050, real or simulated.
type SensorDevice interface {
	mpu6050.RegisterReadWriter
	Close() error
}

// OpenSensor opens the device selected by cfg and runs the bring-up sequence.
// With SIMULATE=true no bus is touched.
func OpenSensor(cfg *config.Config) (SensorDevice, error) {
	var dev SensorDevice
	if cfg.Simulate {
		log.Println("mpu6050: SIMULATE=true, using in-memory device")
		dev = mpu6050.NewWaveDevice(clock.New())
	} else {
		d, err := mpu6050.Open(cfg.I2CBus, cfg.I2CAddr)
		if err != nil {
			return nil, err
		}
		log.Printf("mpu6050: opened bus %q at 0x%02X", cfg.I2CBus, cfg.I2CAddr)
		dev = d
	}

	if err := mpu6050.Configure(dev, cfg.Settings()); err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to initialize MPU6050: %w", err)
	}
	return dev, nil
}
