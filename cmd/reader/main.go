// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/mpu6050_logger/internal/app"
	"github.com/relabs-tech/mpu6050_logger/internal/config"
)

func main() {
	configPath := flag.String("config", "mpu6050_config.txt", "path to the config file")
	flag.Parse()

	log.Println("starting mpu6050 reader")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReader(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
