// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

func TestPrintSample(t *testing.T) {
	payload, err := json.Marshal(recorder.Sample{
		Time:        epoch,
		Accel:       mpu6050.AxisTriple{X: 0.5, Y: -0.25, Z: 1},
		Gyro:        mpu6050.AxisTriple{X: 10},
		Temperature: 25,
	})
	test.That(t, err, test.ShouldBeNil)

	var out bytes.Buffer
	test.That(t, PrintSample(&out, payload), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldEqual,
		"[MPU] 2022-03-05 21:14:52.067087  ax= 0.5000 ay=-0.2500 az= 1.0000  gx=   10.00 gy=    0.00 gz=    0.00  temp=25.00\n")

	test.That(t, PrintSample(&out, []byte("not json")), test.ShouldNotBeNil)
}

func TestRunConsoleMQTTNeedsBroker(t *testing.T) {
	test.That(t, RunConsoleMQTT(config.Default()), test.ShouldNotBeNil)
}
