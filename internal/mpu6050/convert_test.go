// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAccelRangeScale(t *testing.T) {
	test.That(t, Accel2G.LSBPerG(), test.ShouldEqual, 16384.0)
	test.That(t, Accel4G.LSBPerG(), test.ShouldEqual, 8192.0)
	test.That(t, Accel8G.LSBPerG(), test.ShouldEqual, 4096.0)
	test.That(t, Accel16G.LSBPerG(), test.ShouldEqual, 2048.0)
	test.That(t, AccelRange(4).LSBPerG(), test.ShouldEqual, 0.0)
	test.That(t, Accel8G.String(), test.ShouldEqual, "±8g")
}

func TestGyroRangeScale(t *testing.T) {
	test.That(t, Gyro250DPS.LSBPerDPS(), test.ShouldEqual, 131.0)
	test.That(t, Gyro2000DPS.LSBPerDPS(), test.ShouldEqual, 16.4)
	test.That(t, Gyro1000DPS.MaxDPS(), test.ShouldEqual, 1000)
	test.That(t, GyroRange(9).LSBPerDPS(), test.ShouldEqual, 0.0)
}

func TestToG(t *testing.T) {
	test.That(t, ToG(0, 16384), test.ShouldEqual, 0.0)
	test.That(t, ToG(16384, 16384), test.ShouldEqual, 1.0)
	test.That(t, ToG(-16384, 16384), test.ShouldEqual, -1.0)
	test.That(t, ToG(32767, 2048), test.ShouldAlmostEqual, 15.9995, 1e-4)
	test.That(t, ToG(-32768, 16384), test.ShouldEqual, -2.0)
}

func TestToGLinearity(t *testing.T) {
	for _, scale := range []float64{16384, 8192, 4096, 2048} {
		for raw := -16384; raw <= 16383; raw += 7 {
			single := ToG(int16(raw), scale)
			double := ToG(int16(2*raw), scale)
			if math.Abs(double-2*single) > 1e-9 {
				t.Fatalf("ToG(2*%d, %v) = %v, want %v", raw, scale, double, 2*single)
			}
		}
	}
}

func TestValidateScale(t *testing.T) {
	test.That(t, ValidateScale(16384), test.ShouldBeNil)
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := ValidateScale(bad)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrInvalidScale), test.ShouldBeTrue)
	}
}

func TestToCelsius(t *testing.T) {
	test.That(t, ToCelsius(0), test.ShouldAlmostEqual, 36.53)
	test.That(t, ToCelsius(-340), test.ShouldAlmostEqual, 35.53)
}
