// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidScale is returned when a conversion scale is zero, negative or not finite.
var ErrInvalidScale = errors.New("invalid scale")

// AccelRange is the AFS_SEL full-scale setting of the accelerometer.
type AccelRange byte

// Accelerometer full-scale ranges.
const (
	Accel2G AccelRange = iota
	Accel4G
	Accel8G
	Accel16G
)

var accelLSBPerG = [...]float64{16384.0, 8192.0, 4096.0, 2048.0}

// LSBPerG returns the sensitivity for the range, or 0 for an unknown range.
func (r AccelRange) LSBPerG() float64 {
	if int(r) >= len(accelLSBPerG) {
		return 0
	}
	return accelLSBPerG[r]
}

// MaxG returns the full-scale limit in g (2, 4, 8 or 16).
func (r AccelRange) MaxG() int {
	return 2 << r
}

func (r AccelRange) String() string {
	if int(r) >= len(accelLSBPerG) {
		return fmt.Sprintf("AccelRange(%d)", byte(r))
	}
	return fmt.Sprintf("±%dg", r.MaxG())
}

// GyroRange is the FS_SEL full-scale setting of the gyroscope.
type GyroRange byte

// Gyroscope full-scale ranges.
const (
	Gyro250DPS GyroRange = iota
	Gyro500DPS
	Gyro1000DPS
	Gyro2000DPS
)

var gyroLSBPerDPS = [...]float64{131.0, 65.5, 32.8, 16.4}

// LSBPerDPS returns the sensitivity for the range, or 0 for an unknown range.
func (r GyroRange) LSBPerDPS() float64 {
	if int(r) >= len(gyroLSBPerDPS) {
		return 0
	}
	return gyroLSBPerDPS[r]
}

// MaxDPS returns the full-scale limit in °/s.
func (r GyroRange) MaxDPS() int {
	return 250 << r
}

func (r GyroRange) String() string {
	if int(r) >= len(gyroLSBPerDPS) {
		return fmt.Sprintf("GyroRange(%d)", byte(r))
	}
	return fmt.Sprintf("±%d°/s", r.MaxDPS())
}

// ValidateScale rejects scales that would make a conversion meaningless.
func ValidateScale(scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return nil
}

// ToG converts a raw accelerometer count to g. The scale must have been
// checked with ValidateScale.
func ToG(raw int16, scaleLSBPerG float64) float64 {
	return float64(raw) / scaleLSBPerG
}

// ToDPS converts a raw gyroscope count to degrees per second.
func ToDPS(raw int16, scaleLSBPerDPS float64) float64 {
	return float64(raw) / scaleLSBPerDPS
}

// ToCelsius converts TEMP_OUT to °C.
func ToCelsius(raw int16) float64 {
	return float64(raw)/340.0 + 36.53
}
