// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu6050 reads acceleration, rotation and temperature from an
// InvenSense MPU6050 over I2C and converts the raw register pairs into
// physical units.
package mpu6050

// RegisterPair is the high and low byte of one 16-bit sensor output,
// read from two consecutive registers.
type RegisterPair struct {
	High uint8
	Low  uint8
}

// Value returns the signed reading held by the pair.
func (p RegisterPair) Value() int16 {
	return Decode(p.High, p.Low)
}

// Decode combines a high and low register byte into a signed 16-bit value
// using two's-complement: anything at or above 0x8000 is negative.
func Decode(high, low uint8) int16 {
	value := int32(high)<<8 | int32(low)
	if value >= 32768 {
		value -= 65536
	}
	return int16(value)
}

// Encode splits a signed value into the high and low register bytes that
// Decode turns back into v.
func Encode(v int16) (high, low uint8) {
	u := uint16(v)
	return uint8(u >> 8), uint8(u)
}
