// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"
)

// RegisterReader reads one register of the device. Device and SimDevice
// implement it. Callers sharing a bus must serialize calls themselves.
type RegisterReader interface {
	ReadRegister(reg byte) (byte, error)
}

// RegisterWriter writes one register of the device.
type RegisterWriter interface {
	WriteRegister(reg, value byte) error
}

// AxisTriple is one x, y, z reading in physical units.
type AxisTriple struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Axis names the three sensor axes in sampling order.
type Axis int

// Axes in the order they are sampled.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// SamplerConfig describes where a three-axis reading lives and how to scale it.
type SamplerConfig struct {
	Name      string  // for error messages, e.g. "accel"
	Registers [3]byte // high-byte register for x, y, z; low byte follows each
	Scale     float64 // LSB per physical unit
}

// Validate checks the scale. It is meant to run once at startup.
func (c SamplerConfig) Validate() error {
	if err := ValidateScale(c.Scale); err != nil {
		return fmt.Errorf("%s sampler: %w", c.Name, err)
	}
	return nil
}

// AccelSampler returns the accelerometer sampler for the range, in g.
func AccelSampler(r AccelRange) SamplerConfig {
	return SamplerConfig{
		Name:      "accel",
		Registers: [3]byte{RegAccelXOutH, RegAccelYOutH, RegAccelZOutH},
		Scale:     r.LSBPerG(),
	}
}

// GyroSampler returns the gyroscope sampler for the range, in °/s.
func GyroSampler(r GyroRange) SamplerConfig {
	return SamplerConfig{
		Name:      "gyro",
		Registers: [3]byte{RegGyroXOutH, RegGyroYOutH, RegGyroZOutH},
		Scale:     r.LSBPerDPS(),
	}
}

// Sampler turns register reads into AxisTriples. It holds no state between calls.
type Sampler struct {
	cfg SamplerConfig
}

// NewSampler validates cfg and returns a Sampler for it.
func NewSampler(cfg SamplerConfig) (Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return Sampler{}, err
	}
	return Sampler{cfg: cfg}, nil
}

// Config returns the configuration the sampler was built with.
func (s Sampler) Config() SamplerConfig {
	return s.cfg
}

// ReadPair reads the high register of axis a and then the register after it.
// Axes other than AxisX, AxisY and AxisZ are an error and touch no register.
func (s Sampler) ReadPair(r RegisterReader, a Axis) (RegisterPair, error) {
	if a < AxisX || a > AxisZ {
		return RegisterPair{}, fmt.Errorf("%s: invalid axis %s", s.cfg.Name, a)
	}
	reg := s.cfg.Registers[a]
	high, err := r.ReadRegister(reg)
	if err != nil {
		return RegisterPair{}, fmt.Errorf("%s %s high (0x%02X): %w", s.cfg.Name, a, reg, err)
	}
	low, err := r.ReadRegister(reg + 1)
	if err != nil {
		return RegisterPair{}, fmt.Errorf("%s %s low (0x%02X): %w", s.cfg.Name, a, reg+1, err)
	}
	return RegisterPair{High: high, Low: low}, nil
}

// SampleRaw reads the three signed counts in x, y, z order.
func (s Sampler) SampleRaw(r RegisterReader) ([3]int16, error) {
	var raw [3]int16
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		p, err := s.ReadPair(r, a)
		if err != nil {
			return [3]int16{}, err
		}
		raw[a] = p.Value()
	}
	return raw, nil
}

// Sample reads and converts one x, y, z triple: two register reads per axis.
func (s Sampler) Sample(r RegisterReader) (AxisTriple, error) {
	raw, err := s.SampleRaw(r)
	if err != nil {
		return AxisTriple{}, err
	}
	return s.Convert(raw), nil
}

// Convert scales already decoded counts.
func (s Sampler) Convert(raw [3]int16) AxisTriple {
	return AxisTriple{
		X: ToG(raw[0], s.cfg.Scale),
		Y: ToG(raw[1], s.cfg.Scale),
		Z: ToG(raw[2], s.cfg.Scale),
	}
}
