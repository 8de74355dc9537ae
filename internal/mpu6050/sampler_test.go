// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

// countingReader serves fixed register values and records every read.
type countingReader struct {
	regs  map[byte]byte
	reads []byte
	fail  map[byte]error
}

func (c *countingReader) ReadRegister(reg byte) (byte, error) {
	c.reads = append(c.reads, reg)
	if err := c.fail[reg]; err != nil {
		return 0, err
	}
	return c.regs[reg], nil
}

func TestSamplerEndToEnd(t *testing.T) {
	r := &countingReader{regs: map[byte]byte{
		RegAccelXOutH: 0x00, RegAccelXOutH + 1: 0x00,
		RegAccelYOutH: 0x40, RegAccelYOutH + 1: 0x00,
		RegAccelZOutH: 0xC0, RegAccelZOutH + 1: 0x00,
	}}
	s, err := NewSampler(AccelSampler(Accel2G))
	test.That(t, err, test.ShouldBeNil)

	got, err := s.Sample(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, AxisTriple{X: 0.0, Y: 1.0, Z: -1.0})

	// high then low, x then y then z, six reads per tick
	test.That(t, r.reads, test.ShouldResemble, []byte{0x3B, 0x3C, 0x3D, 0x3E, 0x3F, 0x40})
}

func TestSamplerSixReadsPerTick(t *testing.T) {
	r := &countingReader{regs: map[byte]byte{}}
	s, err := NewSampler(GyroSampler(Gyro250DPS))
	test.That(t, err, test.ShouldBeNil)

	for i := 1; i <= 3; i++ {
		_, err := s.Sample(r)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(r.reads), test.ShouldEqual, 6*i)
	}
	test.That(t, r.reads[:6], test.ShouldResemble, []byte{0x43, 0x44, 0x45, 0x46, 0x47, 0x48})
}

func TestSamplerPropagatesReadError(t *testing.T) {
	busErr := errors.New("no ACK")
	r := &countingReader{
		regs: map[byte]byte{},
		fail: map[byte]error{RegAccelYOutH + 1: busErr},
	}
	s, err := NewSampler(AccelSampler(Accel2G))
	test.That(t, err, test.ShouldBeNil)

	_, err = s.Sample(r)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, busErr), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "accel Y low")
	// no retry, no further axes
	test.That(t, len(r.reads), test.ShouldEqual, 4)
}

func TestNewSamplerRejectsBadScale(t *testing.T) {
	_, err := NewSampler(SamplerConfig{Name: "accel", Scale: 0})
	test.That(t, errors.Is(err, ErrInvalidScale), test.ShouldBeTrue)

	_, err = NewSampler(AccelSampler(AccelRange(7)))
	test.That(t, errors.Is(err, ErrInvalidScale), test.ShouldBeTrue)
}

func TestSamplersAreIndependent(t *testing.T) {
	// Two simulated devices with different ranges sampled by their own samplers.
	a := NewSimDevice()
	b := NewSimDevice()
	a.SetRaw(RegAccelZOutH, 16384)
	b.SetRaw(RegAccelZOutH, 2048)

	s2, err := NewSampler(AccelSampler(Accel2G))
	test.That(t, err, test.ShouldBeNil)
	s16, err := NewSampler(AccelSampler(Accel16G))
	test.That(t, err, test.ShouldBeNil)

	va, err := s2.Sample(a)
	test.That(t, err, test.ShouldBeNil)
	vb, err := s16.Sample(b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, va.Z, test.ShouldEqual, 1.0)
	test.That(t, vb.Z, test.ShouldEqual, 1.0)
	test.That(t, len(a.Reads()), test.ShouldEqual, 6)
}

func TestSampleRawAndConvert(t *testing.T) {
	d := NewSimDevice()
	d.SetRaw(RegAccelXOutH, -8192)
	d.SetRaw(RegAccelYOutH, 32767)
	d.SetRaw(RegAccelZOutH, -32768)
	s, err := NewSampler(AccelSampler(Accel2G))
	test.That(t, err, test.ShouldBeNil)

	raw, err := s.SampleRaw(d)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, raw, test.ShouldResemble, [3]int16{-8192, 32767, -32768})

	v := s.Convert(raw)
	test.That(t, v.X, test.ShouldEqual, -0.5)
	test.That(t, v.Z, test.ShouldEqual, -2.0)
}

func TestReadPairRejectsUnknownAxis(t *testing.T) {
	s, err := NewSampler(AccelSampler(Accel2G))
	test.That(t, err, test.ShouldBeNil)

	for _, a := range []Axis{Axis(3), Axis(-1)} {
		r := &countingReader{regs: map[byte]byte{}}
		_, err := s.ReadPair(r, a)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "invalid axis")
		test.That(t, r.reads, test.ShouldBeEmpty)
	}

	r := &countingReader{regs: map[byte]byte{RegAccelZOutH: 0x40}}
	p, err := s.ReadPair(r, AxisZ)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, RegisterPair{High: 0x40, Low: 0x00})
}
