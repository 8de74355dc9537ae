// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// SimDevice is an in-memory MPU6050 register bank. It answers WHO_AM_I and
// keeps whatever is written to it, so it can stand in for Device.
type SimDevice struct {
	mu    sync.Mutex
	regs  [256]byte
	reads []byte

	// Err, when set, is returned by every read and write.
	Err error

	clk   clock.Clock
	start time.Time
}

// NewSimDevice returns a powered-on device with all outputs at zero.
func NewSimDevice() *SimDevice {
	d := &SimDevice{}
	d.regs[RegWhoAmI] = whoAmIValue
	d.regs[RegPwrMgmt1] = pwrSleep
	return d
}

// NewWaveDevice returns a SimDevice whose accelerometer and gyroscope
// outputs follow slow sine waves of the clock's elapsed time. Outputs are
// refreshed whenever ACCEL_XOUT_H is read.
func NewWaveDevice(clk clock.Clock) *SimDevice {
	d := NewSimDevice()
	d.clk = clk
	d.start = clk.Now()
	d.refresh()
	return d
}

// ReadRegister returns the stored register value.
func (d *SimDevice) ReadRegister(reg byte) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	if d.clk != nil && reg == RegAccelXOutH {
		d.refresh()
	}
	d.reads = append(d.reads, reg)
	return d.regs[reg], nil
}

// WriteRegister stores value.
func (d *SimDevice) WriteRegister(reg, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.regs[reg] = value
	return nil
}

// Register returns the stored value without counting it as a read.
func (d *SimDevice) Register(reg byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[reg]
}

// SetPair stores raw values in the register pair starting at reg.
func (d *SimDevice) SetPair(reg byte, p RegisterPair) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[reg] = p.High
	d.regs[reg+1] = p.Low
}

// SetRaw encodes v into the register pair starting at reg.
func (d *SimDevice) SetRaw(reg byte, v int16) {
	high, low := Encode(v)
	d.SetPair(reg, RegisterPair{High: high, Low: low})
}

// Reads returns the registers read so far, in order.
func (d *SimDevice) Reads() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.reads...)
}

// Close puts the simulated chip to sleep.
func (d *SimDevice) Close() error {
	return d.WriteRegister(RegPwrMgmt1, pwrSleep)
}

// refresh must be called with mu held.
func (d *SimDevice) refresh() {
	elapsed := d.clk.Since(d.start).Seconds()
	accel := AccelRange(d.regs[RegAccelConfig] >> 3 & 0x03).LSBPerG()
	gyro := GyroRange(d.regs[RegGyroConfig] >> 3 & 0x03).LSBPerDPS()

	set := func(reg byte, v float64) {
		high, low := Encode(int16(math.Max(-32768, math.Min(32767, math.Round(v)))))
		d.regs[reg] = high
		d.regs[reg+1] = low
	}
	set(RegAccelXOutH, 0.20*math.Sin(elapsed)*accel)
	set(RegAccelYOutH, 0.15*math.Cos(elapsed*0.7)*accel)
	set(RegAccelZOutH, (1+0.05*math.Sin(elapsed*3))*accel)
	set(RegGyroXOutH, 20*math.Cos(elapsed)*gyro)
	set(RegGyroYOutH, -10*math.Sin(elapsed*0.7)*gyro)
	set(RegGyroZOutH, 30*gyro)
	set(RegTempOutH, (25-36.53)*340)
}
