// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrDeviceUnavailable wraps every bus failure: no bus, no ACK, short transfer.
var ErrDeviceUnavailable = errors.New("mpu6050: device unavailable")

// Settings are the values written to the chip by Init.
type Settings struct {
	AccelRange    AccelRange
	GyroRange     GyroRange
	DLPF          byte // CONFIG.DLPF_CFG, 0-6
	SampleRateDiv byte // SMPLRT_DIV
}

// DefaultSettings mirrors the classic Raspberry Pi bring-up sequence:
// divider 7, DLPF off, gyro at ±2000°/s, accel at ±2g.
func DefaultSettings() Settings {
	return Settings{
		AccelRange:    Accel2G,
		GyroRange:     Gyro2000DPS,
		DLPF:          0,
		SampleRateDiv: 7,
	}
}

// Device is an MPU6050 on an I2C bus.
type Device struct {
	dev    i2c.Dev
	closer i2c.BusCloser
}

// Open initializes periph, opens the named I2C bus ("" for the first one)
// and returns a Device at addr. The bus is closed by Device.Close.
func Open(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %w", ErrDeviceUnavailable, err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("%w: open I2C bus %q: %w", ErrDeviceUnavailable, busName, err)
	}
	d := New(bus, addr)
	d.closer = bus
	return d, nil
}

// New returns a Device on an already opened bus. Close does not close bus.
func New(bus i2c.Bus, addr uint16) *Device {
	return &Device{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

// Addr returns the 7-bit I2C address of the device.
func (d *Device) Addr() uint16 {
	return d.dev.Addr
}

// ReadRegister reads a single register.
func (d *Device) ReadRegister(reg byte) (byte, error) {
	var r [1]byte
	if err := d.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, fmt.Errorf("%w: read register 0x%02X: %w", ErrDeviceUnavailable, reg, err)
	}
	return r[0], nil
}

// WriteRegister writes a single register.
func (d *Device) WriteRegister(reg, value byte) error {
	if err := d.dev.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("%w: write register 0x%02X: %w", ErrDeviceUnavailable, reg, err)
	}
	return nil
}

// Init checks WHO_AM_I and configures sample rate, clock, filter and ranges.
func (d *Device) Init(s Settings) error {
	return Configure(d, s)
}

// Temperature reads the die temperature in °C.
func (d *Device) Temperature() (float64, error) {
	return ReadTemperature(d)
}

// Close puts the chip to sleep and closes the bus if Open created it.
func (d *Device) Close() error {
	err := d.WriteRegister(RegPwrMgmt1, pwrSleep)
	if err != nil {
		log.Printf("mpu6050: failed to put device 0x%02X to sleep: %v", d.dev.Addr, err)
	}
	if d.closer != nil {
		if cerr := d.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// RegisterReadWriter is what Configure needs from a device.
type RegisterReadWriter interface {
	RegisterReader
	RegisterWriter
}

// Configure runs the bring-up sequence on any register device.
func Configure(d RegisterReadWriter, s Settings) error {
	if s.AccelRange > Accel16G {
		return fmt.Errorf("mpu6050: accel range %d out of range 0-3", s.AccelRange)
	}
	if s.GyroRange > Gyro2000DPS {
		return fmt.Errorf("mpu6050: gyro range %d out of range 0-3", s.GyroRange)
	}
	if s.DLPF > 6 {
		return fmt.Errorf("mpu6050: DLPF config %d out of range 0-6", s.DLPF)
	}

	id, err := d.ReadRegister(RegWhoAmI)
	if err != nil {
		return fmt.Errorf("WHO_AM_I: %w", err)
	}
	if id != whoAmIValue {
		return fmt.Errorf("mpu6050: unexpected WHO_AM_I 0x%02X, want 0x%02X", id, whoAmIValue)
	}

	writes := []struct {
		name  string
		reg   byte
		value byte
	}{
		{"sample rate divider", RegSmplrtDiv, s.SampleRateDiv},
		{"power management", RegPwrMgmt1, pwrClkPLLGyX},
		{"configuration", RegConfig, s.DLPF},
		{"gyro configuration", RegGyroConfig, byte(s.GyroRange) << 3},
		{"accel configuration", RegAccelConfig, byte(s.AccelRange) << 3},
		{"interrupt enable", RegIntEnable, 1},
	}
	for _, w := range writes {
		if err := d.WriteRegister(w.reg, w.value); err != nil {
			return fmt.Errorf("%s: %w", w.name, err)
		}
	}

	log.Printf("mpu6050: accelerometer range %s, gyroscope range %s", s.AccelRange, s.GyroRange)
	internalRate := 1000
	if s.DLPF == 0 {
		internalRate = 8000
	}
	log.Printf("mpu6050: DLPF %d, sample rate divider %d (output rate: %d Hz)",
		s.DLPF, s.SampleRateDiv, internalRate/(1+int(s.SampleRateDiv)))
	return nil
}

// ReadTemperature reads TEMP_OUT_H/L and converts it to °C.
func ReadTemperature(r RegisterReader) (float64, error) {
	high, err := r.ReadRegister(RegTempOutH)
	if err != nil {
		return 0, fmt.Errorf("temperature high: %w", err)
	}
	low, err := r.ReadRegister(RegTempOutH + 1)
	if err != nil {
		return 0, fmt.Errorf("temperature low: %w", err)
	}
	return ToCelsius(Decode(high, low)), nil
}
