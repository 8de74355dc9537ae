// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

// Default I2C addresses. AD0 low selects 0x68, AD0 high selects 0x69.
const (
	DefaultAddress   uint16 = 0x68
	AlternateAddress uint16 = 0x69
)

// Register addresses used by this package (MPU-6000/6050 register map rev 4.2).
const (
	RegSmplrtDiv   byte = 0x19
	RegConfig      byte = 0x1A
	RegGyroConfig  byte = 0x1B
	RegAccelConfig byte = 0x1C
	RegIntEnable   byte = 0x38
	RegIntStatus   byte = 0x3A

	RegAccelXOutH byte = 0x3B
	RegAccelYOutH byte = 0x3D
	RegAccelZOutH byte = 0x3F
	RegTempOutH   byte = 0x41
	RegGyroXOutH  byte = 0x43
	RegGyroYOutH  byte = 0x45
	RegGyroZOutH  byte = 0x47

	RegPwrMgmt1 byte = 0x6B
	RegPwrMgmt2 byte = 0x6C
	RegWhoAmI   byte = 0x75
)

// whoAmIValue is what WHO_AM_I returns regardless of the AD0 strap.
const whoAmIValue byte = 0x68

const (
	pwrSleep     byte = 1 << 6
	pwrClkPLLGyX byte = 0x01
)

// BitField describes one field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is register metadata served by the register debug tool.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterMap returns metadata for the MPU6050 registers this project touches.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Configuration
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyroscope Output Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},

		// Interrupts
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "I2C_MST_INT_EN", Description: "I2C master interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status"},
				{Bits: "3", Name: "I2C_MST_INT", Description: "I2C master interrupt status"},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status"},
			}},

		// Sensor data (read-only)
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3C", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3E", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x40", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x42", Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x44", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x46", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x48", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Power management
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Disabled, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle mode", Values: "0=Disabled, 1=Cycle"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro, 2=PLL Y gyro, 3=PLL Z gyro"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "LP_WAKE_CTRL", Description: "Low power wake-up frequency", Values: "0=1.25Hz, 1=5Hz, 2=20Hz, 3=40Hz"},
				{Bits: "5", Name: "STBY_XA", Description: "Standby X accelerometer", Values: "0=Enabled, 1=Standby"},
				{Bits: "4", Name: "STBY_YA", Description: "Standby Y accelerometer", Values: "0=Enabled, 1=Standby"},
				{Bits: "3", Name: "STBY_ZA", Description: "Standby Z accelerometer", Values: "0=Enabled, 1=Standby"},
				{Bits: "2", Name: "STBY_XG", Description: "Standby X gyro", Values: "0=Enabled, 1=Standby"},
				{Bits: "1", Name: "STBY_YG", Description: "Standby Y gyro", Values: "0=Enabled, 1=Standby"},
				{Bits: "0", Name: "STBY_ZG", Description: "Standby Z gyro", Values: "0=Enabled, 1=Standby"},
			}},

		// Identification
		{Address: "0x75", Name: "WHO_AM_I", Description: "Device ID", Access: "R", Default: "0x68",
			BitFields: []BitField{
				{Bits: "6:1", Name: "WHO_AM_I", Description: "Upper 6 bits of the 7-bit I2C address", Values: "0x68"},
			}},
	}
}
