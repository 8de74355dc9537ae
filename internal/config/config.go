// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

// Output formats for the sample log file.
const (
	FormatText = "text"
	FormatCSV  = "csv"
)

// DisplayAddress is the only OLED address the ssd1306 driver talks to.
const DisplayAddress uint16 = 0x3C

// Config holds all application configuration values.
type Config struct {
	// Sensor
	I2CBus   string // "" opens the first bus
	I2CAddr  uint16
	Simulate bool // use an in-memory device instead of the bus

	// Sensor ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange mpu6050.AccelRange
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange mpu6050.GyroRange

	// Sample rate configuration
	DLPFConfig    byte // CONFIG.DLPF_CFG (0-6)
	SampleRateDiv byte // output rate = internal rate / (1 + div)

	// Timing
	SampleInterval int // milliseconds
	LogDuration    int // seconds, 0 = until interrupted

	// Log file
	OutputDir    string
	OutputFormat string // "text" or "csv"

	// MQTT, empty broker disables publishing
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string
	TopicSample          string

	// Web
	WebServerPort     int
	RegisterDebugPort int

	// Display
	DisplayI2CAddr        uint16 // must be DisplayAddress
	DisplayUpdateInterval int    // milliseconds, at least 1
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	s := mpu6050.DefaultSettings()
	return &Config{
		I2CAddr:               mpu6050.DefaultAddress,
		AccelRange:            s.AccelRange,
		GyroRange:             s.GyroRange,
		DLPFConfig:            s.DLPF,
		SampleRateDiv:         s.SampleRateDiv,
		SampleInterval:        1000,
		LogDuration:           5,
		OutputDir:             ".",
		OutputFormat:          FormatCSV,
		MQTTClientIDProducer:  "mpu6050-producer",
		MQTTClientIDConsole:   "mpu6050-console",
		MQTTClientIDWeb:       "mpu6050-web",
		MQTTClientIDDisplay:   "mpu6050-display",
		TopicSample:           "mpu6050/sample",
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayI2CAddr:        DisplayAddress,
		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.I2CAddr = addr
	case "SIMULATE":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SIMULATE %q: %w", value, err)
		}
		c.Simulate = b

	// Sensor ranges
	case "ACCEL_RANGE":
		rangeVal, err := parseByte(key, value, 3)
		if err != nil {
			return fmt.Errorf("%w (0=±2g, 1=±4g, 2=±8g, 3=±16g)", err)
		}
		c.AccelRange = mpu6050.AccelRange(rangeVal)
	case "GYRO_RANGE":
		rangeVal, err := parseByte(key, value, 3)
		if err != nil {
			return fmt.Errorf("%w (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s)", err)
		}
		c.GyroRange = mpu6050.GyroRange(rangeVal)

	// Sample rate configuration
	case "DLPF_CFG":
		val, err := parseByte(key, value, 6)
		if err != nil {
			return err
		}
		c.DLPFConfig = val
	case "SMPLRT_DIV":
		val, err := parseByte(key, value, 255)
		if err != nil {
			return err
		}
		c.SampleRateDiv = val

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := parseNonNegative(key, value)
		if err != nil {
			return err
		}
		c.SampleInterval = interval
	case "LOG_DURATION":
		seconds, err := parseNonNegative(key, value)
		if err != nil {
			return err
		}
		c.LogDuration = seconds

	// Log file
	case "OUTPUT_DIR":
		c.OutputDir = value
	case "OUTPUT_FORMAT":
		switch value {
		case FormatText, FormatCSV:
			c.OutputFormat = value
		default:
			return fmt.Errorf("OUTPUT_FORMAT must be %q or %q, got %q", FormatText, FormatCSV, value)
		}

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "TOPIC_SAMPLE":
		c.TopicSample = value

	// Web
	case "WEB_SERVER_PORT":
		port, err := parsePort(key, value)
		if err != nil {
			return err
		}
		c.WebServerPort = port
	case "REGISTER_DEBUG_PORT":
		port, err := parsePort(key, value)
		if err != nil {
			return err
		}
		c.RegisterDebugPort = port

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.DisplayI2CAddr = addr
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseByte(key, value string, limit int) (byte, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < 0 || val > limit {
		return 0, fmt.Errorf("%s must be 0-%d, got %d", key, limit, val)
	}
	return byte(val), nil
}

func parseNonNegative(key, value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, val)
	}
	return val, nil
}

func parsePositive(key, value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", key, val)
	}
	return val, nil
}

func parsePort(key, value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s must be 1-65535, got %d", key, port)
	}
	return port, nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if addr > 0x7F {
		return 0, fmt.Errorf("%s must be a 7-bit address, got 0x%X", key, addr)
	}
	return uint16(addr), nil
}

// validate checks that required fields are set and the scales are usable.
func (c *Config) validate() error {
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if err := c.AccelSampler().Validate(); err != nil {
		return fmt.Errorf("ACCEL_RANGE: %w", err)
	}
	if err := c.GyroSampler().Validate(); err != nil {
		return fmt.Errorf("GYRO_RANGE: %w", err)
	}
	if c.DisplayI2CAddr != DisplayAddress {
		return fmt.Errorf("DISPLAY_I2C_ADDR must be 0x%02X, got 0x%02X", DisplayAddress, c.DisplayI2CAddr)
	}
	if c.MQTTBroker != "" && c.TopicSample == "" {
		return fmt.Errorf("TOPIC_SAMPLE is required when MQTT_BROKER is set")
	}
	return nil
}

// Settings returns the chip settings written at startup.
func (c *Config) Settings() mpu6050.Settings {
	return mpu6050.Settings{
		AccelRange:    c.AccelRange,
		GyroRange:     c.GyroRange,
		DLPF:          c.DLPFConfig,
		SampleRateDiv: c.SampleRateDiv,
	}
}

// AccelSampler returns the accelerometer sampler for the configured range.
func (c *Config) AccelSampler() mpu6050.SamplerConfig {
	return mpu6050.AccelSampler(c.AccelRange)
}

// GyroSampler returns the gyroscope sampler for the configured range.
func (c *Config) GyroSampler() mpu6050.SamplerConfig {
	return mpu6050.GyroSampler(c.GyroRange)
}

// Interval returns SAMPLE_INTERVAL as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.SampleInterval) * time.Millisecond
}

// Duration returns LOG_DURATION as a duration.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.LogDuration) * time.Second
}
