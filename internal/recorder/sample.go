// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recorder

import (
	"fmt"
	"strings"
	"time"

	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

// TimestampLayout is used in log lines and CSV rows.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Sample is everything read from the sensor in one tick.
type Sample struct {
	Time        time.Time          `json:"time"`
	Accel       mpu6050.AxisTriple `json:"accel"`            // g
	Gyro        mpu6050.AxisTriple `json:"gyro"`             // °/s
	RawAccel    [3]int16           `json:"raw_accel"`        // counts
	Temperature float64            `json:"temp_c,omitempty"` // °C
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatLine renders the text log line "<timestamp> -- (<x>, <y>, <z>)".
func FormatLine(s Sample) string {
	return fmt.Sprintf("%s -- (%.6f, %.6f, %.6f)",
		FormatTimestamp(s.Time), s.Accel.X, s.Accel.Y, s.Accel.Z)
}

// FileName builds "<device>_accelerometer_data_<seconds>s_<unix.micros>.<ext>".
func FileName(device string, duration time.Duration, at time.Time, ext string) string {
	return fmt.Sprintf("%s_accelerometer_data_%ds_%d.%06d.%s",
		sanitizeDevice(device), int(duration.Seconds()), at.Unix(), at.Nanosecond()/1000, ext)
}

func sanitizeDevice(device string) string {
	device = strings.ToLower(strings.TrimSpace(device))
	if device == "" {
		return "device"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '\t' || r == '/' || r == '\\' || r == '.':
			return '_'
		}
		return -1
	}, device)
}
