// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recorder

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Sink receives every recorded sample.
type Sink interface {
	Write(Sample) error
	Close() error
}

// TextSink writes one FormatLine per sample.
type TextSink struct {
	w *bufio.Writer
	c io.Closer
}

// NewTextSink writes to w and closes it on Close.
func NewTextSink(w io.WriteCloser) *TextSink {
	return &TextSink{w: bufio.NewWriter(w), c: w}
}

func (t *TextSink) Write(s Sample) error {
	if _, err := fmt.Fprintln(t.w, FormatLine(s)); err != nil {
		return err
	}
	return t.w.Flush()
}

func (t *TextSink) Close() error {
	if err := t.w.Flush(); err != nil {
		t.c.Close()
		return err
	}
	return t.c.Close()
}

// CSVSink writes "timestamp,x,y,z" rows without a header.
type CSVSink struct {
	w *csv.Writer
	c io.Closer
}

// NewCSVSink writes to w and closes it on Close.
func NewCSVSink(w io.WriteCloser) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w), c: w}
}

func (c *CSVSink) Write(s Sample) error {
	row := []string{
		FormatTimestamp(s.Time),
		strconv.FormatFloat(s.Accel.X, 'f', -1, 64),
		strconv.FormatFloat(s.Accel.Y, 'f', -1, 64),
		strconv.FormatFloat(s.Accel.Z, 'f', -1, 64),
	}
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVSink) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.c.Close()
		return err
	}
	return c.c.Close()
}

// ConsoleSink prints raw and converted values in a human readable block.
type ConsoleSink struct {
	w        io.Writer
	withGyro bool
}

// NewConsoleSink prints to w. withGyro adds the gyroscope and temperature lines.
func NewConsoleSink(w io.Writer, withGyro bool) *ConsoleSink {
	return &ConsoleSink{w: w, withGyro: withGyro}
}

func (c *ConsoleSink) Write(s Sample) error {
	_, err := fmt.Fprintf(c.w,
		"ACCEL RAW:\nX: %d, Y: %d, Z: %d\n\n After conversion:\nX: %.4f, Y: %.4f, Z: %.4f\n",
		s.RawAccel[0], s.RawAccel[1], s.RawAccel[2], s.Accel.X, s.Accel.Y, s.Accel.Z)
	if err != nil {
		return err
	}
	if c.withGyro {
		_, err = fmt.Fprintf(c.w, "GYRO (°/s):\nX: %.2f, Y: %.2f, Z: %.2f\nTEMP: %.2f °C\n",
			s.Gyro.X, s.Gyro.Y, s.Gyro.Z, s.Temperature)
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprint(c.w, "\n \n")
	return err
}

func (c *ConsoleSink) Close() error {
	return nil
}
