// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package recorder polls an MPU6050 at a fixed interval and hands every
// sample to a set of sinks until a deadline passes.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

// Clock is the time source of the poll loop. clock.Clock satisfies it.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Options configures a Recorder.
type Options struct {
	Accel           mpu6050.SamplerConfig
	Gyro            mpu6050.SamplerConfig
	ReadGyro        bool
	ReadTemperature bool
	Interval        time.Duration
	Duration        time.Duration // 0 runs until ctx is cancelled
	Clock           Clock         // nil uses the wall clock
}

// Recorder reads one Sample per tick and writes it to every sink.
type Recorder struct {
	dev   mpu6050.RegisterReader
	opts  Options
	accel mpu6050.Sampler
	gyro  mpu6050.Sampler
	clock Clock
	sinks []Sink
}

// New validates opts. Sinks are closed by Close, not by Run.
func New(dev mpu6050.RegisterReader, opts Options, sinks ...Sink) (*Recorder, error) {
	if dev == nil {
		return nil, errors.New("recorder: nil device")
	}
	if opts.Interval < 0 || opts.Duration < 0 {
		return nil, fmt.Errorf("recorder: negative interval %v or duration %v", opts.Interval, opts.Duration)
	}
	accel, err := mpu6050.NewSampler(opts.Accel)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	r := &Recorder{dev: dev, opts: opts, accel: accel, clock: opts.Clock, sinks: sinks}
	if opts.ReadGyro {
		if r.gyro, err = mpu6050.NewSampler(opts.Gyro); err != nil {
			return nil, fmt.Errorf("recorder: %w", err)
		}
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	return r, nil
}

// Tick reads one sample without touching the sinks.
func (r *Recorder) Tick() (Sample, error) {
	s := Sample{Time: r.clock.Now()}

	raw, err := r.accel.SampleRaw(r.dev)
	if err != nil {
		return Sample{}, err
	}
	s.RawAccel = raw
	s.Accel = r.accel.Convert(raw)

	if r.opts.ReadGyro {
		if s.Gyro, err = r.gyro.Sample(r.dev); err != nil {
			return Sample{}, err
		}
	}
	if r.opts.ReadTemperature {
		if s.Temperature, err = mpu6050.ReadTemperature(r.dev); err != nil {
			return Sample{}, err
		}
	}
	return s, nil
}

// Run polls until Duration has elapsed since the start or ctx is cancelled,
// checking both before every tick, so a run takes ceil(Duration/Interval)
// samples on an exact clock. Cancelling ctx also ends the wait between
// ticks. It returns the number of samples written. The first read or sink
// error stops the loop.
func (r *Recorder) Run(ctx context.Context) (int, error) {
	start := r.clock.Now()
	n := 0
	for {
		if ctx.Err() != nil {
			return n, nil
		}
		if r.opts.Duration > 0 && r.clock.Now().Sub(start) >= r.opts.Duration {
			return n, nil
		}

		s, err := r.Tick()
		if err != nil {
			return n, err
		}
		for _, sink := range r.sinks {
			if err := sink.Write(s); err != nil {
				return n, fmt.Errorf("sink: %w", err)
			}
		}
		n++

		select {
		case <-ctx.Done():
			return n, nil
		case <-r.clock.After(r.opts.Interval):
		}
	}
}

// Close closes every sink and returns the first error.
func (r *Recorder) Close() error {
	var first error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
