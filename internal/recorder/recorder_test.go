// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

// stepClock only moves when the loop sleeps.
type stepClock struct {
	now    time.Time
	sleeps int
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) After(d time.Duration) <-chan time.Time {
	c.sleeps++
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

type memorySink struct {
	samples []Sample
	err     error
	closed  bool
}

func (m *memorySink) Write(s Sample) error {
	if m.err != nil {
		return m.err
	}
	m.samples = append(m.samples, s)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

var epoch = time.Date(2022, 3, 5, 21, 14, 2, 0, time.UTC)

func newTestDevice() *mpu6050.SimDevice {
	d := mpu6050.NewSimDevice()
	d.SetRaw(mpu6050.RegAccelXOutH, 0)
	d.SetRaw(mpu6050.RegAccelYOutH, 16384)
	d.SetRaw(mpu6050.RegAccelZOutH, -16384)
	return d
}

func TestRunStopsAtDeadline(t *testing.T) {
	clk := &stepClock{now: epoch}
	sink := &memorySink{}
	rec, err := New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: time.Second,
		Duration: 5 * time.Second,
		Clock:    clk,
	}, sink)
	test.That(t, err, test.ShouldBeNil)

	n, err := rec.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 5)
	test.That(t, len(sink.samples), test.ShouldEqual, 5)
	for i, s := range sink.samples {
		test.That(t, s.Time, test.ShouldEqual, epoch.Add(time.Duration(i)*time.Second))
		test.That(t, s.Accel, test.ShouldResemble, mpu6050.AxisTriple{X: 0, Y: 1, Z: -1})
		test.That(t, s.RawAccel, test.ShouldResemble, [3]int16{0, 16384, -16384})
	}

	test.That(t, rec.Close(), test.ShouldBeNil)
	test.That(t, sink.closed, test.ShouldBeTrue)
}

func TestRunUnevenInterval(t *testing.T) {
	clk := &stepClock{now: epoch}
	sink := &memorySink{}
	rec, err := New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: 300 * time.Millisecond,
		Duration: time.Second,
		Clock:    clk,
	}, sink)
	test.That(t, err, test.ShouldBeNil)

	n, err := rec.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	// 0, 300, 600, 900 ms
	test.That(t, n, test.ShouldEqual, 4)
}

func TestRunSixReadsPerTick(t *testing.T) {
	dev := newTestDevice()
	rec, err := New(dev, Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: time.Second,
		Duration: 3 * time.Second,
		Clock:    &stepClock{now: epoch},
	})
	test.That(t, err, test.ShouldBeNil)

	n, err := rec.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(dev.Reads()), test.ShouldEqual, 6*n)
}

func TestRunWithGyroAndTemperature(t *testing.T) {
	dev := newTestDevice()
	dev.SetRaw(mpu6050.RegGyroXOutH, 164)
	dev.SetRaw(mpu6050.RegTempOutH, 0)
	sink := &memorySink{}
	rec, err := New(dev, Options{
		Accel:           mpu6050.AccelSampler(mpu6050.Accel2G),
		Gyro:            mpu6050.GyroSampler(mpu6050.Gyro2000DPS),
		ReadGyro:        true,
		ReadTemperature: true,
		Interval:        time.Second,
		Duration:        time.Second,
		Clock:           &stepClock{now: epoch},
	}, sink)
	test.That(t, err, test.ShouldBeNil)

	n, err := rec.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 1)
	test.That(t, sink.samples[0].Gyro.X, test.ShouldAlmostEqual, 10.0)
	test.That(t, sink.samples[0].Temperature, test.ShouldAlmostEqual, 36.53)
	// accel 6, gyro 6, temperature 2
	test.That(t, len(dev.Reads()), test.ShouldEqual, 14)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &memorySink{}
	clk := &cancelClock{stepClock: stepClock{now: epoch}, cancelAfter: 3, cancel: cancel}
	rec, err := New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: time.Second,
		Clock:    clk,
	}, sink)
	test.That(t, err, test.ShouldBeNil)

	n, err := rec.Run(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 3)
}

// cancelClock cancels the run after a number of sleeps.
type cancelClock struct {
	stepClock
	cancelAfter int
	cancel      context.CancelFunc
}

func (c *cancelClock) After(d time.Duration) <-chan time.Time {
	ch := c.stepClock.After(d)
	if c.sleeps == c.cancelAfter {
		c.cancel()
	}
	return ch
}

// notifySink hands every sample to a channel.
type notifySink struct{ ch chan Sample }

func (s notifySink) Write(sample Sample) error {
	s.ch <- sample
	return nil
}

func (s notifySink) Close() error { return nil }

func TestRunCancelInterruptsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := notifySink{ch: make(chan Sample, 1)}
	rec, err := New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: time.Hour,
		Clock:    clock.NewMock(), // never advanced
	}, sink)
	test.That(t, err, test.ShouldBeNil)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := rec.Run(ctx)
		done <- result{n, err}
	}()

	<-sink.ch
	cancel()

	select {
	case res := <-done:
		test.That(t, res.err, test.ShouldBeNil)
		test.That(t, res.n, test.ShouldEqual, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept waiting for the next tick after cancel")
	}
}

func TestRunPropagatesDeviceError(t *testing.T) {
	dev := newTestDevice()
	busErr := errors.New("remote I/O error")
	dev.Err = errors.Join(mpu6050.ErrDeviceUnavailable, busErr)
	rec, err := New(dev, Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: time.Second,
		Duration: time.Minute,
		Clock:    &stepClock{now: epoch},
	})
	test.That(t, err, test.ShouldBeNil)

	n, err := rec.Run(context.Background())
	test.That(t, n, test.ShouldEqual, 0)
	test.That(t, errors.Is(err, mpu6050.ErrDeviceUnavailable), test.ShouldBeTrue)
	test.That(t, errors.Is(err, busErr), test.ShouldBeTrue)
}

func TestRunPropagatesSinkError(t *testing.T) {
	sinkErr := errors.New("disk full")
	rec, err := New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: time.Second,
		Duration: time.Minute,
		Clock:    &stepClock{now: epoch},
	}, &memorySink{err: sinkErr})
	test.That(t, err, test.ShouldBeNil)

	_, err = rec.Run(context.Background())
	test.That(t, errors.Is(err, sinkErr), test.ShouldBeTrue)
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(nil, Options{Accel: mpu6050.AccelSampler(mpu6050.Accel2G)})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = New(newTestDevice(), Options{Accel: mpu6050.SamplerConfig{Name: "accel"}})
	test.That(t, errors.Is(err, mpu6050.ErrInvalidScale), test.ShouldBeTrue)

	_, err = New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		ReadGyro: true,
	})
	test.That(t, errors.Is(err, mpu6050.ErrInvalidScale), test.ShouldBeTrue)

	_, err = New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Duration: -time.Second,
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRunWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	sink := &memorySink{}
	rec, err := New(newTestDevice(), Options{
		Accel:    mpu6050.AccelSampler(mpu6050.Accel2G),
		Interval: 100 * time.Millisecond,
		Duration: time.Second,
		Clock:    mock,
	}, sink)
	test.That(t, err, test.ShouldBeNil)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := rec.Run(context.Background())
		done <- result{n, err}
	}()

	var res result
	for waiting := true; waiting; {
		select {
		case res = <-done:
			waiting = false
		default:
			mock.Add(10 * time.Millisecond)
		}
	}

	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.n, test.ShouldBeBetweenOrEqual, 1, 10)
	test.That(t, len(sink.samples), test.ShouldEqual, res.n)
	first := sink.samples[0].Time
	for i, s := range sink.samples {
		// the deadline is checked before the tick reads the clock, so allow one step
		test.That(t, int64(s.Time.Sub(first)), test.ShouldBeLessThanOrEqualTo, int64(time.Second+10*time.Millisecond))
		if i > 0 {
			test.That(t, int64(s.Time.Sub(sink.samples[i-1].Time)), test.ShouldBeGreaterThanOrEqualTo, int64(100*time.Millisecond))
		}
	}
}
