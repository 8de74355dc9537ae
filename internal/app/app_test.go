// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

var epoch = time.Date(2022, 3, 5, 21, 14, 52, 67087000, time.UTC)

// stepClock only moves when the loop waits. cancel, if set, runs after
// stopAfter waits.
type stepClock struct {
	now       time.Time
	sleeps    int
	stopAfter int
	cancel    context.CancelFunc
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) After(d time.Duration) <-chan time.Time {
	c.sleeps++
	c.now = c.now.Add(d)
	if c.cancel != nil && c.sleeps >= c.stopAfter {
		c.cancel()
	}
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// newLevelDevice returns a configured simulated sensor lying flat: z reads 1g at ±2g.
func newLevelDevice(t *testing.T) *mpu6050.SimDevice {
	t.Helper()
	dev := mpu6050.NewSimDevice()
	if err := mpu6050.Configure(dev, mpu6050.DefaultSettings()); err != nil {
		t.Fatalf("configure: %v", err)
	}
	dev.SetRaw(mpu6050.RegAccelZOutH, 16384)
	dev.SetRaw(mpu6050.RegGyroXOutH, 164) // 10 °/s at ±2000°/s
	return dev
}

type fakeToken struct{ err error }

func (f fakeToken) Wait() bool                     { return true }
func (f fakeToken) WaitTimeout(time.Duration) bool { return true }
func (f fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (f fakeToken) Error() error { return f.err }

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return fakeToken{}
}
