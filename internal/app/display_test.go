// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) {
				n++
			}
		}
	}
	return n
}

func TestDisplayData(t *testing.T) {
	var d DisplayData
	_, have := d.Snapshot()
	test.That(t, have, test.ShouldBeFalse)

	payload, err := json.Marshal(recorder.Sample{Time: epoch, Accel: mpu6050.AxisTriple{Z: 1}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Update(payload), test.ShouldBeNil)

	s, have := d.Snapshot()
	test.That(t, have, test.ShouldBeTrue)
	test.That(t, s.Accel.Z, test.ShouldEqual, 1.0)

	test.That(t, d.Update([]byte("{")), test.ShouldNotBeNil)
	s, _ = d.Snapshot()
	test.That(t, s.Accel.Z, test.ShouldEqual, 1.0)
}

func TestRenderSample(t *testing.T) {
	waiting := RenderSample(recorder.Sample{}, false)
	test.That(t, waiting.Bounds().Dx(), test.ShouldEqual, displayWidth)
	test.That(t, waiting.Bounds().Dy(), test.ShouldEqual, displayHeight)
	test.That(t, litPixels(waiting), test.ShouldBeGreaterThan, 0)

	reading := RenderSample(recorder.Sample{Accel: mpu6050.AxisTriple{X: 0.12, Y: -0.5, Z: 1}}, true)
	test.That(t, litPixels(reading), test.ShouldBeGreaterThan, litPixels(waiting))

	test.That(t, litPixels(RenderSplash()), test.ShouldBeGreaterThan, 0)
}

func TestRunDisplayNeedsBroker(t *testing.T) {
	test.That(t, RunDisplay(config.Default()), test.ShouldNotBeNil)
}
