// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

// Panel size of the SSD1306 modules we use.
const (
	displayWidth  = 128
	displayHeight = 64
)

// DisplayData holds the latest sample for the OLED.
type DisplayData struct {
	mu     sync.RWMutex
	sample recorder.Sample
	have   bool
}

// Update stores a published sample.
func (d *DisplayData) Update(payload []byte) error {
	var s recorder.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return fmt.Errorf("sample unmarshal error: %w", err)
	}
	d.mu.Lock()
	d.sample = s
	d.have = true
	d.mu.Unlock()
	return nil
}

// Snapshot returns the latest sample and whether one has arrived.
func (d *DisplayData) Snapshot() (recorder.Sample, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sample, d.have
}

// RunDisplay shows the latest sample from TOPIC_SAMPLE on an SSD1306 OLED.
func RunDisplay(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("display: MQTT_BROKER is not set")
	}

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// NewI2C always addresses 0x3C; config.validate enforces DISPLAY_I2C_ADDR matches.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), RenderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := recorder.Connect(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicSample, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := data.Update(msg.Payload()); err != nil {
			log.Printf("display: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicSample)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for range ticker.C {
		s, have := data.Snapshot()
		if err := dev.Draw(dev.Bounds(), RenderSample(s, have), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}
	return nil
}

// RenderSample draws accelerometer (g) and gyroscope (°/s) readings, or a
// waiting message until the first sample arrives.
func RenderSample(s recorder.Sample, have bool) *image1bit.VerticalLSB {
	if !have {
		return renderLines([]textLine{
			{0, 26, "MPU6050"},
			{0, 39, "Waiting..."},
		})
	}
	return renderLines([]textLine{
		{0, 13, fmt.Sprintf("A:%5.2f %5.2f", s.Accel.X, s.Accel.Y)},
		{0, 26, fmt.Sprintf("  %5.2f g", s.Accel.Z)},
		{0, 39, fmt.Sprintf("G:%6.1f %6.1f", s.Gyro.X, s.Gyro.Y)},
		{0, 52, fmt.Sprintf("  %6.1f T:%4.1f", s.Gyro.Z, s.Temperature)},
	})
}

// RenderSplash is shown while waiting for the broker.
func RenderSplash() *image1bit.VerticalLSB {
	return renderLines([]textLine{
		{10, 26, "MPU6050"},
		{5, 43, "Logger"},
	})
}

type textLine struct {
	x, y int
	text string
}

func renderLines(lines []textLine) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for _, l := range lines {
		drawer.Dot = fixed.P(l.x, l.y)
		drawer.DrawString(l.text)
	}
	return img
}
