// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

// RunLogger asks for a device name on stdin, then records LOG_DURATION
// seconds of accelerometer data into OUTPUT_DIR while echoing to stdout.
func RunLogger(cfg *config.Config) error {
	device, err := PromptDeviceName(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	dev, err := OpenSensor(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, n, err := RecordToFile(ctx, cfg, dev, device, os.Stdout, clock.New())
	if path != "" {
		log.Printf("logger: wrote %d samples to %s", n, path)
	}
	return err
}

// PromptDeviceName writes a prompt to out and reads one line from in.
func PromptDeviceName(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the device name: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read device name: %w", err)
	}
	name := strings.TrimSpace(line)
	if name == "" {
		return "", errors.New("device name is required")
	}
	return name, nil
}

// RecordToFile creates the log file for device in cfg.OutputDir and runs
// a recorder into it. The file name is stamped with clk's current time.
// It returns the file path and the number of samples written.
func RecordToFile(ctx context.Context, cfg *config.Config, dev mpu6050.RegisterReader, device string, console io.Writer, clk recorder.Clock) (string, int, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	ext := "txt"
	if cfg.OutputFormat == config.FormatCSV {
		ext = "csv"
	}
	path := filepath.Join(cfg.OutputDir, recorder.FileName(device, cfg.Duration(), clk.Now(), ext))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create log file: %w", err)
	}

	var fileSink recorder.Sink
	if cfg.OutputFormat == config.FormatCSV {
		fileSink = recorder.NewCSVSink(f)
	} else {
		fileSink = recorder.NewTextSink(f)
	}

	rec, err := recorder.New(dev, recorder.Options{
		Accel:    cfg.AccelSampler(),
		Interval: cfg.Interval(),
		Duration: cfg.Duration(),
		Clock:    clk,
	}, fileSink, recorder.NewConsoleSink(console, false))
	if err != nil {
		f.Close()
		return "", 0, err
	}

	log.Printf("logger: recording %s for %v into %s", device, cfg.Duration(), path)
	n, err := rec.Run(ctx)
	if cerr := rec.Close(); err == nil {
		err = cerr
	}
	return path, n, err
}
