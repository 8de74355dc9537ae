// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package plot renders recorded accelerometer CSV files as time-series charts.
package plot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

// Point is one row of a recorded CSV file.
type Point struct {
	Time time.Time
	X    float64
	Y    float64
}

// ReadCSV reads the first three columns (timestamp, x, y) of every row.
// There is no header; further columns are ignored.
func ReadCSV(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var points []Point
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("csv line %d: want at least 3 columns, got %d", line, len(rec))
		}
		ts, err := time.Parse(recorder.TimestampLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: timestamp: %w", line, err)
		}
		x, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: x: %w", line, err)
		}
		y, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: y: %w", line, err)
		}
		points = append(points, Point{Time: ts, X: x, Y: y})
	}
	return points, nil
}

// Build returns the two stacked plots: Accel x over time and Accel y over time.
func Build(points []Point) ([]*plot.Plot, error) {
	if len(points) == 0 {
		return nil, errors.New("plot: no points")
	}
	xs := make(plotter.XYs, len(points))
	ys := make(plotter.XYs, len(points))
	for i, p := range points {
		t := float64(p.Time.UnixNano()) / 1e9
		xs[i] = plotter.XY{X: t, Y: p.X}
		ys[i] = plotter.XY{X: t, Y: p.Y}
	}

	var plots []*plot.Plot
	for _, series := range []struct {
		label string
		data  plotter.XYs
	}{
		{"Accel x", xs},
		{"Accel y", ys},
	} {
		p := plot.New()
		p.X.Label.Text = "time"
		p.Y.Label.Text = series.label
		p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05.000"}
		p.Add(plotter.NewGrid())

		line, err := plotter.NewLine(series.data)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", series.label, err)
		}
		p.Add(line)
		plots = append(plots, p)
	}
	return plots, nil
}

// Render draws the plots one above the other and writes a PNG to w.
func Render(points []Point, w io.Writer, width, height vg.Length) error {
	plots, err := Build(points)
	if err != nil {
		return err
	}

	rows := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		rows[i] = []*plot.Plot{p}
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(rows),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,

		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}

	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
