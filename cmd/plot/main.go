// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/relabs-tech/mpu6050_logger/internal/plot"
)

func main() {
	in := flag.String("in", "", "CSV log written by the logger")
	out := flag.String("out", "", "PNG file to write (default: input with .png)")
	width := flag.Float64("width", 8, "image width in inches")
	height := flag.Float64("height", 6, "image height in inches")
	flag.Parse()

	if *in == "" {
		log.Fatalf("usage: plot -in file.csv [-out file.png]")
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".png"
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("failed to open input: %v", err)
	}
	points, err := plot.ReadCSV(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to read %s: %v", *in, err)
	}

	w, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	if err := plot.Render(points, w, vg.Length(*width)*vg.Inch, vg.Length(*height)*vg.Inch); err != nil {
		w.Close()
		log.Fatalf("failed to render plot: %v", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
	log.Printf("plot: %d points from %s written to %s", len(points), *in, *out)
}
