// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/GermanBionicSystems/powermon/ina226"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/physic"
)

// sample is one reading and when it was taken, relative to the first one.
type sample struct {
	at time.Duration
	ina226.PowerMonitor
}

type series struct {
	name    string
	unit    string
	r, g, b float64
	value   func(s sample) float64
}

var traces = []series{
	{name: "bus voltage", unit: "V", r: 0.1, g: 0.3, b: 0.8, value: func(s sample) float64 { return float64(s.Voltage) / float64(physic.Volt) }},
	{name: "current", unit: "A", r: 0.8, g: 0.2, b: 0.1, value: func(s sample) float64 { return float64(s.Current) / float64(physic.Ampere) }},
	{name: "power", unit: "W", r: 0.1, g: 0.6, b: 0.2, value: func(s sample) float64 { return float64(s.Power) / float64(physic.Watt) }},
}

const (
	plotMargin = 48
	labelSize  = 12
)

// renderPlot draws one panel per series, stacked vertically.
func renderPlot(samples []sample, width, height int) (*gg.Context, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to plot")
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: labelSize}))

	panel := float64(height) / float64(len(traces))
	last := samples[len(samples)-1].at
	for i, s := range traces {
		top := float64(i) * panel
		x0, x1 := float64(plotMargin), float64(width-plotMargin/2)
		y0, y1 := top+plotMargin/2, top+panel-plotMargin/2

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range samples {
			v := s.value(p)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi == lo {
			lo, hi = lo-0.5, hi+0.5
		}

		dc.SetRGB(0.85, 0.85, 0.85)
		dc.SetLineWidth(1)
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		dc.Stroke()

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("%s (%s)", s.name, s.unit), x0, y0-4, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("%.4g", hi), x0-4, y0, 1, 1)
		dc.DrawStringAnchored(fmt.Sprintf("%.4g", lo), x0-4, y1, 1, 0)

		dc.SetRGB(s.r, s.g, s.b)
		dc.SetLineWidth(2)
		for j, p := range samples {
			x := x0
			if last > 0 {
				x += (x1 - x0) * float64(p.at) / float64(last)
			}
			y := y1 - (y1-y0)*(s.value(p)-lo)/(hi-lo)
			if j == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		if len(samples) == 1 {
			dc.DrawPoint(x0, y1-(y1-y0)*(s.value(samples[0])-lo)/(hi-lo), 3)
			dc.Fill()
		} else {
			dc.Stroke()
		}
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(last.String(), float64(width-plotMargin/2), float64(height)-4, 1, 0)
	return dc, nil
}

// writePlot renders samples as a PNG image to w.
func writePlot(w io.Writer, samples []sample) error {
	dc, err := renderPlot(samples, 800, 600)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}
