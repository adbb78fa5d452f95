// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"image/color"
	"io"
	"math"

	"github.com/maruel/ansi256"
)

// gauge draws a single line bar on a terminal using ANSI colour codes,
// overwriting itself on every update.
type gauge struct {
	w       io.Writer
	width   int
	palette ansi256.Palette

	buf bytes.Buffer
}

func newGauge(w io.Writer, width int, p *ansi256.Palette) *gauge {
	if p == nil {
		p = ansi256.Default
	}
	return &gauge{w: w, width: width, palette: *p}
}

// draw fills the bar in proportion to |value|/full and prints label after it.
func (g *gauge) draw(value, full float64, label string) error {
	lit := 0
	if full > 0 {
		lit = int(math.Round(math.Abs(value) / full * float64(g.width)))
	}
	if lit > g.width {
		lit = g.width
	}
	g.buf.Reset()
	_, _ = g.buf.WriteString("\r\033[0m")
	for i := 0; i < g.width; i++ {
		c := color.NRGBA{0x30, 0x30, 0x30, 255}
		if i < lit {
			c = level(float64(i) / float64(g.width))
		}
		_, _ = io.WriteString(&g.buf, g.palette.Block(c))
	}
	_, _ = g.buf.WriteString("\033[0m ")
	_, _ = g.buf.WriteString(label)
	_, _ = g.buf.WriteString("\033[K")
	_, err := g.buf.WriteTo(g.w)
	return err
}

// halt moves past the bar and resets the terminal colours.
func (g *gauge) halt() error {
	_, err := g.w.Write([]byte("\n\033[0m"))
	return err
}

// level goes from green at 0 through yellow to red at 1.
func level(f float64) color.NRGBA {
	if f < 0.5 {
		return color.NRGBA{byte(510 * f), 0xff, 0, 255}
	}
	return color.NRGBA{0xff, byte(510 * (1 - f)), 0, 255}
}
