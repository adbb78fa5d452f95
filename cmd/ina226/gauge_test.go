// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
	"github.com/stretchr/testify/assert"
)

func TestGaugeDraw(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	g := newGauge(&buf, 10, nil)

	a.NoError(g.draw(0.5, 1, "half"))
	out := buf.String()
	a.True(strings.HasPrefix(out, "\r\033[0m"), "%q", out)
	a.Contains(out, "half")

	off := ansi256.Default.Block(color.NRGBA{0x30, 0x30, 0x30, 255})
	a.Equal(5, strings.Count(out, off), "%q", out)

	// Readings over full scale and negative currents light the whole bar.
	for _, v := range []float64{2, -1} {
		buf.Reset()
		a.NoError(g.draw(v, 1, ""))
		a.Equal(0, strings.Count(buf.String(), off))
	}

	// No full scale, nothing lit.
	buf.Reset()
	a.NoError(g.draw(1, 0, ""))
	a.Equal(10, strings.Count(buf.String(), off))

	buf.Reset()
	a.NoError(g.halt())
	a.Equal("\n\033[0m", buf.String())
}

func TestLevel(t *testing.T) {
	a := assert.New(t)
	a.Equal(color.NRGBA{0, 0xff, 0, 255}, level(0))
	a.Equal(color.NRGBA{0xff, 0xff, 0, 255}, level(0.5))
	a.Equal(color.NRGBA{0xff, 0, 0, 255}, level(1))
}
