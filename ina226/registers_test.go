// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"testing"
	"time"
)

func TestConfigWord(t *testing.T) {
	for _, test := range []struct {
		name string
		cfg  Config
		word uint16
	}{
		{name: "default", cfg: DefaultConfig, word: 0x4cdf},
		{name: "power-on", cfg: Config{Averaging: Average1, BusConversion: Conversion1100us, ShuntConversion: Conversion1100us, Mode: ModeShuntBusContinuous}, word: 0x4127},
		{name: "zero", cfg: Config{}, word: 0x4000},
		{name: "max", cfg: Config{Averaging: Average1024, BusConversion: Conversion8244us, ShuntConversion: Conversion8244us, Mode: ModeShuntBusContinuous}, word: 0x4fff},
		{name: "bus only", cfg: Config{Averaging: Average4, BusConversion: Conversion332us, ShuntConversion: Conversion140us, Mode: ModeBusTriggered}, word: 0x4282},
	} {
		t.Run(test.name, func(t *testing.T) {
			if w := test.cfg.Word(); w != test.word {
				t.Errorf("Word() expected 0x%04x received 0x%04x", test.word, w)
			}
			if c := ConfigFromWord(test.word); c != test.cfg {
				t.Errorf("ConfigFromWord(0x%04x) expected %s received %s", test.word, test.cfg, c)
			}
		})
	}
	// The reset bit never survives a round trip.
	if w := ConfigFromWord(ConfigReset | 0x4cdf).Word(); w != 0x4cdf {
		t.Errorf("expected reset bit dropped, received 0x%04x", w)
	}
}

func TestConfigSampleTime(t *testing.T) {
	for _, test := range []struct {
		cfg  Config
		want time.Duration
	}{
		{cfg: DefaultConfig, want: 512 * 1176 * time.Microsecond},
		{cfg: Config{Averaging: Average4, ShuntConversion: Conversion2116us, BusConversion: Conversion140us, Mode: ModeShuntContinuous}, want: 4 * 2116 * time.Microsecond},
		{cfg: Config{Averaging: Average1, ShuntConversion: Conversion2116us, BusConversion: Conversion140us, Mode: ModeBusTriggered}, want: 140 * time.Microsecond},
		{cfg: Config{Averaging: Average1024, Mode: ModePowerDown}, want: 0},
		{cfg: Config{Averaging: Average1024, Mode: ModeADCOff}, want: 0},
	} {
		if got := test.cfg.SampleTime(); got != test.want {
			t.Errorf("%s: SampleTime() expected %s received %s", test.cfg, test.want, got)
		}
	}
}

func TestFieldLookups(t *testing.T) {
	for i, n := range []int{1, 4, 16, 64, 128, 256, 512, 1024} {
		a, err := AveragingFor(n)
		if err != nil {
			t.Fatal(err)
		}
		if a != Averaging(i) || a.Samples() != n {
			t.Errorf("AveragingFor(%d) returned %d", n, a)
		}
	}
	if _, err := AveragingFor(3); err == nil {
		t.Error("expected an error for 3 samples")
	}

	ct, err := ConversionTimeFor(588 * time.Microsecond)
	if err != nil || ct != Conversion588us {
		t.Errorf("ConversionTimeFor(588µs) returned %d %v", ct, err)
	}
	if _, err := ConversionTimeFor(time.Millisecond); err == nil {
		t.Error("expected an error for 1ms")
	}

	for m := ModePowerDown; m <= ModeShuntBusContinuous; m++ {
		got, err := ModeFor(m.String())
		if err != nil || got != m {
			t.Errorf("ModeFor(%q) returned %d %v", m.String(), got, err)
		}
	}
	if _, err := ModeFor("sleep"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}
