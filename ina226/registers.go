// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"fmt"
	"time"
)

// Register indexes.
const (
	regConfig         byte = 0x00 // R/W
	regShuntVoltage   byte = 0x01 // R, signed
	regBusVoltage     byte = 0x02 // R
	regPower          byte = 0x03 // R
	regCurrent        byte = 0x04 // R, signed
	regCalibration    byte = 0x05 // R/W
	regManufacturerID byte = 0xfe // R
	regDieID          byte = 0xff // R
)

// Configuration register layout
//
//	 15   14  13  12   11  10   9     8     7     6     5    4    3    2    1    0
//	RST   1   -   -  AVG2 AVG1 AVG0 VBUS2 VBUS1 VBUS0 VSH2 VSH1 VSH0 MOD3 MOD2 MOD1
const (
	// ConfigReset resets every register to its power-on value when written.
	ConfigReset uint16 = 1 << 15
	// Bit 14 reads back as 1 and is always written as 1.
	configConstBits uint16 = 1 << 14

	averagingShift = 9
	busConvShift   = 6
	shuntConvShift = 3
	modeShift      = 0
	fieldMask      = 0x07
	averagingMask  = fieldMask << averagingShift
	busConvMask    = fieldMask << busConvShift
	shuntConvMask  = fieldMask << shuntConvShift
	modeMask       = fieldMask << modeShift

	// Register values after a power-on or soft reset.
	powerOnConfig  uint16 = 0x4127
	manufacturerTI uint16 = 0x5449
	dieIDINA226    uint16 = 0x2260
)

// Averaging is the number of samples the device averages per conversion.
type Averaging uint16

const (
	Average1 Averaging = iota
	Average4
	Average16
	Average64
	Average128
	Average256
	Average512
	Average1024
)

var averagingSamples = [8]int{1, 4, 16, 64, 128, 256, 512, 1024}

// Samples returns the number of samples averaged.
func (a Averaging) Samples() int {
	return averagingSamples[a&fieldMask]
}

func (a Averaging) String() string {
	return fmt.Sprintf("%d samples", a.Samples())
}

// AveragingFor returns the Averaging setting that averages n samples.
func AveragingFor(n int) (Averaging, error) {
	for i, s := range averagingSamples {
		if s == n {
			return Averaging(i), nil
		}
	}
	return 0, fmt.Errorf("ina226: unsupported averaging count %d", n)
}

// ConversionTime is the ADC conversion time used for one bus or shunt
// voltage sample.
type ConversionTime uint16

const (
	Conversion140us ConversionTime = iota
	Conversion204us
	Conversion332us
	Conversion588us
	Conversion1100us
	Conversion2116us
	Conversion4156us
	Conversion8244us
)

var conversionTimes = [8]time.Duration{
	140 * time.Microsecond,
	204 * time.Microsecond,
	332 * time.Microsecond,
	588 * time.Microsecond,
	1100 * time.Microsecond,
	2116 * time.Microsecond,
	4156 * time.Microsecond,
	8244 * time.Microsecond,
}

// Duration returns the conversion time.
func (c ConversionTime) Duration() time.Duration {
	return conversionTimes[c&fieldMask]
}

func (c ConversionTime) String() string {
	return c.Duration().String()
}

// ConversionTimeFor returns the ConversionTime matching d exactly.
func ConversionTimeFor(d time.Duration) (ConversionTime, error) {
	for i, ct := range conversionTimes {
		if ct == d {
			return ConversionTime(i), nil
		}
	}
	return 0, fmt.Errorf("ina226: unsupported conversion time %s", d)
}

// Mode is the operating mode of the device.
type Mode uint16

const (
	ModePowerDown Mode = iota
	ModeShuntTriggered
	ModeBusTriggered
	ModeShuntBusTriggered
	ModeADCOff
	ModeShuntContinuous
	ModeBusContinuous
	ModeShuntBusContinuous
)

var modeNames = [8]string{
	"power-down",
	"shunt-triggered",
	"bus-triggered",
	"shunt-bus-triggered",
	"adc-off",
	"shunt-continuous",
	"bus-continuous",
	"shunt-bus-continuous",
}

func (m Mode) String() string {
	return modeNames[m&fieldMask]
}

// ModeFor returns the Mode whose String() is name.
func ModeFor(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("ina226: unknown mode %q", name)
}

// measuresShunt and measuresBus report which ADC inputs the mode converts.
func (m Mode) measuresShunt() bool {
	return m&0x01 != 0
}

func (m Mode) measuresBus() bool {
	return m&0x02 != 0
}

// Config holds the fields of the configuration register.
type Config struct {
	Averaging       Averaging
	BusConversion   ConversionTime
	ShuntConversion ConversionTime
	Mode            Mode
}

// DefaultConfig averages 512 samples of 588µs conversions, measuring shunt
// and bus voltage continuously.
var DefaultConfig = Config{
	Averaging:       Average512,
	BusConversion:   Conversion588us,
	ShuntConversion: Conversion588us,
	Mode:            ModeShuntBusContinuous,
}

// Word packs the configuration into the register value written to the
// device. The reset bit is never set.
func (c Config) Word() uint16 {
	return configConstBits |
		uint16(c.Averaging&fieldMask)<<averagingShift |
		uint16(c.BusConversion&fieldMask)<<busConvShift |
		uint16(c.ShuntConversion&fieldMask)<<shuntConvShift |
		uint16(c.Mode&fieldMask)<<modeShift
}

// ConfigFromWord unpacks a configuration register value.
func ConfigFromWord(w uint16) Config {
	return Config{
		Averaging:       Averaging((w & averagingMask) >> averagingShift),
		BusConversion:   ConversionTime((w & busConvMask) >> busConvShift),
		ShuntConversion: ConversionTime((w & shuntConvMask) >> shuntConvShift),
		Mode:            Mode((w & modeMask) >> modeShift),
	}
}

// SampleTime returns how long the device takes to produce one averaged
// result in this configuration. It is zero when the ADC is off.
func (c Config) SampleTime() time.Duration {
	var t time.Duration
	if c.Mode.measuresShunt() {
		t += c.ShuntConversion.Duration()
	}
	if c.Mode.measuresBus() {
		t += c.BusConversion.Duration()
	}
	return t * time.Duration(c.Averaging.Samples())
}

func (c Config) String() string {
	return fmt.Sprintf("%s, avg %s, bus %s, shunt %s", c.Mode, c.Averaging, c.BusConversion, c.ShuntConversion)
}
