// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GermanBionicSystems/powermon/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the bus address with A0 and A1 tied to GND.
	DefaultAddress uint16 = 0x40
	// DefaultMaxCurrent is the maximum expected current used when none is
	// given.
	DefaultMaxCurrent physic.ElectricCurrent = 750 * physic.MilliAmpere
	// DefaultShuntDrop is the shunt voltage drop at maximum current used when
	// none is given.
	DefaultShuntDrop physic.ElectricPotential = 75 * physic.MilliVolt
	// DefaultShuntLSB is the shunt voltage register resolution. Some
	// revisions document 2.5µV; override it with Opts.ShuntLSB.
	DefaultShuntLSB physic.ElectricPotential = 10 * physic.MicroVolt

	// Bus voltage register resolution.
	busLSB physic.ElectricPotential = 1250 * physic.MicroVolt

	// Calibration register value before Calibrate is called.
	uncalibrated uint16 = 4096

	// calScale is 5.12 * 2^15, with the shunt drop expressed in mV.
	calScale     = 5.12 * 32768
	currentSteps = 32768
	// The chip computes power with an LSB 25 times the current LSB.
	powerRatio = 25
)

// Opts holds the configuration options.
type Opts struct {
	// Address is the I²C address, DefaultAddress when zero.
	Address uint16
	// MaxCurrent is the maximum expected current through the shunt,
	// DefaultMaxCurrent when zero.
	MaxCurrent physic.ElectricCurrent
	// ShuntDrop is the voltage across the shunt at MaxCurrent,
	// DefaultShuntDrop when zero.
	ShuntDrop physic.ElectricPotential
	// Config is written to the configuration register, DefaultConfig when
	// nil.
	Config *Config
	// ShuntLSB is the shunt voltage resolution, DefaultShuntLSB when zero.
	ShuntLSB physic.ElectricPotential
	// GuardPower rewrites the calibration register before each power read,
	// as Current always does.
	GuardPower bool
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Address:    DefaultAddress,
	MaxCurrent: DefaultMaxCurrent,
	ShuntDrop:  DefaultShuntDrop,
	ShuntLSB:   DefaultShuntLSB,
}

// Calibration holds the scaling constants derived by Calibrate.
type Calibration struct {
	// Value is written to the calibration register.
	Value uint16
	// CurrentLSB is amperes per current register LSB.
	CurrentLSB float64
	// PowerLSB is watts per power register LSB.
	PowerLSB float64
}

// ComputeCalibration derives the calibration register value and the current
// and power resolutions for a shunt dropping shuntDrop at maxCurrent.
func ComputeCalibration(maxCurrent physic.ElectricCurrent, shuntDrop physic.ElectricPotential) (Calibration, error) {
	if shuntDrop <= 0 {
		return Calibration{}, &ParameterRangeError{Param: "shunt drop", Value: shuntDrop.String(), Reason: "must be positive"}
	}
	if maxCurrent <= 0 {
		return Calibration{}, &ParameterRangeError{Param: "max current", Value: maxCurrent.String(), Reason: "must be positive"}
	}
	mv := float64(shuntDrop) / float64(physic.MilliVolt)
	v := math.Floor(calScale / mv)
	if v > math.MaxUint16 {
		return Calibration{}, &ParameterRangeError{
			Param:  "shunt drop",
			Value:  shuntDrop.String(),
			Reason: fmt.Sprintf("calibration value %.0f exceeds 16 bits", v),
		}
	}
	currentLSB := float64(maxCurrent) / float64(physic.Ampere) / currentSteps
	return Calibration{
		Value:      uint16(v),
		CurrentLSB: currentLSB,
		PowerLSB:   powerRatio * currentLSB,
	}, nil
}

// PowerMonitor represents measurements from the device.
type PowerMonitor struct {
	Shunt   physic.ElectricPotential
	Voltage physic.ElectricPotential
	Current physic.ElectricCurrent
	Power   physic.Power
}

func (p PowerMonitor) String() string {
	return fmt.Sprintf("bus %s, shunt %s, %s, %s", p.Voltage, p.Shunt, p.Current, p.Power)
}

// Dev is an INA226 handle.
type Dev struct {
	d          *i2c.Dev
	mu         sync.Mutex
	cal        Calibration
	cfg        Config
	shuntLSB   physic.ElectricPotential
	guardPower bool
	stop       chan struct{}
}

// NewI2C returns a handle for the device at addr without touching the bus.
// The calibration register value is 4096 and the current and power
// resolutions are zero until Calibrate is called.
func NewI2C(b i2c.Bus, addr uint16) *Dev {
	return &Dev{
		d:        &i2c.Dev{Bus: b, Addr: addr},
		cal:      Calibration{Value: uncalibrated},
		cfg:      ConfigFromWord(powerOnConfig),
		shuntLSB: DefaultShuntLSB,
	}
}

// New returns a calibrated handle. If opts is nil, DefaultOpts is used.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Address == 0 {
		o.Address = DefaultAddress
	}
	if o.MaxCurrent == 0 {
		o.MaxCurrent = DefaultMaxCurrent
	}
	if o.ShuntDrop == 0 {
		o.ShuntDrop = DefaultShuntDrop
	}
	dev := NewI2C(b, o.Address)
	if o.ShuntLSB != 0 {
		dev.shuntLSB = o.ShuntLSB
	}
	dev.guardPower = o.GuardPower
	if err := dev.Calibrate(o.MaxCurrent, o.ShuntDrop, o.Config); err != nil {
		return nil, err
	}
	return dev, nil
}

// Calibrate derives the scaling constants for a shunt dropping shuntDrop at
// maxCurrent, then writes the calibration register followed by the
// configuration register. A nil cfg writes DefaultConfig.
//
// Parameters the calibration register can't express return a
// *ParameterRangeError before any register is written.
func (d *Dev) Calibrate(maxCurrent physic.ElectricCurrent, shuntDrop physic.ElectricPotential, cfg *Config) error {
	c, err := ComputeCalibration(maxCurrent, shuntDrop)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &DefaultConfig
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := common.WriteWord(d.d, regCalibration, c.Value); err != nil {
		return err
	}
	d.cal = c
	if err := common.WriteWord(d.d, regConfig, cfg.Word()); err != nil {
		return err
	}
	d.cfg = *cfg
	return nil
}

// Calibration returns the scaling constants in use.
func (d *Dev) Calibration() Calibration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// Config returns the configuration last written to the device.
func (d *Dev) Config() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// ReadConfig reads the configuration register back from the device.
func (d *Dev) ReadConfig() (Config, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := common.ReadWord(d.d, regConfig)
	if err != nil {
		return Config{}, err
	}
	return ConfigFromWord(w), nil
}

// Reset triggers a soft reset. The device returns to its power-on
// configuration and clears its calibration register; the scaling constants
// held by Dev are kept and Current restores the register on its next read.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := common.WriteWord(d.d, regConfig, ConfigReset|configConstBits); err != nil {
		return err
	}
	d.cfg = ConfigFromWord(powerOnConfig)
	return nil
}

// ShuntVoltage returns the voltage across the shunt resistor. It is negative
// when current flows from IN- to IN+.
func (d *Dev) ShuntVoltage() (physic.ElectricPotential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shuntVoltage()
}

// BusVoltage returns the voltage between IN- and GND.
func (d *Dev) BusVoltage() (physic.ElectricPotential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busVoltage()
}

// Current returns the current through the shunt. The calibration register is
// rewritten before every read.
func (d *Dev) Current() (physic.ElectricCurrent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current()
}

// Power returns the power computed by the device.
func (d *Dev) Power() (physic.Power, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.power()
}

// Sense reads bus voltage, shunt voltage, current and power.
func (d *Dev) Sense() (PowerMonitor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var p PowerMonitor
	var err error
	if p.Voltage, err = d.busVoltage(); err != nil {
		return PowerMonitor{}, err
	}
	if p.Shunt, err = d.shuntVoltage(); err != nil {
		return PowerMonitor{}, err
	}
	if p.Current, err = d.current(); err != nil {
		return PowerMonitor{}, err
	}
	if p.Power, err = d.power(); err != nil {
		return PowerMonitor{}, err
	}
	return p, nil
}

// SenseContinuous calls Sense every interval and sends the readings on the
// returned channel until Halt is called. Failed readings are skipped. The
// interval can't be shorter than one averaged conversion.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan PowerMonitor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if minimum := d.cfg.SampleTime(); interval <= 0 || interval < minimum {
		return nil, fmt.Errorf("ina226: invalid interval %s, minimum %s", interval, minimum)
	}
	if d.stop != nil {
		close(d.stop)
	}
	d.stop = make(chan struct{})
	ch := make(chan PowerMonitor, 16)
	go d.sense(interval, ch, d.stop)
	return ch, nil
}

func (d *Dev) sense(interval time.Duration, ch chan<- PowerMonitor, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(ch)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p, err := d.Sense()
			if err != nil {
				continue
			}
			select {
			case <-stop:
				return
			case ch <- p:
			}
		}
	}
}

// Halt stops a SenseContinuous operation. It implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	return nil
}

// ManufacturerID returns the manufacturer ID register, 0x5449 ("TI").
func (d *Dev) ManufacturerID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return common.ReadWord(d.d, regManufacturerID)
}

// DieID returns the die ID register, 0x2260 on an INA226.
func (d *Dev) DieID() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return common.ReadWord(d.d, regDieID)
}

func (d *Dev) String() string {
	return fmt.Sprintf("ina226: %s", d.d.String())
}

func (d *Dev) shuntVoltage() (physic.ElectricPotential, error) {
	w, err := common.ReadWord(d.d, regShuntVoltage)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(common.TwosComplement16(w)) * d.shuntLSB, nil
}

func (d *Dev) busVoltage() (physic.ElectricPotential, error) {
	w, err := common.ReadWord(d.d, regBusVoltage)
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(w) * busLSB, nil
}

func (d *Dev) current() (physic.ElectricCurrent, error) {
	// A load transient can reset the calibration register, after which the
	// current and power registers read zero with no error.
	if err := common.WriteWord(d.d, regCalibration, d.cal.Value); err != nil {
		return 0, err
	}
	w, err := common.ReadWord(d.d, regCurrent)
	if err != nil {
		return 0, err
	}
	a := float64(common.TwosComplement16(w)) * d.cal.CurrentLSB
	return physic.ElectricCurrent(math.Round(a * float64(physic.Ampere))), nil
}

func (d *Dev) power() (physic.Power, error) {
	if d.guardPower {
		if err := common.WriteWord(d.d, regCalibration, d.cal.Value); err != nil {
			return 0, err
		}
	}
	w, err := common.ReadWord(d.d, regPower)
	if err != nil {
		return 0, err
	}
	watts := float64(w) * d.cal.PowerLSB
	return physic.Power(math.Round(watts * float64(physic.Watt))), nil
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
