// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ina226 reads an INA226 power monitor and logs bus voltage, shunt voltage,
// current and power. On a terminal it also draws a current gauge, and it can
// write a trace of the readings to a PNG file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/powermon/ina226"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// settings holds the command line flags.
type settings struct {
	bus        string
	addr       uint
	maxCurrent float64
	shuntMV    float64
	avg        int
	busCT      time.Duration
	shuntCT    time.Duration
	mode       string
	guardPower bool
	samples    int
	interval   time.Duration
	png        string
	gaugeFull  float64
	verbose    bool
}

func (s *settings) register(fs *flag.FlagSet) {
	fs.StringVar(&s.bus, "bus", "", "I²C bus to use")
	fs.UintVar(&s.addr, "addr", uint(ina226.DefaultAddress), "I²C address of the device")
	fs.Float64Var(&s.maxCurrent, "max-current", 0.75, "maximum expected current through the shunt, in A")
	fs.Float64Var(&s.shuntMV, "shunt-mv", 75, "shunt voltage drop at -max-current, in mV")
	fs.IntVar(&s.avg, "avg", 512, "samples averaged per conversion: 1, 4, 16, 64, 128, 256, 512 or 1024")
	fs.DurationVar(&s.busCT, "bus-ct", 588*time.Microsecond, "bus voltage conversion time")
	fs.DurationVar(&s.shuntCT, "shunt-ct", 588*time.Microsecond, "shunt voltage conversion time")
	fs.StringVar(&s.mode, "mode", ina226.ModeShuntBusContinuous.String(), "operating mode")
	fs.BoolVar(&s.guardPower, "guard-power", false, "rewrite the calibration register before power reads too")
	fs.IntVar(&s.samples, "n", 10, "number of readings, 0 to run until interrupted")
	fs.DurationVar(&s.interval, "interval", time.Second, "time between readings")
	fs.StringVar(&s.png, "png", "", "write a trace of the readings to this PNG file")
	fs.Float64Var(&s.gaugeFull, "gauge", 0, "full scale of the terminal gauge in A, defaults to -max-current")
	fs.BoolVar(&s.verbose, "v", false, "verbose logging")
}

// opts converts the flags into driver options.
func (s *settings) opts() (*ina226.Opts, error) {
	if s.addr == 0 || s.addr > 0x7f {
		return nil, fmt.Errorf("invalid I²C address 0x%x", s.addr)
	}
	if s.maxCurrent <= 0 {
		return nil, errors.New("-max-current must be positive")
	}
	if s.shuntMV <= 0 {
		return nil, errors.New("-shunt-mv must be positive")
	}
	avg, err := ina226.AveragingFor(s.avg)
	if err != nil {
		return nil, err
	}
	busCT, err := ina226.ConversionTimeFor(s.busCT)
	if err != nil {
		return nil, err
	}
	shuntCT, err := ina226.ConversionTimeFor(s.shuntCT)
	if err != nil {
		return nil, err
	}
	mode, err := ina226.ModeFor(s.mode)
	if err != nil {
		return nil, err
	}
	return &ina226.Opts{
		Address:    uint16(s.addr),
		MaxCurrent: physic.ElectricCurrent(math.Round(s.maxCurrent * float64(physic.Ampere))),
		ShuntDrop:  physic.ElectricPotential(math.Round(s.shuntMV * float64(physic.MilliVolt))),
		Config: &ina226.Config{
			Averaging:       avg,
			BusConversion:   busCT,
			ShuntConversion: shuntCT,
			Mode:            mode,
		},
		GuardPower: s.guardPower,
	}, nil
}

func mainImpl() error {
	var s settings
	s.register(flag.CommandLine)
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if s.verbose {
		log.SetLevel(log.DebugLevel)
	}
	opts, err := s.opts()
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(s.bus)
	if err != nil {
		return err
	}
	defer bus.Close()

	dev, err := ina226.New(bus, opts)
	if err != nil {
		return err
	}
	defer dev.Halt()
	c := dev.Calibration()
	log.WithFields(log.Fields{
		"device":      dev.String(),
		"calibration": c.Value,
		"current_lsb": c.CurrentLSB,
		"power_lsb":   c.PowerLSB,
		"config":      dev.Config().String(),
	}).Info("calibrated")
	if id, err := dev.DieID(); err != nil {
		log.WithError(err).Warn("reading die id")
	} else {
		log.Debugf("die id 0x%04x", id)
	}

	var g *gauge
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		g = newGauge(colorable.NewColorableStdout(), 40, nil)
		defer g.halt()
	}
	full := s.gaugeFull
	if full <= 0 {
		full = s.maxCurrent
	}

	ch, err := dev.SenseContinuous(s.interval)
	if err != nil {
		return err
	}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	var trace []sample
	start := time.Now()
loop:
	for s.samples == 0 || len(trace) < s.samples {
		select {
		case <-interrupt:
			break loop
		case p, ok := <-ch:
			if !ok {
				break loop
			}
			trace = append(trace, sample{at: time.Since(start), PowerMonitor: p})
			entry := log.WithFields(log.Fields{
				"bus":     p.Voltage.String(),
				"shunt":   p.Shunt.String(),
				"current": p.Current.String(),
				"power":   p.Power.String(),
			})
			if g == nil {
				entry.Info("reading")
				continue
			}
			entry.Debug("reading")
			amps := float64(p.Current) / float64(physic.Ampere)
			if err := g.draw(amps, full, p.String()); err != nil {
				return err
			}
		}
	}
	if err := dev.Halt(); err != nil {
		return err
	}

	if s.png != "" && len(trace) != 0 {
		f, err := os.Create(s.png)
		if err != nil {
			return err
		}
		if err := writePlot(f, trace); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.WithField("file", s.png).WithField("samples", len(trace)).Info("wrote trace")
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		log.WithError(err).Fatal("ina226")
	}
}
