// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ina226 controls a Texas Instruments INA226 current, voltage and
// power monitor over an I²C bus.
//
// The device measures the voltage drop across an external shunt resistor and
// the bus voltage. Current and power are computed by the chip itself once the
// calibration register is programmed; call Calibrate (or construct the device
// with New) before reading them. Until then Current and Power read zero.
//
// The chip may reset its calibration register after a sharp load transient.
// Current therefore rewrites the calibration register before every read.
// Set Opts.GuardPower to do the same before Power reads.
//
// A Dev serialises its own register accesses. Other devices sharing the bus
// rely on the i2c.Bus implementation to serialise transactions.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/ina226.pdf
package ina226
