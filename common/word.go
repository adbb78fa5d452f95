// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, reading and writing the 16-bit big endian registers found on the
// TI power monitor family.
package common

import (
	"periph.io/x/conn/v3/i2c"
)

// ReadWord reads the 16-bit register reg. The device sends the most
// significant byte first.
func ReadWord(d *i2c.Dev, reg byte) (uint16, error) {
	r := make([]byte, 2)
	if err := d.Tx([]byte{reg}, r); err != nil {
		return 0, err
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// WriteWord writes value to the 16-bit register reg, high byte first.
func WriteWord(d *i2c.Dev, reg byte, value uint16) error {
	w := []byte{reg, byte(value >> 8), byte(value & 0xff)}
	return d.Tx(w, nil)
}

// TwosComplement16 interprets a raw register word as a signed 16-bit value.
func TwosComplement16(w uint16) int {
	if w > 0x7fff {
		return int(w) - 0x10000
	}
	return int(w)
}
