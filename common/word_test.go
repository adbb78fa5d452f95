// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const addr uint16 = 0x40

func TestTwosComplement16(t *testing.T) {
	var tests = []struct {
		w      uint16
		result int
	}{
		{w: 0x0000, result: 0},
		{w: 0x0001, result: 1},
		{w: 0x7fff, result: 32767},
		{w: 0x8000, result: -32768},
		{w: 0xfffe, result: -2},
		{w: 0xffff, result: -1},
	}
	for _, test := range tests {
		res := TwosComplement16(test.w)
		if res != test.result {
			t.Errorf("TwosComplement16(%#04x)!=%d received %d", test.w, test.result, res)
		}
	}
}

// TestTwosComplement16Range walks every word and checks it against the
// language's own int16 conversion, and that the inverse round trips.
func TestTwosComplement16Range(t *testing.T) {
	for w := 0; w <= 0xffff; w++ {
		got := TwosComplement16(uint16(w))
		if got != int(int16(uint16(w))) {
			t.Fatalf("TwosComplement16(%#04x)=%d expected %d", w, got, int16(uint16(w)))
		}
		if w <= 0x7fff && got != w {
			t.Fatalf("TwosComplement16(%#04x)=%d expected the word unchanged", w, got)
		}
		if w > 0x7fff && got != w-0x10000 {
			t.Fatalf("TwosComplement16(%#04x)=%d expected %d", w, got, w-0x10000)
		}
	}
	for x := -32768; x <= 32767; x++ {
		if got := TwosComplement16(uint16(int16(x))); got != x {
			t.Fatalf("round trip of %d returned %d", x, got)
		}
	}
}

func TestReadWord(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: addr, W: []byte{0x02}, R: []byte{0x12, 0x34}},
		},
		DontPanic: true,
	}
	defer pb.Close()
	d := &i2c.Dev{Bus: pb, Addr: addr}
	w, err := ReadWord(d, 0x02)
	if err != nil {
		t.Fatal(err)
	}
	if w != 0x1234 {
		t.Errorf("ReadWord() expected 0x1234 received %#04x", w)
	}
}

func TestWriteWord(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: addr, W: []byte{0x05, 0x0d, 0xa7}},
		},
		DontPanic: true,
	}
	defer pb.Close()
	record := &i2ctest.Record{Bus: pb}
	d := &i2c.Dev{Bus: record, Addr: addr}
	if err := WriteWord(d, 0x05, 3495); err != nil {
		t.Fatal(err)
	}
	if len(record.Ops) != 1 {
		t.Fatalf("expected 1 transaction, recorded %d", len(record.Ops))
	}
}

type failingBus struct {
	i2ctest.Playback
}

func (f *failingBus) Tx(addr uint16, w, r []byte) error {
	return errNack
}

var errNack = errors.New("i2c: nack")

func TestReadWordError(t *testing.T) {
	d := &i2c.Dev{Bus: &failingBus{}, Addr: addr}
	if _, err := ReadWord(d, 0x01); !errors.Is(err, errNack) {
		t.Errorf("expected bus error to pass through, received %v", err)
	}
	if err := WriteWord(d, 0x01, 0); !errors.Is(err, errNack) {
		t.Errorf("expected bus error to pass through, received %v", err)
	}
}
