// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Registers contains the state of all 6502 registers. The processor
// status is kept as a raw byte; individual flags are accessed through
// GetFlag and SetFlag with one of the *Bit masks.
type Registers struct {
	A  byte   // accumulator
	X  byte   // X indexing register
	Y  byte   // Y indexing register
	SP byte   // stack pointer ($100 + SP = stack memory location)
	PC uint16 // program counter
	P  byte   // processor status
}

// Bits assigned to the processor status byte
const (
	CarryBit            byte = 1 << 0
	ZeroBit             byte = 1 << 1
	InterruptDisableBit byte = 1 << 2
	DecimalBit          byte = 1 << 3
	BreakBit            byte = 1 << 4
	ReservedBit         byte = 1 << 5 // always on
	OverflowBit         byte = 1 << 6
	SignBit             byte = 1 << 7
)

// GetFlag returns the state of the status flag selected by 'mask'.
func (r *Registers) GetFlag(mask byte) bool {
	return (r.P & mask) != 0
}

// SetFlag sets or clears the status flag selected by 'mask'.
func (r *Registers) SetFlag(mask byte, on bool) {
	if on {
		r.P |= mask
	} else {
		r.P &^= mask
	}
}

// Init initializes all registers. A, X, Y = 0. SP = 0xff. PC = 0.
// P = $20 (only the reserved bit set).
func (r *Registers) Init() {
	r.A = 0
	r.X = 0
	r.Y = 0
	r.SP = 0xff
	r.PC = 0
	r.P = ReservedBit
}
