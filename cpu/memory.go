// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// The Bus interface presents the address bus through which all of the
// CPU's memory accesses occur. The CPU never owns or constructs the
// backing store; the host supplies one at construction time. Both
// methods are treated as total functions: any failure policy belongs to
// the Bus implementation.
type Bus interface {
	// Read returns the byte stored at the address.
	Read(addr uint16) byte

	// Write stores a byte to the address.
	Write(addr uint16, v byte)
}

// FlatMemory represents an entire 16-bit address space as a singular
// 64K buffer.
type FlatMemory struct {
	b [64 * 1024]byte
}

// NewFlatMemory creates a new 16-bit memory space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

// Read returns the byte stored at the address.
func (m *FlatMemory) Read(addr uint16) byte {
	return m.b[addr]
}

// Write stores a byte to the address.
func (m *FlatMemory) Write(addr uint16, v byte) {
	m.b[addr] = v
}

// LoadBytes loads multiple bytes from the address and stores them into
// the buffer 'b'.
func (m *FlatMemory) LoadBytes(addr uint16, b []byte) {
	if int(addr)+len(b) <= len(m.b) {
		copy(b, m.b[addr:])
	} else {
		r0 := len(m.b) - int(addr)
		copy(b, m.b[addr:])
		copy(b[r0:], make([]byte, len(b)-r0))
	}
}

// StoreBytes stores multiple bytes to the requested address.
func (m *FlatMemory) StoreBytes(addr uint16, b []byte) {
	copy(m.b[addr:], b)
}

// Given a 1-byte stack pointer register, return the corresponding
// stack memory address.
func stackAddress(offset byte) uint16 {
	return uint16(0x100) + uint16(offset)
}
