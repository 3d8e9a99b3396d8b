// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set disassembler.
package disasm

import (
	"fmt"

	"github.com/Pomettini/impostor/cpu"
)

// Disassembler formatting for addressing modes, indexed by cpu.Mode.
var modeFormat = []string{
	cpu.IMP: "%s",
	cpu.IMM: "#$%s",
	cpu.REL: "$%s",
	cpu.ZPG: "$%s",
	cpu.ZPX: "$%s,X",
	cpu.ABS: "$%s",
	cpu.ABX: "$%s,X",
	cpu.ABY: "$%s,Y",
	cpu.IDX: "($%s,X)",
	cpu.IDY: "($%s),Y",
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice,
// little-endian bytes rendered most-significant-first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code at address 'addr' on the CPU's bus.
// Return a 'line' string representing the disassembled instruction and
// a 'next' address that starts the following line of machine code.
func Disassemble(c *cpu.CPU, addr uint16) (line string, next uint16) {
	inst := c.GetInstruction(c.Mem.Read(addr))

	operand := make([]byte, inst.Length-1)
	for i := range operand {
		operand[i] = c.Mem.Read(addr + 1 + uint16(i))
	}

	if inst.Mode == cpu.REL {
		// Convert the relative offset to an absolute address.
		braddr := int(addr) + int(inst.Length) + int(int8(operand[0]))
		operand = []byte{byte(braddr), byte(braddr >> 8)}
	}

	var str string
	if len(operand) > 0 {
		str = fmt.Sprintf(modeFormat[inst.Mode], hexString(operand))
	}
	line = fmt.Sprintf("%-3s %s", inst.Name, str)
	next = addr + uint16(inst.Length)
	return line, next
}

// GetRegisterString returns a string describing the contents of the
// 6502 registers.
func GetRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X PC=%04X",
		r.A, r.X, r.Y, getStatusBits(r), r.SP, r.PC)
}

// GetCompactRegisterString returns a compact string describing the
// contents of the 6502 registers.
func GetCompactRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=%02X SP=%02X PC=%04X",
		r.A, r.X, r.Y, r.P, r.SP, r.PC)
}

// Render the status flags as a letter string, capitals marking set
// flags.
func getStatusBits(r *cpu.Registers) string {
	set := func(mask byte, on, off byte) byte {
		if r.GetFlag(mask) {
			return on
		}
		return off
	}
	return string([]byte{
		set(cpu.SignBit, 'N', 'n'),
		set(cpu.OverflowBit, 'V', 'v'),
		set(cpu.BreakBit, 'B', 'b'),
		set(cpu.DecimalBit, 'D', 'd'),
		set(cpu.InterruptDisableBit, 'I', 'i'),
		set(cpu.ZeroBit, 'Z', 'z'),
		set(cpu.CarryBit, 'C', 'c'),
	})
}
