// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements an instruction-level 6502 CPU simulator. The
// simulator reproduces the architectural effect of each instruction:
// register and flag mutation, memory access pattern, and elapsed clock
// cycles. Memory is external; the CPU reaches it only through the Bus
// interface supplied at construction.
package cpu

import "fmt"

// An OpcodeError is the fault produced when the CPU decodes an opcode
// byte with no registered instruction. It halts the CPU permanently.
type OpcodeError struct {
	Opcode byte   // the offending opcode byte
	Addr   uint16 // the address it was fetched from
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode $%02X at $%04X", e.Opcode, e.Addr)
}

// CPU represents a single 6502 CPU bound to an address bus.
type CPU struct {
	Reg    Registers // CPU registers
	Mem    Bus       // assigned address bus
	Cycles uint64    // total executed CPU cycles
	LastPC uint16    // address of the last executed instruction

	Debug     bool   // enable per-step trace line formatting
	DebugLine string // trace line for the last decoded instruction

	table     [256]instruction
	fault     error // sticky invalid-opcode fault
	debugger  *Debugger
	storeByte func(cpu *CPU, addr uint16, v byte)
}

// NewCPU creates an emulated 6502 CPU bound to the specified bus.
func NewCPU(m Bus) *CPU {
	cpu := &CPU{
		Mem:       m,
		storeByte: (*CPU).storeByteNormal,
	}
	cpu.Reg.Init()
	cpu.registerAll()
	return cpu
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// Step executes exactly one instruction: it fetches the opcode byte at
// PC, resolves the addressing mode (advancing PC past the operand and
// charging the mode's cycle cost), then runs the operation executor.
// Decoding an unregistered opcode byte returns an *OpcodeError and
// halts the CPU; every subsequent Step returns the same fault.
func (cpu *CPU) Step() error {
	if cpu.fault != nil {
		return cpu.fault
	}

	cpu.LastPC = cpu.Reg.PC
	opcode := cpu.readPC()

	inst := &cpu.table[opcode]
	if inst.fn == nil {
		cpu.fault = &OpcodeError{Opcode: opcode, Addr: cpu.Reg.PC - 1}
		return cpu.fault
	}

	// Resolve the addressing mode, then execute.
	op := cpu.fetch(inst)
	inst.fn(cpu, op)

	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
	return nil
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU finishes an instruction or stores a
// byte to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the current debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

// Read the byte at PC and advance PC past it.
func (cpu *CPU) readPC() byte {
	v := cpu.Mem.Read(cpu.Reg.PC)
	cpu.Reg.PC++
	return v
}

// Read a little-endian 16-bit address at PC and advance PC past it.
func (cpu *CPU) readAddrPC() uint16 {
	lo := uint16(cpu.readPC())
	hi := uint16(cpu.readPC())
	return hi<<8 | lo
}

// fetch resolves the instruction's addressing mode: it reads the
// operand bytes following the opcode, computes the latched value and/or
// effective address, and charges the mode's cycle cost (including any
// page-crossing penalty). When tracing is enabled it also renders the
// instruction as assembler-style text.
func (cpu *CPU) fetch(inst *instruction) operand {
	var op operand
	switch inst.mode {

	case IMP:
		cpu.Cycles += 2
		if cpu.Debug {
			cpu.DebugLine = inst.name
		}

	case IMM:
		op.value = cpu.readPC()
		cpu.Cycles += 2
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s #$%02X", inst.name, op.value)
		}

	case REL:
		offset := int8(cpu.readPC())
		op.addr = uint16(int32(cpu.Reg.PC) + int32(offset))
		cpu.Cycles += 2
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s $%04X", inst.name, op.addr)
		}

	case ZPG:
		op.addr = uint16(cpu.readPC())
		op.value = cpu.Mem.Read(op.addr)
		cpu.Cycles += 3
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s $%02X", inst.name, op.addr)
		}

	case ZPX:
		// The byte addition wraps, keeping the address in the zero page.
		op.addr = uint16(cpu.readPC() + cpu.Reg.X)
		op.value = cpu.Mem.Read(op.addr)
		cpu.Cycles += 3
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s $%02X,X", inst.name, op.addr)
		}

	case ABS:
		op.addr = cpu.readAddrPC()
		op.value = cpu.Mem.Read(op.addr)
		cpu.Cycles += 4
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s $%04X", inst.name, op.addr)
		}

	case ABX:
		base := cpu.readAddrPC()
		op.addr = base + uint16(cpu.Reg.X)
		op.value = cpu.Mem.Read(op.addr)
		cpu.Cycles += 4
		if base>>8 != op.addr>>8 {
			cpu.Cycles++
		}
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s $%04X,X", inst.name, op.addr)
		}

	case ABY:
		base := cpu.readAddrPC()
		op.addr = base + uint16(cpu.Reg.Y)
		op.value = cpu.Mem.Read(op.addr)
		cpu.Cycles += 4
		if base>>8 != op.addr>>8 {
			cpu.Cycles++
		}
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s $%04X,Y", inst.name, op.addr)
		}

	case IDX:
		// The final address comes from a single zero-page byte; its
		// high byte is always zero.
		op.addr = uint16(cpu.readPC() + cpu.Reg.X)
		target := uint16(cpu.Mem.Read(op.addr))
		op.value = cpu.Mem.Read(target)
		cpu.Cycles += 2
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s ($%02X,X)", inst.name, op.addr)
		}

	case IDY:
		op.addr = uint16(cpu.readPC())
		target := uint16(cpu.Mem.Read(op.addr)) + uint16(cpu.Reg.Y)
		op.value = cpu.Mem.Read(target)
		cpu.Cycles += 2
		// One extra cycle whenever the summed address leaves page zero.
		if target>>8 != 0 {
			cpu.Cycles++
		}
		if cpu.Debug {
			cpu.DebugLine = fmt.Sprintf("%s ($%02X),Y", inst.name, op.addr)
		}
	}
	return op
}

// Store the byte value 'v' at the address 'addr'.
func (cpu *CPU) storeByteNormal(addr uint16, v byte) {
	cpu.Mem.Write(addr, v)
}

// Store the byte value 'v' at the address 'addr', notifying the
// attached debugger.
func (cpu *CPU) storeByteDebugger(addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	cpu.Mem.Write(addr, v)
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(v byte) {
	cpu.storeByte(cpu, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// Pull a value from the stack and return it.
func (cpu *CPU) pull() byte {
	cpu.Reg.SP++
	return cpu.Mem.Read(stackAddress(cpu.Reg.SP))
}

// Update the Zero and Sign flags based on the value of 'v'.
func (cpu *CPU) updateNZ(v byte) {
	cpu.Reg.SetFlag(ZeroBit, v == 0)
	cpu.Reg.SetFlag(SignBit, (v&0x80) != 0)
}

// Transfer control to the latched address and charge the taken-branch
// cycle when the tested condition holds.
func (cpu *CPU) branch(op operand, taken bool) {
	if taken {
		cpu.Reg.PC = op.addr
		cpu.Cycles++
	}
}

// Load Accumulator
func (cpu *CPU) lda(op operand) {
	cpu.Reg.A = op.value
	cpu.updateNZ(cpu.Reg.A)
}

// Load the X register
func (cpu *CPU) ldx(op operand) {
	cpu.Reg.X = op.value
	cpu.updateNZ(cpu.Reg.X)
}

// Load the Y register
func (cpu *CPU) ldy(op operand) {
	cpu.Reg.Y = op.value
	cpu.updateNZ(cpu.Reg.Y)
}

// Store Accumulator
func (cpu *CPU) sta(op operand) {
	cpu.storeByte(cpu, op.addr, cpu.Reg.A)
}

// Store X register
func (cpu *CPU) stx(op operand) {
	cpu.storeByte(cpu, op.addr, cpu.Reg.X)
}

// Store Y register
func (cpu *CPU) sty(op operand) {
	cpu.storeByte(cpu, op.addr, cpu.Reg.Y)
}

// Add with carry
func (cpu *CPU) adc(op operand) {
	var carry int16
	if cpu.Reg.GetFlag(CarryBit) {
		carry = 1
	}
	acc := int16(cpu.Reg.A)
	value := int16(op.value)
	result := acc + value + carry
	cpu.Reg.SetFlag(CarryBit, result > 0xff)
	cpu.Reg.A = byte(result)
	cpu.updateNZ(cpu.Reg.A)
	// Overflow when the signs of both inputs differ from the sign of
	// the result.
	cpu.Reg.SetFlag(OverflowBit,
		((byte(acc)^cpu.Reg.A)&(byte(value)^cpu.Reg.A)&0x80) != 0)
}

// Subtract with carry (carry clear means borrow)
func (cpu *CPU) sbc(op operand) {
	var borrow int16
	if !cpu.Reg.GetFlag(CarryBit) {
		borrow = 1
	}
	acc := int16(cpu.Reg.A)
	value := int16(op.value)
	result := acc - value - borrow
	cpu.Reg.SetFlag(CarryBit, result >= 0 && result <= 0xff)
	cpu.Reg.A = byte(result)
	cpu.updateNZ(cpu.Reg.A)
	cpu.Reg.SetFlag(OverflowBit,
		((byte(acc)^cpu.Reg.A)&(byte(value)^cpu.Reg.A)&0x80) != 0)
}

// Boolean AND
func (cpu *CPU) and(op operand) {
	cpu.Reg.A &= op.value
	cpu.updateNZ(cpu.Reg.A)
}

// Boolean OR
func (cpu *CPU) ora(op operand) {
	cpu.Reg.A |= op.value
	cpu.updateNZ(cpu.Reg.A)
}

// Boolean XOR
func (cpu *CPU) eor(op operand) {
	cpu.Reg.A ^= op.value
	cpu.updateNZ(cpu.Reg.A)
}

// Compare to accumulator
func (cpu *CPU) cmp(op operand) {
	cpu.Reg.SetFlag(CarryBit, cpu.Reg.A >= op.value)
	cpu.updateNZ(cpu.Reg.A - op.value)
}

// Compare to X register
func (cpu *CPU) cpx(op operand) {
	cpu.Reg.SetFlag(CarryBit, cpu.Reg.X >= op.value)
	cpu.updateNZ(cpu.Reg.X - op.value)
}

// Compare to Y register
func (cpu *CPU) cpy(op operand) {
	cpu.Reg.SetFlag(CarryBit, cpu.Reg.Y >= op.value)
	cpu.updateNZ(cpu.Reg.Y - op.value)
}

// Clear Carry flag
func (cpu *CPU) clc(op operand) {
	cpu.Reg.SetFlag(CarryBit, false)
}

// Set Carry flag
func (cpu *CPU) sec(op operand) {
	cpu.Reg.SetFlag(CarryBit, true)
}

// Clear InterruptDisable flag
func (cpu *CPU) cli(op operand) {
	cpu.Reg.SetFlag(InterruptDisableBit, false)
}

// Set InterruptDisable flag
func (cpu *CPU) sei(op operand) {
	cpu.Reg.SetFlag(InterruptDisableBit, true)
}

// Clear Overflow flag
func (cpu *CPU) clv(op operand) {
	cpu.Reg.SetFlag(OverflowBit, false)
}

// Clear Decimal flag
func (cpu *CPU) cld(op operand) {
	cpu.Reg.SetFlag(DecimalBit, false)
}

// Set Decimal flag
func (cpu *CPU) sed(op operand) {
	cpu.Reg.SetFlag(DecimalBit, true)
}

// Branch if PLus (positive)
func (cpu *CPU) bpl(op operand) {
	cpu.branch(op, !cpu.Reg.GetFlag(SignBit))
}

// Branch if MInus (negative)
func (cpu *CPU) bmi(op operand) {
	cpu.branch(op, cpu.Reg.GetFlag(SignBit))
}

// Branch if oVerflow Clear
func (cpu *CPU) bvc(op operand) {
	cpu.branch(op, !cpu.Reg.GetFlag(OverflowBit))
}

// Branch if oVerflow Set
func (cpu *CPU) bvs(op operand) {
	cpu.branch(op, cpu.Reg.GetFlag(OverflowBit))
}

// Branch if Carry Clear
func (cpu *CPU) bcc(op operand) {
	cpu.branch(op, !cpu.Reg.GetFlag(CarryBit))
}

// Branch if Carry Set
func (cpu *CPU) bcs(op operand) {
	cpu.branch(op, cpu.Reg.GetFlag(CarryBit))
}

// Branch if Not Equal (not zero)
func (cpu *CPU) bne(op operand) {
	cpu.branch(op, !cpu.Reg.GetFlag(ZeroBit))
}

// Branch if EQual (to zero)
func (cpu *CPU) beq(op operand) {
	cpu.branch(op, cpu.Reg.GetFlag(ZeroBit))
}

// Jump to address
func (cpu *CPU) jmp(op operand) {
	cpu.Reg.PC = op.addr
}

// Jump to subroutine. The pushed return address is PC-1; RTS
// compensates by adding 1 after the pull.
func (cpu *CPU) jsr(op operand) {
	ret := cpu.Reg.PC - 1
	sp := stackAddress(cpu.Reg.SP)
	cpu.storeByte(cpu, sp, byte(ret>>8))
	cpu.storeByte(cpu, sp-1, byte(ret))
	cpu.Reg.SP -= 2
	cpu.Reg.PC = op.addr
	cpu.Cycles += 2
}

// Return from subroutine
func (cpu *CPU) rts(op operand) {
	cpu.Reg.SP++
	sp := stackAddress(cpu.Reg.SP)
	lo := uint16(cpu.Mem.Read(sp))
	hi := uint16(cpu.Mem.Read(sp + 1))
	cpu.Reg.SP++
	cpu.Reg.PC = (hi<<8 | lo) + 1
	cpu.Cycles += 4
}

// Transfer Accumulator to X register
func (cpu *CPU) tax(op operand) {
	cpu.Reg.X = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.X)
}

// Transfer X register to Accumulator
func (cpu *CPU) txa(op operand) {
	cpu.Reg.A = cpu.Reg.X
	cpu.updateNZ(cpu.Reg.A)
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay(op operand) {
	cpu.Reg.Y = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.Y)
}

// Transfer Y register to Accumulator
func (cpu *CPU) tya(op operand) {
	cpu.Reg.A = cpu.Reg.Y
	cpu.updateNZ(cpu.Reg.A)
}

// Transfer stack pointer to X register
func (cpu *CPU) tsx(op operand) {
	cpu.Reg.X = cpu.Reg.SP
	cpu.updateNZ(cpu.Reg.X)
}

// Transfer X register to the stack pointer
func (cpu *CPU) txs(op operand) {
	cpu.Reg.SP = cpu.Reg.X
}

// Increment X register
func (cpu *CPU) inx(op operand) {
	cpu.Reg.X++
	cpu.updateNZ(cpu.Reg.X)
}

// Increment Y register
func (cpu *CPU) iny(op operand) {
	cpu.Reg.Y++
	cpu.updateNZ(cpu.Reg.Y)
}

// Decrement X register
func (cpu *CPU) dex(op operand) {
	cpu.Reg.X--
	cpu.updateNZ(cpu.Reg.X)
}

// Decrement Y register
func (cpu *CPU) dey(op operand) {
	cpu.Reg.Y--
	cpu.updateNZ(cpu.Reg.Y)
}

// Push Accumulator
func (cpu *CPU) pha(op operand) {
	cpu.push(cpu.Reg.A)
	cpu.Cycles++
}

// Pull Accumulator
func (cpu *CPU) pla(op operand) {
	cpu.Reg.A = cpu.pull()
	cpu.Cycles += 2
}

// Push Processor status
func (cpu *CPU) php(op operand) {
	cpu.push(cpu.Reg.P)
	cpu.Cycles++
}

// Pull Processor status. The reserved bit stays on no matter what was
// stored on the stack.
func (cpu *CPU) plp(op operand) {
	cpu.Reg.P = cpu.pull() | ReservedBit
	cpu.Cycles += 2
}

// No-operation
func (cpu *CPU) nop(op operand) {
}
