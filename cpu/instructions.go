// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Mode describes a memory addressing mode.
type Mode byte

// All supported memory addressing modes
const (
	IMP Mode = iota // Implied (no operand)
	IMM             // Immediate
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
)

// Number of operand bytes following the opcode for each addressing mode.
var modeOperandBytes = [...]byte{
	IMP: 0,
	IMM: 1,
	REL: 1,
	ZPG: 1,
	ZPX: 1,
	ABS: 2,
	ABX: 2,
	ABY: 2,
	IDX: 1,
	IDY: 1,
}

// An operand is the decoded result of an addressing-mode resolution:
// the latched value and/or effective address the executor consumes. It
// is produced fresh on every step and never persisted.
type operand struct {
	value byte   // latched 8-bit operand value
	addr  uint16 // latched 16-bit effective address
}

type execFunc func(c *CPU, op operand)

// An instruction descriptor binds an opcode byte to an addressing mode,
// an operation executor and a mnemonic. Descriptors are immutable after
// registration. A nil fn marks the invalid sentinel.
type instruction struct {
	name string
	mode Mode
	fn   execFunc
}

// Mnemonic used for unregistered opcode bytes.
const invalidName = "???"

// Instruction is the exported view of one opcode table entry.
type Instruction struct {
	Name   string // all-caps mnemonic, "???" if unregistered
	Mode   Mode   // addressing mode
	Opcode byte   // opcode byte value
	Length byte   // combined size of opcode and operand, in bytes
}

// An opcodeImpl associates a mnemonic's executor with every addressing
// mode variant the instruction set supports for it, each at its opcode
// byte.
type opcodeImpl struct {
	name     string
	fn       execFunc
	variants []opcodeVariant
}

type opcodeVariant struct {
	mode   Mode
	opcode byte
}

// All implemented instructions and their opcode variants. BRK, RTI,
// indirect JMP, the read-modify-write memory instructions and all 65C02
// extensions are intentionally absent.
var impl = []opcodeImpl{
	{"LDA", (*CPU).lda, []opcodeVariant{
		{IMM, 0xa9}, {ZPG, 0xa5}, {ZPX, 0xb5}, {ABS, 0xad},
		{ABX, 0xbd}, {ABY, 0xb9}, {IDX, 0xa1}, {IDY, 0xb1}}},
	{"LDX", (*CPU).ldx, []opcodeVariant{
		{IMM, 0xa2}, {ZPG, 0xa6}, {ABS, 0xae}, {ABY, 0xbe}}},
	{"LDY", (*CPU).ldy, []opcodeVariant{
		{IMM, 0xa0}, {ZPG, 0xa4}, {ZPX, 0xb4}, {ABS, 0xac}, {ABX, 0xbc}}},

	{"STA", (*CPU).sta, []opcodeVariant{
		{ZPG, 0x85}, {ZPX, 0x95}, {ABS, 0x8d}, {ABX, 0x9d},
		{ABY, 0x99}, {IDX, 0x81}, {IDY, 0x91}}},
	{"STX", (*CPU).stx, []opcodeVariant{{ZPG, 0x86}, {ABS, 0x8e}}},
	{"STY", (*CPU).sty, []opcodeVariant{{ZPG, 0x84}, {ZPX, 0x94}, {ABS, 0x8c}}},

	{"ADC", (*CPU).adc, []opcodeVariant{
		{IMM, 0x69}, {ZPG, 0x65}, {ZPX, 0x75}, {ABS, 0x6d},
		{ABX, 0x7d}, {ABY, 0x79}, {IDX, 0x61}, {IDY, 0x71}}},
	{"SBC", (*CPU).sbc, []opcodeVariant{
		{IMM, 0xe9}, {ZPG, 0xe5}, {ZPX, 0xf5}, {ABS, 0xed},
		{ABX, 0xfd}, {ABY, 0xf9}, {IDX, 0xe1}, {IDY, 0xf1}}},

	{"AND", (*CPU).and, []opcodeVariant{
		{IMM, 0x29}, {ZPG, 0x25}, {ZPX, 0x35}, {ABS, 0x2d},
		{ABX, 0x3d}, {ABY, 0x39}, {IDX, 0x21}, {IDY, 0x31}}},
	{"ORA", (*CPU).ora, []opcodeVariant{
		{IMM, 0x09}, {ZPG, 0x05}, {ZPX, 0x15}, {ABS, 0x0d},
		{ABX, 0x1d}, {ABY, 0x19}, {IDX, 0x01}, {IDY, 0x11}}},
	{"EOR", (*CPU).eor, []opcodeVariant{
		{IMM, 0x49}, {ZPG, 0x45}, {ZPX, 0x55}, {ABS, 0x4d},
		{ABX, 0x5d}, {ABY, 0x59}, {IDX, 0x41}, {IDY, 0x51}}},

	{"CMP", (*CPU).cmp, []opcodeVariant{
		{IMM, 0xc9}, {ZPG, 0xc5}, {ZPX, 0xd5}, {ABS, 0xcd},
		{ABX, 0xdd}, {ABY, 0xd9}, {IDX, 0xc1}, {IDY, 0xd1}}},
	{"CPX", (*CPU).cpx, []opcodeVariant{{IMM, 0xe0}, {ZPG, 0xe4}, {ABS, 0xec}}},
	{"CPY", (*CPU).cpy, []opcodeVariant{{IMM, 0xc0}, {ZPG, 0xc4}, {ABS, 0xcc}}},

	{"CLC", (*CPU).clc, []opcodeVariant{{IMP, 0x18}}},
	{"SEC", (*CPU).sec, []opcodeVariant{{IMP, 0x38}}},
	{"CLI", (*CPU).cli, []opcodeVariant{{IMP, 0x58}}},
	{"SEI", (*CPU).sei, []opcodeVariant{{IMP, 0x78}}},
	{"CLV", (*CPU).clv, []opcodeVariant{{IMP, 0xb8}}},
	{"CLD", (*CPU).cld, []opcodeVariant{{IMP, 0xd8}}},
	{"SED", (*CPU).sed, []opcodeVariant{{IMP, 0xf8}}},

	{"BPL", (*CPU).bpl, []opcodeVariant{{REL, 0x10}}},
	{"BMI", (*CPU).bmi, []opcodeVariant{{REL, 0x30}}},
	{"BVC", (*CPU).bvc, []opcodeVariant{{REL, 0x50}}},
	{"BVS", (*CPU).bvs, []opcodeVariant{{REL, 0x70}}},
	{"BCC", (*CPU).bcc, []opcodeVariant{{REL, 0x90}}},
	{"BCS", (*CPU).bcs, []opcodeVariant{{REL, 0xb0}}},
	{"BNE", (*CPU).bne, []opcodeVariant{{REL, 0xd0}}},
	{"BEQ", (*CPU).beq, []opcodeVariant{{REL, 0xf0}}},

	{"JMP", (*CPU).jmp, []opcodeVariant{{ABS, 0x4c}}},
	{"JSR", (*CPU).jsr, []opcodeVariant{{ABS, 0x20}}},
	{"RTS", (*CPU).rts, []opcodeVariant{{IMP, 0x60}}},

	{"TAX", (*CPU).tax, []opcodeVariant{{IMP, 0xaa}}},
	{"TXA", (*CPU).txa, []opcodeVariant{{IMP, 0x8a}}},
	{"TAY", (*CPU).tay, []opcodeVariant{{IMP, 0xa8}}},
	{"TYA", (*CPU).tya, []opcodeVariant{{IMP, 0x98}}},
	{"TSX", (*CPU).tsx, []opcodeVariant{{IMP, 0xba}}},
	{"TXS", (*CPU).txs, []opcodeVariant{{IMP, 0x9a}}},

	{"INX", (*CPU).inx, []opcodeVariant{{IMP, 0xe8}}},
	{"INY", (*CPU).iny, []opcodeVariant{{IMP, 0xc8}}},
	{"DEX", (*CPU).dex, []opcodeVariant{{IMP, 0xca}}},
	{"DEY", (*CPU).dey, []opcodeVariant{{IMP, 0x88}}},

	{"PHA", (*CPU).pha, []opcodeVariant{{IMP, 0x48}}},
	{"PLA", (*CPU).pla, []opcodeVariant{{IMP, 0x68}}},
	{"PHP", (*CPU).php, []opcodeVariant{{IMP, 0x08}}},
	{"PLP", (*CPU).plp, []opcodeVariant{{IMP, 0x28}}},

	{"NOP", (*CPU).nop, []opcodeVariant{{IMP, 0xea}}},
}

// register binds one opcode byte to a descriptor. It may be called
// multiple times for the same mnemonic with different addressing modes
// and opcode bytes. There is no duplicate validation: the last
// registration for a given byte wins.
func (c *CPU) register(name string, fn execFunc, opcode byte, mode Mode) {
	c.table[opcode] = instruction{name: name, mode: mode, fn: fn}
}

// registerAll fills the opcode table with the invalid sentinel and then
// registers every implemented mnemonic/mode/opcode triple.
func (c *CPU) registerAll() {
	for i := range c.table {
		c.table[i] = instruction{name: invalidName, mode: IMP}
	}
	for _, im := range impl {
		for _, v := range im.variants {
			c.register(im.name, im.fn, v.opcode, v.mode)
		}
	}
}

// GetInstruction returns the opcode table entry for an opcode byte.
func (c *CPU) GetInstruction(opcode byte) Instruction {
	inst := &c.table[opcode]
	return Instruction{
		Name:   inst.name,
		Mode:   inst.mode,
		Opcode: opcode,
		Length: 1 + modeOperandBytes[inst.mode],
	}
}

// NextAddr returns the address of the instruction following the
// instruction at addr.
func (c *CPU) NextAddr(addr uint16) uint16 {
	inst := c.GetInstruction(c.Mem.Read(addr))
	return addr + uint16(inst.Length)
}
