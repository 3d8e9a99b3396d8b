package cpu_test

import (
	"errors"
	"testing"

	"github.com/Pomettini/impostor/cpu"
)

// loadCPU stores raw machine code at the origin address and aims the
// program counter at it.
func loadCPU(origin uint16, code []byte) *cpu.CPU {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)
	mem.StoreBytes(origin, code)
	c.SetPC(origin)
	return c
}

func stepCPU(c *cpu.CPU, steps int) {
	for i := 0; i < steps; i++ {
		c.Step()
	}
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectCycles(t *testing.T, c *cpu.CPU, cycles uint64) {
	t.Helper()
	if c.Cycles != cycles {
		t.Errorf("Cycles incorrect. exp: %d, got: %d", cycles, c.Cycles)
	}
}

func expectACC(t *testing.T, c *cpu.CPU, acc byte) {
	t.Helper()
	if c.Reg.A != acc {
		t.Errorf("Accumulator incorrect. exp: $%02X, got: $%02X", acc, c.Reg.A)
	}
}

func expectSP(t *testing.T, c *cpu.CPU, sp byte) {
	t.Helper()
	if c.Reg.SP != sp {
		t.Errorf("Stack pointer incorrect. exp: $%02X, got: $%02X", sp, c.Reg.SP)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint16, v byte) {
	t.Helper()
	got := c.Mem.Read(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func expectFlag(t *testing.T, c *cpu.CPU, mask byte, on bool) {
	t.Helper()
	if c.Reg.GetFlag(mask) != on {
		t.Errorf("Flag $%02X incorrect. exp: %v, got: %v", mask, on, !on)
	}
}

func TestRegisterInit(t *testing.T) {
	c := cpu.NewCPU(cpu.NewFlatMemory())
	if c.Reg.A != 0 || c.Reg.X != 0 || c.Reg.Y != 0 {
		t.Errorf("A/X/Y not zeroed: $%02X $%02X $%02X", c.Reg.A, c.Reg.X, c.Reg.Y)
	}
	expectSP(t, c, 0xff)
	expectPC(t, c, 0)
	if c.Reg.P != cpu.ReservedBit {
		t.Errorf("Status incorrect. exp: $20, got: $%02X", c.Reg.P)
	}
}

func TestAccumulator(t *testing.T) {
	c := loadCPU(0x1000, []byte{
		0xa9, 0x5e, // LDA #$5E
		0x85, 0x15, // STA $15
		0x8d, 0x00, 0x15, // STA $1500
	})
	stepCPU(c, 3)

	expectPC(t, c, 0x1007)
	expectCycles(t, c, 9)
	expectACC(t, c, 0x5e)
	expectMem(t, c, 0x15, 0x5e)
	expectMem(t, c, 0x1500, 0x5e)
}

func TestLoadFlags(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa9, 0x00, // LDA #$00
		0xa2, 0x80, // LDX #$80
		0xa0, 0x01, // LDY #$01
	})

	stepCPU(c, 1)
	expectFlag(t, c, cpu.ZeroBit, true)
	expectFlag(t, c, cpu.SignBit, false)

	stepCPU(c, 1)
	expectFlag(t, c, cpu.ZeroBit, false)
	expectFlag(t, c, cpu.SignBit, true)

	stepCPU(c, 1)
	expectFlag(t, c, cpu.ZeroBit, false)
	expectFlag(t, c, cpu.SignBit, false)
}

func TestStack(t *testing.T) {
	c := loadCPU(0x1000, []byte{
		0xa9, 0x11, 0x48, // LDA #$11, PHA
		0xa9, 0x12, 0x48, // LDA #$12, PHA
		0xa9, 0x13, 0x48, // LDA #$13, PHA
		0x68, 0x8d, 0x00, 0x20, // PLA, STA $2000
		0x68, 0x8d, 0x01, 0x20, // PLA, STA $2001
		0x68, 0x8d, 0x02, 0x20, // PLA, STA $2002
	})

	stepCPU(c, 6)
	expectSP(t, c, 0xfc)
	expectACC(t, c, 0x13)
	expectCycles(t, c, 15)
	expectMem(t, c, 0x1ff, 0x11)
	expectMem(t, c, 0x1fe, 0x12)
	expectMem(t, c, 0x1fd, 0x13)

	stepCPU(c, 6)
	expectACC(t, c, 0x11)
	expectSP(t, c, 0xff)
	expectMem(t, c, 0x2000, 0x13)
	expectMem(t, c, 0x2001, 0x12)
	expectMem(t, c, 0x2002, 0x11)
}

// Pulls copy the stacked byte without touching N or Z. Pulling the
// status byte always leaves bit 5 set.
func TestPullFlags(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa9, 0x80, // LDA #$80
		0x48,       // PHA
		0xa9, 0x01, // LDA #$01
		0x68, // PLA
	})
	stepCPU(c, 4)
	expectACC(t, c, 0x80)
	expectFlag(t, c, cpu.SignBit, false)
	expectFlag(t, c, cpu.ZeroBit, false)

	c = loadCPU(0x0200, []byte{
		0xa9, 0x00, // LDA #$00
		0x48, // PHA
		0x28, // PLP
	})
	stepCPU(c, 3)
	if c.Reg.P != cpu.ReservedBit {
		t.Errorf("Status incorrect. exp: $20, got: $%02X", c.Reg.P)
	}
}

func TestPageCross(t *testing.T) {
	c := loadCPU(0x1000, []byte{
		0xa9, 0x55, // LDA #$55       2 cycles
		0x8d, 0x01, 0x11, // STA $1101      4 cycles
		0xa9, 0x00, // LDA #$00       2 cycles
		0xa2, 0xff, // LDX #$FF       2 cycles
		0xbd, 0x02, 0x10, // LDA $1002,X    5 cycles
	})
	stepCPU(c, 5)

	expectPC(t, c, 0x100c)
	expectCycles(t, c, 15)
	expectACC(t, c, 0x55)
	expectMem(t, c, 0x1101, 0x55)
}

func TestAbsoluteIndexedNoCross(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa0, 0x10, // LDY #$10       2 cycles
		0xb9, 0x00, 0x30, // LDA $3000,Y    4 cycles
	})
	c.Mem.Write(0x3010, 0x7a)
	stepCPU(c, 2)
	expectACC(t, c, 0x7a)
	expectCycles(t, c, 6)
}

// The (indirect,X) mode resolves its target from a single zero-page
// byte, and a store through it lands on the summed zero-page pointer.
func TestIndirectX(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa2, 0x01, // LDX #$01
		0xa1, 0x0f, // LDA ($0F,X)
	})
	c.Mem.Write(0x10, 0x42)
	c.Mem.Write(0x42, 0x99)
	stepCPU(c, 2)
	expectACC(t, c, 0x99)
	expectCycles(t, c, 4)

	c = loadCPU(0x0200, []byte{
		0xa2, 0x01, // LDX #$01
		0xa9, 0xbb, // LDA #$BB
		0x81, 0x05, // STA ($05,X)
	})
	stepCPU(c, 3)
	expectMem(t, c, 0x0006, 0xbb)
}

// The (indirect),Y mode adds Y to the zero-page byte and charges an
// extra cycle whenever the sum leaves the zero page. A store through it
// lands on the zero-page operand address.
func TestIndirectY(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa0, 0x03, // LDY #$03
		0xb1, 0x10, // LDA ($10),Y
	})
	c.Mem.Write(0x10, 0x42)
	c.Mem.Write(0x45, 0x77)
	stepCPU(c, 2)
	expectACC(t, c, 0x77)
	expectCycles(t, c, 4)

	c = loadCPU(0x0200, []byte{
		0xa0, 0x01, // LDY #$01
		0xb1, 0x10, // LDA ($10),Y
	})
	c.Mem.Write(0x10, 0xff)
	c.Mem.Write(0x100, 0x33)
	stepCPU(c, 2)
	expectACC(t, c, 0x33)
	expectCycles(t, c, 5)

	c = loadCPU(0x0200, []byte{
		0xa0, 0x05, // LDY #$05
		0xa9, 0xaa, // LDA #$AA
		0x91, 0x10, // STA ($10),Y
	})
	stepCPU(c, 3)
	expectMem(t, c, 0x0010, 0xaa)
}

func TestBranch(t *testing.T) {
	// Branch not taken costs 2 cycles.
	c := loadCPU(0x0200, []byte{
		0xa9, 0x01, // LDA #$01
		0xf0, 0x10, // BEQ +16
	})
	stepCPU(c, 2)
	expectPC(t, c, 0x0204)
	expectCycles(t, c, 4)

	// Branch taken costs 3.
	c = loadCPU(0x0200, []byte{
		0xa9, 0x00, // LDA #$00
		0xf0, 0x10, // BEQ +16
	})
	stepCPU(c, 2)
	expectPC(t, c, 0x0214)
	expectCycles(t, c, 5)

	// Backward branch.
	c = loadCPU(0x0200, []byte{
		0x18,       // CLC
		0x90, 0xfd, // BCC -3
	})
	stepCPU(c, 2)
	expectPC(t, c, 0x0200)
	expectCycles(t, c, 5)
}

// Taking a branch across a page boundary costs the same as any other
// taken branch.
func TestBranchPageCross(t *testing.T) {
	c := loadCPU(0x10f0, []byte{
		0xa9, 0x00, // LDA #$00
		0xf0, 0x11, // BEQ +17
	})
	stepCPU(c, 2)
	expectPC(t, c, 0x1105)
	expectCycles(t, c, 5)
}

func TestJsrRts(t *testing.T) {
	c := loadCPU(0x0600, []byte{
		0x20, 0x05, 0x06, // JSR $0605
		0xa9, 0x42, // LDA #$42 (return lands here +1)
	})
	c.Mem.Write(0x0605, 0x60) // RTS

	stepCPU(c, 1)
	expectPC(t, c, 0x0605)
	expectSP(t, c, 0xfd)
	expectCycles(t, c, 6)
	expectMem(t, c, 0x01ff, 0x06)
	expectMem(t, c, 0x01fe, 0x02)

	stepCPU(c, 1)
	expectPC(t, c, 0x0603)
	expectSP(t, c, 0xff)
	expectCycles(t, c, 12)

	stepCPU(c, 1)
	expectACC(t, c, 0x42)
}

func TestJmp(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0x4c, 0x00, 0x03, // JMP $0300
	})
	stepCPU(c, 1)
	expectPC(t, c, 0x0300)
	expectCycles(t, c, 4)
}

func TestTransfers(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa9, 0x80, // LDA #$80
		0xaa,       // TAX
		0x9a,       // TXS
		0xa2, 0x00, // LDX #$00
		0xba, // TSX
	})
	stepCPU(c, 2)
	if c.Reg.X != 0x80 {
		t.Errorf("X incorrect. exp: $80, got: $%02X", c.Reg.X)
	}
	expectFlag(t, c, cpu.SignBit, true)

	stepCPU(c, 1)
	expectSP(t, c, 0x80)

	stepCPU(c, 2)
	if c.Reg.X != 0x80 {
		t.Errorf("X incorrect after TSX. exp: $80, got: $%02X", c.Reg.X)
	}
}

func TestIncDec(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa2, 0xff, // LDX #$FF
		0xe8, // INX
		0xca, // DEX
		0xc8, // INY
		0x88, // DEY
		0x88, // DEY
	})
	stepCPU(c, 2)
	if c.Reg.X != 0 {
		t.Errorf("X incorrect. exp: $00, got: $%02X", c.Reg.X)
	}
	expectFlag(t, c, cpu.ZeroBit, true)

	stepCPU(c, 1)
	if c.Reg.X != 0xff {
		t.Errorf("X incorrect. exp: $FF, got: $%02X", c.Reg.X)
	}
	expectFlag(t, c, cpu.SignBit, true)

	stepCPU(c, 3)
	if c.Reg.Y != 0xff {
		t.Errorf("Y incorrect. exp: $FF, got: $%02X", c.Reg.Y)
	}
}

func TestLogical(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa9, 0xf0, // LDA #$F0
		0x29, 0x0f, // AND #$0F
		0x09, 0x81, // ORA #$81
		0x49, 0x81, // EOR #$81
	})
	stepCPU(c, 2)
	expectACC(t, c, 0x00)
	expectFlag(t, c, cpu.ZeroBit, true)

	stepCPU(c, 1)
	expectACC(t, c, 0x81)
	expectFlag(t, c, cpu.SignBit, true)

	stepCPU(c, 1)
	expectACC(t, c, 0x00)
	expectFlag(t, c, cpu.ZeroBit, true)
	expectFlag(t, c, cpu.SignBit, false)
}

func TestCompare(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa9, 0x40, // LDA #$40
		0xc9, 0x40, // CMP #$40
		0xc9, 0x41, // CMP #$41
		0xa2, 0x10, // LDX #$10
		0xe0, 0x01, // CPX #$01
		0xa0, 0x00, // LDY #$00
		0xc0, 0x01, // CPY #$01
	})
	stepCPU(c, 2)
	expectFlag(t, c, cpu.ZeroBit, true)
	expectFlag(t, c, cpu.CarryBit, true)

	stepCPU(c, 1)
	expectFlag(t, c, cpu.ZeroBit, false)
	expectFlag(t, c, cpu.CarryBit, false)
	expectFlag(t, c, cpu.SignBit, true)

	stepCPU(c, 2)
	expectFlag(t, c, cpu.CarryBit, true)
	expectFlag(t, c, cpu.ZeroBit, false)

	stepCPU(c, 2)
	expectFlag(t, c, cpu.CarryBit, false)
	expectFlag(t, c, cpu.SignBit, true)
}

func TestFlagOps(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0x38, // SEC
		0xf8, // SED
		0x78, // SEI
		0x18, // CLC
		0xd8, // CLD
		0x58, // CLI
	})
	stepCPU(c, 3)
	expectFlag(t, c, cpu.CarryBit, true)
	expectFlag(t, c, cpu.DecimalBit, true)
	expectFlag(t, c, cpu.InterruptDisableBit, true)

	stepCPU(c, 3)
	expectFlag(t, c, cpu.CarryBit, false)
	expectFlag(t, c, cpu.DecimalBit, false)
	expectFlag(t, c, cpu.InterruptDisableBit, false)
}

// Run ADC #imm over every combination of accumulator, operand and
// incoming carry, comparing flags and result against the arithmetic
// model.
func TestAdcExhaustive(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)

	for a := 0; a < 256; a++ {
		for v := 0; v < 256; v++ {
			for carry := 0; carry < 2; carry++ {
				mem.StoreBytes(0x0200, []byte{0x69, byte(v)})
				c.SetPC(0x0200)
				c.Reg.A = byte(a)
				c.Reg.SetFlag(cpu.CarryBit, carry == 1)
				if err := c.Step(); err != nil {
					t.Fatal(err)
				}

				sum := a + v + carry
				result := byte(sum)
				if c.Reg.A != result {
					t.Fatalf("ADC $%02X+$%02X+%d: result $%02X, want $%02X",
						a, v, carry, c.Reg.A, result)
				}
				if got, want := c.Reg.GetFlag(cpu.CarryBit), sum > 0xff; got != want {
					t.Fatalf("ADC $%02X+$%02X+%d: carry %v, want %v", a, v, carry, got, want)
				}
				if got, want := c.Reg.GetFlag(cpu.ZeroBit), result == 0; got != want {
					t.Fatalf("ADC $%02X+$%02X+%d: zero %v, want %v", a, v, carry, got, want)
				}
				if got, want := c.Reg.GetFlag(cpu.SignBit), result&0x80 != 0; got != want {
					t.Fatalf("ADC $%02X+$%02X+%d: sign %v, want %v", a, v, carry, got, want)
				}
				overflow := (byte(a)^result)&(byte(v)^result)&0x80 != 0
				if got := c.Reg.GetFlag(cpu.OverflowBit); got != overflow {
					t.Fatalf("ADC $%02X+$%02X+%d: overflow %v, want %v",
						a, v, carry, got, overflow)
				}
			}
		}
	}
}

// Run SBC #imm over every combination of accumulator, operand and
// incoming carry. Clear carry means borrow.
func TestSbcExhaustive(t *testing.T) {
	mem := cpu.NewFlatMemory()
	c := cpu.NewCPU(mem)

	for a := 0; a < 256; a++ {
		for v := 0; v < 256; v++ {
			for carry := 0; carry < 2; carry++ {
				mem.StoreBytes(0x0200, []byte{0xe9, byte(v)})
				c.SetPC(0x0200)
				c.Reg.A = byte(a)
				c.Reg.SetFlag(cpu.CarryBit, carry == 1)
				if err := c.Step(); err != nil {
					t.Fatal(err)
				}

				diff := a - v - (1 - carry)
				result := byte(diff)
				if c.Reg.A != result {
					t.Fatalf("SBC $%02X-$%02X-%d: result $%02X, want $%02X",
						a, v, 1-carry, c.Reg.A, result)
				}
				if got, want := c.Reg.GetFlag(cpu.CarryBit), diff >= 0; got != want {
					t.Fatalf("SBC $%02X-$%02X-%d: carry %v, want %v", a, v, 1-carry, got, want)
				}
				overflow := (byte(a)^result)&(byte(v)^result)&0x80 != 0
				if got := c.Reg.GetFlag(cpu.OverflowBit); got != overflow {
					t.Fatalf("SBC $%02X-$%02X-%d: overflow %v, want %v",
						a, v, 1-carry, got, overflow)
				}
			}
		}
	}
}

func TestAdcOverflowCase(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xa9, 0x50, // LDA #$50
		0x69, 0x50, // ADC #$50
	})
	stepCPU(c, 2)
	expectACC(t, c, 0xa0)
	expectFlag(t, c, cpu.OverflowBit, true)
	expectFlag(t, c, cpu.CarryBit, false)
	expectFlag(t, c, cpu.SignBit, true)
}

func TestInvalidOpcode(t *testing.T) {
	c := loadCPU(0x0200, []byte{
		0xea, // NOP
		0x02, // invalid
		0xea, // NOP
	})

	if err := c.Step(); err != nil {
		t.Fatalf("unexpected error on NOP: %v", err)
	}

	err := c.Step()
	if err == nil {
		t.Fatal("expected an invalid opcode error")
	}

	var opErr *cpu.OpcodeError
	if !errors.As(err, &opErr) {
		t.Fatalf("error has wrong type: %T", err)
	}
	if opErr.Opcode != 0x02 {
		t.Errorf("fault opcode incorrect. exp: $02, got: $%02X", opErr.Opcode)
	}
	if opErr.Addr != 0x0201 {
		t.Errorf("fault address incorrect. exp: $0201, got: $%04X", opErr.Addr)
	}

	// The fault is sticky.
	pc, cycles := c.Reg.PC, c.Cycles
	if err2 := c.Step(); err2 != err {
		t.Errorf("expected the same fault on a halted CPU, got: %v", err2)
	}
	expectPC(t, c, pc)
	expectCycles(t, c, cycles)
}

func expectTrace(t *testing.T, c *cpu.CPU, line string) {
	t.Helper()
	c.Step()
	if c.DebugLine != line {
		t.Errorf("Trace incorrect. exp: %q, got: %q", line, c.DebugLine)
	}
}

func TestTrace(t *testing.T) {
	c := loadCPU(0x0600, []byte{
		0xa9, 0x05, // LDA #$05
		0x85, 0x15, // STA $15
		0xa2, 0x02, // LDX #$02
		0xb5, 0x10, // LDA $10,X
		0x8d, 0x00, 0x15, // STA $1500
		0xbd, 0xff, 0x10, // LDA $10FF,X
		0xb9, 0x00, 0x20, // LDA $2000,Y
		0xa1, 0x05, // LDA ($05,X)
		0xb1, 0x10, // LDA ($10),Y
		0xf0, 0x02, // BEQ +2
		0xea, 0xea, // skipped by the branch
		0xea, // NOP at the branch target
	})
	c.Debug = true

	expectTrace(t, c, "LDA #$05")
	expectTrace(t, c, "STA $15")
	expectTrace(t, c, "LDX #$02")
	expectTrace(t, c, "LDA $12,X")
	expectTrace(t, c, "STA $1500")
	expectTrace(t, c, "LDA $1101,X")
	expectTrace(t, c, "LDA $2000,Y")
	expectTrace(t, c, "LDA ($07,X)")
	expectTrace(t, c, "LDA ($10),Y")
	expectTrace(t, c, "BEQ $0619")
	expectTrace(t, c, "NOP")
}

func TestTraceDisabled(t *testing.T) {
	c := loadCPU(0x0200, []byte{0xa9, 0x05})
	stepCPU(c, 1)
	if c.DebugLine != "" {
		t.Errorf("trace line produced with tracing off: %q", c.DebugLine)
	}
}
