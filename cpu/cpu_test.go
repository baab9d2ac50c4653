package cpu

import (
	"testing"

	"github.com/hollow-vale/rsx/gte"
	"github.com/hollow-vale/rsx/interrupt"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB RAM-backed Bus double for instruction-level
// tests, addressed starting at 0. Matches the teacher's test convention of
// exercising the CPU against a minimal memory double rather than the full
// machine (see jeebie's cpu tests).
type fakeBus struct {
	mem [1 << 16]byte
}

func (b *fakeBus) Read8(addr uint32) uint8   { return b.mem[addr&0xffff] }
func (b *fakeBus) Read16(addr uint32) uint16 {
	a := addr & 0xffff
	return uint16(b.mem[a]) | uint16(b.mem[a+1])<<8
}
func (b *fakeBus) Read32(addr uint32) uint32 {
	a := addr & 0xffff
	return uint32(b.mem[a]) | uint32(b.mem[a+1])<<8 | uint32(b.mem[a+2])<<16 | uint32(b.mem[a+3])<<24
}
func (b *fakeBus) Write8(addr uint32, v uint8) { b.mem[addr&0xffff] = v }
func (b *fakeBus) Write16(addr uint32, v uint16) {
	a := addr & 0xffff
	b.mem[a] = byte(v)
	b.mem[a+1] = byte(v >> 8)
}
func (b *fakeBus) Write32(addr uint32, v uint32) {
	a := addr & 0xffff
	b.mem[a] = byte(v)
	b.mem[a+1] = byte(v >> 8)
	b.mem[a+2] = byte(v >> 16)
	b.mem[a+3] = byte(v >> 24)
}
func (b *fakeBus) Tick(n uint64) {}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	ir := &interrupt.Registers{}
	c := New(bus, ir, gte.New())
	c.pc = 0
	c.nextPC = 4
	return c, bus
}

func encodeR(op, rs, rt, rd, shamt, funct uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

func encodeI(op, rs, rt, imm uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | (imm & 0xffff)
}

func TestRegisterZeroIsHardwired(t *testing.T) {
	c, bus := newTestCPU()
	bus.Write32(0, encodeI(0x09, 0, 0, 123)) // addiu $0, $0, 123
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint32(0), c.Reg(0))
}

func TestLoadDelaySlot(t *testing.T) {
	c, bus := newTestCPU()
	// ori $5, $0, 0x1234 ; the value under test
	bus.Write32(0, encodeI(0x0d, 0, 5, 0x1234))
	c.regs[5] = 0
	bus.Write32(0x1000, 0xdeadbeef)
	// lw $4, 0($6) ; rs=6 holds the address
	bus.Write32(4, encodeI(0x23, 6, 4, 0))
	c.regs[6] = 0x1000
	// addu $7, $4, $0 ; reads $4 immediately after the load -- must NOT see it yet
	bus.Write32(8, encodeR(0x00, 4, 0, 7, 0, 0x21))
	// nop
	bus.Write32(12, 0)

	_, err := c.Step() // ori
	require.NoError(t, err)
	_, err = c.Step() // lw: latches pendingLoad, $4 still whatever it was
	require.NoError(t, err)
	_, err = c.Step() // addu reads the old $4; the lw's value commits at the end of this step
	require.NoError(t, err)
	require.NotEqual(t, uint32(0xdeadbeef), c.Reg(7))

	_, err = c.Step() // nop
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), c.Reg(4))
}

func TestBranchDelaySlot(t *testing.T) {
	c, bus := newTestCPU()
	// beq $0, $0, +2 (the delay slot at 4 still runs, the instruction at 8
	// is skipped, lands at 12)
	bus.Write32(0, encodeI(0x04, 0, 0, 2))
	// delay slot: ori $5, $0, 0xaa (always executes)
	bus.Write32(4, encodeI(0x0d, 0, 5, 0xaa))
	// skipped instruction at 8
	bus.Write32(8, encodeI(0x0d, 0, 6, 0xbb))
	// target at 12
	bus.Write32(12, encodeI(0x0d, 0, 7, 0xcc))

	_, err := c.Step() // beq
	require.NoError(t, err)
	_, err = c.Step() // delay slot, still executes
	require.NoError(t, err)
	require.Equal(t, uint32(0xaa), c.Reg(5))
	require.Equal(t, uint32(12), c.pc)

	_, err = c.Step() // lands on target, not the skipped instruction
	require.NoError(t, err)
	require.Equal(t, uint32(0xcc), c.Reg(7))
	require.Equal(t, uint32(0), c.Reg(6))
}

func TestDivideByZeroDoesNotTrap(t *testing.T) {
	c, bus := newTestCPU()
	c.regs[1] = 42
	c.regs[2] = 0
	// div $1, $2
	bus.Write32(0, encodeR(0x00, 1, 2, 0, 0, 0x1a))
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint32(0xffffffff), c.lo)
	require.Equal(t, uint32(42), c.hi)
}

func TestExceptionSavesEPCAndEntersBEVVector(t *testing.T) {
	c, bus := newTestCPU()
	// $1 = MaxInt32, so $1 + 1 overflows
	c.regs[1] = 0x7fffffff
	bus.Write32(0, encodeI(0x08, 1, 2, 1)) // addi $2, $1, 1 -> overflows
	_, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, uint32(0xbfc00180), c.pc)
	require.Equal(t, uint32(0), c.cop0.epc)
	require.Equal(t, uint32(ExcOverflow)<<2, c.cop0.cause&causeExcCodeMask)
}

func TestFailFastSurfacesImplementationErrors(t *testing.T) {
	c, bus := newTestCPU()
	c.FailFast = true
	bus.Write32(0, 0xfc000000) // op 0x3f, unused primary opcode
	_, err := c.Step()
	require.Error(t, err)
}
