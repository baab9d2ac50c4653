package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalBIOS returns a 512 KiB image whose reset vector (physical offset
// 0, mapped at 0xbfc00000) is a tight "b 0xbfc00000 $" loop followed by
// its delay slot nop, so Step/RunFrame can run indefinitely without
// decoding real BIOS code.
func minimalBIOS() []byte {
	bios := make([]byte, 0x80000)
	// beq $0, $0, -1 (branches back to itself)
	word := uint32(0x04<<26) | (0xffff & uint32(int32(-1)))
	bios[0] = byte(word)
	bios[1] = byte(word >> 8)
	bios[2] = byte(word >> 16)
	bios[3] = byte(word >> 24)
	// delay slot: nop
	return bios
}

func TestStepAdvancesInstructionCount(t *testing.T) {
	c := New(Config{BIOS: minimalBIOS()})
	require.NoError(t, c.Step())
	require.Equal(t, uint64(1), c.InstructionCount())
}

func TestRunFrameAdvancesSchedulerByOneFrame(t *testing.T) {
	c := New(Config{BIOS: minimalBIOS()})
	require.NoError(t, c.RunFrame())
	require.Equal(t, uint64(1), c.FrameCount())
	require.GreaterOrEqual(t, c.Scheduler().Now(), uint64(cyclesPerFrame))
}

func TestDebuggerPausedStateDoesNotAdvance(t *testing.T) {
	c := New(Config{BIOS: minimalBIOS()})
	c.DebuggerPause()
	require.NoError(t, c.RunUntilPauseOrFrame())
	require.Equal(t, uint64(0), c.InstructionCount())
}

func TestDebuggerStepInstructionExecutesExactlyOne(t *testing.T) {
	c := New(Config{BIOS: minimalBIOS()})
	c.DebuggerStepInstruction()
	require.NoError(t, c.RunUntilPauseOrFrame())
	require.Equal(t, uint64(1), c.InstructionCount())
	require.Equal(t, DebuggerPaused, c.GetDebuggerState())
}

func TestTTYHookCapturesPutcharLine(t *testing.T) {
	var out bytes.Buffer
	c := New(Config{BIOS: minimalBIOS(), TTYWriter: &out})
	c.cpu.SetPC(0xb0)
	c.cpu.SetReg(9, 0x3d)
	c.cpu.SetReg(4, uint32('P'))
	c.ttyHook()
	c.cpu.SetReg(4, uint32('\n'))
	c.ttyHook()
	require.Equal(t, "P\n", out.String())
}

func TestEXESideloadAppliesAtPostShellEntry(t *testing.T) {
	c := New(Config{BIOS: minimalBIOS()})
	exe := make([]byte, 0x800+16)
	putLE32(exe, 0x10, 0x80010000) // pc
	putLE32(exe, 0x14, 0xdeadbee0) // gp
	putLE32(exe, 0x18, 0x00010000) // dest
	putLE32(exe, 0x1c, 16)         // size
	copy(exe[0x800:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	require.NoError(t, c.LoadEXE(exe))

	c.cpu.SetPC(0x80030000)
	c.sideloadEXEIfDue()

	require.Equal(t, uint32(0x80010000), c.cpu.PC())
	require.Equal(t, uint32(0xdeadbee0), c.cpu.Reg(28))
	require.Equal(t, byte(1), c.bus.Read8(0x80010000))
}

func putLE32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}
