package bus

import (
	"testing"

	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	bios := make([]byte, biosSize)
	ir := &interrupt.Registers{}
	sched := scheduler.New()
	return New(bios, ir, sched)
}

func TestRAMMirrorsAcrossEightMeg(t *testing.T) {
	b := newTestBus()
	b.Write32(0x00000100, 0xcafebabe)
	require.Equal(t, uint32(0xcafebabe), b.Read32(0x00200100))
	require.Equal(t, uint32(0xcafebabe), b.Read32(0x80000100))
	require.Equal(t, uint32(0xcafebabe), b.Read32(0xa0000100))
}

func TestBIOSWritesAreDropped(t *testing.T) {
	b := newTestBus()
	before := b.Read32(0xbfc00000)
	b.Write32(0xbfc00000, 0x11223344)
	require.Equal(t, before, b.Read32(0xbfc00000))
}

func TestKSEG1TranslatesToSamePhysicalAddress(t *testing.T) {
	b := newTestBus()
	b.Write32(0x00001000, 0x12345678)
	require.Equal(t, uint32(0x12345678), b.Read32(0xa0001000))
	require.Equal(t, uint32(0x12345678), b.Read32(0x80001000))
}

func TestDMAWordRegisterNarrowAccessComposesFromWideReadWrite(t *testing.T) {
	b := newTestBus()
	b.Write16(0x1f8010f0, 0x002a) // DPCR low half
	require.Equal(t, uint16(0x002a), b.Read16(0x1f8010f0))
}

func TestUnmappedReadReturnsZeroWithoutFailFast(t *testing.T) {
	b := newTestBus()
	require.Equal(t, uint32(0), b.Read32(0x1f000000))
}
