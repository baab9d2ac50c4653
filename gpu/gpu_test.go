package gpu

import (
	"testing"

	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
	"github.com/stretchr/testify/require"
)

func TestResetLeavesAllReadyBits(t *testing.T) {
	g := New()
	require.NotZero(t, g.Stat()&statReadyRecv)
	require.NotZero(t, g.Stat()&statDisplayDisable)
}

func TestGP0MonochromeTriangleAccumulatesFourWords(t *testing.T) {
	g := New()
	g.WriteGP0(0x20000000) // flat-shaded opaque triangle, command+color word
	require.Empty(t, g.Queue)
	g.WriteGP0(1)
	g.WriteGP0(2)
	g.WriteGP0(3)
	require.Len(t, g.Queue, 1)
	require.Equal(t, RecordPolygon, g.Queue[0].Kind)
	require.Len(t, g.Queue[0].Words, 4)
}

func TestGP1ResetClearsQueueAndStat(t *testing.T) {
	g := New()
	g.WriteGP0(0x20000000)
	g.WriteGP1(0x00000000)
	require.Empty(t, g.Queue)
	require.NotZero(t, g.Stat()&statDisplayDisable)
}

func TestVblankFiresAtLine240(t *testing.T) {
	g := New()
	ir := &interrupt.Registers{}
	sched := scheduler.New()
	for i := 0; i < vblankStartLine; i++ {
		g.OnHblankEnd(sched, ir)
	}
	require.True(t, ir.Pending() || ir.Status()&interrupt.VBlank != 0)
}
