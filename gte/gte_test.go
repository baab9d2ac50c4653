package gte

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControlRegisterRoundTrip(t *testing.T) {
	g := New()

	g.WriteControl(5, 0x0000_1234) // TRX
	g.WriteControl(24, 0x7fff_ffff) // OFX
	g.WriteControl(26, 0x0000_0ffe) // H
	g.WriteControl(27, 0x0000_00ff) // DQA

	require.Equal(t, uint32(0x1234), g.ReadControl(5))
	require.Equal(t, uint32(0x7fff_ffff), g.ReadControl(24))
	require.Equal(t, uint32(0x0ffe), g.ReadControl(26))
	require.Equal(t, uint32(0xff), g.ReadControl(27))
}

func TestRotationMatrixPacking(t *testing.T) {
	g := New()

	// Identity rotation matrix packed across control registers 0-4.
	g.WriteControl(0, 0x0000_1000) // [0][0]=0x1000, [0][1]=0
	g.WriteControl(1, 0x0000_0000) // [0][2]=0, [1][0]=0
	g.WriteControl(2, 0x1000_0000) // [1][1]=0x1000, [1][2]=0
	g.WriteControl(3, 0x0000_0000) // [2][0]=0, [2][1]=0
	g.WriteControl(4, 0x0000_1000) // [2][2]=0x1000

	require.Equal(t, int16(0x1000), g.rotation[0][0])
	require.Equal(t, int16(0x1000), g.rotation[1][1])
	require.Equal(t, int16(0x1000), g.rotation[2][2])
	require.Equal(t, int16(0), g.rotation[0][1])
}

// TestRTPSIdentityProjection exercises the RTPS projection pipeline with an
// identity rotation matrix and zero translation, checking MAC1/MAC2 and
// the value pushed onto the SZ FIFO, without triggering any sticky
// overflow flag.
func TestRTPSIdentityProjection(t *testing.T) {
	g := New()

	// Identity rotation.
	g.rotation[0][0] = 0x1000
	g.rotation[1][1] = 0x1000
	g.rotation[2][2] = 0x1000

	g.tr = [3]int32{0, 0, 0}
	g.ofx = 0
	g.ofy = 0
	g.h = 0x100
	g.dqa = 0
	g.dqb = 0

	g.v[0] = [3]int16{0, 0, 0x100}

	g.Execute(0x01) // RTPS

	require.Zero(t, g.flags&(1<<31), "unexpected sticky overflow flag")
	require.Equal(t, int32(0), g.mac[1])
	require.Equal(t, int32(0), g.mac[2])
	require.Equal(t, uint16(0x100), g.szFifo[3])
}

func TestGetNumLeadingBits(t *testing.T) {
	g := New()

	require.Equal(t, int32(32), g.getNumLeadingBits(0))
	require.Equal(t, int32(2), g.getNumLeadingBits(-1<<31|1<<30))
}

func TestFlagRegisterDerivesStickyBit(t *testing.T) {
	g := New()

	g.WriteControl(31, 1<<23) // within the sticky mask
	require.NotZero(t, g.ReadControl(31)&(1<<31))

	g.WriteControl(31, 1<<2) // outside the sticky mask
	require.Zero(t, g.ReadControl(31)&(1<<31))
}
