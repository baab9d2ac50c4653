package gte

// ReadData reads GTE data register n (0..31), the COP2 "rd" side accessed
// via MFC2/SWC2, per the documented GTE data-register layout.
func (g *GTE) ReadData(n uint32) uint32 {
	switch n {
	case 0:
		return uint32(uint16(g.v[0][0])) | uint32(uint16(g.v[0][1]))<<16
	case 1:
		return uint32(int32(g.v[0][2]))
	case 2:
		return uint32(uint16(g.v[1][0])) | uint32(uint16(g.v[1][1]))<<16
	case 3:
		return uint32(int32(g.v[1][2]))
	case 4:
		return uint32(uint16(g.v[2][0])) | uint32(uint16(g.v[2][1]))<<16
	case 5:
		return uint32(int32(g.v[2][2]))
	case 6:
		return uint32(g.rgbc.r) | uint32(g.rgbc.g)<<8 | uint32(g.rgbc.b)<<16 | uint32(g.rgbc.c)<<24
	case 7:
		return uint32(g.otz)
	case 8:
		return uint32(int32(g.ir[0]))
	case 9:
		return uint32(int32(g.ir[1]))
	case 10:
		return uint32(int32(g.ir[2]))
	case 11:
		return uint32(int32(g.ir[3]))
	case 12:
		return uint32(uint16(g.sxyFifo[0][0])) | uint32(uint16(g.sxyFifo[0][1]))<<16
	case 13:
		return uint32(uint16(g.sxyFifo[1][0])) | uint32(uint16(g.sxyFifo[1][1]))<<16
	case 14, 15:
		return uint32(uint16(g.sxyFifo[2][0])) | uint32(uint16(g.sxyFifo[2][1]))<<16
	case 16:
		return uint32(g.szFifo[0])
	case 17:
		return uint32(g.szFifo[1])
	case 18:
		return uint32(g.szFifo[2])
	case 19:
		return uint32(g.szFifo[3])
	case 20:
		return rgbWord(g.rgbFifo[0])
	case 21:
		return rgbWord(g.rgbFifo[1])
	case 22:
		return rgbWord(g.rgbFifo[2])
	case 23:
		return g.res1
	case 24:
		return uint32(g.mac[0])
	case 25:
		return uint32(g.mac[1])
	case 26:
		return uint32(g.mac[2])
	case 27:
		return uint32(g.mac[3])
	case 28, 29:
		return uint32(toU5(g.ir[1]>>7)) | uint32(toU5(g.ir[2]>>7))<<5 | uint32(toU5(g.ir[3]>>7))<<10
	case 30:
		return uint32(g.lzcs)
	case 31:
		return uint32(g.lzcr)
	default:
		return 0
	}
}

func rgbWord(c rgb) uint32 {
	return uint32(c.r) | uint32(c.g)<<8 | uint32(c.b)<<16 | uint32(c.c)<<24
}

// WriteData writes GTE data register n, the COP2 "rd" side accessed via
// MTC2/LWC2.
func (g *GTE) WriteData(n uint32, value uint32) {
	switch n {
	case 0:
		g.v[0][0], g.v[0][1] = int16(value), int16(value>>16)
	case 1:
		g.v[0][2] = int16(value)
	case 2:
		g.v[1][0], g.v[1][1] = int16(value), int16(value>>16)
	case 3:
		g.v[1][2] = int16(value)
	case 4:
		g.v[2][0], g.v[2][1] = int16(value), int16(value>>16)
	case 5:
		g.v[2][2] = int16(value)
	case 6:
		g.rgbc = rgb{uint8(value), uint8(value >> 8), uint8(value >> 16), uint8(value >> 24)}
	case 7:
		g.otz = uint16(value)
	case 8:
		g.ir[0] = int16(value)
	case 9:
		g.ir[1] = int16(value)
	case 10:
		g.ir[2] = int16(value)
	case 11:
		g.ir[3] = int16(value)
	case 12:
		g.sxyFifo[0] = [2]int16{int16(value), int16(value >> 16)}
	case 13:
		g.sxyFifo[1] = [2]int16{int16(value), int16(value >> 16)}
	case 14:
		g.sxyFifo[2] = [2]int16{int16(value), int16(value >> 16)}
	case 15:
		g.pushSX(int16(value))
		g.pushSY(int16(value >> 16))
	case 16:
		g.szFifo[0] = uint16(value)
	case 17:
		g.szFifo[1] = uint16(value)
	case 18:
		g.szFifo[2] = uint16(value)
	case 19:
		g.szFifo[3] = uint16(value)
	case 20:
		g.rgbFifo[0] = rgb{uint8(value), uint8(value >> 8), uint8(value >> 16), uint8(value >> 24)}
	case 21:
		g.rgbFifo[1] = rgb{uint8(value), uint8(value >> 8), uint8(value >> 16), uint8(value >> 24)}
	case 22:
		g.rgbFifo[2] = rgb{uint8(value), uint8(value >> 8), uint8(value >> 16), uint8(value >> 24)}
	case 23:
		g.res1 = value
	case 24:
		g.mac[0] = int32(value)
	case 25:
		g.mac[1] = int32(value)
	case 26:
		g.mac[2] = int32(value)
	case 27:
		g.mac[3] = int32(value)
	case 28:
		g.ir[1] = int16((value & 0x1f) << 7)
		g.ir[2] = int16(((value >> 5) & 0x1f) << 7)
		g.ir[3] = int16(((value >> 10) & 0x1f) << 7)
	case 29:
		// ORGB is read-only.
	case 30:
		g.lzcs = int32(value)
		g.lzcr = g.getNumLeadingBits(g.lzcs)
	case 31:
		// LZCR is read-only.
	}
}

// ReadControl reads GTE control register n (0..31), accessed via CFC2.
func (g *GTE) ReadControl(n uint32) uint32 {
	switch n {
	case 0:
		return uint32(uint16(g.rotation[0][0])) | uint32(uint16(g.rotation[0][1]))<<16
	case 1:
		return uint32(uint16(g.rotation[0][2])) | uint32(uint16(g.rotation[1][0]))<<16
	case 2:
		return uint32(uint16(g.rotation[1][1])) | uint32(uint16(g.rotation[1][2]))<<16
	case 3:
		return uint32(uint16(g.rotation[2][0])) | uint32(uint16(g.rotation[2][1]))<<16
	case 4:
		return uint32(int32(g.rotation[2][2]))
	case 5:
		return uint32(g.tr[0])
	case 6:
		return uint32(g.tr[1])
	case 7:
		return uint32(g.tr[2])
	case 8:
		return uint32(uint16(g.light[0][0])) | uint32(uint16(g.light[0][1]))<<16
	case 9:
		return uint32(uint16(g.light[0][2])) | uint32(uint16(g.light[1][0]))<<16
	case 10:
		return uint32(uint16(g.light[1][1])) | uint32(uint16(g.light[1][2]))<<16
	case 11:
		return uint32(uint16(g.light[2][0])) | uint32(uint16(g.light[2][1]))<<16
	case 12:
		return uint32(int32(g.light[2][2]))
	case 13:
		return uint32(g.bk[0])
	case 14:
		return uint32(g.bk[1])
	case 15:
		return uint32(g.bk[2])
	case 16:
		return uint32(uint16(g.color[0][0])) | uint32(uint16(g.color[0][1]))<<16
	case 17:
		return uint32(uint16(g.color[0][2])) | uint32(uint16(g.color[1][0]))<<16
	case 18:
		return uint32(uint16(g.color[1][1])) | uint32(uint16(g.color[1][2]))<<16
	case 19:
		return uint32(uint16(g.color[2][0])) | uint32(uint16(g.color[2][1]))<<16
	case 20:
		return uint32(int32(g.color[2][2]))
	case 21:
		return uint32(g.fc[0])
	case 22:
		return uint32(g.fc[1])
	case 23:
		return uint32(g.fc[2])
	case 24:
		return uint32(g.ofx)
	case 25:
		return uint32(g.ofy)
	case 26:
		return uint32(int32(int16(g.h)))
	case 27:
		return uint32(int32(g.dqa))
	case 28:
		return uint32(g.dqb)
	case 29:
		return uint32(int32(g.zsf3))
	case 30:
		return uint32(int32(g.zsf4))
	case 31:
		return g.flags
	default:
		return 0
	}
}

// WriteControl writes GTE control register n, accessed via CTC2.
func (g *GTE) WriteControl(n uint32, value uint32) {
	switch n {
	case 0:
		g.rotation[0][0], g.rotation[0][1] = int16(value), int16(value>>16)
	case 1:
		g.rotation[0][2], g.rotation[1][0] = int16(value), int16(value>>16)
	case 2:
		g.rotation[1][1], g.rotation[1][2] = int16(value), int16(value>>16)
	case 3:
		g.rotation[2][0], g.rotation[2][1] = int16(value), int16(value>>16)
	case 4:
		g.rotation[2][2] = int16(value)
	case 5:
		g.tr[0] = int32(value)
	case 6:
		g.tr[1] = int32(value)
	case 7:
		g.tr[2] = int32(value)
	case 8:
		g.light[0][0], g.light[0][1] = int16(value), int16(value>>16)
	case 9:
		g.light[0][2], g.light[1][0] = int16(value), int16(value>>16)
	case 10:
		g.light[1][1], g.light[1][2] = int16(value), int16(value>>16)
	case 11:
		g.light[2][0], g.light[2][1] = int16(value), int16(value>>16)
	case 12:
		g.light[2][2] = int16(value)
	case 13:
		g.bk[0] = int32(value)
	case 14:
		g.bk[1] = int32(value)
	case 15:
		g.bk[2] = int32(value)
	case 16:
		g.color[0][0], g.color[0][1] = int16(value), int16(value>>16)
	case 17:
		g.color[0][2], g.color[1][0] = int16(value), int16(value>>16)
	case 18:
		g.color[1][1], g.color[1][2] = int16(value), int16(value>>16)
	case 19:
		g.color[2][0], g.color[2][1] = int16(value), int16(value>>16)
	case 20:
		g.color[2][2] = int16(value)
	case 21:
		g.fc[0] = int32(value)
	case 22:
		g.fc[1] = int32(value)
	case 23:
		g.fc[2] = int32(value)
	case 24:
		g.ofx = int32(value)
	case 25:
		g.ofy = int32(value)
	case 26:
		g.h = uint16(value)
	case 27:
		g.dqa = int16(value)
	case 28:
		g.dqb = int32(value)
	case 29:
		g.zsf3 = int16(value)
	case 30:
		g.zsf4 = int16(value)
	case 31:
		g.flags = value & 0x7fff_f000
		if g.flags&0x7f87e000 != 0 {
			g.flags |= 1 << 31
		}
	}
}
