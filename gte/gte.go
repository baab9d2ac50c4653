// Package gte implements coprocessor 2, the Geometry Transformation Engine:
// a fixed-point matrix/vector pipeline used for 3D projection and lighting,
// with saturating multiply-accumulate registers and sticky overflow flags.
//
// Grounded on original_source/src/cpu/gte.rs, translated from its i64
// intermediate arithmetic and field-extraction style into idiomatic Go
// (explicit saturating helpers instead of overflow-prone Rust casts, and a
// switch on the 6-bit opcode in Execute — see DESIGN.md for why a switch
// was chosen here over the two [64]opFunc tables used in cpu.Step, whose
// hot-path-must-be-static-dispatch constraint does not apply to GTE's much
// colder, 6-bit-wide op space).
package gte

// unrTable is the 0x101-entry Unsigned Newton-Raphson reciprocal lookup
// table used by the RTP division. Values are taken verbatim from the
// reference source; see https://psx-spx.consoledev.net/geometrytransformationengine/#gte-division-inaccuracy.
var unrTable = [0x101]uint8{
	0xFF, 0xFD, 0xFB, 0xF9, 0xF7, 0xF5, 0xF3, 0xF1, 0xEF, 0xEE, 0xEC, 0xEA, 0xE8, 0xE6, 0xE4, 0xE3,
	0xE1, 0xDF, 0xDD, 0xDC, 0xDA, 0xD8, 0xD6, 0xD5, 0xD3, 0xD1, 0xD0, 0xCE, 0xCD, 0xCB, 0xC9, 0xC8,
	0xC6, 0xC5, 0xC3, 0xC1, 0xC0, 0xBE, 0xBD, 0xBB, 0xBA, 0xB8, 0xB7, 0xB5, 0xB4, 0xB2, 0xB1, 0xB0,
	0xAE, 0xAD, 0xAB, 0xAA, 0xA9, 0xA7, 0xA6, 0xA4, 0xA3, 0xA2, 0xA0, 0x9F, 0x9E, 0x9C, 0x9B, 0x9A,
	0x99, 0x97, 0x96, 0x95, 0x94, 0x92, 0x91, 0x90, 0x8F, 0x8D, 0x8C, 0x8B, 0x8A, 0x89, 0x87, 0x86,
	0x85, 0x84, 0x83, 0x82, 0x81, 0x7F, 0x7E, 0x7D, 0x7C, 0x7B, 0x7A, 0x79, 0x78, 0x77, 0x75, 0x74,
	0x73, 0x72, 0x71, 0x70, 0x6F, 0x6E, 0x6D, 0x6C, 0x6B, 0x6A, 0x69, 0x68, 0x67, 0x66, 0x65, 0x64,
	0x63, 0x62, 0x61, 0x60, 0x5F, 0x5E, 0x5D, 0x5D, 0x5C, 0x5B, 0x5A, 0x59, 0x58, 0x57, 0x56, 0x55,
	0x54, 0x53, 0x53, 0x52, 0x51, 0x50, 0x4F, 0x4E, 0x4D, 0x4D, 0x4C, 0x4B, 0x4A, 0x49, 0x48, 0x48,
	0x47, 0x46, 0x45, 0x44, 0x43, 0x43, 0x42, 0x41, 0x40, 0x3F, 0x3F, 0x3E, 0x3D, 0x3C, 0x3C, 0x3B,
	0x3A, 0x39, 0x39, 0x38, 0x37, 0x36, 0x36, 0x35, 0x34, 0x33, 0x33, 0x32, 0x31, 0x31, 0x30, 0x2F,
	0x2E, 0x2E, 0x2D, 0x2C, 0x2C, 0x2B, 0x2A, 0x2A, 0x29, 0x28, 0x28, 0x27, 0x26, 0x26, 0x25, 0x24,
	0x24, 0x23, 0x22, 0x22, 0x21, 0x20, 0x20, 0x1F, 0x1E, 0x1E, 0x1D, 0x1D, 0x1C, 0x1B, 0x1B, 0x1A,
	0x19, 0x19, 0x18, 0x18, 0x17, 0x16, 0x16, 0x15, 0x15, 0x14, 0x14, 0x13, 0x12, 0x12, 0x11, 0x11,
	0x10, 0x0F, 0x0F, 0x0E, 0x0E, 0x0D, 0x0D, 0x0C, 0x0C, 0x0B, 0x0A, 0x0A, 0x09, 0x09, 0x08, 0x08,
	0x07, 0x07, 0x06, 0x06, 0x05, 0x05, 0x04, 0x04, 0x03, 0x03, 0x02, 0x02, 0x01, 0x01, 0x00, 0x00,
	0x00,
}

type rgb struct{ r, g, b, c uint8 }

// GTE holds all coprocessor-2 state: matrices, vectors, the FIFOs, the
// MAC/IR scratch registers and the sticky flag word.
type GTE struct {
	zsf3, zsf4      int16
	h               uint16
	dqa             int16
	dqb             int32
	ofx, ofy        int32
	fc, bk, tr      [3]int32
	color           [3][3]int16
	light           [3][3]int16
	rotation        [3][3]int16
	v               [3][3]int16
	rgbc            rgb
	otz             uint16
	ir              [4]int16
	flags           uint32
	sf              uint
	mx, sv, cv      uint
	lm              bool
	sxyFifo         [3][2]int16
	szFifo          [4]uint16
	rgbFifo         [3]rgb
	res1            uint32
	mac             [4]int32
	lzcs, lzcr      int32
}

// New returns a GTE with all registers zeroed.
func New() *GTE {
	return &GTE{}
}

// Execute dispatches a GTE command. command is the low 25 bits of the COP2
// opcode (bits [24:0]), as spec.md §4.3 describes.
func (g *GTE) Execute(command uint32) {
	opCode := command & 0x3f

	if (command>>19)&1 == 1 {
		g.sf = 12
	} else {
		g.sf = 0
	}

	g.mx = uint((command >> 17) & 0x3)
	g.sv = uint((command >> 15) & 0x3)
	g.cv = uint((command >> 13) & 0x3)
	g.lm = (command>>10)&1 == 1

	g.flags = 0

	switch opCode {
	case 0x01:
		g.rtps()
	case 0x06:
		g.nclip()
	case 0x0c:
		g.op()
	case 0x10:
		g.dpcs()
	case 0x11:
		g.intpl()
	case 0x12:
		g.mvmva()
	case 0x13:
		g.ncds()
	case 0x14:
		g.cdp()
	case 0x16:
		g.ncdt()
	case 0x1b:
		g.nccs()
	case 0x1c:
		g.cc()
	case 0x1e:
		g.ncs()
	case 0x20:
		g.nct()
	case 0x28:
		g.sqr()
	case 0x29:
		g.dpcl()
	case 0x2a:
		g.dpct()
	case 0x2d:
		g.avsz3()
	case 0x2e:
		g.avsz4()
	case 0x30:
		g.rtpt()
	case 0x3d:
		g.gpf()
	case 0x3e:
		g.gpl()
	case 0x3f:
		g.ncct()
	default:
		// Unknown GTE op: per spec.md §7 an implementation-level error,
		// not a guest fault. It is ignored: Execute has no error result
		// and logs nothing, so the caller (cpu package) is not told.
	}

	if g.flags&0x7f87e000 != 0 {
		g.flags |= 1 << 31
	}
}

func (g *GTE) setMacFlags(value int64, index int) int64 {
	const largest = 0x7ff_ffff_ffff
	const smallest = -0x800_0000_0000

	if value > largest {
		g.flags |= 1 << (30 - (index - 1))
	}
	if value < smallest {
		g.flags |= 1 << (27 - (index - 1))
	}

	return (value << 20) >> 20
}

func (g *GTE) setMac0Flags(value int64) {
	if value < -0x8000_0000 {
		g.flags |= 1 << 15
	} else if value > 0x7fff_ffff {
		g.flags |= 1 << 16
	}
}

func (g *GTE) setIRFlags(value int32, index int, lm bool) int16 {
	flagBit := uint(24 - (index - 1))
	if lm && value < 0 {
		g.flags |= 1 << flagBit
		return 0
	} else if !lm && value < -0x8000 {
		g.flags |= 1 << flagBit
		return -0x8000
	}
	if value > 0x7fff {
		g.flags |= 1 << flagBit
		return 0x7fff
	}
	return int16(value)
}

// setIRFlag3 reproduces the RTP projection's documented IR3 quirk: the
// overflow flag is derived from the Z sum shifted right by 12 whatever sf
// is, rather than from the sf-shifted MAC3 value IR1/IR2 use, matching other reference emulators'
// documented behavior for this specific register.
func (g *GTE) setIRFlag3(previous int64, value int32) int16 {
	if previous < -0x8000 || previous > 0x7fff {
		g.flags |= 1 << 22
	}
	if g.lm && value < 0 {
		return 0
	}
	if !g.lm && value < -0x8000 {
		return -0x8000
	}
	if value > 0x7fff {
		return 0x7fff
	}
	return int16(value)
}

func (g *GTE) setIR0Flags(value int64) int16 {
	if value < 0 {
		g.flags |= 1 << 12
		return 0
	}
	if value > 0x1000 {
		g.flags |= 1 << 12
		return 0x1000
	}
	return int16(value)
}

func (g *GTE) setSnFlags(value int64, index int) int16 {
	if value < -0x400 {
		g.flags |= 1 << (14 - (index - 1))
		return -0x400
	}
	if value > 0x3ff {
		g.flags |= 1 << (14 - (index - 1))
		return 0x3ff
	}
	return int16(value)
}

func (g *GTE) setSz3OrOtzFlags(value int64) uint16 {
	if value < 0 {
		g.flags |= 1 << 18
		return 0
	}
	if value > 0xffff {
		g.flags |= 1 << 18
		return 0xffff
	}
	return uint16(value)
}

func (g *GTE) setColorFifoFlags(value int32, index int) uint8 {
	if value < 0 {
		g.flags |= 1 << (21 - (index - 1))
		return 0
	}
	if value > 0xff {
		g.flags |= 1 << (21 - (index - 1))
		return 0xff
	}
	return uint8(value)
}

func (g *GTE) pushRGB(r, gr, b, c uint8) {
	g.rgbFifo[0] = g.rgbFifo[1]
	g.rgbFifo[1] = g.rgbFifo[2]
	g.rgbFifo[2] = rgb{r, gr, b, c}
}

func (g *GTE) pushSX(sx int16) {
	g.sxyFifo[0][0] = g.sxyFifo[1][0]
	g.sxyFifo[1][0] = g.sxyFifo[2][0]
	g.sxyFifo[2][0] = sx
}

func (g *GTE) pushSY(sy int16) {
	g.sxyFifo[0][1] = g.sxyFifo[1][1]
	g.sxyFifo[1][1] = g.sxyFifo[2][1]
	g.sxyFifo[2][1] = sy
}

func (g *GTE) pushSZ(sz uint16) {
	g.szFifo[0] = g.szFifo[1]
	g.szFifo[1] = g.szFifo[2]
	g.szFifo[2] = g.szFifo[3]
	g.szFifo[3] = sz
}

func toU5(val int16) uint8 {
	if val > 0x1f {
		return 0x1f
	}
	if val < 0 {
		return 0
	}
	return uint8(val)
}
