package gte

// The helpers below select the matrix, vector and translation that mvmva
// combines as m * v + offset (sf-shifted), writing mac[1..3] and ir[1..3].
// rtp's projection and the light/color stages of the nc* family write out
// the same "matrix * vector + offset" shape inline, with fixed selections.

func (g *GTE) vecForSv() [3]int16 {
	switch g.sv {
	case 0:
		return g.v[0]
	case 1:
		return g.v[1]
	case 2:
		return g.v[2]
	default:
		return [3]int16{g.ir[1], g.ir[2], g.ir[3]}
	}
}

func (g *GTE) translationForCv() [3]int32 {
	switch g.cv {
	case 0:
		return g.tr
	case 1:
		return g.bk
	case 2:
		return g.fc
	default:
		return [3]int32{0, 0, 0}
	}
}

func (g *GTE) matrixForMx() [3][3]int16 {
	switch g.mx {
	case 0:
		return g.rotation
	case 1:
		return g.light
	case 2:
		return g.color
	default:
		// "buggy mode": a synthetic matrix built from rgbc/ir0 and two
		// fixed rotation-matrix entries, matching documented hardware
		// behavior for mx==3.
		return [3][3]int16{
			{int16(-(int32(g.rgbc.r) << 4)), int16(int32(g.rgbc.r) << 4), g.ir[0]},
			{g.rotation[0][2], g.rotation[0][2], g.rotation[0][2]},
			{g.rotation[1][1], g.rotation[1][1], g.rotation[1][1]},
		}
	}
}

// mvmva is the generalized matrix * vector + translation primitive; MVMVA
// itself just calls this with whichever selectors the opcode carried, and
// pushes the result through set_ir_flags/lm. The cv==2 "zeroing" quirk: when
// translation is fc (background color), the hardware accumulates vec[0]
// alone, reports IR flags from that partial sum, then discards it and
// restarts accumulation from zero for the remaining two vector components.
func (g *GTE) mvmva() {
	m := g.matrixForMx()
	v := g.vecForSv()
	t := g.translationForCv()

	for row := 0; row < 3; row++ {
		acc := int64(t[row]) << 12
		acc += int64(m[row][0]) * int64(v[0])

		if g.cv == 2 && row < 3 {
			g.ir[row+1] = g.setIRFlags(int32(g.setMacFlags(acc, row+1)>>g.sf), row+1, false)
			acc = 0
		}

		acc += int64(m[row][1]) * int64(v[1])
		acc += int64(m[row][2]) * int64(v[2])

		g.mac[row+1] = int32(g.setMacFlags(acc, row+1) >> g.sf)
	}

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)
}

// rtp projects vector v[index] through the rotation matrix and translation,
// pushing the result onto the SXY/SZ FIFOs. When dq is true it also computes
// the depth-cued interpolation factor (IR0/MAC0) used by the final RTPT call
// in a triple-projection.
func (g *GTE) rtp(index int, dq bool) {
	v := g.v[index]

	accX := int64(g.tr[0])<<12 + int64(g.rotation[0][0])*int64(v[0]) + int64(g.rotation[0][1])*int64(v[1]) + int64(g.rotation[0][2])*int64(v[2])
	accY := int64(g.tr[1])<<12 + int64(g.rotation[1][0])*int64(v[0]) + int64(g.rotation[1][1])*int64(v[1]) + int64(g.rotation[1][2])*int64(v[2])
	accZ := int64(g.tr[2])<<12 + int64(g.rotation[2][0])*int64(v[0]) + int64(g.rotation[2][1])*int64(v[1]) + int64(g.rotation[2][2])*int64(v[2])

	zs := accZ >> 12

	g.mac[1] = int32(g.setMacFlags(accX, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(accY, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(accZ, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlag3(zs, g.mac[3])

	sz3 := g.setSz3OrOtzFlags(zs)
	g.pushSZ(sz3)

	var divided uint64
	if uint32(sz3) > uint32(g.h)/2 {
		leadingZeros := uint(0)
		for (uint32(sz3)<<leadingZeros)&0x8000 == 0 && leadingZeros < 16 {
			leadingZeros++
		}
		n := uint64(g.h) << leadingZeros
		d := uint64(sz3) << leadingZeros
		u := uint64(unrTable[(d-0x7fc0)>>7]) + 0x101
		d = (0x2000080 - (d * u)) >> 8
		d = (0x80 + (d * u)) >> 8
		result := (n*d + 0x8000) >> 16
		if result > 0x1ffff {
			result = 0x1ffff
		}
		divided = result
	} else {
		g.flags |= 1 << 17
		divided = 0x1ffff
	}

	sx := int64(g.ofx) + int64(g.ir[1])*int64(divided)
	g.setMac0Flags(sx)
	sx >>= 16
	sxSat := g.setSnFlags(sx, 1)
	g.pushSX(sxSat)

	sy := int64(g.ofy) + int64(g.ir[2])*int64(divided)
	g.setMac0Flags(sy)
	sy >>= 16
	sySat := g.setSnFlags(sy, 2)
	g.pushSY(sySat)

	if dq {
		p := int64(g.dqb) + int64(g.dqa)*int64(divided)
		g.setMac0Flags(p)
		g.mac[0] = int32(p)
		g.ir[0] = g.setIR0Flags(p >> 12)
	}
}

func (g *GTE) rtps() {
	g.rtp(0, true)
}

func (g *GTE) rtpt() {
	g.rtp(0, false)
	g.rtp(1, false)
	g.rtp(2, true)
}

// nclip returns the cross-product-derived clip value of the three most
// recent screen-space vertices into MAC0; used by software to test polygon
// winding/visibility.
func (g *GTE) nclip() {
	x0, y0 := int64(g.sxyFifo[0][0]), int64(g.sxyFifo[0][1])
	x1, y1 := int64(g.sxyFifo[1][0]), int64(g.sxyFifo[1][1])
	x2, y2 := int64(g.sxyFifo[2][0]), int64(g.sxyFifo[2][1])

	value := x0*y1 + x1*y2 + x2*y0 - x0*y2 - x1*y0 - x2*y1
	g.setMac0Flags(value)
	g.mac[0] = int32(value)
}

// op computes the outer product of IR and the rotation matrix's diagonal.
func (g *GTE) op() {
	d1, d2, d3 := int64(g.rotation[0][0]), int64(g.rotation[1][1]), int64(g.rotation[2][2])
	ir1, ir2, ir3 := int64(g.ir[1]), int64(g.ir[2]), int64(g.ir[3])

	mac1 := ir3*d2 - ir2*d3
	mac2 := ir1*d3 - ir3*d1
	mac3 := ir2*d1 - ir1*d2

	g.mac[1] = int32(g.setMacFlags(mac1, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(mac2, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(mac3, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)
}

// interpolate runs the shared "accumulate toward far color, scale by IR0"
// tail shared by DPCS/DPCT/DPCL/GPF/GPL/INTPL: given a partial MAC triple it
// adds (fc - mac) * ir0 and writes MAC/IR/RGB.
func (g *GTE) interpolate(mac1, mac2, mac3 int64) {
	acc1 := (int64(g.fc[0])<<12 - mac1) * int64(g.ir[0])
	acc2 := (int64(g.fc[1])<<12 - mac2) * int64(g.ir[0])
	acc3 := (int64(g.fc[2])<<12 - mac3) * int64(g.ir[0])

	acc1 = mac1 + acc1
	acc2 = mac2 + acc2
	acc3 = mac3 + acc3

	g.mac[1] = int32(g.setMacFlags(acc1, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(acc2, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(acc3, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)

	g.pushColorFromMac()
}

func (g *GTE) pushColorFromMac() {
	r := g.setColorFifoFlags(g.mac[1]>>4, 1)
	gg := g.setColorFifoFlags(g.mac[2]>>4, 2)
	b := g.setColorFifoFlags(g.mac[3]>>4, 3)
	g.pushRGB(r, gg, b, g.rgbc.c)
}

// intpl interpolates from IR1..3 directly (no prior color stage).
func (g *GTE) intpl() {
	g.interpolate(int64(g.ir[1])<<12, int64(g.ir[2])<<12, int64(g.ir[3])<<12)
}

// gpl/gpf are general-purpose interpolation primitives: GPL restarts the
// accumulator from MAC<<sf, GPF from zero.
func (g *GTE) gpl() {
	mac1 := int64(g.mac[1]) << g.sf
	mac2 := int64(g.mac[2]) << g.sf
	mac3 := int64(g.mac[3]) << g.sf
	g.interpolate(mac1, mac2, mac3)
}

func (g *GTE) gpf() {
	g.interpolate(0, 0, 0)
}

// dpc implements DPCS/DPCT's color-depth-cue pipeline: scale RGB (or the
// triple's oldest queued color, for DPCT) by 16 into MAC, then cue toward
// the far color.
func (g *GTE) dpc(useFifo bool) {
	var c rgb
	if useFifo {
		c = g.rgbFifo[0]
	} else {
		c = g.rgbc
	}

	mac1 := int64(c.r) << 16
	mac2 := int64(c.g) << 16
	mac3 := int64(c.b) << 16

	g.interpolate(mac1, mac2, mac3)
}

func (g *GTE) dpcs() { g.dpc(false) }
func (g *GTE) dpct() {
	g.dpc(true)
	g.dpc(true)
	g.dpc(true)
}

// dpcl cues the light-scaled color toward the far color.
func (g *GTE) dpcl() {
	mac1 := (int64(g.ir[1]) * int64(g.rgbc.r) << 4)
	mac2 := (int64(g.ir[2]) * int64(g.rgbc.g) << 4)
	mac3 := (int64(g.ir[3]) * int64(g.rgbc.b) << 4)
	g.interpolate(mac1, mac2, mac3)
}

// colorStage runs the shared "scale RGBC by the MAC result, saturate,
// stash in the color FIFO" tail used by the NC*/CC/CDP family once the
// light/normal matrix stage has produced MAC1..3.
func (g *GTE) colorStage() {
	mac1 := int64(g.rgbc.r) << 4 * int64(g.ir[1])
	mac2 := int64(g.rgbc.g) << 4 * int64(g.ir[2])
	mac3 := int64(g.rgbc.b) << 4 * int64(g.ir[3])

	g.mac[1] = int32(g.setMacFlags(mac1, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(mac2, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(mac3, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)

	g.pushColorFromMac()
}

// lightStage runs the light-matrix * normal[index] -> IR step shared by the
// NC*/NCD*/NCC* family before the color or depth-cue stage.
func (g *GTE) lightStage(index int) {
	v := g.v[index]
	m := g.light

	acc1 := int64(m[0][0])*int64(v[0]) + int64(m[0][1])*int64(v[1]) + int64(m[0][2])*int64(v[2])
	acc2 := int64(m[1][0])*int64(v[0]) + int64(m[1][1])*int64(v[1]) + int64(m[1][2])*int64(v[2])
	acc3 := int64(m[2][0])*int64(v[0]) + int64(m[2][1])*int64(v[1]) + int64(m[2][2])*int64(v[2])

	g.mac[1] = int32(g.setMacFlags(acc1, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(acc2, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(acc3, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)

	cm := g.color

	cacc1 := int64(g.bk[0])<<12 + int64(cm[0][0])*int64(g.ir[1]) + int64(cm[0][1])*int64(g.ir[2]) + int64(cm[0][2])*int64(g.ir[3])
	cacc2 := int64(g.bk[1])<<12 + int64(cm[1][0])*int64(g.ir[1]) + int64(cm[1][1])*int64(g.ir[2]) + int64(cm[1][2])*int64(g.ir[3])
	cacc3 := int64(g.bk[2])<<12 + int64(cm[2][0])*int64(g.ir[1]) + int64(cm[2][1])*int64(g.ir[2]) + int64(cm[2][2])*int64(g.ir[3])

	g.mac[1] = int32(g.setMacFlags(cacc1, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(cacc2, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(cacc3, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)
}

func (g *GTE) nc(index int) {
	g.lightStage(index)
	g.pushColorFromMac()
}

func (g *GTE) ncs() { g.nc(0) }
func (g *GTE) nct() {
	g.nc(0)
	g.nc(1)
	g.nc(2)
}

func (g *GTE) ncc(index int) {
	g.lightStage(index)
	g.colorStage()
}

func (g *GTE) nccs() { g.ncc(0) }
func (g *GTE) ncct() {
	g.ncc(0)
	g.ncc(1)
	g.ncc(2)
}

func (g *GTE) cc() {
	g.colorStage()
}

func (g *GTE) cdp() {
	g.colorStage()
	mac1 := int64(g.mac[1]) << g.sf
	mac2 := int64(g.mac[2]) << g.sf
	mac3 := int64(g.mac[3]) << g.sf
	g.interpolate(mac1, mac2, mac3)
}

func (g *GTE) ncd(index int) {
	g.lightStage(index)
	mac1 := int64(g.rgbc.r)<<4*int64(g.ir[1])
	mac2 := int64(g.rgbc.g)<<4*int64(g.ir[2])
	mac3 := int64(g.rgbc.b)<<4*int64(g.ir[3])
	g.interpolate(mac1, mac2, mac3)
}

func (g *GTE) ncds() { g.ncd(0) }
func (g *GTE) ncdt() {
	g.ncd(0)
	g.ncd(1)
	g.ncd(2)
}

func (g *GTE) sqr() {
	mac1 := int64(g.ir[1]) * int64(g.ir[1])
	mac2 := int64(g.ir[2]) * int64(g.ir[2])
	mac3 := int64(g.ir[3]) * int64(g.ir[3])

	g.mac[1] = int32(g.setMacFlags(mac1, 1) >> g.sf)
	g.mac[2] = int32(g.setMacFlags(mac2, 2) >> g.sf)
	g.mac[3] = int32(g.setMacFlags(mac3, 3) >> g.sf)

	g.ir[1] = g.setIRFlags(g.mac[1], 1, g.lm)
	g.ir[2] = g.setIRFlags(g.mac[2], 2, g.lm)
	g.ir[3] = g.setIRFlags(g.mac[3], 3, g.lm)
}

func (g *GTE) avsz3() {
	sum := int64(g.szFifo[1]) + int64(g.szFifo[2]) + int64(g.szFifo[3])
	value := int64(g.zsf3) * sum
	g.setMac0Flags(value)
	g.mac[0] = int32(value)
	g.otz = g.setSz3OrOtzFlags(value >> 12)
}

func (g *GTE) avsz4() {
	sum := int64(g.szFifo[0]) + int64(g.szFifo[1]) + int64(g.szFifo[2]) + int64(g.szFifo[3])
	value := int64(g.zsf4) * sum
	g.setMac0Flags(value)
	g.mac[0] = int32(value)
	g.otz = g.setSz3OrOtzFlags(value >> 12)
}

func (g *GTE) getNumLeadingBits(num int32) int32 {
	leadingBit := uint32(num) >> 31
	count := int32(1)
	for i := 30; i >= 0; i-- {
		bit := (uint32(num) >> uint(i)) & 1
		if bit != leadingBit {
			break
		}
		count++
	}
	return count
}
