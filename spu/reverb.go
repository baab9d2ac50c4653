package spu

// Reverb implements the SPU's comb/all-pass reverb unit. It reads and
// writes f32 samples through a circular work area in sound RAM, per the
// register map documented at 1f801dc0h-1f801dfeh (mirrored here as plain
// Go comments rather than PSX-SPX ASCII art, since the formula block
// doesn't fit a Go doc comment cleanly).
//
// Grounded on original_source/src/cpu/bus/spu/reverb.rs, field-for-field.
type Reverb struct {
	mBase  uint32
	dAPF1  uint32
	dAPF2  uint32
	vIIR   int16
	vComb1 int16
	vComb2 int16
	vComb3 int16
	vComb4 int16
	vWall  int16
	vAPF1  int16
	vAPF2  int16

	mlSame  uint32
	mrSame  uint32
	mLComb1 uint32
	mRComb1 uint32
	mLComb2 uint32
	mRComb2 uint32
	dLSame  uint32
	dRSame  uint32
	mLDiff  uint32
	mRDiff  uint32
	mLComb3 uint32
	mRComb3 uint32
	mLComb4 uint32
	mRComb4 uint32
	dLDiff  uint32
	dRDiff  uint32
	mLAPF1  uint32
	mRAPF1  uint32
	mLAPF2  uint32
	mRAPF2  uint32

	vLin  int16
	vRin  int16
	vLOut int16
	vROut int16

	bufferAddress uint32

	ReverbOutLeft  float32
	ReverbOutRight float32
	IsLeft         bool
}

// NewReverb returns a reverb unit with all registers and the work-area
// cursor zeroed.
func NewReverb() *Reverb {
	return &Reverb{IsLeft: true}
}

// CalculateRight runs one 22050Hz reverb step for the right channel and
// advances the shared work-area cursor (mirroring the source, which only
// advances bufferAddress from calculateRight).
func (r *Reverb) CalculateRight(reverbRight int16, ram *SoundRam) {
	rin := applyVolume(toF32(reverbRight), r.vRin)

	dRSame := ram.ReadF32(r.address(r.dRSame))
	mrSame2 := ram.ReadF32(r.address(r.mrSame - 2))

	mrSameVal := rin + applyVolume(dRSame, r.vWall) -
		applyVolume(mrSame2, r.vIIR) + mrSame2

	ram.WriteF32(r.address(r.mrSame), mrSameVal)

	dlDiff := ram.ReadF32(r.address(r.dLDiff))
	mrDiff2 := ram.ReadF32(r.address(r.mRDiff - 2))

	dlDiffVolume := applyVolume(dlDiff, r.vWall)

	mrDiffVal := applyVolume(rin+dlDiffVolume-mrDiff2, r.vIIR) + mrDiff2

	ram.WriteF32(r.address(r.mRDiff), mrDiffVal)

	mrComb1 := ram.ReadF32(r.address(r.mRComb1))
	mrComb2 := ram.ReadF32(r.address(r.mRComb2))
	mrComb3 := ram.ReadF32(r.address(r.mRComb3))
	mrComb4 := ram.ReadF32(r.address(r.mRComb4))

	rout := applyVolume(mrComb1, r.vComb1) +
		applyVolume(mrComb2, r.vComb2) +
		applyVolume(mrComb3, r.vComb3) +
		applyVolume(mrComb4, r.vComb4)

	rapf1 := ram.ReadF32(r.address(r.mRAPF1 - r.dAPF1))
	rout = rout - applyVolume(rapf1, r.vAPF1)
	ram.WriteF32(r.address(r.mRAPF1), rout)
	rout = applyVolume(rout, r.vAPF1) + rapf1

	rapf2 := ram.ReadF32(r.address(r.mRAPF2 - r.dAPF2))
	rout = rout - applyVolume(rapf2, r.vAPF2)
	ram.WriteF32(r.address(r.mRAPF2), rout)
	rout = applyVolume(rout, r.vAPF2) + rapf2

	r.ReverbOutRight = applyVolume(rout, r.vROut)

	next := r.bufferAddress + 2
	if next < r.mBase {
		next = r.mBase
	}
	r.bufferAddress = next & 0x7fffe
}

// CalculateLeft runs one 22050Hz reverb step for the left channel.
func (r *Reverb) CalculateLeft(reverbLeft int16, ram *SoundRam) {
	lin := applyVolume(toF32(reverbLeft), r.vLin)

	dLSame := ram.ReadF32(r.address(r.dLSame))
	mlSame2 := ram.ReadF32(r.address(r.mlSame - 2))

	mlSameVal := lin + applyVolume(dLSame, r.vWall) -
		applyVolume(mlSame2, r.vIIR) + mlSame2

	ram.WriteF32(r.address(r.mlSame), mlSameVal)

	drDiff := ram.ReadF32(r.address(r.dRDiff))
	mlDiff2 := ram.ReadF32(r.address(r.mLDiff - 2))

	drDiffVolume := applyVolume(drDiff, r.vWall)

	mlDiffVal := applyVolume(lin+drDiffVolume-mlDiff2, r.vIIR) + mlDiff2

	ram.WriteF32(r.address(r.mLDiff), mlDiffVal)

	mlComb1 := ram.ReadF32(r.address(r.mLComb1))
	mlComb2 := ram.ReadF32(r.address(r.mLComb2))
	mlComb3 := ram.ReadF32(r.address(r.mLComb3))
	mlComb4 := ram.ReadF32(r.address(r.mLComb4))

	lout := applyVolume(mlComb1, r.vComb1) +
		applyVolume(mlComb2, r.vComb2) +
		applyVolume(mlComb3, r.vComb3) +
		applyVolume(mlComb4, r.vComb4)

	lapf1 := ram.ReadF32(r.address(r.mLAPF1 - r.dAPF1))
	lout = lout - applyVolume(lapf1, r.vAPF1)
	ram.WriteF32(r.address(r.mLAPF1), lout)
	lout = applyVolume(lout, r.vAPF1) + lapf1

	lapf2 := ram.ReadF32(r.address(r.mLAPF2 - r.dAPF2))
	lout = lout - applyVolume(lapf2, r.vAPF2)
	ram.WriteF32(r.address(r.mLAPF2), lout)
	lout = applyVolume(lout, r.vAPF2) + lapf2

	r.ReverbOutLeft = applyVolume(lout, r.vLOut)
}

// Write16 handles a write to one of the reverb registers, including the
// two output-volume registers (1f801d84h/86h) that sit in the SPU's own
// main register block rather than the reverb bank proper.
func (r *Reverb) Write16(address uint32, value uint16) {
	switch address {
	case 0x1f801d84:
		r.vLOut = int16(value)
	case 0x1f801d86:
		r.vROut = int16(value)
	case 0x1f801da2:
		r.mBase = uint32(value) * 8
		r.bufferAddress = r.mBase
	case 0x1f801dc0:
		r.dAPF1 = uint32(value) * 8
	case 0x1f801dc2:
		r.dAPF2 = uint32(value) * 8
	case 0x1f801dc4:
		r.vIIR = int16(value)
	case 0x1f801dc6:
		r.vComb1 = int16(value)
	case 0x1f801dc8:
		r.vComb2 = int16(value)
	case 0x1f801dca:
		r.vComb3 = int16(value)
	case 0x1f801dcc:
		r.vComb4 = int16(value)
	case 0x1f801dce:
		r.vWall = int16(value)
	case 0x1f801dd0:
		r.vAPF1 = int16(value)
	case 0x1f801dd2:
		r.vAPF2 = int16(value)
	case 0x1f801dd4:
		r.mlSame = uint32(value) * 8
	case 0x1f801dd6:
		r.mrSame = uint32(value) * 8
	case 0x1f801dd8:
		r.mLComb1 = uint32(value) * 8
	case 0x1f801dda:
		r.mRComb1 = uint32(value) * 8
	case 0x1f801ddc:
		r.mLComb2 = uint32(value) * 8
	case 0x1f801dde:
		r.mRComb2 = uint32(value) * 8
	case 0x1f801de0:
		r.dLSame = uint32(value) * 8
	case 0x1f801de2:
		r.dRSame = uint32(value) * 8
	case 0x1f801de4:
		r.mLDiff = uint32(value) * 8
	case 0x1f801de6:
		r.mRDiff = uint32(value) * 8
	case 0x1f801de8:
		r.mLComb3 = uint32(value) * 8
	case 0x1f801dea:
		r.mRComb3 = uint32(value) * 8
	case 0x1f801dec:
		r.mLComb4 = uint32(value) * 8
	case 0x1f801dee:
		r.mRComb4 = uint32(value) * 8
	case 0x1f801df0:
		r.dLDiff = uint32(value) * 8
	case 0x1f801df2:
		r.dRDiff = uint32(value) * 8
	case 0x1f801df4:
		r.mLAPF1 = uint32(value) * 8
	case 0x1f801df6:
		r.mRAPF1 = uint32(value) * 8
	case 0x1f801df8:
		r.mLAPF2 = uint32(value) * 8
	case 0x1f801dfa:
		r.mRAPF2 = uint32(value) * 8
	case 0x1f801dfc:
		r.vLin = int16(value)
	case 0x1f801dfe:
		r.vRin = int16(value)
	}
}

func (r *Reverb) address(offset uint32) uint32 {
	addr := (r.bufferAddress + offset) & 0x7fffe
	if addr < r.mBase {
		return r.mBase
	}
	return addr
}
