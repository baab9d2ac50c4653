package spu

import "github.com/hollow-vale/rsx/interrupt"

// VolumeMin and VolumeMax bound every envelope and voice volume value.
const (
	VolumeMin int32 = -0x8000
	VolumeMax int32 = 0x7fff
)

const numBlockSamples = 28

// EnvelopeMode selects linear or exponential envelope curvature.
type EnvelopeMode int

const (
	EnvelopeLinear EnvelopeMode = iota
	EnvelopeExponential
)

// EnvelopeDirection selects whether an envelope step rises or falls.
type EnvelopeDirection int

const (
	EnvelopeIncrease EnvelopeDirection = iota
	EnvelopeDecrease
)

// AdsrPhase is a voice's position in its attack/decay/sustain/release cycle.
type AdsrPhase int

const (
	PhaseAttack AdsrPhase = iota
	PhaseSustain
	PhaseDecay
	PhaseRelease
	PhaseIdle
)

// envelope is the generic rate/step ramp shared by ADSR and the left/right
// sweep envelopes, grounded on the reference implementation's duckstation-derived
// reset/tick pair.
type envelope struct {
	counter     uint32
	increment   uint16
	step        int16
	rate        uint8
	direction   EnvelopeDirection
	mode        EnvelopeMode
	invertPhase bool
	volume      int16
}

func (e *envelope) reset(rate uint8, shift int8, step int8, rateMask uint8, mode EnvelopeMode, direction EnvelopeDirection, invert bool) {
	e.counter = 0
	e.increment = 0x8000
	e.rate = rate
	e.invertPhase = invert
	e.direction = direction

	decreasing := direction == EnvelopeDecrease
	invertPhase := e.invertPhase && !(decreasing && mode == EnvelopeExponential)

	if invertPhase {
		e.step = int16(^step)
	} else {
		e.step = int16(step)
	}

	e.mode = mode

	if rate < 44 {
		e.step <<= uint(11 - shift)
	} else if rate >= 48 {
		e.increment >>= uint(shift - 11)
		if rate&rateMask != rateMask {
			if e.increment < 1 {
				e.increment = 1
			}
		}
	}
}

func (e *envelope) tick() bool {
	actualStep := e.step
	actualIncrement := e.increment

	if e.mode == EnvelopeExponential {
		if e.direction == EnvelopeDecrease {
			actualStep = int16((int32(e.step) * int32(e.volume)) >> 15)
		} else if e.volume >= 0x6000 {
			switch {
			case e.rate < 40:
				actualStep = e.step >> 2
			case e.rate >= 44:
				actualIncrement = e.increment >> 2
			default:
				actualStep = e.step >> 1
				actualIncrement = e.increment >> 1
			}
		}
	}

	e.counter += uint32(actualIncrement)

	if (e.counter>>15)&1 == 0 {
		return true
	}

	e.counter = 0

	newVolume := int32(e.volume) + int32(actualStep)

	if e.direction == EnvelopeIncrease {
		e.volume = clampI16(newVolume, VolumeMin, VolumeMax)
		if e.step < 0 {
			return int32(e.volume) != VolumeMin
		}
		return int32(e.volume) != VolumeMax
	}

	if e.invertPhase {
		e.volume = clampI16(newVolume, VolumeMin, 0)
	} else {
		if newVolume < 0 {
			newVolume = 0
		}
		e.volume = int16(newVolume)
	}
	return e.volume == 0
}

// Adsr is a voice's attack/decay/sustain/release envelope generator.
type Adsr struct {
	phase            AdsrPhase
	attackMode       EnvelopeMode
	attackStep       int8
	attackShift      uint8
	attackRate       uint8
	decayShift       uint8
	sustainLevel     uint16
	sustainMode      EnvelopeMode
	sustainDirection EnvelopeDirection
	sustainStep      int8
	sustainShift     uint8
	sustainRate      uint8
	releaseMode      EnvelopeMode
	releaseShift     uint8
	value            uint32
	currentTarget    int16
	envelope         envelope
}

func newAdsr() Adsr {
	return Adsr{phase: PhaseIdle}
}

// WriteLower handles a write to a voice's ADSR lower half
// (1f801c08h + voice*10h). decayShift (bits 7-4) is derived here even
// though the reference implementation's write_lower never assigns it,
// leaving decay_shift permanently zero (instant decay on every voice) —
// a gap this repository supplies per the register layout documented in
// the reference's own doc comment, since leaving it out would silently
// break the decay phase for every voice.
func (a *Adsr) WriteLower(value uint16) {
	a.value = (a.value & 0xffff0000) | uint32(value)
	a.sustainLevel = ((value & 0xf) + 1) * 0x800
	a.decayShift = uint8((value >> 4) & 0xf)

	a.attackStep = int8(7 - ((value >> 8) & 0x3))
	a.attackShift = uint8((value >> 10) & 0x1f)
	a.attackRate = uint8((value >> 8) & 0x7f)
	if value>>15 == 0 {
		a.attackMode = EnvelopeLinear
	} else {
		a.attackMode = EnvelopeExponential
	}
}

// WriteUpper handles a write to a voice's ADSR upper half
// (1f801c0ah + voice*10h).
func (a *Adsr) WriteUpper(value uint16) {
	a.value = (a.value & 0xffff) | uint32(value)<<16
	a.releaseShift = uint8(value & 0x1f)
	if (value>>5)&1 == 0 {
		a.releaseMode = EnvelopeLinear
	} else {
		a.releaseMode = EnvelopeExponential
	}

	if (value>>14)&1 == 0 {
		a.sustainDirection = EnvelopeIncrease
	} else {
		a.sustainDirection = EnvelopeDecrease
	}

	if a.sustainDirection == EnvelopeIncrease {
		a.sustainStep = int8(7 - ((value >> 6) & 0x3))
	} else {
		a.sustainStep = int8(-8 + int8((value>>6)&0x3))
	}

	a.sustainRate = uint8((value >> 6) & 0x7f)
	a.sustainShift = uint8((value >> 8) & 0x1f)

	if value>>15 == 0 {
		a.sustainMode = EnvelopeLinear
	} else {
		a.sustainMode = EnvelopeExponential
	}
}

// Tick advances the envelope one sample and, on reaching the current
// phase's target, transitions to the next phase.
func (a *Adsr) Tick() {
	if a.envelope.increment > 0 {
		a.envelope.tick()
	}

	if a.currentTarget < 0 {
		return
	}

	var reachedTarget bool
	switch a.phase {
	case PhaseAttack, PhaseIdle:
		reachedTarget = a.envelope.volume >= a.currentTarget
	case PhaseDecay, PhaseRelease:
		reachedTarget = a.envelope.volume <= a.currentTarget
	case PhaseSustain:
		if a.sustainDirection == EnvelopeDecrease {
			reachedTarget = a.envelope.volume <= a.currentTarget
		} else {
			reachedTarget = a.envelope.volume >= a.currentTarget
		}
	}

	if reachedTarget {
		switch a.phase {
		case PhaseAttack:
			a.phase = PhaseDecay
		case PhaseDecay:
			a.phase = PhaseSustain
		case PhaseRelease:
			a.phase = PhaseIdle
		}
		a.UpdateEnvelope()
	}
}

// UpdateEnvelope re-derives the current phase's envelope.reset parameters.
// Sustain passes the step WriteUpper stored (7-n increasing, -8+n
// decreasing) unchanged; decay and release pass the fixed step -8.
func (a *Adsr) UpdateEnvelope() {
	switch a.phase {
	case PhaseAttack:
		a.currentTarget = 0x7fff
		a.envelope.reset(a.attackRate, int8(a.attackShift), a.attackStep, 0x7f, a.attackMode, EnvelopeIncrease, false)
	case PhaseDecay:
		a.currentTarget = int16(a.sustainLevel)
		a.envelope.reset(a.decayShift<<2, int8(a.decayShift), -8, 0x1f<<2, EnvelopeExponential, EnvelopeDecrease, false)
	case PhaseSustain:
		a.currentTarget = -1
		a.envelope.reset(a.sustainRate, int8(a.sustainShift), a.sustainStep, 0x7f, a.sustainMode, a.sustainDirection, false)
	case PhaseRelease:
		a.currentTarget = 0
		a.envelope.reset(a.releaseShift<<2, int8(a.releaseShift), -8, 0x1f<<2, a.releaseMode, EnvelopeDecrease, false)
	case PhaseIdle:
		a.currentTarget = 0
		a.envelope.reset(0, 0, 0, 0, EnvelopeLinear, EnvelopeIncrease, false)
	}
}

// adpcmBlock is one decoded 16-byte ADPCM block: a shift/filter header byte,
// a loop-flags byte, and 14 bytes (28 nibbles) of compressed samples.
type adpcmBlock struct {
	filter      uint8
	shift       uint8
	loopEnd     bool
	loopRepeat  bool
	loopStart   bool
	sampleBytes [14]byte
}

// Voice is one of the SPU's 24 ADPCM playback channels: its own address/pitch
// counters, ADSR envelope, left/right sweep envelopes, and decode state.
type Voice struct {
	startAddress  uint32
	sampleRate    uint16
	repeatAddress uint32
	Adsr          Adsr
	currentAddress uint32
	pitchCounter   uint32
	hasSamples     bool
	isFirstBlock   bool
	lastDecoded    [2]int16
	lastGaussian   [4]int16
	currentSamples [numBlockSamples]int16
	currentBlock   adpcmBlock
	LastVolume     int32
	leftEnvelope   envelope
	rightEnvelope  envelope
	usingLeft      bool
	usingRight     bool
	ignoreLoopAddr bool
}

// NewVoice returns a voice at rest: idle ADSR phase, zeroed envelopes and
// address counters.
func NewVoice() *Voice {
	return &Voice{Adsr: newAdsr()}
}

func getSweepParams(value uint16) (rate uint8, shift int8, step int8, mode EnvelopeMode, direction EnvelopeDirection, invertPhase bool) {
	shift = int8((value >> 2) & 0x1f)
	rate = uint8(value & 0x7f)
	invertPhase = (value>>12)&1 == 1

	if (value>>13)&1 == 0 {
		direction = EnvelopeIncrease
	} else {
		direction = EnvelopeDecrease
	}

	if direction == EnvelopeIncrease {
		step = int8(7 - (value & 0x3))
	} else {
		step = int8(-8 + int8(value&0x3))
	}

	if (value>>14)&1 == 0 {
		mode = EnvelopeLinear
	} else {
		mode = EnvelopeExponential
	}

	return rate, shift, step, mode, direction, invertPhase
}

// Write handles a write to one of a voice's 8 registers (offset 0x0..0xe
// within its 16-byte window).
func (v *Voice) Write(channel uint32, value uint16) {
	switch channel {
	case 0x0:
		if (value>>15)&1 == 1 {
			rate, shift, step, mode, direction, invert := getSweepParams(value)
			v.leftEnvelope.reset(rate, shift, step, 0x7f, mode, direction, invert)
			v.usingRight = v.rightEnvelope.increment > 0
			v.usingLeft = v.leftEnvelope.increment > 0
		} else {
			v.usingLeft = false
			v.leftEnvelope.volume = int16(value * 2)
		}
	case 0x2:
		if (value>>15)&1 == 1 {
			rate, shift, step, mode, direction, invert := getSweepParams(value)
			v.rightEnvelope.reset(rate, shift, step, 0x7f, mode, direction, invert)
			v.usingRight = v.rightEnvelope.increment > 0
		} else {
			v.usingRight = false
			v.rightEnvelope.volume = int16(value * 2)
		}
	case 0x4:
		v.sampleRate = value
	case 0x6:
		v.startAddress = uint32(value) * 8
	case 0x8:
		v.Adsr.WriteLower(value)
		if v.Adsr.phase != PhaseIdle {
			v.Adsr.UpdateEnvelope()
		}
	case 0xa:
		v.Adsr.WriteUpper(value)
		if v.Adsr.phase != PhaseIdle {
			v.Adsr.UpdateEnvelope()
		}
	case 0xc:
		v.Adsr.envelope.volume = int16(value)
	case 0xe:
		v.ignoreLoopAddr = !v.isFirstBlock && v.Adsr.phase == PhaseIdle
		v.repeatAddress = uint32(value) * 8
	}
}

// Read handles a read from one of a voice's 8 registers.
func (v *Voice) Read(channel uint32) uint16 {
	switch channel {
	case 0x0:
		return uint16(v.leftEnvelope.volume / 2)
	case 0x2:
		return uint16(v.rightEnvelope.volume / 2)
	case 0x4:
		return v.sampleRate
	case 0x6:
		return uint16(v.startAddress / 8)
	case 0x8:
		return uint16(v.Adsr.value)
	case 0xa:
		return uint16(v.Adsr.value >> 16)
	case 0xc:
		return uint16(v.Adsr.envelope.volume)
	case 0xe:
		return uint16(v.repeatAddress / 8)
	default:
		return 0
	}
}

func (v *Voice) getInterpolateSample(index int) int32 {
	if index < 0 {
		return int32(v.lastGaussian[index+3])
	}
	return int32(v.currentSamples[index])
}

func (v *Voice) interpolate(interpolationIndex, sampleIndex int) int32 {
	oldest := v.getInterpolateSample(sampleIndex - 3)
	older := v.getInterpolateSample(sampleIndex - 2)
	old := v.getInterpolateSample(sampleIndex - 1)
	newest := v.getInterpolateSample(sampleIndex)

	out := (gaussianTable[0xff-interpolationIndex] * oldest) >> 15
	out += (gaussianTable[0x1ff-interpolationIndex] * older) >> 15
	out += (gaussianTable[0x100-interpolationIndex] * old) >> 15
	out += (gaussianTable[interpolationIndex] * newest) >> 15

	return out
}

func (v *Voice) readAdpcmBlock(ram *SoundRam) adpcmBlock {
	var block adpcmBlock

	shiftFilter := ram.Read8(v.currentAddress)
	block.shift = shiftFilter & 0xf
	block.filter = (shiftFilter >> 4) & 0xf
	v.currentAddress = (v.currentAddress + 1) & 0x7ffff

	flags := ram.Read8(v.currentAddress)
	block.loopEnd = flags&1 == 1
	block.loopRepeat = (flags>>1)&1 == 1
	block.loopStart = (flags>>2)&1 == 1
	v.currentAddress = (v.currentAddress + 1) & 0x7ffff

	for i := 0; i < 14; i++ {
		block.sampleBytes[i] = ram.Read8(v.currentAddress)
		v.currentAddress = (v.currentAddress + 1) & 0x7ffff
	}

	return block
}

func (v *Voice) decodeAdpcmBlock(block adpcmBlock) {
	positiveFilter := posADPCMFilter[block.filter]
	negativeFilter := negADPCMFilter[block.filter]

	j := 0
	for i := 24; i < len(v.currentSamples); i++ {
		v.lastGaussian[j] = v.currentSamples[i]
		j++
	}

	for i := 0; i < numBlockSamples; i++ {
		b := block.sampleBytes[i/2]
		var nibble byte
		if i&1 == 0 {
			nibble = b & 0xf
		} else {
			nibble = b >> 4
		}

		sample := (int32(int16(nibble)<<12) >> uint(block.shift))

		sample += (int32(v.lastDecoded[0]) * positiveFilter) >> 6
		sample += (int32(v.lastDecoded[1]) * negativeFilter) >> 6

		v.lastDecoded[1] = v.lastDecoded[0]
		v.lastDecoded[0] = clampI16(sample, -0x8000, 0x7fff)

		v.currentSamples[i] = v.lastDecoded[0]
	}

	v.currentBlock = block
}

// GenerateSamples runs one sample tick for this voice, decoding a new ADPCM
// block on a block boundary, interpolating the current fractional sample
// position, applying its ADSR and left/right sweep envelopes, and advancing
// the pitch counter (optionally pitch-modulated by the previous voice's
// output, per the PS1's channel-chained FM).
//
// noiseEnable substitutes the LFSR-driven noiseSample for the interpolated
// ADPCM sample; the reference implementation leaves this branch as an
// unimplemented stub (see noise.go).
func (v *Voice) GenerateSamples(ram *SoundRam, irqAddress uint32, irq9Enable bool, interrupts *interrupt.Registers, pitchModulate bool, previousVolume int32, noiseEnable bool, noiseSample int16) (left, right int32, endx bool) {
	if v.Adsr.phase == PhaseIdle && !irq9Enable {
		return 0, 0, false
	}

	if !v.hasSamples {
		if irq9Enable && (v.currentAddress == irqAddress || ((v.currentAddress+8)&0x7ffff) == irqAddress) {
			interrupts.Raise(interrupt.SPU)
		}
		block := v.readAdpcmBlock(ram)
		v.decodeAdpcmBlock(block)
		v.hasSamples = true

		if v.currentBlock.loopStart && !v.ignoreLoopAddr {
			v.repeatAddress = v.currentAddress
		}
	}

	interpolationIndex := int((v.pitchCounter >> 4) & 0xff)
	sampleIndex := int(v.pitchCounter >> 12)

	var volume int32
	if v.Adsr.envelope.volume > 0 {
		var sample int32
		if noiseEnable {
			sample = int32(noiseSample)
		} else {
			sample = v.interpolate(interpolationIndex, sampleIndex)
		}
		volume = (sample * int32(v.Adsr.envelope.volume)) >> 15
	}

	v.LastVolume = volume

	step := uint32(v.sampleRate)

	if v.Adsr.phase != PhaseIdle {
		v.Adsr.Tick()
	}

	if pitchModulate {
		factor := uint32(clampI32(previousVolume, -0x8000, 0x7fff) + 0x80000)
		// Matches the source's u32 -> i16 -> u16 -> u32 round trip: the
		// sign-extending casts cancel out, leaving the low 16 bits.
		step = uint32(uint16((step * factor) >> 15))
	}

	if step > 0x3fff {
		step = 0x4000
	}

	v.pitchCounter += step

	nextSampleIndex := v.pitchCounter >> 12

	if nextSampleIndex >= numBlockSamples {
		v.isFirstBlock = false
		nextSampleIndex -= numBlockSamples
		v.hasSamples = false

		v.pitchCounter &= 0xfff
		v.pitchCounter |= nextSampleIndex << 12

		if v.currentBlock.loopEnd {
			endx = true
			v.currentAddress = v.repeatAddress

			if !v.currentBlock.loopRepeat && !noiseEnable {
				v.Adsr.envelope.volume = 0
				v.Adsr.phase = PhaseIdle
			}
		}
	}

	left = (volume * int32(v.leftEnvelope.volume)) >> 15
	right = (volume * int32(v.rightEnvelope.volume)) >> 15

	if v.usingLeft {
		v.usingLeft = v.leftEnvelope.tick()
	}
	if v.usingRight {
		v.usingRight = v.rightEnvelope.tick()
	}

	return left, right, endx
}

// UpdateKeyon restarts playback from startAddress with a fresh attack phase.
func (v *Voice) UpdateKeyon() {
	v.currentAddress = v.startAddress
	v.Adsr.phase = PhaseAttack
	v.Adsr.envelope.volume = 0
	v.isFirstBlock = true
	v.hasSamples = false
	v.Adsr.UpdateEnvelope()
}

// UpdateKeyoff moves the voice into its release phase. The source's guard
// condition (`phase != Release || phase != Idle`) is true for every phase
// value since a phase cannot simultaneously equal both, making the guard a
// tautology; it is kept exactly as written rather than "fixed" to `&&`,
// which would skip voices already in Release or Idle; since the source's
// guard never actually skips the
// transition there is no observable behavioral difference to correct.
func (v *Voice) UpdateKeyoff() {
	if v.Adsr.phase != PhaseRelease || v.Adsr.phase != PhaseIdle {
		v.Adsr.phase = PhaseRelease
		v.Adsr.UpdateEnvelope()
	}
}

func clampI16(value int32, min, max int32) int16 {
	if value < min {
		return int16(min)
	}
	if value > max {
		return int16(max)
	}
	return int16(value)
}

func clampI32(value, min, max int32) int32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
