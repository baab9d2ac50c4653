package spu

import (
	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

const spuCycles = 768

// soundRamTransferMode is SPUCNT bits 5-4.
type soundRamTransferMode int

const (
	transferStop soundRamTransferMode = iota
	transferManualWrite
	transferDMAWrite
	transferDMARead
)

const spucntIRQ9Enable uint16 = 1 << 6

// SPU is the guest's 24-voice sound processor: per-voice ADPCM playback, the
// 24-voice mixer, the comb/all-pass reverb unit, and the sound-RAM transfer
// and control register surface.
//
// Grounded on original_source/src/cpu/bus/spu.rs. That source's tick() never
// actually calls into Reverb.calculate_left/calculate_right even though the
// SPU struct duplicates every one of Reverb's registers field-for-field
// (the write16 address table writes m_base/v_l_out/etc. directly on SPU,
// bypassing the Reverb type entirely) — an incompleteness documented here
// and resolved per spec.md §4.4's device-wiring expectation: this repository
// makes Reverb the sole owner of that register state and wires its output
// into the mixer tick (see DESIGN.md).
type SPU struct {
	mainVolumeLeft    uint16
	mainVolumeRight   uint16
	reverbVolumeLeft  uint16
	reverbVolumeRight uint16
	spucnt            uint16

	soundModulation uint32
	keyoff          uint32
	keyon           uint32
	noiseEnable     uint32
	echoOn          uint32

	cdVolume       [2]uint16
	currentVolume  [2]uint16
	externalVolume [2]uint16

	soundRamTransferType uint16
	currentRamAddress    uint32
	soundRamAddress      uint32
	irqAddress           uint32

	sampleFifo []uint16

	voices [24]*Voice
	reverb *Reverb
	noise  noiseGenerator

	soundRam *SoundRam
	ring     *RingBuffer

	endx uint32
}

// New returns an SPU with all 24 voices idle, a fresh 512KB sound RAM and
// reverb unit, and the mixer's first tick scheduled.
func New(sched *scheduler.Scheduler) *SPU {
	s := &SPU{
		reverb:   NewReverb(),
		noise:    newNoiseGenerator(),
		soundRam: NewSoundRam(),
		ring:     NewRingBuffer(),
	}
	for i := range s.voices {
		s.voices[i] = NewVoice()
	}
	sched.Schedule(scheduler.TickSpu, spuCycles)
	return s
}

// Ring exposes the mixer's output ring buffer to the host audio consumer.
func (s *SPU) Ring() *RingBuffer { return s.ring }

func clamp(value int32, min, max int32) int16 {
	if value < min {
		return int16(min)
	}
	if value > max {
		return int16(max)
	}
	return int16(value)
}

func toF32(sample int16) float32 {
	return float32(sample) / 32768
}

func applyVolume(sample float32, volume int16) float32 {
	return sample * (float32(volume) / 32768)
}

func (s *SPU) soundRamMode() soundRamTransferMode {
	return soundRamTransferMode((s.spucnt >> 4) & 0x3)
}

func (s *SPU) irq9Enabled() bool {
	return s.spucnt&spucntIRQ9Enable != 0
}

// ReadStat reads SPUSTAT (current SPU mode, delayed by one tick in real
// hardware; modeled here as immediate).
func (s *SPU) ReadStat() uint16 {
	return s.spucnt & 0x3f
}

func (s *SPU) writeVoices(address uint32, value uint16) {
	voice := (address - 0x1f801c00) / 16
	channel := (address - 0x1f801c00) & 0xf
	s.voices[voice].Write(channel, value)
}

func (s *SPU) readVoices(address uint32) uint16 {
	voice := (address - 0x1f801c00) / 16
	channel := (address - 0x1f801c00) & 0xf
	return s.voices[voice].Read(channel)
}

// Read16 handles a read from the SPU register space (0x1f801c00-0x1f801dfe).
func (s *SPU) Read16(address uint32) uint16 {
	switch {
	case address >= 0x1f801c00 && address <= 0x1f801d7f:
		return s.readVoices(address)
	}

	switch address {
	case 0x1f801d88:
		return uint16(s.keyon)
	case 0x1f801d8a:
		return uint16(s.keyon >> 16)
	case 0x1f801d8c:
		return uint16(s.keyoff)
	case 0x1f801d8e:
		return uint16(s.keyoff >> 16)
	case 0x1f801da6:
		return uint16(s.soundRamAddress / 8)
	case 0x1f801daa:
		return s.spucnt
	case 0x1f801dac:
		return s.soundRamTransferType
	case 0x1f801dae:
		return s.ReadStat()
	case 0x1f801db8:
		return s.currentVolume[0]
	case 0x1f801dba:
		return s.currentVolume[1]
	default:
		return 0
	}
}

// Write16 handles a write to the SPU register space.
func (s *SPU) Write16(address uint32, value uint16, interrupts *interrupt.Registers) {
	switch {
	case address >= 0x1f801c00 && address <= 0x1f801d7f:
		s.writeVoices(address, value)
		return
	case address >= 0x1f801d84 && address <= 0x1f801d86:
		s.reverb.Write16(address, value)
		return
	case address == 0x1f801da2 || (address >= 0x1f801dc0 && address <= 0x1f801dfe):
		s.reverb.Write16(address, value)
		return
	}

	switch address {
	case 0x1f801d80:
		s.mainVolumeLeft = value
	case 0x1f801d82:
		s.mainVolumeRight = value
	case 0x1f801d88:
		s.keyon = (s.keyon &^ 0xffff) | uint32(value)
	case 0x1f801d8a:
		s.keyon = (s.keyon & 0xffff) | uint32(value)<<16
	case 0x1f801d8c:
		s.keyoff = (s.keyoff &^ 0xffff) | uint32(value)
	case 0x1f801d8e:
		s.keyoff = (s.keyoff & 0xffff) | uint32(value)<<16
	case 0x1f801d90:
		s.soundModulation = (s.soundModulation &^ 0xffff) | uint32(value)
	case 0x1f801d92:
		s.soundModulation = (s.soundModulation & 0xffff) | uint32(value)<<16
	case 0x1f801d94:
		s.noiseEnable = (s.noiseEnable &^ 0xffff) | uint32(value)
	case 0x1f801d96:
		s.noiseEnable = (s.noiseEnable & 0xffff) | uint32(value)<<16
	case 0x1f801d98:
		s.echoOn = (s.echoOn &^ 0xffff) | uint32(value)
	case 0x1f801d9a:
		s.echoOn = (s.echoOn & 0xffff) | uint32(value)<<16
	case 0x1f801da4:
		s.irqAddress = uint32(value) * 8
	case 0x1f801da6:
		s.soundRamAddress = uint32(value) * 8
		s.currentRamAddress = s.soundRamAddress
		if s.irqAddress == s.currentRamAddress && s.irq9Enabled() {
			interrupts.Raise(interrupt.SPU)
		}
	case 0x1f801da8:
		s.sampleFifo = append(s.sampleFifo, value)
	case 0x1f801daa:
		s.spucnt = value
		if s.soundRamMode() == transferManualWrite {
			for len(s.sampleFifo) != 0 {
				if s.currentRamAddress == s.irqAddress && s.irq9Enabled() {
					interrupts.Raise(interrupt.SPU)
				}
				word := s.sampleFifo[0]
				s.sampleFifo = s.sampleFifo[1:]
				s.soundRam.Write8(s.currentRamAddress, byte(word))
				s.soundRam.Write8(s.currentRamAddress+1, byte(word>>8))
				s.currentRamAddress = (s.currentRamAddress + 2) & 0x7ffff
			}
		}
	case 0x1f801dac:
		s.soundRamTransferType = value
	case 0x1f801db0:
		s.cdVolume[0] = value
	case 0x1f801db2:
		s.cdVolume[1] = value
	case 0x1f801db4:
		s.externalVolume[0] = value
	case 0x1f801db6:
		s.externalVolume[1] = value
	}
}

func (s *SPU) updateKeystatus() {
	if s.keyoff == 0 && s.keyon == 0 {
		return
	}
	for i := range s.voices {
		if (s.keyoff>>uint(i))&1 == 1 {
			s.voices[i].UpdateKeyoff()
		}
		if (s.keyon>>uint(i))&1 == 1 {
			s.endx &^= 1 << uint(i)
			s.voices[i].UpdateKeyon()
		}
	}
	s.keyoff = 0
	s.keyon = 0
}

// Tick runs one mixer step (invoked on the scheduler's TickSpu event):
// generates one sample from every voice chained in pitch-modulation order,
// mixes in the reverb unit's output for echo-enabled voices, pushes the
// resulting stereo pair to the ring buffer, processes pending key on/off
// events and reschedules itself.
func (s *SPU) Tick(interrupts *interrupt.Registers, sched *scheduler.Scheduler) {
	var leftTotal, rightTotal int32
	var reverbInLeft, reverbInRight int32

	for i := range s.voices {
		var previousOut int32
		if i > 0 {
			previousOut = s.voices[i-1].LastVolume
		}

		pitchModulate := i > 0 && (s.soundModulation>>uint(i))&1 == 1
		noiseEnabled := (s.noiseEnable>>uint(i))&1 == 1

		left, right, endx := s.voices[i].GenerateSamples(
			s.soundRam,
			s.irqAddress,
			s.irq9Enabled(),
			interrupts,
			pitchModulate,
			previousOut,
			noiseEnabled,
			s.noise.Sample(),
		)

		if endx {
			s.endx |= 1 << uint(i)
		}

		leftTotal += left
		rightTotal += right

		if (s.echoOn>>uint(i))&1 == 1 {
			reverbInLeft += left
			reverbInRight += right
		}
	}

	s.noise.Tick()

	s.reverb.CalculateLeft(clamp(reverbInLeft, -0x8000, 0x7fff), s.soundRam)
	s.reverb.CalculateRight(clamp(reverbInRight, -0x8000, 0x7fff), s.soundRam)

	leftTotal += int32(s.reverb.ReverbOutLeft * 0x8000)
	rightTotal += int32(s.reverb.ReverbOutRight * 0x8000)

	s.ring.Push(clamp(leftTotal, -0x8000, 0x7fff))
	s.ring.Push(clamp(rightTotal, -0x8000, 0x7fff))

	s.updateKeystatus()

	sched.Schedule(scheduler.TickSpu, spuCycles)
}

// Endx reports the ENDX bitmask (one bit per voice that has reached a
// loop-end ADPCM block since the bits were last cleared by a key-on).
func (s *SPU) Endx() uint32 { return s.endx }

// DmaWrite implements dma.Port for channel 4 (SPU): the source only models
// the manual-write sample-FIFO transfer path (SPUCNT write with the FIFO
// non-empty); this repository extends the same current-ram-address advance
// to DMA writes so the DMA engine can actually feed the SPU, per spec.md
// §4.5/§6.1's SPU DMA channel.
func (s *SPU) DmaWrite(value uint32) {
	s.soundRam.Write8(s.currentRamAddress, byte(value))
	s.soundRam.Write8(s.currentRamAddress+1, byte(value>>8))
	s.soundRam.Write8(s.currentRamAddress+2, byte(value>>16))
	s.soundRam.Write8(s.currentRamAddress+3, byte(value>>24))
	s.currentRamAddress = (s.currentRamAddress + 4) & 0x7ffff
}

// DmaRead implements dma.Port for SPU-to-RAM transfers (DMARead transfer
// mode).
func (s *SPU) DmaRead() uint32 {
	v := uint32(s.soundRam.Read8(s.currentRamAddress)) |
		uint32(s.soundRam.Read8(s.currentRamAddress+1))<<8 |
		uint32(s.soundRam.Read8(s.currentRamAddress+2))<<16 |
		uint32(s.soundRam.Read8(s.currentRamAddress+3))<<24
	s.currentRamAddress = (s.currentRamAddress + 4) & 0x7ffff
	return v
}
