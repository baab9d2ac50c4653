package spu

import "math"

// SoundRamSize is the SPU's own 512KB sample memory, addressed independently
// of the CPU's main RAM.
const SoundRamSize = 0x8_0000

// SoundRam is the SPU's local sample memory. Voice ADPCM decode and the
// reverb unit alias the same bytes through two different views: Read8/Write8
// for ADPCM block bytes, ReadF32/WriteF32 for the reverb work area's 32-bit
// float samples (reinterpreting 4 consecutive bytes as an IEEE-754 value
// rather than converting through it) — this is the "SPU sound-RAM aliasing"
// named in spec.md §9.
type SoundRam struct {
	data [SoundRamSize]byte
}

// NewSoundRam returns a zeroed 512KB sound RAM.
func NewSoundRam() *SoundRam {
	return &SoundRam{}
}

// Read8 reads one byte at address, wrapping to the 512KB window.
func (s *SoundRam) Read8(address uint32) byte {
	return s.data[address&(SoundRamSize-1)]
}

// Write8 writes one byte at address, wrapping to the 512KB window.
func (s *SoundRam) Write8(address uint32, value byte) {
	s.data[address&(SoundRamSize-1)] = value
}

// ReadF32 reinterprets the 4 bytes at address (little-endian) as a float32,
// as the reverb unit's work-area samples are stored.
func (s *SoundRam) ReadF32(address uint32) float32 {
	a := address & (SoundRamSize - 1)
	bits := uint32(s.data[a]) | uint32(s.data[(a+1)&(SoundRamSize-1)])<<8 |
		uint32(s.data[(a+2)&(SoundRamSize-1)])<<16 | uint32(s.data[(a+3)&(SoundRamSize-1)])<<24
	return math.Float32frombits(bits)
}

// WriteF32 writes v as 4 little-endian bytes at address.
func (s *SoundRam) WriteF32(address uint32, v float32) {
	bits := math.Float32bits(v)
	a := address & (SoundRamSize - 1)
	s.data[a] = byte(bits)
	s.data[(a+1)&(SoundRamSize-1)] = byte(bits >> 8)
	s.data[(a+2)&(SoundRamSize-1)] = byte(bits >> 16)
	s.data[(a+3)&(SoundRamSize-1)] = byte(bits >> 24)
}
