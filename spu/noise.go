package spu

// noiseGenerator implements the supplied PS1 noise approximation documented
// in SPEC_FULL.md §4.9: the reference implementation leaves per-voice noise
// as an unimplemented `todo!`, gated on a per-voice bit of SPUCNT's
// noise-enable mask but with no modeled shift/step rate fields on the
// (incomplete) register struct. This repository advances a 32-bit LFSR one
// step per SPU tick and substitutes its top 16 bits for the voice's
// interpolated sample wherever that voice's noise-enable bit is set.
type noiseGenerator struct {
	lfsr uint32
}

func newNoiseGenerator() noiseGenerator {
	return noiseGenerator{lfsr: 0x5_a5a_5}
}

// Sample returns the current noise output without advancing the generator.
func (n *noiseGenerator) Sample() int16 {
	return int16(n.lfsr >> 16)
}

// Tick advances the LFSR by one step (taps at bits 0, 1, 21 and 31, a
// maximal-length 32-bit Fibonacci-form LFSR with the feedback bit shifted
// in at bit 31), called once per SPU tick regardless of whether any voice
// currently has noise enabled.
func (n *noiseGenerator) Tick() {
	bit := (n.lfsr ^ (n.lfsr >> 1) ^ (n.lfsr >> 21) ^ (n.lfsr >> 31)) & 1
	n.lfsr = (n.lfsr >> 1) | (bit << 31)
}
