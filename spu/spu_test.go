package spu

import (
	"testing"

	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeLinearIncreaseReachesMax(t *testing.T) {
	var e envelope
	e.reset(0x10, 0, 1, 0x7f, EnvelopeLinear, EnvelopeIncrease, false)

	for i := 0; i < 1_000_000 && e.volume != int16(VolumeMax); i++ {
		e.tick()
	}

	require.Equal(t, int16(VolumeMax), e.volume)
}

func TestAdsrAttackTransitionsToDecay(t *testing.T) {
	a := newAdsr()
	a.attackRate = 0
	a.attackShift = 0
	a.attackStep = 7
	a.attackMode = EnvelopeLinear
	a.sustainLevel = 0x800
	a.phase = PhaseAttack
	a.UpdateEnvelope()

	for i := 0; i < 1_000_000 && a.phase == PhaseAttack; i++ {
		a.Tick()
	}

	require.Equal(t, PhaseDecay, a.phase)
}

func TestVoiceKeyonResetsAddressAndPhase(t *testing.T) {
	v := NewVoice()
	v.startAddress = 0x1000
	v.UpdateKeyon()

	require.Equal(t, uint32(0x1000), v.currentAddress)
	require.Equal(t, PhaseAttack, v.Adsr.phase)
	require.True(t, v.isFirstBlock)
}

func TestSoundRamF32RoundTrip(t *testing.T) {
	ram := NewSoundRam()
	ram.WriteF32(0x100, 0.5)
	require.InDelta(t, 0.5, ram.ReadF32(0x100), 1e-6)
}

func TestRingBufferDropsWhenFull(t *testing.T) {
	rb := NewRingBuffer()
	for i := 0; i < ringBufferSize; i++ {
		require.True(t, rb.Push(int16(i)))
	}
	require.False(t, rb.Push(999))

	sample, ok := rb.Pop()
	require.True(t, ok)
	require.Equal(t, int16(0), sample)
}

func TestKeyonRegisterTriggersVoice(t *testing.T) {
	sched := scheduler.New()
	var interrupts interrupt.Registers
	s := New(sched)

	s.voices[0].startAddress = 0x2000
	s.Write16(0x1f801d88, 0x1, &interrupts)
	s.updateKeystatus()

	require.Equal(t, PhaseAttack, s.voices[0].Adsr.phase)
	require.Equal(t, uint32(0x2000), s.voices[0].currentAddress)
}

func TestReverbBufferAddressClampsToBase(t *testing.T) {
	r := NewReverb()
	r.Write16(0x1f801da2, 0x10)
	require.Equal(t, uint32(0x80), r.mBase)
	require.Equal(t, uint32(0x80), r.bufferAddress)

	ram := NewSoundRam()
	r.CalculateLeft(0, ram)
	require.Equal(t, float32(0), r.ReverbOutLeft)
}
