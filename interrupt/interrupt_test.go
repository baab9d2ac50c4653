package interrupt

import "testing"

func TestRaiseLatchesStatusBit(t *testing.T) {
	var r Registers
	r.Raise(VBlank)
	if r.Status()&VBlank == 0 {
		t.Fatalf("VBlank bit should be latched in status")
	}
}

func TestPendingRequiresMaskAndStatus(t *testing.T) {
	var r Registers
	r.Raise(CDROM)
	if r.Pending() {
		t.Fatalf("interrupt should not be pending with mask all-zero")
	}
	r.WriteMask(CDROM)
	if !r.Pending() {
		t.Fatalf("interrupt should be pending once masked in")
	}
}

func TestWriteStatusAcknowledgesZeroBits(t *testing.T) {
	var r Registers
	r.Raise(VBlank | DMA)
	r.WriteStatus(^VBlank) // ack VBlank (write 0), leave DMA set
	if r.Status()&VBlank != 0 {
		t.Fatalf("VBlank should be acknowledged/cleared")
	}
	if r.Status()&DMA == 0 {
		t.Fatalf("DMA should remain latched")
	}
}

func TestWriteMaskReplacesMask(t *testing.T) {
	var r Registers
	r.WriteMask(Timer0 | Timer1)
	if r.Mask() != Timer0|Timer1 {
		t.Fatalf("mask = 0x%x, want Timer0|Timer1", r.Mask())
	}
}
