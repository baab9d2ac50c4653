package bit

import "testing"

func TestIsSetSetClear(t *testing.T) {
	var v uint32 = 0
	if IsSet(3, v) {
		t.Fatalf("bit 3 should be clear")
	}
	v = Set(3, v)
	if !IsSet(3, v) {
		t.Fatalf("bit 3 should be set after Set")
	}
	v = Clear(3, v)
	if IsSet(3, v) {
		t.Fatalf("bit 3 should be clear after Clear")
	}
}

func TestCombine16(t *testing.T) {
	got := Combine16(0x1234, 0x5678)
	want := uint32(0x12345678)
	if got != want {
		t.Fatalf("Combine16 = 0x%08x, want 0x%08x", got, want)
	}
}

func TestSignExtend8(t *testing.T) {
	if got := SignExtend8(0x80); got != 0xffffff80 {
		t.Fatalf("SignExtend8(0x80) = 0x%08x, want 0xffffff80", got)
	}
	if got := SignExtend8(0x7f); got != 0x7f {
		t.Fatalf("SignExtend8(0x7f) = 0x%08x, want 0x7f", got)
	}
}

func TestSignExtend16(t *testing.T) {
	if got := SignExtend16(0x8000); got != 0xffff8000 {
		t.Fatalf("SignExtend16(0x8000) = 0x%08x, want 0xffff8000", got)
	}
}

func TestSignExtendImm16(t *testing.T) {
	if got := SignExtendImm16(0xffff); got != 0xffffffff {
		t.Fatalf("SignExtendImm16(0xffff) = 0x%08x, want 0xffffffff", got)
	}
	if got := SignExtendImm16(0x0001); got != 1 {
		t.Fatalf("SignExtendImm16(1) = 0x%08x, want 1", got)
	}
}

func TestClamp16(t *testing.T) {
	if got := Clamp16(40000, -0x8000, 0x7fff); got != 0x7fff {
		t.Fatalf("Clamp16 overflow = %d, want 0x7fff", got)
	}
	if got := Clamp16(-40000, -0x8000, 0x7fff); got != -0x8000 {
		t.Fatalf("Clamp16 underflow = %d, want -0x8000", got)
	}
	if got := Clamp16(100, -0x8000, 0x7fff); got != 100 {
		t.Fatalf("Clamp16 in-range = %d, want 100", got)
	}
}

func TestExtractBits(t *testing.T) {
	v := uint32(0b1011010)
	if got := ExtractBits(v, 6, 4); got != 0b101 {
		t.Fatalf("ExtractBits = %b, want 101", got)
	}
	if got := ExtractBits(v, 3, 0); got != 0b1010 {
		t.Fatalf("ExtractBits low nibble = %b, want 1010", got)
	}
}
