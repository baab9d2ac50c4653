package peripherals

import "testing"

func TestControllerDigitalReplySequence(t *testing.T) {
	c := NewController()

	if got := c.Reply(0x01); got != 0xff {
		t.Fatalf("state 0 reply = 0x%02x, want 0xff", got)
	}
	if got := c.Reply(0x42); got != 0x41 {
		t.Fatalf("state 1 digital-id reply = 0x%02x, want 0x41", got)
	}
	if got := c.Reply(0x00); got != 0x5a {
		t.Fatalf("state 2 reply = 0x%02x, want 0x5a", got)
	}
	if got := c.Reply(0x00); got != 0xff { // buttonsLo, all released
		t.Fatalf("state 3 buttonsLo = 0x%02x, want 0xff", got)
	}
	if got := c.Reply(0x00); got != 0xff { // buttonsHi, digital mode resets after this byte
		t.Fatalf("state 4 buttonsHi = 0x%02x, want 0xff", got)
	}
	if c.InAck() {
		t.Fatalf("digital pad should end its reply sequence after buttonsHi")
	}
}

func TestControllerUnknownCommandResetsSequence(t *testing.T) {
	c := NewController()
	c.Reply(0x01) // state 0 -> 1
	c.Reply(0x99) // unrecognized at state 1, should reset
	if c.InAck() {
		t.Fatalf("unrecognized command should reset the sequence")
	}
}

func TestSetButtonsSplitsIntoLoHiBytes(t *testing.T) {
	c := NewController()
	c.SetButtons(0xbeef)
	if c.buttonsLo != 0xef || c.buttonsHi != 0xbe {
		t.Fatalf("buttons split = lo=0x%02x hi=0x%02x, want lo=0xef hi=0xbe", c.buttonsLo, c.buttonsHi)
	}
}

func TestResetReturnsToIdleState(t *testing.T) {
	c := NewController()
	c.Reply(0x01)
	c.Reset()
	if c.InAck() {
		t.Fatalf("Reset should clear InAck")
	}
}
