// Package peripherals implements SIO0, the byte-serial port the CPU uses
// to talk to the digital gamepad and memory cards, and the digital
// controller's own byte-sequence reply state machine.
//
// Grounded on original_source/src/cpu/bus/peripherals.rs,
// peripherals/controller.rs, sio_control.rs and sio_mode.rs.
package peripherals

// Controller models a digital gamepad's SIO reply sequence: each
// transaction byte advances through a fixed 9-state sequence that reports
// the pad's identifier, button bitmask and (stubbed, digital-mode) stick
// centers.
type Controller struct {
	state       int
	digitalMode bool
	buttonsLo   byte
	buttonsHi   byte
	leftJoyX    byte
	leftJoyY    byte
	rightJoyX   byte
	rightJoyY   byte
}

// NewController returns a controller with all buttons released and sticks
// centered, in digital mode.
func NewController() *Controller {
	return &Controller{
		digitalMode: true,
		buttonsLo:   0xff,
		buttonsHi:   0xff,
		leftJoyX:    0x80,
		leftJoyY:    0x80,
		rightJoyX:   0x80,
		rightJoyY:   0x80,
	}
}

// SetButtons sets the 16-bit button bitmask (0 = pressed), per the
// standard digital-pad SELECT/L3/R3/START/up/right/down/left/L2/R2/L1/R1/
// triangle/circle/cross/square bit layout.
func (c *Controller) SetButtons(mask uint16) {
	c.buttonsLo = byte(mask)
	c.buttonsHi = byte(mask >> 8)
}

// InAck reports whether the controller still has bytes queued in its
// reply sequence (drives SIO0's acknowledge pulse).
func (c *Controller) InAck() bool {
	return c.state != 0
}

// Reset returns the controller to its idle (state 0) sequence position.
func (c *Controller) Reset() {
	c.state = 0
}

// Reply advances the reply sequence by one byte and returns the
// controller's response to command.
func (c *Controller) Reply(command byte) byte {
	resetState := false
	var reply byte

	switch c.state {
	case 0:
		reply = 0xff
	case 1:
		if command == 0x42 {
			// 5A41h = Digital Pad (LED off), 5A73h = Analog Pad in
			// analog mode (LED red).
			if c.digitalMode {
				reply = 0x41
			} else {
				reply = 0x73
			}
		} else {
			resetState = true
			reply = 0xff
		}
	case 2:
		reply = 0x5a
	case 3:
		reply = c.buttonsLo
	case 4:
		if c.digitalMode {
			resetState = true
		}
		reply = c.buttonsHi
	case 5:
		reply = c.rightJoyX
	case 6:
		reply = c.rightJoyY
	case 7:
		reply = c.leftJoyX
	case 8:
		resetState = true
		reply = c.leftJoyY
	}

	if resetState {
		c.state = 0
	} else {
		c.state++
	}

	return reply
}
