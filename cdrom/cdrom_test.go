package cdrom

import (
	"testing"

	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

func TestWriteBankSelectsSubsequentPortDecode(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)

	c.WriteRegister(0x1f801800, 3)
	if c.bank != 3&0x3 {
		t.Fatalf("bank = %d, want %d", c.bank, 3&0x3)
	}

	c.WriteRegister(0x1f801800, 1)
	c.WriteRegister(0x1f801802, 0x1f) // bank 1: hintmask
	if c.hintmask != 0x1f {
		t.Fatalf("hintmask = %#x, want 0x1f", c.hintmask)
	}
}

func TestWriteBankZeroRoutesParameterAndCommandPorts(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)

	c.WriteRegister(0x1f801800, 0)
	c.WriteRegister(0x1f801802, 0xaa)
	if c.parameterFifo.len() != 1 {
		t.Fatalf("parameter fifo should have received a byte in bank 0")
	}

	c.WriteRegister(0x1f801801, 0x1a) // GetID
	if c.commandLatch == nil || *c.commandLatch != 0x1a {
		t.Fatalf("command byte should be latched in bank 0")
	}
}

// pump drains every scheduler event due within the next n cycles, dispatching
// each to the CDRom's handlers — enough headroom for a full command/response
// chain (including the slower, independently-timed GetId/GetTOC/Seek events)
// to settle regardless of how the faster periodic events (CDCheckIrqs,
// CDCheckCommands) interleave with it.
func pump(c *CDRom, sched *scheduler.Scheduler, n uint64) {
	end := sched.Now() + n
	for sched.Now() < end {
		kind, _, ok := sched.GetNextEvent()
		if !ok {
			sched.Tick(1)
			continue
		}
		dispatch(c, sched, kind)
	}
}

func dispatch(c *CDRom, sched *scheduler.Scheduler, kind scheduler.EventKind) {
	switch kind {
	case scheduler.CDCheckCommands:
		c.CheckCommands(sched)
	case scheduler.CDParamTransfer:
		c.TransferParams(sched)
	case scheduler.CDCommandTransfer:
		c.TransferCommand(sched)
	case scheduler.CDExecuteCommand:
		c.ExecuteCommand(sched)
	case scheduler.CDGetId:
		c.ReadID(sched)
	case scheduler.CDGetTOC:
		c.GetTOC(sched)
	case scheduler.CDSeek:
		c.SeekCD(sched)
	case scheduler.CDStat:
		c.CDStatEvent(sched)
	case scheduler.CDResponseClear:
		c.ClearResponse(sched)
	case scheduler.CDResponseTransfer:
		c.TransferResponse(sched)
	case scheduler.CDLatchInterrupts:
		c.LatchInterrupts(sched)
	case scheduler.CDCheckIrqs:
		c.ProcessIRQs(sched)
	}
}

func TestGetIDCommandProducesSCEAResponseAndIRQ2(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)
	irq.WriteMask(interrupt.CDROM)

	c.WriteRegister(0x1f801800, 1)
	c.WriteRegister(0x1f801802, 0x1f) // bank 1: enable all CD-ROM IRQ sources
	c.WriteRegister(0x1f801800, 0)
	c.WriteRegister(0x1f801801, 0x1a) // GetID, no parameters

	// Every pipeline stage (param/command transfer, execute, the
	// 50*cdromCycles GetId delay, then byte-at-a-time response/latch transfer) advances in
	// 10*cdromCycles steps; give it generous headroom to fully settle,
	// including the response chain draining all 8 ID bytes one at a time.
	pump(c, sched, 2000*cdromCycles)

	got := make([]byte, 0, 8)
	for !c.resultFifo.empty() {
		got = append(got, c.resultFifo.popFront())
	}
	if len(got) < 8 {
		t.Fatalf("result fifo has %d bytes, want at least 8 (status+flags+2 reserved+SCEA)", len(got))
	}
	region := string(got[4:8])
	if region != "SCEA" {
		t.Fatalf("region bytes = %q, want SCEA", region)
	}
	if c.irqs&0x2 == 0 {
		t.Fatalf("irqs should have IRQ2 latched after GetID, got %#x", c.irqs)
	}
	if irq.Status()&interrupt.CDROM == 0 {
		t.Fatalf("guest CDROM interrupt line should be asserted")
	}
}

func TestSetLocBCDDecodesIntoPendingPosition(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)

	c.controllerParamFifo.push(0x01) // minute 1 (BCD)
	c.controllerParamFifo.push(0x02) // second 2 (BCD)
	c.controllerParamFifo.push(0x03) // sector 3 (BCD)
	c.setLoc()

	if c.amm != 1 || c.ass != 2 || c.asect != 3 {
		t.Fatalf("setLoc = (%d,%d,%d), want (1,2,3)", c.amm, c.ass, c.asect)
	}
}

func TestSeekCommitsPendingPositionAsCurrent(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)
	c.amm, c.ass, c.asect = 5, 6, 7

	c.seek(sched)
	if !c.isSeeking {
		t.Fatalf("seek should set isSeeking")
	}
	c.SeekCD(sched)
	if c.currentAmm != 5 || c.currentAss != 6 || c.currentAsect != 7 {
		t.Fatalf("current position not committed after seek")
	}
}

func TestReadHstsReflectsBankAndFifoState(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)
	c.bank = 2

	v := c.readHsts()
	if v&0x3 != 2 {
		t.Fatalf("HSTS low bits should mirror bank, got %#x", v)
	}
	if v&(1<<3) == 0 {
		t.Fatalf("HSTS bit 3 (parameter empty) should be set when parameter FIFO is empty")
	}
	if v&(1<<5) != 0 {
		t.Fatalf("HSTS bit 5 (result non-empty) should be clear when result FIFO is empty")
	}

	c.resultFifo.push(0x42)
	v = c.readHsts()
	if v&(1<<5) == 0 {
		t.Fatalf("HSTS bit 5 should be set once the result FIFO has data")
	}
}

func TestWriteControlAcknowledgesIRQBitsAndClearsResult(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)
	c.irqs = 0x1f
	c.resultFifo.push(0xaa)

	c.writeControl(0x07) // ack bits 0-2

	if c.irqs != 0x18 {
		t.Fatalf("irqs after ack = %#x, want 0x18", c.irqs)
	}
	if !c.resultFifo.empty() {
		t.Fatalf("result FIFO should be cleared on control write")
	}
}

func TestProcessIRQsRespectsHostMask(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)
	c.irqs = 0x2
	c.hintmask = 0x0 // host has masked all CDROM IRQ sources

	c.ProcessIRQs(sched)
	if irq.Status()&interrupt.CDROM != 0 {
		t.Fatalf("CDROM interrupt line should not assert when hintmask excludes the latched bit")
	}

	c.hintmask = 0x2
	c.ProcessIRQs(sched)
	if irq.Status()&interrupt.CDROM == 0 {
		t.Fatalf("CDROM interrupt line should assert once hintmask includes the latched bit")
	}
}

func TestGetTOCReportsSingleTrackAtLeadInGap(t *testing.T) {
	sched := scheduler.New()
	var irq interrupt.Registers
	c := New(sched, &irq)

	c.GetTOC(sched)
	if c.controllerResponseFifo.len() != 5 { // stat byte + 4 TOC bytes
		t.Fatalf("controller response fifo len = %d, want 5", c.controllerResponseFifo.len())
	}
	c.controllerResponseFifo.popFront() // stat byte
	trackCount := c.controllerResponseFifo.popFront()
	minute := c.controllerResponseFifo.popFront()
	second := c.controllerResponseFifo.popFront()
	sector := c.controllerResponseFifo.popFront()
	if bcdToU8(trackCount) != 1 || bcdToU8(minute) != 0 || bcdToU8(second) != 2 || bcdToU8(sector) != 0 {
		t.Fatalf("TOC bytes decode to (%d,%d,%d,%d), want (1,0,2,0)",
			bcdToU8(trackCount), bcdToU8(minute), bcdToU8(second), bcdToU8(sector))
	}
}
