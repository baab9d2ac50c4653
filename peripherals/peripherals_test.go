package peripherals

import (
	"testing"

	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

func TestWriteByteQueuesTxAndArmsTransferEvent(t *testing.T) {
	sched := scheduler.New()
	p := New()
	p.WriteCtrl(ctrlTxEnable, sched)
	p.WriteByte(0x01, sched)

	if len(p.txFifo) != 1 {
		t.Fatalf("tx fifo should hold the queued byte")
	}
	if !sched.Pending(scheduler.ControllerByteTransfer) {
		t.Fatalf("byte transfer event should be armed")
	}
}

func TestHandleTransferSelectsControllerAndRepliesDigitalID(t *testing.T) {
	sched := scheduler.New()
	p := New()
	p.WriteCtrl(ctrlTxEnable, sched)

	p.WriteByte(0x01, sched) // select controller
	p.HandlePeripherals(&interrupt.Registers{}, sched)
	if len(p.rxFifo) == 0 || p.ReadByte() != 0xff {
		t.Fatalf("first reply byte should be the 0xff handshake byte")
	}

	p.WriteByte(0x42, sched) // ask for pad ID
	p.HandlePeripherals(&interrupt.Registers{}, sched)
	if got := p.ReadByte(); got != 0x41 {
		t.Fatalf("digital pad id reply = 0x%02x, want 0x41", got)
	}
}

func TestWriteCtrlResetClearsFifosAndState(t *testing.T) {
	sched := scheduler.New()
	p := New()
	p.txFifo = append(p.txFifo, 1, 2, 3)
	p.rxFifo = append(p.rxFifo, 4, 5)

	p.WriteCtrl(ctrlReset, sched)

	if len(p.txFifo) != 0 || len(p.rxFifo) != 0 {
		t.Fatalf("reset should clear both fifos")
	}
	if !p.txIdle || !p.txReady {
		t.Fatalf("reset should leave tx idle and ready")
	}
}

func TestWriteCtrlClearingDtrDeselectsPeripheral(t *testing.T) {
	sched := scheduler.New()
	p := New()
	p.selected = selectedController
	p.WriteCtrl(0, sched) // DTR bit not set
	if p.selected != selectedNone {
		t.Fatalf("clearing DTR should deselect the peripheral")
	}
}

func TestReadStatReflectsFifoAndTxState(t *testing.T) {
	p := New()
	p.txReady = true
	p.txIdle = true
	if got := p.ReadStat(); got&1 == 0 || got&(1<<2) == 0 {
		t.Fatalf("stat should reflect tx-ready and tx-idle bits, got 0x%04x", got)
	}
}

func TestReadByteOnEmptyFifoReturnsZero(t *testing.T) {
	p := New()
	if got := p.ReadByte(); got != 0 {
		t.Fatalf("empty rx fifo read = 0x%02x, want 0", got)
	}
}
