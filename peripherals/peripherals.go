package peripherals

import (
	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

const controllerCycles = 338

// SIO0 control register bits.
const (
	ctrlTxEnable       uint16 = 1
	ctrlDtrOut         uint16 = 1 << 1
	ctrlRxEnable       uint16 = 1 << 2
	ctrlAck            uint16 = 1 << 4
	ctrlRtsOutput      uint16 = 1 << 5
	ctrlReset          uint16 = 1 << 6
	ctrlTxIrqEnable    uint16 = 1 << 10
	ctrlRxIrqEnable    uint16 = 1 << 11
	ctrlPortSelect     uint16 = 1 << 13
)

type selectedPeripheral int

const (
	selectedNone selectedPeripheral = iota
	selectedMemoryCard
	selectedController
)

type peripheralState int

const (
	stateIdle peripheralState = iota
	stateTransferring
	stateAcknowledge
)

// Peripherals is SIO0: the byte-serial port driving the controller and
// memory-card slots.
type Peripherals struct {
	ctrl           uint16
	baudrateTimer  uint16
	mode           uint16
	txFifo         []byte
	rxFifo         []byte
	txIdle         bool
	txReady        bool
	state          peripheralState
	selected       selectedPeripheral
	Controller     *Controller
}

// New returns SIO0 idle with a fresh digital controller attached.
func New() *Peripherals {
	return &Peripherals{Controller: NewController()}
}

// WriteCtrl handles a write to the SIO_CTRL register (0x1f801048).
func (p *Peripherals) WriteCtrl(value uint16, sched *scheduler.Scheduler) {
	p.ctrl = value

	if p.ctrl&ctrlDtrOut == 0 {
		sched.Remove(scheduler.ControllerByteTransfer)
		p.selected = selectedNone
		p.state = stateIdle
		p.Controller.Reset()
	}

	if p.ctrl&ctrlReset != 0 {
		p.WriteCtrl(0, sched)
		p.WriteMode(0)
		p.WriteReloadRate(0)

		p.txFifo = p.txFifo[:0]
		p.rxFifo = p.rxFifo[:0]

		p.txIdle = true
		p.txReady = true
	}
}

// ReadByte pops one byte from the receive FIFO (SIO_DATA read).
func (p *Peripherals) ReadByte() byte {
	if len(p.rxFifo) == 0 {
		return 0
	}
	b := p.rxFifo[0]
	p.rxFifo = p.rxFifo[1:]
	return b
}

// WriteByte queues a byte for transmission and arms the controller byte
// transfer timer (SIO_DATA write).
func (p *Peripherals) WriteByte(value byte, sched *scheduler.Scheduler) {
	if p.ctrl&ctrlTxEnable != 0 {
		p.txFifo = append(p.txFifo, value)
	}

	cycles := uint64(p.baudrateTimer&^1) * 8
	sched.Schedule(scheduler.ControllerByteTransfer, cycles)

	p.state = stateTransferring
	p.txIdle = false
	p.txReady = true
}

// HandlePeripherals is invoked on the ControllerByteTransfer event.
func (p *Peripherals) HandlePeripherals(interrupts *interrupt.Registers, sched *scheduler.Scheduler) {
	switch p.state {
	case stateAcknowledge:
		p.handleAck(interrupts)
	case stateTransferring:
		p.handleTransfer(sched)
	}
}

func (p *Peripherals) handleTransfer(sched *scheduler.Scheduler) {
	if p.ctrl&ctrlPortSelect != 0 {
		// Port 1 (controller 2) is unsupported; answer with a dummy byte.
		p.rxFifo = append(p.rxFifo, 0xff)
		return
	}

	if len(p.txFifo) == 0 {
		return
	}
	command := p.txFifo[0]
	p.txFifo = p.txFifo[1:]

	if p.selected == selectedNone {
		switch command {
		case 0x1:
			p.selected = selectedController
		case 0x81:
			p.selected = selectedMemoryCard
		}
	}

	var reply byte = 0xff
	if p.selected == selectedController {
		reply = p.Controller.Reply(command)
	}

	if p.Controller.InAck() {
		p.state = stateAcknowledge
		sched.Schedule(scheduler.ControllerByteTransfer, controllerCycles)
	} else {
		p.selected = selectedNone
		p.state = stateIdle
	}

	p.rxFifo = append(p.rxFifo, reply)
}

func (p *Peripherals) handleAck(interrupts *interrupt.Registers) {
	p.state = stateIdle
	interrupts.Raise(interrupt.Peripheral)
}

// ReadStat reads the SIO_STAT register.
func (p *Peripherals) ReadStat() uint16 {
	var v uint16
	if p.txReady {
		v |= 1
	}
	if len(p.rxFifo) != 0 {
		v |= 1 << 1
	}
	if p.txIdle {
		v |= 1 << 2
	}
	if p.state == stateAcknowledge {
		v |= 1 << 7
	}
	v |= p.baudrateTimer << 11
	return v
}

// WriteReloadRate writes the baud rate reload register.
func (p *Peripherals) WriteReloadRate(value uint16) {
	p.baudrateTimer = value
}

// ReadCtrl reads the SIO_CTRL register back.
func (p *Peripherals) ReadCtrl() uint16 {
	return p.ctrl
}

// WriteMode writes the SIO_MODE register.
func (p *Peripherals) WriteMode(value uint16) {
	p.mode = value
}
