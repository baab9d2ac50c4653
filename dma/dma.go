// Package dma implements the guest's 7-channel DMA engine: burst, slice and
// linked-list transfers between RAM and the GPU/CDROM/SPU/MDEC/PIO/OTC
// ports, plus the shared control and interrupt registers.
//
// Per-channel register packing is grounded on
// original_source/src/cpu/bus/dma/dma.rs and its *_register.rs siblings,
// carried over field-for-field. The transfer-execution state machine
// (activation predicate, per-sync-mode size computation, linked-list
// walking, completion scheduling, DICR/master-IRQ update) has no
// counterpart in the source — dma.rs only implements register read/write,
// not transfer execution — and is supplied here per spec.md §4.5.
package dma

import (
	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

// SyncMode selects how a channel's transfer is chunked.
type SyncMode int

const (
	SyncBurst SyncMode = iota
	SyncSlice
	SyncLinkedList
)

// Channel control register bits.
const (
	ctrlTransferDir   uint32 = 1
	ctrlIncrement     uint32 = 1 << 1
	ctrlMode          uint32 = 1 << 8
	ctrlStartTransfer uint32 = 1 << 24
	ctrlForceTransfer uint32 = 1 << 28
	ctrlPauseForced   uint32 = 1 << 29
)

// Direction is the data movement direction of a transfer.
type Direction int

const (
	ToRAM Direction = iota
	FromRAM
)

// Port is a DMA-capable device endpoint: the GPU/CDROM/SPU/MDEC/PIO FIFOs
// each implement this to source or sink one 32-bit word per DMA step.
type Port interface {
	DmaRead() uint32
	DmaWrite(value uint32)
}

// Ram is the RAM the DMA engine moves words to and from.
type Ram interface {
	Read32(address uint32) uint32
	Write32(address uint32, value uint32)
}

// Channel is one of the 7 DMA channels' register state.
type Channel struct {
	id          int
	baseAddress uint32
	numWords    uint32
	blockSize   uint32
	numBlocks   uint32
	control     uint32
}

func newChannel(id int) *Channel {
	return &Channel{id: id}
}

func (c *Channel) syncMode() SyncMode {
	switch (c.control >> 9) & 0x3 {
	case 0:
		return SyncBurst
	case 1:
		return SyncSlice
	default:
		return SyncLinkedList
	}
}

func (c *Channel) direction() Direction {
	if c.control&ctrlTransferDir != 0 {
		return FromRAM
	}
	return ToRAM
}

func (c *Channel) addressStep() int32 {
	if c.control&ctrlIncrement != 0 {
		return -4
	}
	return 4
}

func (c *Channel) active() bool {
	if c.syncMode() == SyncBurst {
		return c.control&ctrlStartTransfer != 0 || c.control&ctrlForceTransfer != 0
	}
	return c.control&ctrlStartTransfer != 0
}

func (c *Channel) write(register uint32, value uint32) {
	switch register {
	case 0x0:
		c.baseAddress = value & 0xffffff
	case 0x4:
		switch c.syncMode() {
		case SyncBurst:
			c.numWords = value & 0xffff
		case SyncSlice:
			c.blockSize = value & 0xffff
			c.numBlocks = value >> 16
		case SyncLinkedList:
		}
	case 0x8:
		c.control = value
	}
}

func (c *Channel) read(register uint32) uint32 {
	switch register {
	case 0x0:
		return c.baseAddress
	case 0x4:
		switch c.syncMode() {
		case SyncBurst:
			return c.numWords
		case SyncSlice:
			return (c.blockSize & 0xffff) | (c.numBlocks&0xffff)<<16
		default:
			return 0
		}
	case 0x8:
		return c.control
	default:
		return 0
	}
}

// transferWordCount returns the number of words a Burst or Slice transfer
// should move. LinkedList channels are walked header-by-header instead and
// have no fixed word count.
func (c *Channel) transferWordCount() uint32 {
	switch c.syncMode() {
	case SyncBurst:
		if c.numWords == 0 {
			return 0x10000
		}
		return c.numWords
	case SyncSlice:
		size := c.blockSize
		if size == 0 {
			size = 0x10000
		}
		blocks := c.numBlocks
		if blocks == 0 {
			blocks = 0x10000
		}
		return size * blocks
	default:
		return 0
	}
}

// Dma owns all 7 channels plus the shared control/interrupt registers.
type Dma struct {
	channels   [7]*Channel
	control    uint32
	dicr       uint32
	ports      [7]Port
	ram        Ram
	interrupts *interrupt.Registers
}

const defaultControl = 0x07654321

// New returns a DMA engine with every channel idle. ram is where transfers
// read/write; interrupts receives the DMA line's raise when DICR asserts
// its master bit.
func New(ram Ram, interrupts *interrupt.Registers) *Dma {
	d := &Dma{ram: ram, interrupts: interrupts, control: defaultControl}
	for i := range d.channels {
		d.channels[i] = newChannel(i)
	}
	return d
}

// AttachPort wires a device's DMA endpoint to channel id (0=MDECin,
// 1=MDECout, 2=GPU, 3=CDROM, 4=SPU, 5=PIO, 6=OTC).
func (d *Dma) AttachPort(id int, port Port) {
	d.ports[id] = port
}

func (d *Dma) channelMasterEnabled(id int) bool {
	return d.control&(1<<uint(4*id+3)) != 0
}

// Write32 handles a write to the DMA register space (0x1f801080 base).
func (d *Dma) Write32(address uint32, value uint32, sched *scheduler.Scheduler) {
	channel := (address - 0x1f801080) / 0x10
	register := address & 0xf

	if channel < 7 {
		d.channels[channel].write(register, value)
		if d.channels[channel].active() {
			d.startTransfer(int(channel), sched)
		}
		return
	}

	switch address {
	case 0x1f8010f0:
		d.control = value
	case 0x1f8010f4:
		d.writeDicr(value)
	}
}

// Read32 handles a read from the DMA register space.
func (d *Dma) Read32(address uint32) uint32 {
	channel := (address - 0x1f801080) / 0x10
	register := address & 0xf

	if channel < 7 {
		return d.channels[channel].read(register)
	}

	switch address {
	case 0x1f8010f0:
		return d.control
	case 0x1f8010f4:
		return d.readDicr()
	}
	return 0
}

func (d *Dma) writeDicr(value uint32) {
	// Bits 24-30 (per-channel flags) are write-1-to-clear; everything else
	// is a plain write.
	ackMask := value & 0x7f00_0000
	kept := d.dicr &^ ackMask
	d.dicr = (kept &^ 0xff_ffff) | (value & 0xff_ffff) | (kept & 0x7f00_0000)
}

func (d *Dma) readDicr() uint32 {
	value := d.dicr
	masterBit := d.masterInterruptFlag()
	if masterBit {
		value |= 1 << 31
	}
	return value
}

func (d *Dma) masterInterruptFlag() bool {
	busError := d.dicr&(1<<15) != 0
	forceBit := d.dicr&(1<<23) != 0
	mask := (d.dicr >> 16) & 0x7f
	flags := (d.dicr >> 24) & 0x7f
	return busError || (forceBit && flags&mask != 0)
}

// startTransfer runs the channel's transfer to completion immediately
// (word-for-word inside RAM/port access, which is effectively free compared
// to CPU cycles), clears the start bit (and, in burst mode, the force bit)
// right away, then schedules DmaFinished(channel) so the channel's DICR
// flag is raised after a delay proportional to the amount of data moved.
func (d *Dma) startTransfer(id int, sched *scheduler.Scheduler) {
	c := d.channels[id]
	port := d.ports[id]

	var wordsMoved uint32

	switch c.syncMode() {
	case SyncBurst, SyncSlice:
		wordsMoved = d.runBlockTransfer(c, port)
	case SyncLinkedList:
		wordsMoved = d.runLinkedListTransfer(c, port)
	}

	c.control &^= ctrlStartTransfer
	if c.syncMode() == SyncBurst {
		c.control &^= ctrlForceTransfer
	}

	delay := uint64(wordsMoved)
	if delay == 0 {
		delay = 1
	}
	sched.Schedule(scheduler.DmaFinished(id), delay)
}

func (d *Dma) runBlockTransfer(c *Channel, port Port) uint32 {
	count := c.transferWordCount()
	address := c.baseAddress
	step := c.addressStep()

	for i := uint32(0); i < count; i++ {
		if c.direction() == ToRAM {
			var word uint32
			if port != nil {
				word = port.DmaRead()
			}
			d.ram.Write32(address&0x1ffffc, word)
		} else {
			word := d.ram.Read32(address & 0x1ffffc)
			if port != nil {
				port.DmaWrite(word)
			}
		}
		address = uint32(int32(address) + step)
	}

	return count
}

// runLinkedListTransfer walks a list of 32-bit headers in RAM, each packing
// a payload word count in bits [31:24] and the address of the next header
// in bits [23:0]; a next-address of 0xffffff marks list end. Only GPU
// FromRAM transfers use this mode in practice.
func (d *Dma) runLinkedListTransfer(c *Channel, port Port) uint32 {
	address := c.baseAddress & 0x1ffffc
	var wordsMoved uint32

	for {
		header := d.ram.Read32(address)
		size := header >> 24
		next := header & 0xffffff

		payload := address + 4
		for i := uint32(0); i < size; i++ {
			word := d.ram.Read32((payload + i*4) & 0x1ffffc)
			if port != nil {
				port.DmaWrite(word)
			}
		}
		wordsMoved += size + 1

		if next == 0xffffff {
			break
		}
		address = next & 0x1ffffc
	}

	return wordsMoved
}

// OnTransferFinished is invoked when the scheduler fires
// DmaFinished(channel): it raises the channel's DICR flag (if its IRQ
// enable bit in the mask is set) and, if that makes the master interrupt
// condition true, raises the guest DMA interrupt line.
func (d *Dma) OnTransferFinished(channel int) {
	flagBit := uint(24 + channel)
	maskBit := uint(16 + channel)

	if d.dicr&(1<<maskBit) != 0 {
		d.dicr |= 1 << flagBit
	}

	if d.masterInterruptFlag() {
		d.interrupts.Raise(interrupt.DMA)
	}
}
