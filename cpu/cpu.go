package cpu

import (
	"fmt"
	"log/slog"

	"github.com/hollow-vale/rsx/gte"
	"github.com/hollow-vale/rsx/interrupt"
)

// Bus is everything the CPU needs from the memory/MMIO layer. Grounded on
// the teacher's jeebie/bus.go BusInterface shape (Read/Write/Tick), widened
// to the PS1's 32-bit address space and split Read/Write-by-width methods
// per spec.md §5.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
	// Tick advances every scheduler-driven device by n cycles.
	Tick(n uint64)
}

// pendingLoad is the one-slot load-delay buffer: a GPR index and the value
// that will land in it after the *next* instruction finishes, per
// spec.md §4.3's load-delay-slot rule. index 0 means "no pending load"
// since R0 can never be a load's destination.
type pendingLoad struct {
	index uint32
	value uint32
}

// CPU is the MIPS-R3000A-class interpreter core: 32 GPRs, HI/LO, the
// program counter pipeline (current/next, to model the branch-delay
// slot), COP0 and the GTE.
//
// Grounded on the teacher's jeebie/cpu.CPU struct shape (registers plus a
// bus reference, a Step method); the MIPS-specific pipeline fields
// (load-delay, branch-delay, exception entry) have no GameBoy analogue and
// are grounded on original_source/src/cpu/mod.rs instead.
type CPU struct {
	regs [32]uint32
	hi   uint32
	lo   uint32

	pc     uint32
	nextPC uint32

	// currentPC is the address of the instruction currently executing;
	// captured at the top of Step so EPC is well-defined even for
	// fetch-stage exceptions.
	currentPC uint32

	// inBranchDelaySlot says whether the instruction executing this Step
	// sits in a branch-delay slot; isBranchDelaySlot is set by a taken
	// branch or jump during this Step, so that the next Step's instruction
	// is the delay slot. inBranchDelaySlot feeds Cause.BD/BT on an
	// exception raised from a delay-slot instruction.
	inBranchDelaySlot bool
	isBranchDelaySlot bool

	// pendingLoad is the load still in flight from a prior Step: the
	// instruction currently executing must read its sources as if it were
	// not yet committed, but it lands in the register file once this Step's
	// execute finishes (loadDelayBase lets LWL/LWR peek at it early).
	pendingLoad pendingLoad

	// shouldTransferLoad is captured at the top of Step, before execute may
	// overwrite pendingLoad with a newly issued load: it answers "was there
	// a load already in flight when this instruction started", which is
	// what decides whether *this* Step's end commits pendingLoad at all.
	shouldTransferLoad bool

	// ignoredLoadDelayIndex suppresses the delayed-load commit for one
	// register: when the instruction executing this Step writes a GPR
	// directly (setReg) and that same register is also the target of the
	// in-flight delayed load, the direct write wins and the stale load is
	// dropped instead of clobbering it a moment later.
	ignoredLoadDelayIndex uint32

	cop0 COP0
	gte  *gte.GTE

	bus        Bus
	interrupts *interrupt.Registers

	log *slog.Logger

	// FailFast, when set, makes Step return an error (in addition to the
	// log line) on an implementation-level fault raised by the CPU itself:
	// an unimplemented opcode or COP0/COP2 sub-opcode. Bus accesses report
	// no errors to the CPU. Grounded on spec.md §7's driver-level option.
	FailFast bool

	halted bool
}

// ResetPC is the guest's fixed reset vector.
const ResetPC uint32 = 0xbfc00000

// New returns a CPU reset at the BIOS entry point.
func New(bus Bus, interrupts *interrupt.Registers, g *gte.GTE) *CPU {
	c := &CPU{
		bus:        bus,
		interrupts: interrupts,
		gte:        g,
		cop0:       NewCOP0(),
		log:        slog.Default(),
	}
	c.pc = ResetPC
	c.nextPC = ResetPC + 4
	return c
}

// Reg returns GPR n (0..31); R0 always reads zero.
func (c *CPU) Reg(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return c.regs[n]
}

// setReg writes GPR n directly (not through the load-delay slot); writes to
// R0 are discarded, matching the hardwired-zero register. It also marks n
// as ignored for this Step's pending-load commit: a handler that writes a
// register directly always wins over an in-flight load to the same index.
func (c *CPU) setReg(n uint32, value uint32) {
	if n != 0 {
		c.regs[n] = value
		c.ignoredLoadDelayIndex = n
	}
}

// PC returns the address of the next instruction to fetch.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC redirects execution, used by the driver's PS-EXE side-load
// (spec.md §6.3). The following fetch is not treated as a branch-delay
// slot since the side-load happens between Step calls, not mid-pipeline.
func (c *CPU) SetPC(addr uint32) {
	c.pc = addr
	c.nextPC = addr + 4
}

// SetReg writes GPR n directly, used by the driver's PS-EXE side-load to
// seed R28/R29/R30 (spec.md §6.3).
func (c *CPU) SetReg(n uint32, value uint32) {
	c.setReg(n, value)
}

// COP0 exposes the system-control coprocessor for the driver's debug use.
func (c *CPU) COP0() *COP0 { return &c.cop0 }

// GTE exposes the geometry engine for the driver's debug use.
func (c *CPU) GTE() *gte.GTE { return c.gte }

// loadDelayBase returns the value GPR n currently holds for the purposes of
// an instruction reading it as a source *before* this Step's pendingLoad has
// committed -- used by LWL/LWR, which must merge into the value the
// register will hold once the in-flight load commits, not the stale value
// still in the file.
func (c *CPU) loadDelayBase(n uint32) uint32 {
	if c.pendingLoad.index == n && n != 0 {
		return c.pendingLoad.value
	}
	return c.Reg(n)
}

// setRegDelayed latches a load result into the one-slot pending-load
// buffer instead of writing the register file immediately, modeling the
// load-delay slot. If a different load was already in flight targeting
// some other register, that older value commits into the register file
// immediately -- only the newest load stays pending -- matching a load
// instruction overwriting an unrelated prior load rather than queueing it.
func (c *CPU) setRegDelayed(n uint32, value uint32) {
	if c.pendingLoad.index != 0 && c.pendingLoad.index != n {
		c.regs[c.pendingLoad.index] = c.pendingLoad.value
	}
	c.pendingLoad = pendingLoad{index: n, value: value}
}

// decoded holds the fields a MIPS instruction word splits into; computed
// once per Step and passed to the dispatch tables.
type decoded struct {
	word uint32
	op   uint32 // bits 31:26
	rs   uint32
	rt   uint32
	rd   uint32
	shamt uint32
	funct uint32 // bits 5:0
	imm16 uint32
	imm26 uint32
}

func decode(word uint32) decoded {
	return decoded{
		word:  word,
		op:    word >> 26,
		rs:    (word >> 21) & 0x1f,
		rt:    (word >> 16) & 0x1f,
		rd:    (word >> 11) & 0x1f,
		shamt: (word >> 6) & 0x1f,
		funct: word & 0x3f,
		imm16: word & 0xffff,
		imm26: word & 0x3ffffff,
	}
}

// commitPendingLoad lands c.pendingLoad into the register file, unless it
// was superseded this Step by a direct write to the same register
// (ignoredLoadDelayIndex), then clears both for the next Step. Called only
// when shouldTransferLoad says a load was already in flight when this Step
// began -- a load issued *by* the current instruction stays pending into
// the next Step instead.
func (c *CPU) commitPendingLoad() {
	if c.pendingLoad.index != 0 && c.pendingLoad.index != c.ignoredLoadDelayIndex {
		c.regs[c.pendingLoad.index] = c.pendingLoad.value
	}
	c.pendingLoad = pendingLoad{}
}

// Step executes exactly one instruction and returns the number of cycles
// it took (always 1 in this interpreter's accounting; callers advance the
// bus/scheduler by that amount), or an error if FailFast is set and an
// implementation-level fault occurred.
//
// Ordering follows spec.md §4.3's 12-step sequence: capture state needed
// for a possible exception, mirror the branch-delay flag into Cause.BT,
// check for a pending interrupt, fetch, decode, execute (which may itself
// fault, branch, or latch a new pending load), then -- last, after the
// handler has run -- commit whatever load was already in flight when the
// Step began. A load the instruction itself just issued is left pending
// for the following Step, exactly one instruction later.
func (c *CPU) Step() (uint64, error) {
	c.currentPC = c.pc
	c.inBranchDelaySlot = c.isBranchDelaySlot
	c.isBranchDelaySlot = false
	c.cop0.SetBranchTaken(c.inBranchDelaySlot)

	c.shouldTransferLoad = c.pendingLoad.index != 0
	c.ignoredLoadDelayIndex = 0

	if c.cop0.InterruptsEnabled() {
		c.cop0.SetHardwarePending(c.interrupts.Pending())
		if c.cop0.InterruptPending() {
			c.enterException(ExcInterrupt)
			if c.shouldTransferLoad {
				c.commitPendingLoad()
			}
			return 1, nil
		}
	}

	if c.pc%4 != 0 {
		c.cop0.badVAddr = c.pc
		c.enterException(ExcLoadAddressError)
		if c.shouldTransferLoad {
			c.commitPendingLoad()
		}
		return 1, nil
	}

	word := c.bus.Read32(c.pc)
	d := decode(word)

	nextPC := c.nextPC
	c.pc = c.nextPC
	c.nextPC = nextPC + 4

	err := c.execute(d)

	if c.shouldTransferLoad {
		c.commitPendingLoad()
	}

	if err != nil && c.FailFast {
		return 1, err
	}
	return 1, nil
}

// execute dispatches one decoded instruction through the primary 64-entry
// table.
func (c *CPU) execute(d decoded) error {
	fn := primaryTable[d.op]
	if fn == nil {
		return c.implError(fmt.Sprintf("unimplemented primary opcode 0x%02x at pc=0x%08x", d.op, c.currentPC))
	}
	return fn(c, d)
}

// implError reports an implementation-level fault (unmapped opcode,
// unknown GTE command, etc.) per spec.md §7: always logged, and returned
// as an error only when FailFast is set -- otherwise the guest resumes.
func (c *CPU) implError(msg string) error {
	c.log.Warn(msg)
	if c.FailFast {
		return fmt.Errorf("cpu: %s", msg)
	}
	return nil
}

// branchTo sets the delay-slot target: the instruction immediately
// following the branch still executes (it was already latched into
// nextPC by Step), and target becomes the PC after that.
func (c *CPU) branchTo(target uint32) {
	c.nextPC = target
	c.isBranchDelaySlot = true
}

// enterException performs the MIPS-R3000A exception entry sequence:
// saves EPC (the faulting instruction's address, or its delay slot's
// branch if BD is set), pushes the interrupt/mode stack in Status, sets
// Cause.ExcCode/BD, and redirects the PC to the BEV-selected vector.
func (c *CPU) enterException(exc Exception) {
	handler := uint32(0x80000080)
	if c.cop0.BEV() {
		handler = 0xbfc00180
	}

	mode := c.cop0.sr & 0x3f
	c.cop0.sr = (c.cop0.sr &^ 0x3f) | ((mode << 2) & 0x3f)

	c.cop0.cause = (c.cop0.cause &^ causeExcCodeMask) | (uint32(exc) << 2)

	if c.inBranchDelaySlot {
		c.cop0.epc = c.currentPC - 4
		c.cop0.cause |= causeBD
		c.cop0.tar = c.pc
	} else {
		c.cop0.epc = c.currentPC
		c.cop0.cause &^= causeBD
	}

	c.pc = handler
	c.nextPC = handler + 4
}

// raiseSyscall, raiseBreak and raiseOverflow are the software-triggerable
// exceptions instructions can request mid-execute.
func (c *CPU) raiseSyscall() { c.enterException(ExcSyscall) }
func (c *CPU) raiseBreak()   { c.enterException(ExcBreak) }
func (c *CPU) raiseOverflow() { c.enterException(ExcOverflow) }
func (c *CPU) raiseAddressError(store bool, addr uint32) {
	c.cop0.badVAddr = addr
	if store {
		c.enterException(ExcStoreAddressError)
	} else {
		c.enterException(ExcLoadAddressError)
	}
}
