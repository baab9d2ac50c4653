// Package console implements the root driver that owns the CPU, bus and
// every device, runs the step/frame loop, and exposes the debugger-ish
// run-state controls a host (CLI or a future UI) steers it with.
//
// Grounded on the teacher's jeebie/core.go Emulator struct: the same
// debugger-state enum (Running/Paused/Step/StepFrame) and mutex-guarded
// state-change methods, generalized from its GameBoy 70224-cycle frame
// constant to this machine's NTSC frame length, and from its single CPU
// instruction-count loop to this machine's CPU+bus co-stepping loop.
package console

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/hollow-vale/rsx/bus"
	"github.com/hollow-vale/rsx/cpu"
	"github.com/hollow-vale/rsx/gte"
	"github.com/hollow-vale/rsx/internal/statusline"
	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

// cyclesPerFrame is the NTSC frame length this machine's GPU raster timing
// produces: 263 scanlines * 3413 cycles/scanline.
const cyclesPerFrame = 263 * 3413

// DebuggerState mirrors the teacher's run-state enum.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStep
	DebuggerStepFrame
)

// Config configures a Console at construction.
type Config struct {
	// BIOS is the raw BIOS ROM image (expected 512 KiB; shorter images
	// are zero-padded).
	BIOS []byte
	// TTYWriter receives the BIOS putchar hook's line-buffered output
	// (spec.md §6.4); nil discards it.
	TTYWriter io.Writer
	// FailFast makes Step/RunFrame return the CPU's implementation-level
	// faults (unimplemented opcodes and COP0/COP2 sub-opcodes) as errors
	// in addition to logging them. Unmapped bus accesses, unknown GTE
	// commands and unknown CD-ROM commands are not returned as errors
	// either way.
	FailFast bool
}

// exeImage is a parsed PS-EXE side-load payload (spec.md §6.3).
type exeImage struct {
	data    []byte
	pc      uint32
	gp      uint32
	dest    uint32
	size    uint32
	spBase  uint32
	spOff   uint32
}

// Console is the root struct: CPU, bus, scheduler, interrupt registers and
// the debugger run-state.
type Console struct {
	cpu        *cpu.CPU
	bus        *bus.Bus
	sched      *scheduler.Scheduler
	interrupts *interrupt.Registers
	gte        *gte.GTE

	pendingEXE *exeImage

	ttyLine []byte
	ttyOut  io.Writer

	debugMu       sync.RWMutex
	debuggerState DebuggerState
	stepRequested bool
	frameRequested bool

	instructionCount uint64
	frameCount       uint64

	log *slog.Logger
}

// New constructs a Console reset and ready to run, per cfg.
func New(cfg Config) *Console {
	bios := make([]byte, 0x80000)
	copy(bios, cfg.BIOS)

	interrupts := &interrupt.Registers{}
	sched := scheduler.New()
	b := bus.New(bios, interrupts, sched)
	g := gte.New()
	c := cpu.New(b, interrupts, g)
	c.FailFast = cfg.FailFast
	b.FailFast = cfg.FailFast

	out := cfg.TTYWriter
	if out == nil {
		out = io.Discard
	}

	return &Console{
		cpu:        c,
		bus:        b,
		sched:      sched,
		interrupts: interrupts,
		gte:        g,
		ttyOut:     out,
		log:        slog.Default(),
	}
}

// LoadEXE queues a PS-EXE image for side-loading once the BIOS shell
// finishes (spec.md §6.3): PC reaching 0x80030000 triggers the copy.
func (c *Console) LoadEXE(data []byte) error {
	if len(data) < 0x800 {
		return fmt.Errorf("console: exe image too short (%d bytes)", len(data))
	}
	img := &exeImage{
		data:   data,
		pc:     le32(data, 0x10),
		gp:     le32(data, 0x14),
		dest:   le32(data, 0x18),
		size:   le32(data, 0x1c),
		spBase: le32(data, 0x30),
		spOff:  le32(data, 0x34),
	}
	c.pendingEXE = img
	return nil
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// sideloadEXEIfDue performs the one-shot PS-EXE side-load when PC reaches
// the post-shell entry point, per spec.md §6.3.
func (c *Console) sideloadEXEIfDue() {
	if c.pendingEXE == nil || c.cpu.PC() != 0x80030000 {
		return
	}
	img := c.pendingEXE
	c.pendingEXE = nil

	payload := img.data[0x800:]
	if uint32(len(payload)) > img.size {
		payload = payload[:img.size]
	}
	c.bus.LoadRAM(img.dest&0x1fffff, payload)

	c.cpu.SetPC(img.pc)
	c.cpu.SetReg(28, img.gp)
	if img.spBase != 0 {
		base := img.spBase + img.spOff
		c.cpu.SetReg(29, base)
		c.cpu.SetReg(30, base)
	}
}

// ttyHook implements spec.md §6.4: when PC == 0xB0 and R9 == 0x3D, the low
// byte of R4 is the next character of BIOS TTY output, line-buffered and
// flushed on newline.
func (c *Console) ttyHook() {
	if c.cpu.PC() != 0xb0 || c.cpu.Reg(9) != 0x3d {
		return
	}
	ch := byte(c.cpu.Reg(4))
	c.ttyLine = append(c.ttyLine, ch)
	if ch == '\n' {
		c.ttyOut.Write(c.ttyLine)
		c.ttyLine = c.ttyLine[:0]
	}
}

// Step executes exactly one CPU instruction, ticking every scheduler-owned
// device by the same amount, and returns any implementation-level error
// (only surfaced when Config.FailFast was set).
func (c *Console) Step() error {
	c.sideloadEXEIfDue()
	c.ttyHook()

	cycles, err := c.cpu.Step()
	c.bus.Tick(cycles)
	c.instructionCount++
	if err != nil {
		c.log.Warn("cpu step failed", "error", err, "pc", fmt.Sprintf("0x%08x", c.cpu.PC()))
		return err
	}
	return nil
}

// RunFrame executes instructions until the scheduler has advanced by one
// NTSC frame's worth of cycles, matching the teacher's
// total-cycles-reach-70224 loop shape, generalized to this machine's frame
// length.
func (c *Console) RunFrame() error {
	start := c.sched.Now()
	for c.sched.Now()-start < cyclesPerFrame {
		if err := c.Step(); err != nil {
			return err
		}
	}
	c.frameCount++
	return nil
}

// RunFrames runs n frames, stopping early on the first error.
func (c *Console) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := c.RunFrame(); err != nil {
			return err
		}
	}
	return nil
}

// Summary snapshots the handful of values internal/statusline displays,
// satisfying its Console interface.
func (c *Console) Summary() statusline.Summary {
	return statusline.Summary{
		PC:          c.cpu.PC(),
		CyclesNow:   c.sched.Now(),
		CDStatus:    c.bus.CDRom().ReadRegister(0x1f801800),
		SPUVoicesOn: c.bus.SPU().Endx(),
		GPUStat:     c.bus.GPU().Stat(),
	}
}

// CPU/Bus/GTE expose the owned subsystems for debug/status-line use.
func (c *Console) CPU() *cpu.CPU             { return c.cpu }
func (c *Console) Bus() *bus.Bus             { return c.bus }
func (c *Console) GTE() *gte.GTE             { return c.gte }
func (c *Console) Scheduler() *scheduler.Scheduler { return c.sched }
func (c *Console) InstructionCount() uint64  { return c.instructionCount }
func (c *Console) FrameCount() uint64        { return c.frameCount }

// SetDebuggerState, DebuggerState, and the Debugger* helpers mirror the
// teacher's mutex-guarded debugger controls.
func (c *Console) SetDebuggerState(s DebuggerState) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.debuggerState = s
}

func (c *Console) GetDebuggerState() DebuggerState {
	c.debugMu.RLock()
	defer c.debugMu.RUnlock()
	return c.debuggerState
}

func (c *Console) DebuggerPause()  { c.SetDebuggerState(DebuggerPaused) }
func (c *Console) DebuggerResume() { c.SetDebuggerState(DebuggerRunning) }

func (c *Console) DebuggerStepInstruction() {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.stepRequested = true
	c.debuggerState = DebuggerStep
}

func (c *Console) DebuggerStepFrame() {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.frameRequested = true
	c.debuggerState = DebuggerStepFrame
}

// RunUntilPauseOrFrame advances according to the current debugger state,
// exactly mirroring the teacher's RunUntilFrame dispatch over
// DebuggerRunning/Paused/Step/StepFrame.
func (c *Console) RunUntilPauseOrFrame() error {
	state := c.GetDebuggerState()

	switch state {
	case DebuggerPaused:
		return nil
	case DebuggerStep:
		c.debugMu.Lock()
		requested := c.stepRequested
		c.stepRequested = false
		c.debugMu.Unlock()
		if !requested {
			return nil
		}
		err := c.Step()
		c.SetDebuggerState(DebuggerPaused)
		return err
	case DebuggerStepFrame:
		c.debugMu.Lock()
		requested := c.frameRequested
		c.frameRequested = false
		c.debugMu.Unlock()
		if !requested {
			return nil
		}
		err := c.RunFrame()
		c.SetDebuggerState(DebuggerPaused)
		return err
	default:
		return c.RunFrame()
	}
}

// NewBufferedTTY wraps w in a bufio.Writer, a convenience for attaching a
// buffered TTY sink without importing bufio directly.
func NewBufferedTTY(w io.Writer) *bufio.Writer {
	return bufio.NewWriter(w)
}
