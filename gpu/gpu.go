// Package gpu implements the guest's 2D rasterizing GPU front end: NTSC
// raster timing driven off the scheduler, the GP0 command-word FIFO that
// accumulates polygon/data-transfer records, and the GP1 control port
// that updates GPUSTAT.
//
// Grounded on the teacher's jeebie/video package for its raster-timing
// shape (a scanline/dot counter driving Vblank/Hblank events through the
// same scheduler the rest of this machine uses) and on
// original_source/src/gpu/mod.rs for the GP0 command table and GPUSTAT
// bit layout. Per spec.md §4.10/SPEC_FULL.md §4.10, actual polygon
// rasterization is out of scope: command words are decoded only far
// enough to know a record's length and are queued for an external
// renderer to drain.
package gpu

import (
	"github.com/hollow-vale/rsx/interrupt"
	"github.com/hollow-vale/rsx/scheduler"
)

const (
	cyclesPerScanline = 3413
	scanlinesPerFrame = 263
	vblankStartLine   = 240
)

// RecordKind distinguishes the two shapes of record the GP0 FIFO produces.
type RecordKind int

const (
	RecordPolygon RecordKind = iota
	RecordTransfer
)

// Record is one completed GP0 command: the opcode byte and the full set
// of words (including the opcode word itself) the command consumed, a
// host renderer would interpret to actually draw.
type Record struct {
	Kind  RecordKind
	Words []uint32
}

// GPUSTAT bit positions touched by GP1 commands this repository models.
const (
	statTextureDisable = 1 << 15
	statDmaDirMask     = 0x3 << 29
	statReadyRecv      = 1 << 26
	statReadyVram      = 1 << 27
	statReadyDma       = 1 << 28
	statInterlace      = 1 << 22
	statDisplayDisable = 1 << 23
)

// GPU holds the raster position, GPUSTAT, the in-progress GP0 command
// accumulator and the queue of completed records.
type GPU struct {
	scanline int
	dot      int

	stat uint32

	// pending accumulates words for the command currently being parsed;
	// wantWords is the total word count (including the opcode word)
	// that command requires, determined from its opcode on the first
	// word.
	pending   []uint32
	wantWords int
	kind      RecordKind

	// Queue holds completed records awaiting an external renderer.
	Queue []Record
}

// New returns a GPU with GPUSTAT in its post-reset state: FIFO/VRAM/DMA
// ready bits set (nothing in flight).
func New() *GPU {
	return &GPU{
		stat: statReadyRecv | statReadyVram | statReadyDma | statDisplayDisable,
	}
}

// Stat returns the current GPUSTAT word (register GPU_STAT).
func (g *GPU) Stat() uint32 { return g.stat }

// ScheduleNext arms the first HblankEnd event, one scanline from now; it
// is called once at startup. OnHblankEnd re-arms HblankEnd itself and
// posts Vblank when line 240 is reached.
func (g *GPU) ScheduleNext(sched *scheduler.Scheduler) {
	sched.Schedule(scheduler.HblankEnd, cyclesPerScanline)
}

// OnHblankEnd advances the raster position by one scanline, raising
// Vblank (and its CPU interrupt) at line 240, wrapping back to line 0 at
// the end of the 263-line frame.
func (g *GPU) OnHblankEnd(sched *scheduler.Scheduler, interrupts *interrupt.Registers) {
	g.scanline++
	if g.scanline == vblankStartLine {
		interrupts.Raise(interrupt.VBlank)
		sched.Schedule(scheduler.Vblank, 0)
	}
	if g.scanline >= scanlinesPerFrame {
		g.scanline = 0
	}
	sched.Schedule(scheduler.HblankEnd, cyclesPerScanline)
}

// gp0WordCount returns the total word count (opcode word included) for a
// GP0 command, keyed by its top byte. Polygon draws (0x20-0x3f) have
// word counts determined by the shape/shading/texture bits the top byte
// encodes; VRAM transfers (0xa0/0xc0) are headers only here (the pixel
// payload itself streams separately and is not modeled, since rasterizing
// its destination is out of scope); drawing-environment setters
// (0xe1-0xe6) are always one word.
func gp0WordCount(opcodeWord uint32) (int, RecordKind) {
	op := byte(opcodeWord >> 24)
	switch {
	case op == 0x00:
		return 1, RecordTransfer // NOP
	case op == 0x01:
		return 1, RecordTransfer // clear cache
	case op >= 0x20 && op <= 0x3f:
		return polygonWordCount(op), RecordPolygon
	case op == 0xa0 || op == 0xc0:
		return 3, RecordTransfer // dest, size; pixel payload streamed separately
	case op >= 0xe1 && op <= 0xe6:
		return 1, RecordTransfer
	default:
		return 1, RecordTransfer
	}
}

// polygonWordCount decodes the documented polygon-command bit layout:
// command-word bit 28 (gouraud), bit 27 (quad vs triangle), bit 26
// (textured), i.e. bits 4, 3 and 2 of the top byte.
func polygonWordCount(op byte) int {
	gouraud := op&0x10 != 0
	quad := op&0x08 != 0
	textured := op&0x04 != 0

	vertices := 3
	if quad {
		vertices = 4
	}

	words := 1 // the command/color word itself
	perVertex := 1
	if textured {
		perVertex++
	}
	words += vertices * perVertex
	if gouraud {
		// Gouraud commands carry one extra color word per vertex after
		// the first, which is already folded into the base command word.
		words += vertices - 1
	}
	return words
}

// WriteGP0 feeds one word into the GP0 port: either it starts a new
// command (determining the command's total length from its opcode) or it
// continues accumulating the command already in progress. A completed
// command is appended to Queue.
func (g *GPU) WriteGP0(word uint32) {
	if g.wantWords == 0 {
		count, kind := gp0WordCount(word)
		g.wantWords = count
		g.kind = kind
		g.pending = g.pending[:0]
	}
	g.pending = append(g.pending, word)
	if len(g.pending) >= g.wantWords {
		rec := Record{Kind: g.kind, Words: append([]uint32(nil), g.pending...)}
		g.Queue = append(g.Queue, rec)
		g.pending = g.pending[:0]
		g.wantWords = 0
	}
}

// WriteGP1 handles the GP1 control port: reset, display mode, and DMA
// direction selection, the subset spec.md §4.10 names.
func (g *GPU) WriteGP1(word uint32) {
	cmd := (word >> 24) & 0xff
	switch cmd {
	case 0x00: // reset GPU
		g.stat = statReadyRecv | statReadyVram | statReadyDma | statDisplayDisable
		g.pending = g.pending[:0]
		g.wantWords = 0
		g.Queue = nil
	case 0x03: // display enable
		if word&1 != 0 {
			g.stat |= statDisplayDisable
		} else {
			g.stat &^= statDisplayDisable
		}
	case 0x04: // DMA direction
		g.stat = (g.stat &^ statDmaDirMask) | ((word & 0x3) << 29)
	case 0x05: // display area start -- positioning only, not modeled further
	case 0x08: // display mode
		if word&(1<<5) != 0 {
			g.stat |= statInterlace
		} else {
			g.stat &^= statInterlace
		}
	}
}

// DmaRead/DmaWrite implement dma.Port for DMA channel 2 (GPU). Reads
// always return 0, since no GPUREAD data is produced; writes feed GP0
// exactly like the CPU-facing MMIO write would.
func (g *GPU) DmaRead() uint32 {
	return 0
}

func (g *GPU) DmaWrite(value uint32) {
	g.WriteGP0(value)
}
