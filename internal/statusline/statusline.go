// Package statusline implements a headless-safe debug status-line
// renderer: a single-screen tcell view summarizing CPU/scheduler/CD-ROM/
// SPU state while the console runs, driven by --status on cmd/rsx.
//
// Grounded on the teacher's jeebie/backend/terminal.Backend, carrying over
// its tcell.Screen lifecycle (NewScreen/Init/SetStyle/Clear/Show/Fini) and
// its SetContent-driven text layout; simplified from the teacher's
// pixel-framebuffer + register-panel + disassembly + scrolling-log layout
// to a single summary panel, since this core has no renderer to draw a
// framebuffer from (spec.md's GPU scope stops at the command queue).
package statusline

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Console is the subset of console.Console this package needs; kept as an
// interface so this package does not import console directly (it is
// itself imported by cmd/rsx alongside console, and console has no
// business importing a terminal-rendering package back).
type Console interface {
	Step() error
	FrameCount() uint64
	Summary() Summary
}

// Summary is a snapshot of machine state worth showing on the status
// line, collected once per rendered frame. console.Console's Summary
// method returns this same named type, so no adapter is needed at the
// call site in cmd/rsx.
type Summary struct {
	PC          uint32
	CyclesNow   uint64
	CDStatus    byte
	SPUVoicesOn uint32
	GPUStat     uint32
}

// Run drives the console for the given number of frames, rendering a
// status line after each one, until the frame count is reached or the
// user quits (Ctrl+C / Esc).
func Run(c Console, frames int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("statusline: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("statusline: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	for frame := 0; frame < frames; frame++ {
		if quitRequested(screen) {
			break
		}

		start := c.FrameCount()
		for c.FrameCount() == start {
			if err := c.Step(); err != nil {
				return err
			}
		}

		render(screen, c.Summary(), frame)
		screen.Show()
	}

	return nil
}

func quitRequested(screen tcell.Screen) bool {
	for screen.HasPendingEvent() {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return true
			}
		}
	}
	return false
}

func render(screen tcell.Screen, s Summary, frame int) {
	screen.Clear()
	lines := []string{
		" rsx status ",
		fmt.Sprintf("frame:     %d", frame),
		fmt.Sprintf("pc:        0x%08x", s.PC),
		fmt.Sprintf("cycles:    %d", s.CyclesNow),
		fmt.Sprintf("cd status: 0x%02x", s.CDStatus),
		fmt.Sprintf("spu on:    0x%08x", s.SPUVoicesOn),
		fmt.Sprintf("gpustat:   0x%08x", s.GPUStat),
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	for y, line := range lines {
		useStyle := style
		if y == 0 {
			useStyle = titleStyle
		}
		for x, ch := range line {
			screen.SetContent(x, y, ch, nil, useStyle)
		}
	}
}
