// Command rsx is the headless driver: it loads a BIOS image, optionally
// side-loads a PS-EXE, runs a fixed number of frames, and prints any BIOS
// TTY output captured along the way.
//
// Grounded on the teacher's cmd/jeebie/main.go urfave/cli wiring (app
// name/usage/flags/Action shape), with flags replaced for this machine's
// BIOS/PS-EXE/frame-count/log-level/status-line options.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/hollow-vale/rsx/console"
	"github.com/hollow-vale/rsx/internal/statusline"
)

func main() {
	app := cli.NewApp()
	app.Name = "rsx"
	app.Description = "A cycle-approximate emulator core for a mid-1990s 32-bit console"
	app.Usage = "rsx --bios <path> [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to the BIOS ROM image (required)",
		},
		cli.StringFlag{
			Name:  "exe",
			Usage: "Path to a PS-EXE to side-load once the BIOS shell finishes",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run",
			Value: 60,
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, or error",
			Value: "info",
		},
		cli.BoolFlag{
			Name:  "status",
			Usage: "Render a live debug status line while the frames run",
		},
		cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Abort on the first implementation-level emulation fault",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("rsx exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := parseLevel(c.String("log-level"))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	biosPath := c.String("bios")
	if biosPath == "" {
		return fmt.Errorf("rsx: --bios is required")
	}
	bios, err := os.ReadFile(biosPath)
	if err != nil {
		return fmt.Errorf("rsx: reading bios: %w", err)
	}

	cons := console.New(console.Config{
		BIOS:      bios,
		TTYWriter: os.Stdout,
		FailFast:  c.Bool("fail-fast"),
	})

	if exePath := c.String("exe"); exePath != "" {
		exe, err := os.ReadFile(exePath)
		if err != nil {
			return fmt.Errorf("rsx: reading exe: %w", err)
		}
		if err := cons.LoadEXE(exe); err != nil {
			return fmt.Errorf("rsx: loading exe: %w", err)
		}
	}

	frames := c.Int("frames")

	if c.Bool("status") {
		return statusline.Run(cons, frames)
	}

	if err := cons.RunFrames(frames); err != nil {
		return fmt.Errorf("rsx: %w", err)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
