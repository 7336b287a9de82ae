package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/internal/log"
	"github.com/Alia5/padlink/padmanager"
	"github.com/Alia5/padlink/platform/ebitenpad"
)

type Watch struct {
	Backend  string        `help:"Controller backend; auto picks linuxjs on Linux and sdl elsewhere" enum:"auto,linuxjs,sdl,ebiten" default:"auto" env:"PADLINK_BACKEND"`
	FPS      int           `help:"Frames per second of the polling loop" default:"60" env:"PADLINK_FPS"`
	Status   bool          `help:"Print a live status line when stdout is a terminal" default:"true" negatable:"" env:"PADLINK_STATUS"`
	Duration time.Duration `help:"Stop after this long; 0 runs until interrupted" default:"0s" env:"PADLINK_DURATION"`
}

// Run is called by Kong when the watch command is executed.
func (w *Watch) Run(logger *slog.Logger, reports log.ReportLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	return w.Start(ctx, logger, reports, os.Stdout, tty)
}

// Start runs the watcher until ctx is done or Duration elapses.
func (w *Watch) Start(ctx context.Context, logger *slog.Logger, reports log.ReportLogger, out io.Writer, tty bool) error {
	if w.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Duration)
		defer cancel()
	}

	loop := frame.NewLoop()
	defer loop.Close()

	backend := resolveBackend(w.Backend)
	logger.Info("Starting padlink watcher", "backend", backend, "fps", w.FPS)

	if backend == "ebiten" {
		return w.runWindow(ctx, loop, logger, reports)
	}

	p, closer, err := openPlatform(backend, loop, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", backend, err)
	}
	defer func() { _ = closer.Close() }()

	m := attach(p, loop, logger, reports)
	defer m.Dispose()

	var onFrame func()
	if w.Status && tty {
		onFrame = statusPrinter(out, m, w.fps()/4)
		defer func() { _, _ = fmt.Fprintln(out) }()
	}

	err = loop.Run(ctx, time.Second/time.Duration(w.fps()), onFrame)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *Watch) runWindow(ctx context.Context, loop *frame.Loop, logger *slog.Logger, reports log.ReportLogger) error {
	p := ebitenpad.New()
	var m *padmanager.Manager
	defer func() {
		if m != nil {
			m.Dispose()
		}
	}()
	return ebitenpad.Run(ctx, ebitenpad.Window{
		Title: "padlink",
		TPS:   w.fps(),
		Start: func() error {
			m = attach(p, loop, logger, reports)
			return nil
		},
		Status: func() []string {
			if m == nil {
				return nil
			}
			return statusLines(m)
		},
	}, loop, p)
}

func (w *Watch) fps() int {
	if w.FPS <= 0 {
		return 60
	}
	return w.FPS
}

// statusPrinter rewrites a single terminal line every n frames when it changed.
func statusPrinter(out io.Writer, m *padmanager.Manager, n int) func() {
	if n <= 0 {
		n = 1
	}
	frames := 0
	last := ""
	return func() {
		frames++
		if frames%n != 0 {
			return
		}
		line := strings.Join(statusLines(m), " | ")
		if line == last {
			return
		}
		last = line
		_, _ = fmt.Fprintf(out, "\r\033[K%s", line)
	}
}
