package cmd

import (
	"context"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/internal/log"
	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/padmanager"
	"github.com/Alia5/padlink/platform/virtual"
)

type Simulate struct {
	Caps     virtual.Capabilities `embed:"" prefix:"caps."`
	Pads     []string             `help:"Controller ids to attach" default:"Xbox 360 Controller,Wireless Controller (Vendor: 054c Product: 09cc),Generic USB Joystick" env:"PADLINK_SIMULATE_PADS"`
	Frames   int                  `help:"Number of frames to simulate" default:"240"`
	FPS      int                  `help:"Frame rate when pacing in real time" default:"60"`
	Realtime bool                 `help:"Pace frames at --fps instead of stepping as fast as possible"`
}

// Summary is what a simulation run observed through the manager.
type Summary struct {
	Frames      int
	Connects    int
	Disconnects int
	Connected   int
}

// Run is called by Kong when the simulate command is executed.
func (s *Simulate) Run(logger *slog.Logger, reports log.ReportLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sum, err := s.Start(ctx, logger, reports)
	if err != nil {
		return err
	}
	logger.Info("simulation finished", "frames", sum.Frames, "connects", sum.Connects, "disconnects", sum.Disconnects, "connected", sum.Connected)
	return nil
}

// Start attaches the configured controllers to a virtual bus, wiggles their
// inputs every frame and unplugs and replugs the last one halfway through.
func (s *Simulate) Start(ctx context.Context, logger *slog.Logger, reports log.ReportLogger) (Summary, error) {
	bus := virtual.New(s.Caps)
	loop := frame.NewLoop()
	defer loop.Close()

	var sum Summary
	m := attach(bus.Platform(), loop, logger, reports)
	defer m.Dispose()
	m.OnConnected().Add(func(*padmanager.Gamepad) { sum.Connects++ })
	m.OnDisconnected().Add(func(*padmanager.Gamepad) { sum.Disconnects++ })

	var ticker *time.Ticker
	if s.Realtime {
		fps := s.FPS
		if fps <= 0 {
			fps = 60
		}
		ticker = time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
	}

	indices := make([]int, len(s.Pads))
	unplugAt, replugAt := s.Frames/2, s.Frames*3/4
	for f := 0; f < s.Frames; f++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-ticker.C:
			}
		}

		if f == 0 {
			for i, id := range s.Pads {
				indices[i] = bus.Attach(id)
			}
		}
		last := len(indices) - 1
		if last >= 0 && f == unplugAt && unplugAt > 0 {
			if err := bus.Detach(indices[last]); err != nil {
				return sum, err
			}
		}
		if last >= 0 && f == replugAt && replugAt > unplugAt {
			indices[last] = bus.Attach(s.Pads[last])
		}

		for i, index := range indices {
			wiggle(bus, index, f, i)
		}
		loop.Step()
		sum.Frames++
	}

	for _, g := range m.Gamepads() {
		if g.Connected() {
			sum.Connected++
		}
	}
	return sum, nil
}

// wiggle presses one face button at a time and circles the left stick.
func wiggle(bus *virtual.Bus, index, f, offset int) {
	button := (f/10 + offset) % 4
	for b := 0; b < 4; b++ {
		_ = bus.Press(index, b, b == button && (f/5)%2 == 0)
	}
	phase := float64(f+offset*15) / 30 * math.Pi
	_ = bus.Set(index, func(d *pad.Descriptor) {
		if len(d.Axes) >= 2 {
			d.Axes[0], d.Axes[1] = math.Cos(phase), math.Sin(phase)
		}
	})
}
