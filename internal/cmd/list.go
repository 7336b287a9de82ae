package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/padmanager"
)

type List struct {
	Backend string `help:"Controller backend; auto picks linuxjs on Linux and sdl elsewhere" enum:"auto,linuxjs,sdl" default:"auto" env:"PADLINK_BACKEND"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
}

// Entry is one controller in the list output.
type Entry struct {
	Index     int       `json:"index" yaml:"index" toml:"index"`
	ID        string    `json:"id" yaml:"id" toml:"id"`
	Variant   string    `json:"variant" yaml:"variant" toml:"variant"`
	XboxOne   bool      `json:"xboxOne" yaml:"xboxOne" toml:"xboxOne"`
	Connected bool      `json:"connected" yaml:"connected" toml:"connected"`
	Mapping   string    `json:"mapping" yaml:"mapping" toml:"mapping"`
	Axes      []float64 `json:"axes" yaml:"axes" toml:"axes"`
	Pressed   []int     `json:"pressed" yaml:"pressed" toml:"pressed"`
}

// Listing is the document written by list.
type Listing struct {
	Gamepads []Entry `json:"gamepads" yaml:"gamepads" toml:"gamepads"`
}

// Run is called by Kong when the list command is executed.
func (l *List) Run(logger *slog.Logger) error {
	loop := frame.NewLoop()
	defer loop.Close()

	backend := resolveBackend(l.Backend)
	p, closer, err := openPlatform(backend, loop, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", backend, err)
	}
	defer func() { _ = closer.Close() }()

	return writeListing(os.Stdout, l.Format, p, loop, logger)
}

func writeListing(out io.Writer, format string, p any, sched frame.Scheduler, logger *slog.Logger) error {
	m := padmanager.New(p, sched, padmanager.WithLogger(logger))
	defer m.Dispose()
	return encode(out, format, snapshot(m))
}

func snapshot(m *padmanager.Manager) Listing {
	l := Listing{Gamepads: []Entry{}}
	for _, g := range m.Gamepads() {
		e := Entry{
			Index:     g.Index(),
			ID:        g.ID(),
			Variant:   g.Variant().String(),
			Connected: g.Connected(),
			Axes:      []float64{},
			Pressed:   []int{},
		}
		if x, ok := g.Typed().(interface{ IsXboxOne() bool }); ok {
			e.XboxOne = x.IsXboxOne()
		}
		if d := g.Descriptor(); d != nil {
			e.Mapping = d.Mapping
			e.Axes = append(e.Axes, d.Axes...)
			for i, b := range d.Buttons {
				if b.Pressed {
					e.Pressed = append(e.Pressed, i)
				}
			}
		}
		l.Gamepads = append(l.Gamepads, e)
	}
	return l
}
