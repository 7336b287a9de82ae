package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/internal/log"
	"github.com/Alia5/padlink/padmanager"
	"github.com/Alia5/padlink/platform/linuxjs"
	"github.com/Alia5/padlink/platform/sdlpad"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// resolveBackend maps "auto" to the native backend for this OS.
func resolveBackend(name string) string {
	if name != "" && name != "auto" {
		return name
	}
	if runtime.GOOS == "linux" {
		return "linuxjs"
	}
	return "sdl"
}

// openPlatform opens a polling backend. The returned closer releases its devices.
func openPlatform(backend string, sched frame.Scheduler, logger *slog.Logger) (any, io.Closer, error) {
	switch backend {
	case "linuxjs":
		p := linuxjs.New(sched, linuxjs.WithLogger(logger))
		return p, p, nil
	case "sdl":
		p, err := sdlpad.Open(logger)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

// attach creates a manager for p and logs every connect and disconnect.
// Reports are only built when reports writes somewhere.
func attach(p any, sched frame.Scheduler, logger *slog.Logger, reports log.ReportLogger, extra ...padmanager.Option) *padmanager.Manager {
	opts := []padmanager.Option{padmanager.WithLogger(logger)}
	if log.Enabled(reports) {
		opts = append(opts, padmanager.WithReportLogger(reports))
	}
	opts = append(opts, extra...)
	m := padmanager.New(p, sched, opts...)
	m.OnConnected().Add(func(g *padmanager.Gamepad) {
		logger.Info("gamepad connected", "index", g.Index(), "id", g.ID(), "variant", g.Variant())
	})
	m.OnDisconnected().Add(func(g *padmanager.Gamepad) {
		logger.Info("gamepad disconnected", "index", g.Index(), "id", g.ID())
	})
	return m
}

// statusLines describes every connected gamepad, one per line.
func statusLines(m *padmanager.Manager) []string {
	var out []string
	for _, g := range m.Gamepads() {
		if g.Connected() {
			out = append(out, describe(g))
		}
	}
	if len(out) == 0 {
		return []string{"no gamepads connected"}
	}
	return out
}

func describe(g *padmanager.Gamepad) string {
	pressed := []string{}
	var lx, ly float64
	if d := g.Descriptor(); d != nil {
		for i, b := range d.Buttons {
			if b.Pressed {
				pressed = append(pressed, strconv.Itoa(i))
			}
		}
		lx, ly = d.Axis(0), d.Axis(1)
	}
	return fmt.Sprintf("#%d %s [%s] (%+.2f,%+.2f)", g.Index(), g.Variant(), strings.Join(pressed, ","), lx, ly)
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// encode writes v to w as json, yaml or toml.
func encode(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch normalizeFormat(format) {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(v)
	case "toml":
		data, err = toml.Marshal(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
