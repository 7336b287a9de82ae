package sdlpad_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alia5/padlink/frame"
	_ "github.com/Alia5/padlink/internal/registry"
	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/padmanager"
	"github.com/Alia5/padlink/platform/sdlpad"
)

// These need a real controller and the SDL3 shared library.
func hardware(tb testing.TB) *sdlpad.Platform {
	tb.Helper()
	if os.Getenv("PADLINK_SDL_HW") == "" {
		tb.Skip("set PADLINK_SDL_HW=1 to run against a connected controller")
	}
	p, err := sdlpad.Open(slog.Default())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = p.Close() })
	return p
}

func TestHardwareSouthPress(t *testing.T) {
	p := hardware(t)
	loop := frame.NewLoop()
	defer loop.Close()

	m := padmanager.New(p, loop)
	defer m.Dispose()

	t.Log("press the south face button")
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		loop.Step()
		for _, g := range m.Gamepads() {
			if d := g.Descriptor(); d != nil && len(d.Buttons) > pad.StdButtonSouth && d.Buttons[pad.StdButtonSouth].Pressed {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no south press observed")
}

func BenchmarkGamepads(b *testing.B) {
	p := hardware(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Gamepads(); err != nil {
			b.Fatal(err)
		}
	}
}
