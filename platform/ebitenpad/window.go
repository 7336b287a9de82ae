package ebitenpad

import (
	"context"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/Alia5/padlink/frame"
)

const (
	windowWidth  = 480
	windowHeight = 270
)

// Window configures the status window opened by Run.
type Window struct {
	Title string
	TPS   int
	// Start runs on the first tick, once ebiten reports gamepads.
	Start func() error
	// Status returns the lines drawn every frame.
	Status func() []string
}

// Run opens the status window and steps loop once per tick after polling
// p for notifications. It blocks until the window closes or ctx is done.
func Run(ctx context.Context, w Window, loop *frame.Loop, p *Platform) error {
	if w.Title != "" {
		ebiten.SetWindowTitle(w.Title)
	}
	if w.TPS > 0 {
		ebiten.SetTPS(w.TPS)
	}
	ebiten.SetWindowSize(windowWidth*2, windowHeight*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(&game{ctx: ctx, w: w, loop: loop, p: p})
	if err == ebiten.Termination {
		return nil
	}
	return err
}

type game struct {
	ctx     context.Context
	w       Window
	loop    *frame.Loop
	p       *Platform
	started bool
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if !g.started {
		g.started = true
		if g.w.Start != nil {
			if err := g.w.Start(); err != nil {
				return err
			}
		}
	}
	g.p.Poll()
	g.loop.Step()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.w.Status == nil {
		return
	}
	ebitenutil.DebugPrint(screen, strings.Join(g.w.Status(), "\n"))
}

func (g *game) Layout(_, _ int) (int, int) {
	return windowWidth, windowHeight
}
