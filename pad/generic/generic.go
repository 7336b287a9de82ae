// Package generic provides the controller variant used for unrecognised devices.
package generic

import (
	"slices"

	"github.com/Alia5/padlink/pad"
)

func init() {
	pad.Register(pad.VariantGeneric, func(id string, index int, d *pad.Descriptor, _ bool) pad.Controller {
		return New(id, index, d)
	})
}

// Generic tracks raw buttons and axes by index without any layout assumptions.
type Generic struct {
	*pad.Base
	buttons []bool
	axes    []float64

	buttonDown func(index int)
	buttonUp   func(index int)
}

func New(id string, index int, d *pad.Descriptor) *Generic {
	return &Generic{Base: pad.NewBase(pad.VariantGeneric, id, index, d)}
}

func (g *Generic) OnButtonDown(f func(index int)) { g.buttonDown = f }
func (g *Generic) OnButtonUp(f func(index int))   { g.buttonUp = f }

// Pressed reports the pressed state of button i as of the last Update.
func (g *Generic) Pressed(i int) bool {
	return i >= 0 && i < len(g.buttons) && g.buttons[i]
}

// Axes returns a copy of the axes as of the last Update.
func (g *Generic) Axes() []float64 { return slices.Clone(g.axes) }

func (g *Generic) Update() error {
	d := g.Descriptor()
	if d == nil {
		return pad.ErrNoDescriptor
	}

	next := make([]bool, len(d.Buttons))
	for i, b := range d.Buttons {
		next[i] = b.Pressed
		was := i < len(g.buttons) && g.buttons[i]
		switch {
		case b.Pressed && !was && g.buttonDown != nil:
			g.buttonDown(i)
		case !b.Pressed && was && g.buttonUp != nil:
			g.buttonUp(i)
		}
	}
	g.buttons = next
	g.axes = append(g.axes[:0], d.Axes...)
	return nil
}

func (g *Generic) Dispose() {
	g.buttonDown = nil
	g.buttonUp = nil
}
