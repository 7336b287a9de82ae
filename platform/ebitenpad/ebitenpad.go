// Package ebitenpad reads controllers through ebiten's gamepad API and
// drives a frame.Loop from ebiten's game loop.
//
// ebiten only reports gamepads while its game loop runs, so every method
// must be called from within Update. Run takes care of that.
package ebitenpad

import (
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/padmanager"
)

var standardButtons = map[int]ebiten.StandardGamepadButton{
	pad.StdButtonSouth:         ebiten.StandardGamepadButtonRightBottom,
	pad.StdButtonEast:          ebiten.StandardGamepadButtonRightRight,
	pad.StdButtonWest:          ebiten.StandardGamepadButtonRightLeft,
	pad.StdButtonNorth:         ebiten.StandardGamepadButtonRightTop,
	pad.StdButtonLeftShoulder:  ebiten.StandardGamepadButtonFrontTopLeft,
	pad.StdButtonRightShoulder: ebiten.StandardGamepadButtonFrontTopRight,
	pad.StdButtonLeftTrigger:   ebiten.StandardGamepadButtonFrontBottomLeft,
	pad.StdButtonRightTrigger:  ebiten.StandardGamepadButtonFrontBottomRight,
	pad.StdButtonBack:          ebiten.StandardGamepadButtonCenterLeft,
	pad.StdButtonStart:         ebiten.StandardGamepadButtonCenterRight,
	pad.StdButtonLeftStick:     ebiten.StandardGamepadButtonLeftStick,
	pad.StdButtonRightStick:    ebiten.StandardGamepadButtonRightStick,
	pad.StdButtonDPadUp:        ebiten.StandardGamepadButtonLeftTop,
	pad.StdButtonDPadDown:      ebiten.StandardGamepadButtonLeftBottom,
	pad.StdButtonDPadLeft:      ebiten.StandardGamepadButtonLeftLeft,
	pad.StdButtonDPadRight:     ebiten.StandardGamepadButtonLeftRight,
	pad.StdButtonGuide:         ebiten.StandardGamepadButtonCenterCenter,
}

var standardAxes = [...]ebiten.StandardGamepadAxis{
	pad.StdAxisLeftX:  ebiten.StandardGamepadAxisLeftStickHorizontal,
	pad.StdAxisLeftY:  ebiten.StandardGamepadAxisLeftStickVertical,
	pad.StdAxisRightX: ebiten.StandardGamepadAxisRightStickHorizontal,
	pad.StdAxisRightY: ebiten.StandardGamepadAxisRightStickVertical,
}

// Platform implements padmanager.Enumerator and padmanager.Notifier on top
// of ebiten. Notifications are delivered by Poll.
type Platform struct {
	handlers map[int]padmanager.Handler
	nextID   int
	known    map[ebiten.GamepadID]bool
	now      func() time.Time
}

// New creates a Platform.
func New() *Platform {
	return &Platform{
		handlers: make(map[int]padmanager.Handler),
		known:    make(map[ebiten.GamepadID]bool),
		now:      time.Now,
	}
}

// Gamepads returns a fresh descriptor for every gamepad ebiten knows about.
func (p *Platform) Gamepads() ([]*pad.Descriptor, error) {
	ids := ebiten.AppendGamepadIDs(nil)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*pad.Descriptor, 0, len(ids))
	for _, id := range ids {
		p.known[id] = true
		out = append(out, p.descriptor(id))
	}
	return out, nil
}

// Watch registers h for connect and disconnect notifications.
func (p *Platform) Watch(h padmanager.Handler) (func(), error) {
	key := p.nextID
	p.nextID++
	p.handlers[key] = h
	return func() { delete(p.handlers, key) }, nil
}

// Poll delivers the connects and disconnects ebiten saw this tick.
func (p *Platform) Poll() {
	for id := range p.known {
		if inpututil.IsGamepadJustDisconnected(id) {
			delete(p.known, id)
			for _, h := range p.sortedHandlers() {
				h.GamepadDisconnected(int(id))
			}
		}
	}
	for _, id := range inpututil.AppendJustConnectedGamepadIDs(nil) {
		p.known[id] = true
		d := p.descriptor(id)
		for _, h := range p.sortedHandlers() {
			h.GamepadConnected(d.Clone())
		}
	}
}

func (p *Platform) sortedHandlers() []padmanager.Handler {
	keys := make([]int, 0, len(p.handlers))
	for k := range p.handlers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]padmanager.Handler, len(keys))
	for i, k := range keys {
		out[i] = p.handlers[k]
	}
	return out
}

func (p *Platform) descriptor(id ebiten.GamepadID) *pad.Descriptor {
	d := &pad.Descriptor{
		Index:     int(id),
		ID:        gamepadID(ebiten.GamepadName(id), ebiten.GamepadSDLID(id)),
		Timestamp: p.now(),
	}

	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		d.Axes = make([]float64, ebiten.GamepadAxisCount(id))
		for i := range d.Axes {
			d.Axes[i] = ebiten.GamepadAxisValue(id, ebiten.GamepadAxisType(i))
		}
		d.Buttons = make([]pad.Button, ebiten.GamepadButtonCount(id))
		for i := range d.Buttons {
			if ebiten.IsGamepadButtonPressed(id, ebiten.GamepadButton(i)) {
				d.Buttons[i] = pad.Button{Pressed: true, Value: 1}
			}
		}
		return d
	}

	d.Mapping = pad.MappingStandard
	d.Axes = make([]float64, len(standardAxes))
	for i, a := range standardAxes {
		d.Axes[i] = ebiten.StandardGamepadAxisValue(id, a)
	}
	d.Buttons = make([]pad.Button, pad.StdButtonGuide+1)
	for i, b := range standardButtons {
		d.Buttons[i] = pad.Button{
			Pressed: ebiten.IsStandardGamepadButtonPressed(id, b),
			Value:   ebiten.StandardGamepadButtonValue(id, b),
		}
	}
	return d
}

// gamepadID prefers the USB ids embedded in the SDL GUID so classification
// sees the same id format on every backend.
func gamepadID(name, sdlID string) string {
	if v, p, ok := pad.ParseSDLGUID(sdlID); ok {
		return pad.FormatID(name, v, p)
	}
	return name
}
