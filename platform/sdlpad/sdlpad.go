// Package sdlpad enumerates controllers through SDL3's gamepad API.
//
// SDL is loaded at runtime, so the binary does not link against it. The
// platform only implements padmanager.Enumerator; the manager polls it.
package sdlpad

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/Alia5/padlink/pad"
)

var standardButtons = map[int]sdl.GamepadButton{
	pad.StdButtonSouth:         sdl.GAMEPAD_BUTTON_SOUTH,
	pad.StdButtonEast:          sdl.GAMEPAD_BUTTON_EAST,
	pad.StdButtonWest:          sdl.GAMEPAD_BUTTON_WEST,
	pad.StdButtonNorth:         sdl.GAMEPAD_BUTTON_NORTH,
	pad.StdButtonLeftShoulder:  sdl.GAMEPAD_BUTTON_LEFT_SHOULDER,
	pad.StdButtonRightShoulder: sdl.GAMEPAD_BUTTON_RIGHT_SHOULDER,
	pad.StdButtonBack:          sdl.GAMEPAD_BUTTON_BACK,
	pad.StdButtonStart:         sdl.GAMEPAD_BUTTON_START,
	pad.StdButtonLeftStick:     sdl.GAMEPAD_BUTTON_LEFT_STICK,
	pad.StdButtonRightStick:    sdl.GAMEPAD_BUTTON_RIGHT_STICK,
	pad.StdButtonDPadUp:        sdl.GAMEPAD_BUTTON_DPAD_UP,
	pad.StdButtonDPadDown:      sdl.GAMEPAD_BUTTON_DPAD_DOWN,
	pad.StdButtonDPadLeft:      sdl.GAMEPAD_BUTTON_DPAD_LEFT,
	pad.StdButtonDPadRight:     sdl.GAMEPAD_BUTTON_DPAD_RIGHT,
	pad.StdButtonGuide:         sdl.GAMEPAD_BUTTON_GUIDE,
	pad.StdButtonTouchpad:      sdl.GAMEPAD_BUTTON_TOUCHPAD,
}

var standardTriggers = map[int]sdl.GamepadAxis{
	pad.StdButtonLeftTrigger:  sdl.GAMEPAD_AXIS_LEFT_TRIGGER,
	pad.StdButtonRightTrigger: sdl.GAMEPAD_AXIS_RIGHT_TRIGGER,
}

var standardAxes = [...]sdl.GamepadAxis{
	pad.StdAxisLeftX:  sdl.GAMEPAD_AXIS_LEFTX,
	pad.StdAxisLeftY:  sdl.GAMEPAD_AXIS_LEFTY,
	pad.StdAxisRightX: sdl.GAMEPAD_AXIS_RIGHTX,
	pad.StdAxisRightY: sdl.GAMEPAD_AXIS_RIGHTY,
}

// gamepad is the part of *sdl.Gamepad read every frame.
type gamepad interface {
	Button(button sdl.GamepadButton) bool
	Axis(axis sdl.GamepadAxis) int16
}

// readDescriptor samples g into a standard layout descriptor.
func readDescriptor(index int, id string, g gamepad, now time.Time) *pad.Descriptor {
	d := &pad.Descriptor{
		Index:     index,
		ID:        id,
		Mapping:   pad.MappingStandard,
		Axes:      make([]float64, len(standardAxes)),
		Buttons:   make([]pad.Button, pad.StdButtonTouchpad+1),
		Timestamp: now,
	}
	for i, a := range standardAxes {
		d.Axes[i] = pad.I16ToAxis(g.Axis(a))
	}
	for i, b := range standardButtons {
		if g.Button(b) {
			d.Buttons[i] = pad.Button{Pressed: true, Value: 1}
		}
	}
	for i, a := range standardTriggers {
		v := float64(max(g.Axis(a), 0)) / 32767
		d.Buttons[i] = pad.Button{Pressed: v > 0.5, Value: v}
	}
	return d
}

type openPad struct {
	index int
	id    string
	gp    *sdl.Gamepad
}

// Platform owns the SDL library and every opened gamepad. It must be used
// from a single goroutine.
type Platform struct {
	logger *slog.Logger
	unload func()
	pads   map[sdl.JoystickID]*openPad
	failed map[sdl.JoystickID]struct{}
	now    func() time.Time
}

// Open loads SDL and initialises its gamepad subsystem.
func Open(logger *slog.Logger) (*Platform, error) {
	if logger == nil {
		logger = slog.Default()
	}
	unload := binsdl.Load().Unload
	if err := sdl.Init(sdl.INIT_GAMEPAD); err != nil {
		unload()
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	return &Platform{
		logger: logger,
		unload: unload,
		pads:   make(map[sdl.JoystickID]*openPad),
		failed: make(map[sdl.JoystickID]struct{}),
		now:    time.Now,
	}, nil
}

// Gamepads refreshes SDL's gamepad state and returns one descriptor per
// attached gamepad. Gamepads are opened on first sight and closed once SDL
// stops listing them; their index is the lowest one free at open time.
func (p *Platform) Gamepads() ([]*pad.Descriptor, error) {
	sdl.UpdateGamepads()
	ids, err := sdl.GetGamepads()
	if err != nil {
		return nil, fmt.Errorf("sdl gamepads: %w", err)
	}

	now := p.now()
	seen := make(map[sdl.JoystickID]bool, len(ids))
	out := make([]*pad.Descriptor, 0, len(ids))
	for _, jid := range ids {
		seen[jid] = true
		op, ok := p.pads[jid]
		if !ok {
			if op, ok = p.open(jid); !ok {
				continue
			}
		}
		out = append(out, readDescriptor(op.index, op.id, op.gp, now))
	}

	for jid, op := range p.pads {
		if !seen[jid] {
			op.gp.Close()
			delete(p.pads, jid)
		}
	}
	for jid := range p.failed {
		if !seen[jid] {
			delete(p.failed, jid)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (p *Platform) open(jid sdl.JoystickID) (*openPad, bool) {
	if _, ok := p.failed[jid]; ok {
		return nil, false
	}
	gp, err := jid.OpenGamepad()
	if err != nil {
		p.failed[jid] = struct{}{}
		p.logger.Debug("failed to open gamepad", "joystick", jid, "error", err)
		return nil, false
	}
	name, err := gp.Name()
	if err != nil || name == "" {
		name = "SDL Gamepad"
	}
	op := &openPad{
		index: p.freeIndex(),
		id:    pad.FormatID(name, gp.Vendor(), gp.Product()),
		gp:    gp,
	}
	p.pads[jid] = op
	return op, true
}

func (p *Platform) freeIndex() int {
	used := make(map[int]bool, len(p.pads))
	for _, op := range p.pads {
		used[op.index] = true
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

// Close closes every gamepad and unloads SDL.
func (p *Platform) Close() error {
	for jid, op := range p.pads {
		op.gp.Close()
		delete(p.pads, jid)
	}
	sdl.Quit()
	p.unload()
	return nil
}
