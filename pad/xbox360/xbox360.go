// Package xbox360 provides the Xbox compatible controller variant.
package xbox360

import (
	"github.com/Alia5/padlink/pad"
)

func init() {
	pad.Register(pad.VariantXbox, func(id string, index int, d *pad.Descriptor, xboxOne bool) pad.Controller {
		return New(id, index, d, xboxOne)
	})
}

// StickFunc receives a stick position whenever it changes.
type StickFunc func(x, y int16)

type Xbox360 struct {
	*pad.Base
	xboxOne bool
	state   InputState
	prev    InputState

	buttonDown  func(button uint32)
	buttonUp    func(button uint32)
	leftStick   StickFunc
	rightStick  StickFunc
	triggerFunc func(lt, rt uint8)
}

// New returns a new Xbox360 controller.
func New(id string, index int, d *pad.Descriptor, xboxOne bool) *Xbox360 {
	return &Xbox360{
		Base:    pad.NewBase(pad.VariantXbox, id, index, d),
		xboxOne: xboxOne,
	}
}

// IsXboxOne reports whether the controller was identified as an Xbox One pad.
func (x *Xbox360) IsXboxOne() bool { return x.xboxOne }

// State returns the state computed by the last successful Update.
func (x *Xbox360) State() InputState { return x.state }

func (x *Xbox360) OnButtonDown(f func(button uint32)) { x.buttonDown = f }
func (x *Xbox360) OnButtonUp(f func(button uint32))   { x.buttonUp = f }
func (x *Xbox360) OnLeftStick(f StickFunc)            { x.leftStick = f }
func (x *Xbox360) OnRightStick(f StickFunc)           { x.rightStick = f }
func (x *Xbox360) OnTriggers(f func(lt, rt uint8))    { x.triggerFunc = f }

// Update maps the standard layout descriptor to an InputState and fires
// callbacks for everything that changed.
func (x *Xbox360) Update() error {
	d := x.Descriptor()
	if err := pad.CheckLayout(d, minAxes, minButtons); err != nil {
		return err
	}

	var st InputState
	for i, bit := range standardButtons {
		if bit != 0 && d.Button(i).Pressed {
			st.Buttons |= bit
		}
	}
	st.LT = pad.ValueToU8(d.Button(pad.StdButtonLeftTrigger).Value)
	st.RT = pad.ValueToU8(d.Button(pad.StdButtonRightTrigger).Value)
	st.LX = pad.AxisToI16(d.Axis(pad.StdAxisLeftX))
	st.LY = pad.AxisToI16(-d.Axis(pad.StdAxisLeftY))
	st.RX = pad.AxisToI16(d.Axis(pad.StdAxisRightX))
	st.RY = pad.AxisToI16(-d.Axis(pad.StdAxisRightY))

	x.prev, x.state = x.state, st
	x.notify()
	return nil
}

func (x *Xbox360) notify() {
	changed := x.prev.Buttons ^ x.state.Buttons
	for bit := uint32(1); bit <= 0x8000; bit <<= 1 {
		if changed&bit == 0 {
			continue
		}
		if x.state.Buttons&bit != 0 {
			if x.buttonDown != nil {
				x.buttonDown(bit)
			}
		} else if x.buttonUp != nil {
			x.buttonUp(bit)
		}
	}
	if x.leftStick != nil && (x.prev.LX != x.state.LX || x.prev.LY != x.state.LY) {
		x.leftStick(x.state.LX, x.state.LY)
	}
	if x.rightStick != nil && (x.prev.RX != x.state.RX || x.prev.RY != x.state.RY) {
		x.rightStick(x.state.RX, x.state.RY)
	}
	if x.triggerFunc != nil && (x.prev.LT != x.state.LT || x.prev.RT != x.state.RT) {
		x.triggerFunc(x.state.LT, x.state.RT)
	}
}

// BuildReport encodes the current state as a wired Xbox 360 input report.
func (x *Xbox360) BuildReport() []byte {
	return x.state.BuildReport()
}

// Dispose drops all callbacks. The controller stays usable.
func (x *Xbox360) Dispose() {
	x.buttonDown = nil
	x.buttonUp = nil
	x.leftStick = nil
	x.rightStick = nil
	x.triggerFunc = nil
}
