// Package dualshock4 provides the DualShock compatible controller variant.
package dualshock4

import (
	"github.com/Alia5/padlink/pad"
)

func init() {
	pad.Register(pad.VariantDualShock, func(id string, index int, d *pad.Descriptor, _ bool) pad.Controller {
		return New(id, index, d)
	})
}

type DualShock4 struct {
	*pad.Base
	state   InputState
	prev    InputState
	counter uint8

	buttonDown func(button uint16)
	buttonUp   func(button uint16)
	dpadFunc   func(dpad uint8)
}

func New(id string, index int, d *pad.Descriptor) *DualShock4 {
	return &DualShock4{Base: pad.NewBase(pad.VariantDualShock, id, index, d)}
}

func (d *DualShock4) State() InputState { return d.state }

func (d *DualShock4) OnButtonDown(f func(button uint16)) { d.buttonDown = f }
func (d *DualShock4) OnButtonUp(f func(button uint16))   { d.buttonUp = f }
func (d *DualShock4) OnDPad(f func(dpad uint8))          { d.dpadFunc = f }

func (d *DualShock4) Update() error {
	desc := d.Descriptor()
	if err := pad.CheckLayout(desc, minAxes, minButtons); err != nil {
		return err
	}

	var st InputState
	for i, bit := range standardButtons {
		if desc.Button(i).Pressed {
			st.Buttons |= bit
		}
	}
	if desc.Button(pad.StdButtonDPadUp).Pressed {
		st.DPad |= DPadUp
	}
	if desc.Button(pad.StdButtonDPadDown).Pressed {
		st.DPad |= DPadDown
	}
	if desc.Button(pad.StdButtonDPadLeft).Pressed {
		st.DPad |= DPadLeft
	}
	if desc.Button(pad.StdButtonDPadRight).Pressed {
		st.DPad |= DPadRight
	}
	st.L2 = pad.ValueToU8(desc.Button(pad.StdButtonLeftTrigger).Value)
	st.R2 = pad.ValueToU8(desc.Button(pad.StdButtonRightTrigger).Value)
	st.LX = pad.AxisToI8(desc.Axis(pad.StdAxisLeftX))
	st.LY = pad.AxisToI8(desc.Axis(pad.StdAxisLeftY))
	st.RX = pad.AxisToI8(desc.Axis(pad.StdAxisRightX))
	st.RY = pad.AxisToI8(desc.Axis(pad.StdAxisRightY))

	d.prev, d.state = d.state, st
	d.counter++

	changed := d.prev.Buttons ^ d.state.Buttons
	for bit := uint16(1); bit != 0; bit <<= 1 {
		if changed&bit == 0 {
			continue
		}
		if d.state.Buttons&bit != 0 {
			if d.buttonDown != nil {
				d.buttonDown(bit)
			}
		} else if d.buttonUp != nil {
			d.buttonUp(bit)
		}
	}
	if d.dpadFunc != nil && d.prev.DPad != d.state.DPad {
		d.dpadFunc(d.state.DPad)
	}
	return nil
}

// BuildReport encodes the current state as a DS4 USB input report.
func (d *DualShock4) BuildReport() []byte {
	return d.state.BuildReport(d.counter)
}

func (d *DualShock4) Dispose() {
	d.buttonDown = nil
	d.buttonUp = nil
	d.dpadFunc = nil
}
