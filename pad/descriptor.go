package pad

import "time"

// MappingStandard marks descriptors whose buttons and axes follow the
// standard gamepad layout (face buttons 0-3, bumpers 4-5, triggers 6-7,
// back/start 8-9, stick clicks 10-11, d-pad 12-15, guide 16, axes LX LY RX RY).
const MappingStandard = "standard"

// Standard layout button indices.
const (
	StdButtonSouth = iota
	StdButtonEast
	StdButtonWest
	StdButtonNorth
	StdButtonLeftShoulder
	StdButtonRightShoulder
	StdButtonLeftTrigger
	StdButtonRightTrigger
	StdButtonBack
	StdButtonStart
	StdButtonLeftStick
	StdButtonRightStick
	StdButtonDPadUp
	StdButtonDPadDown
	StdButtonDPadLeft
	StdButtonDPadRight
	StdButtonGuide
	StdButtonTouchpad
)

// Standard layout axis indices.
const (
	StdAxisLeftX = iota
	StdAxisLeftY
	StdAxisRightX
	StdAxisRightY
)

// Button is the state of a single button as reported by the platform.
type Button struct {
	Pressed bool    `json:"pressed" yaml:"pressed" toml:"pressed"`
	Value   float64 `json:"value" yaml:"value" toml:"value"`
}

// Descriptor is a platform supplied snapshot of one controller.
// Platforms may hand out a new Descriptor on every poll.
type Descriptor struct {
	Index     int       `json:"index" yaml:"index" toml:"index"`
	ID        string    `json:"id" yaml:"id" toml:"id"`
	Mapping   string    `json:"mapping,omitempty" yaml:"mapping,omitempty" toml:"mapping,omitempty"`
	Axes      []float64 `json:"axes" yaml:"axes" toml:"axes"`
	Buttons   []Button  `json:"buttons" yaml:"buttons" toml:"buttons"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Axes = append([]float64(nil), d.Axes...)
	c.Buttons = append([]Button(nil), d.Buttons...)
	return &c
}

// Axis returns the value of axis i, or 0 if the descriptor has no such axis.
func (d *Descriptor) Axis(i int) float64 {
	if d == nil || i < 0 || i >= len(d.Axes) {
		return 0
	}
	return d.Axes[i]
}

// Button returns the state of button i, or a released button if out of range.
func (d *Descriptor) Button(i int) Button {
	if d == nil || i < 0 || i >= len(d.Buttons) {
		return Button{}
	}
	return d.Buttons[i]
}
