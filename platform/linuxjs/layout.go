// Package linuxjs reads controllers through the Linux joystick API
// (/dev/input/js*). Enumeration scans the device directory; notifications
// come from inotify and are posted to the frame scheduler.
package linuxjs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Alia5/padlink/pad"
)

// ErrNotJoystick is returned for device nodes that are not jsN joystick nodes.
var ErrNotJoystick = errors.New("not a joystick device")

// evdev codes reported by JSIOCGBTNMAP / JSIOCGAXMAP.
const (
	btnSouth     = 0x130
	btnEast      = 0x131
	btnNorth     = 0x133
	btnWest      = 0x134
	btnTL        = 0x136
	btnTR        = 0x137
	btnTL2       = 0x138
	btnTR2       = 0x139
	btnSelect    = 0x13a
	btnStart     = 0x13b
	btnMode      = 0x13c
	btnThumbL    = 0x13d
	btnThumbR    = 0x13e
	btnDPadUp    = 0x220
	btnDPadDown  = 0x221
	btnDPadLeft  = 0x222
	btnDPadRight = 0x223

	absX     = 0x00
	absY     = 0x01
	absZ     = 0x02
	absRX    = 0x03
	absRY    = 0x04
	absRZ    = 0x05
	absHat0X = 0x10
	absHat0Y = 0x11
)

var standardButtonCodes = map[uint16]int{
	btnSouth:     pad.StdButtonSouth,
	btnEast:      pad.StdButtonEast,
	btnWest:      pad.StdButtonWest,
	btnNorth:     pad.StdButtonNorth,
	btnTL:        pad.StdButtonLeftShoulder,
	btnTR:        pad.StdButtonRightShoulder,
	btnTL2:       pad.StdButtonLeftTrigger,
	btnTR2:       pad.StdButtonRightTrigger,
	btnSelect:    pad.StdButtonBack,
	btnStart:     pad.StdButtonStart,
	btnThumbL:    pad.StdButtonLeftStick,
	btnThumbR:    pad.StdButtonRightStick,
	btnDPadUp:    pad.StdButtonDPadUp,
	btnDPadDown:  pad.StdButtonDPadDown,
	btnDPadLeft:  pad.StdButtonDPadLeft,
	btnDPadRight: pad.StdButtonDPadRight,
	btnMode:      pad.StdButtonGuide,
}

var standardAxisCodes = map[uint8]int{
	absX:  pad.StdAxisLeftX,
	absY:  pad.StdAxisLeftY,
	absRX: pad.StdAxisRightX,
	absRY: pad.StdAxisRightY,
}

const (
	standardAxes    = 4
	standardButtons = pad.StdButtonGuide + 1
)

// layout is the driver's mapping from js indices to evdev codes.
type layout struct {
	Buttons []uint16
	Axes    []uint8
}

// standard reports whether the device looks like a gamepad that can be
// presented in the standard layout.
func (l layout) standard() bool {
	for _, c := range l.Buttons {
		if c == btnSouth {
			return true
		}
	}
	return false
}

// state is the last value seen per js button and axis.
type state struct {
	Buttons []int16
	Axes    []int16
	Updated time.Time
}

func newState(l layout) state {
	return state{
		Buttons: make([]int16, len(l.Buttons)),
		Axes:    make([]int16, len(l.Axes)),
	}
}

const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80
	jsEventSize   = 8
)

// event is struct js_event.
type event struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

func parseEvent(b []byte) (event, bool) {
	if len(b) < jsEventSize {
		return event{}, false
	}
	return event{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, true
}

// apply folds e into s. Events for unknown indices are ignored.
func (s *state) apply(e event, now time.Time) {
	n := int(e.Number)
	switch e.Type &^ jsEventInit {
	case jsEventButton:
		if n < len(s.Buttons) {
			s.Buttons[n] = e.Value
			s.Updated = now
		}
	case jsEventAxis:
		if n < len(s.Axes) {
			s.Axes[n] = e.Value
			s.Updated = now
		}
	}
}

// descriptor builds a fresh descriptor from the raw state. Gamepads are
// remapped to the standard layout, anything else is passed through.
func descriptor(index int, id string, l layout, s state) *pad.Descriptor {
	d := &pad.Descriptor{Index: index, ID: id, Timestamp: s.Updated}
	if !l.standard() {
		d.Axes = make([]float64, len(s.Axes))
		for i, v := range s.Axes {
			d.Axes[i] = pad.I16ToAxis(v)
		}
		d.Buttons = make([]pad.Button, len(s.Buttons))
		for i, v := range s.Buttons {
			d.Buttons[i] = pad.Button{Pressed: v != 0, Value: boolValue(v != 0)}
		}
		return d
	}

	d.Mapping = pad.MappingStandard
	d.Axes = make([]float64, standardAxes)
	d.Buttons = make([]pad.Button, standardButtons)
	press := func(i int, value float64) {
		if value > d.Buttons[i].Value {
			d.Buttons[i] = pad.Button{Pressed: value > 0.5, Value: value}
		}
	}

	for i, code := range l.Buttons {
		if i >= len(s.Buttons) {
			break
		}
		if std, ok := standardButtonCodes[code]; ok && s.Buttons[i] != 0 {
			press(std, 1)
		}
	}
	for i, code := range l.Axes {
		if i >= len(s.Axes) {
			break
		}
		v := s.Axes[i]
		if std, ok := standardAxisCodes[code]; ok {
			d.Axes[std] = pad.I16ToAxis(v)
			continue
		}
		switch code {
		case absZ:
			press(pad.StdButtonLeftTrigger, triggerValue(v))
		case absRZ:
			press(pad.StdButtonRightTrigger, triggerValue(v))
		case absHat0X:
			if v < 0 {
				press(pad.StdButtonDPadLeft, 1)
			} else if v > 0 {
				press(pad.StdButtonDPadRight, 1)
			}
		case absHat0Y:
			if v < 0 {
				press(pad.StdButtonDPadUp, 1)
			} else if v > 0 {
				press(pad.StdButtonDPadDown, 1)
			}
		}
	}
	return d
}

// triggerValue maps a full range trigger axis to 0..1.
func triggerValue(v int16) float64 {
	return (pad.I16ToAxis(v) + 1) / 2
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// metadata is what sysfs knows about a joystick node.
type metadata struct {
	Name    string
	Vendor  uint16
	Product uint16
}

// ID formats the controller id the way classification expects it.
func (m metadata) ID() string {
	return pad.FormatID(m.Name, m.Vendor, m.Product)
}

// readMetadata reads /sys/class/input/<node>/device/{name,id/vendor,id/product}
// from sysfs, which is rooted at /sys.
func readMetadata(sysfs fs.FS, node string) (metadata, error) {
	dir := path.Join("class/input", node, "device")
	name, err := fs.ReadFile(sysfs, path.Join(dir, "name"))
	if err != nil {
		return metadata{}, fmt.Errorf("read %s name: %w", node, err)
	}
	m := metadata{Name: strings.TrimSpace(string(name))}
	m.Vendor = readHex(sysfs, path.Join(dir, "id/vendor"))
	m.Product = readHex(sysfs, path.Join(dir, "id/product"))
	return m, nil
}

func readHex(sysfs fs.FS, p string) uint16 {
	b, err := fs.ReadFile(sysfs, p)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

// nodeIndex returns N for a "jsN" node name.
func nodeIndex(node string) (int, error) {
	if !strings.HasPrefix(node, "js") {
		return 0, fmt.Errorf("%s: %w", node, ErrNotJoystick)
	}
	n, err := strconv.Atoi(node[2:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: %w", node, ErrNotJoystick)
	}
	return n, nil
}
