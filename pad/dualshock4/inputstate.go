package dualshock4

import (
	"encoding/binary"
	"io"
)

type InputState struct {
	LX, LY  int8
	RX, RY  int8
	Buttons uint16
	DPad    uint8
	L2, R2  uint8
}

func (s *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, 9)
	b[0] = uint8(s.LX)
	b[1] = uint8(s.LY)
	b[2] = uint8(s.RX)
	b[3] = uint8(s.RY)
	binary.LittleEndian.PutUint16(b[4:6], s.Buttons)
	b[6] = s.DPad
	b[7] = s.L2
	b[8] = s.R2
	return b, nil
}

func (s *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < 9 {
		return io.ErrUnexpectedEOF
	}
	s.LX = int8(data[0])
	s.LY = int8(data[1])
	s.RX = int8(data[2])
	s.RY = int8(data[3])
	s.Buttons = binary.LittleEndian.Uint16(data[4:6])
	s.DPad = data[6]
	s.L2 = data[7]
	s.R2 = data[8]
	return nil
}

// BuildReport encodes the state as a 64-byte DS4 USB input report.
// counter is the 6-bit frame counter carried in byte 7.
func (s *InputState) BuildReport(counter uint8) []byte {
	b := make([]byte, InputReportSize)

	b[0] = ReportIDInput

	b[1] = uint8(int16(s.LX) + 128)
	b[2] = uint8(int16(s.LY) + 128)
	b[3] = uint8(int16(s.RX) + 128)
	b[4] = uint8(int16(s.RY) + 128)

	b[5] = (hat(s.DPad) & DPadMask) | (uint8(s.Buttons) & 0xF0)
	b[6] = uint8(s.Buttons >> 8)

	psTouch := uint8(0)
	if s.Buttons&ButtonPS != 0 {
		psTouch |= ButtonPSUSB
	}
	if s.Buttons&ButtonTouchpadClick != 0 {
		psTouch |= ButtonTouchpadClickUSB
	}
	b[7] = psTouch | (counter&0x3F)<<2

	b[8] = s.L2
	b[9] = s.R2
	return b
}

func hat(dpad uint8) uint8 {
	switch {
	case dpad&DPadUp != 0 && dpad&DPadRight != 0:
		return DPadUSBUpRight
	case dpad&DPadUp != 0 && dpad&DPadLeft != 0:
		return DPadUSBUpLeft
	case dpad&DPadDown != 0 && dpad&DPadRight != 0:
		return DPadUSBDownRight
	case dpad&DPadDown != 0 && dpad&DPadLeft != 0:
		return DPadUSBDownLeft
	case dpad&DPadUp != 0:
		return DPadUSBUp
	case dpad&DPadDown != 0:
		return DPadUSBDown
	case dpad&DPadLeft != 0:
		return DPadUSBLeft
	case dpad&DPadRight != 0:
		return DPadUSBRight
	default:
		return DPadUSBNeutral
	}
}
