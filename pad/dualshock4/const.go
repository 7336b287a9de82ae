package dualshock4

const (
	ReportIDInput   = 0x01
	InputReportSize = 64
)

const (
	ButtonSquare   uint16 = 0x0010
	ButtonCross    uint16 = 0x0020
	ButtonCircle   uint16 = 0x0040
	ButtonTriangle uint16 = 0x0080

	DPadMask uint8 = 0x0F
)

const (
	ButtonL1      uint16 = 0x0100
	ButtonR1      uint16 = 0x0200
	ButtonL2      uint16 = 0x0400
	ButtonR2      uint16 = 0x0800
	ButtonShare   uint16 = 0x1000
	ButtonOptions uint16 = 0x2000
	ButtonL3      uint16 = 0x4000
	ButtonR3      uint16 = 0x8000

	ButtonPS            uint16 = 0x0001
	ButtonTouchpadClick uint16 = 0x0002
)

const (
	ButtonPSUSB            uint8 = 0x01
	ButtonTouchpadClickUSB uint8 = 0x02
)

const (
	DPadUSBUp        = 0x00
	DPadUSBUpRight   = 0x01
	DPadUSBRight     = 0x02
	DPadUSBDownRight = 0x03
	DPadUSBDown      = 0x04
	DPadUSBDownLeft  = 0x05
	DPadUSBLeft      = 0x06
	DPadUSBUpLeft    = 0x07
	DPadUSBNeutral   = 0x08
)

const (
	DPadUp    = 0x01
	DPadDown  = 0x02
	DPadLeft  = 0x04
	DPadRight = 0x08
)

// standardButtons maps standard layout button indices to DS4 button bits.
// The d-pad (12-15) is handled separately.
var standardButtons = map[int]uint16{
	0:  ButtonCross,
	1:  ButtonCircle,
	2:  ButtonSquare,
	3:  ButtonTriangle,
	4:  ButtonL1,
	5:  ButtonR1,
	6:  ButtonL2,
	7:  ButtonR2,
	8:  ButtonShare,
	9:  ButtonOptions,
	10: ButtonL3,
	11: ButtonR3,
	16: ButtonPS,
	17: ButtonTouchpadClick,
}

const (
	minAxes    = 4
	minButtons = 16
)
