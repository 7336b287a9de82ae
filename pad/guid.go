package pad

import "encoding/hex"

// ParseSDLGUID extracts the USB vendor and product ids from a 32 character
// SDL joystick GUID. Both are stored little endian at bytes 4 and 8.
func ParseSDLGUID(guid string) (vendor, product uint16, ok bool) {
	if len(guid) != 32 {
		return 0, 0, false
	}
	b, err := hex.DecodeString(guid)
	if err != nil {
		return 0, 0, false
	}
	vendor = uint16(b[4]) | uint16(b[5])<<8
	product = uint16(b[8]) | uint16(b[9])<<8
	if vendor == 0 && product == 0 {
		return 0, 0, false
	}
	return vendor, product, true
}
