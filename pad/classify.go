package pad

import (
	"fmt"
	"strings"
)

// Classification is the result of Classify.
type Classification struct {
	Variant Variant
	XboxOne bool
}

// Classify derives the controller family from a descriptor id.
//
// The Surface Dock and 054c/0ce6 exclusions are known false positives and
// are matched literally.
func Classify(id string) Classification {
	xboxOne := strings.Contains(id, "Xbox One")
	if xboxOne ||
		strings.Contains(id, "Xbox 360") ||
		strings.Contains(id, "xinput") ||
		(strings.Contains(id, "045e") && !strings.Contains(id, "Surface Dock")) {
		return Classification{Variant: VariantXbox, XboxOne: xboxOne}
	}
	if strings.Contains(id, "054c") && !strings.Contains(id, "0ce6") {
		return Classification{Variant: VariantDualShock}
	}
	return Classification{Variant: VariantGeneric}
}

// FormatID builds a descriptor id from a device name and its USB ids, in
// the form Classify recognises.
func FormatID(name string, vendor, product uint16) string {
	return fmt.Sprintf("%s (Vendor: %04x Product: %04x)", name, vendor, product)
}
