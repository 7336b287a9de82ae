// Package pad provides the controller contract shared by all gamepad variants.
package pad

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoDescriptor is returned by Update when a controller has no descriptor to read.
	ErrNoDescriptor = errors.New("controller has no descriptor")
	// ErrLayout is returned by Update when the descriptor does not expose enough axes or buttons.
	ErrLayout = errors.New("descriptor layout does not match variant")
)

// Variant identifies the controller family a descriptor was classified as.
type Variant uint8

const (
	VariantGeneric Variant = iota
	VariantXbox
	VariantDualShock
)

func (v Variant) String() string {
	switch v {
	case VariantXbox:
		return "xbox"
	case VariantDualShock:
		return "dualshock"
	case VariantGeneric:
		return "generic"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "xbox":
		return VariantXbox, nil
	case "dualshock":
		return VariantDualShock, nil
	case "generic":
		return VariantGeneric, nil
	default:
		return VariantGeneric, fmt.Errorf("unknown variant %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Controller is a typed controller created from a descriptor.
type Controller interface {
	Index() int
	ID() string
	Variant() Variant
	// Descriptor returns the most recent raw snapshot.
	Descriptor() *Descriptor
	// SetDescriptor replaces the raw snapshot wholesale.
	SetDescriptor(d *Descriptor)
	// Update refreshes the controller state from its descriptor.
	Update() error
	// Dispose releases device specific resources.
	Dispose()
}

// Factory creates a controller. xboxOne is only meaningful for VariantXbox.
type Factory func(id string, index int, d *Descriptor, xboxOne bool) Controller

// ReportBuilder is implemented by controllers that can encode their current
// state as a device report.
type ReportBuilder interface {
	BuildReport() []byte
}

// Base carries the fields every variant shares. It satisfies Controller on
// its own and is used as-is for variants without a registered factory.
type Base struct {
	index   int
	id      string
	variant Variant
	desc    *Descriptor
}

// NewBase returns a Base for the given identity.
func NewBase(variant Variant, id string, index int, d *Descriptor) *Base {
	return &Base{index: index, id: id, variant: variant, desc: d}
}

func (b *Base) Index() int                  { return b.index }
func (b *Base) ID() string                  { return b.id }
func (b *Base) Variant() Variant            { return b.variant }
func (b *Base) Descriptor() *Descriptor     { return b.desc }
func (b *Base) SetDescriptor(d *Descriptor) { b.desc = d }

// Update only checks that a descriptor is present.
func (b *Base) Update() error {
	if b.desc == nil {
		return ErrNoDescriptor
	}
	return nil
}

func (b *Base) Dispose() {}

// CheckLayout returns ErrLayout if d exposes fewer than axes axes or buttons buttons.
func CheckLayout(d *Descriptor, axes, buttons int) error {
	if d == nil {
		return ErrNoDescriptor
	}
	if len(d.Axes) < axes || len(d.Buttons) < buttons {
		return fmt.Errorf("%w: want %d axes/%d buttons, got %d/%d", ErrLayout, axes, buttons, len(d.Axes), len(d.Buttons))
	}
	return nil
}
