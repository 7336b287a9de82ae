package pad_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/padlink/pad"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		variant pad.Variant
		xboxOne bool
	}{
		{name: "xbox 360 receiver", id: "Xbox 360 Wireless Receiver", variant: pad.VariantXbox},
		{name: "xbox one", id: "Xbox One Controller (STANDARD GAMEPAD)", variant: pad.VariantXbox, xboxOne: true},
		{name: "xinput", id: "xinput", variant: pad.VariantXbox},
		{name: "microsoft vendor", id: "045e-02ea-Controller", variant: pad.VariantXbox},
		{name: "surface dock excluded", id: "045e-07c6 Surface Dock Extender", variant: pad.VariantGeneric},
		{name: "dualshock", id: "054c-0268", variant: pad.VariantDualShock},
		{name: "dualshock 4", id: "Wireless Controller (Vendor: 054c Product: 09cc)", variant: pad.VariantDualShock},
		{name: "0ce6 excluded", id: "054c-0ce6", variant: pad.VariantGeneric},
		{name: "unknown", id: "Unknown Device", variant: pad.VariantGeneric},
		{name: "case sensitive", id: "XBOX 360", variant: pad.VariantGeneric},
		{name: "xbox wins over sony codes", id: "Xbox 360 054c", variant: pad.VariantXbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := pad.Classify(tt.id)
			assert.Equal(t, tt.variant, c.Variant)
			assert.Equal(t, tt.xboxOne, c.XboxOne)
			assert.Equal(t, c, pad.Classify(tt.id), "classification must be deterministic")
		})
	}
}

func TestVariantString(t *testing.T) {
	for _, v := range []pad.Variant{pad.VariantGeneric, pad.VariantXbox, pad.VariantDualShock} {
		parsed, err := pad.ParseVariant(v.String())
		assert.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
	parsed, err := pad.ParseVariant("XBOX")
	assert.NoError(t, err)
	assert.Equal(t, pad.VariantXbox, parsed)

	_, err = pad.ParseVariant("wiimote")
	assert.Error(t, err)
	assert.Equal(t, "variant(9)", pad.Variant(9).String())
}

func TestBase(t *testing.T) {
	b := pad.NewBase(pad.VariantGeneric, "dev", 3, nil)
	assert.Equal(t, 3, b.Index())
	assert.Equal(t, "dev", b.ID())
	assert.ErrorIs(t, b.Update(), pad.ErrNoDescriptor)

	d := &pad.Descriptor{Index: 3, ID: "dev"}
	b.SetDescriptor(d)
	assert.Same(t, d, b.Descriptor())
	assert.NoError(t, b.Update())
}

func TestCheckLayout(t *testing.T) {
	assert.ErrorIs(t, pad.CheckLayout(nil, 0, 0), pad.ErrNoDescriptor)

	d := &pad.Descriptor{Axes: make([]float64, 2), Buttons: make([]pad.Button, 4)}
	err := pad.CheckLayout(d, 4, 16)
	assert.True(t, errors.Is(err, pad.ErrLayout))
	assert.NoError(t, pad.CheckLayout(d, 2, 4))
}

func TestDescriptorAccessors(t *testing.T) {
	d := &pad.Descriptor{
		Axes:    []float64{0.5, -1},
		Buttons: []pad.Button{{Pressed: true, Value: 1}},
	}
	assert.Equal(t, 0.5, d.Axis(0))
	assert.Equal(t, 0.0, d.Axis(7))
	assert.True(t, d.Button(0).Pressed)
	assert.False(t, d.Button(3).Pressed)

	c := d.Clone()
	c.Axes[0] = 0
	c.Buttons[0].Pressed = false
	assert.Equal(t, 0.5, d.Axes[0])
	assert.True(t, d.Buttons[0].Pressed)

	var nilDesc *pad.Descriptor
	assert.Nil(t, nilDesc.Clone())
	assert.Equal(t, 0.0, nilDesc.Axis(0))
}

func TestConvert(t *testing.T) {
	assert.Equal(t, int16(math.MaxInt16), pad.AxisToI16(1))
	assert.Equal(t, int16(-math.MaxInt16), pad.AxisToI16(-4))
	assert.Equal(t, int16(0), pad.AxisToI16(math.NaN()))
	assert.Equal(t, int8(127), pad.AxisToI8(2))
	assert.Equal(t, uint8(255), pad.ValueToU8(1))
	assert.Equal(t, uint8(0), pad.ValueToU8(-1))
	assert.Equal(t, -1.0, pad.I16ToAxis(math.MinInt16))
	assert.Equal(t, 1.0, pad.I16ToAxis(math.MaxInt16))
}

func TestFormatID(t *testing.T) {
	id := pad.FormatID("Wireless Controller", 0x054c, 0x09cc)
	assert.Equal(t, "Wireless Controller (Vendor: 054c Product: 09cc)", id)
	assert.Equal(t, pad.VariantDualShock, pad.Classify(id).Variant)
	assert.Equal(t, pad.VariantXbox, pad.Classify(pad.FormatID("Controller", 0x045e, 0x0b12)).Variant)
}

func TestParseSDLGUID(t *testing.T) {
	v, p, ok := pad.ParseSDLGUID("030000005e0400008e02000014010000")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x045e), v)
	assert.Equal(t, uint16(0x028e), p)

	v, p, ok = pad.ParseSDLGUID("050000004c050000cc09000000810000")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x054c), v)
	assert.Equal(t, uint16(0x09cc), p)

	for _, bad := range []string{"", "xinput", "zz0000005e0400008e02000014010000", "00000000000000000000000000000000"} {
		_, _, ok := pad.ParseSDLGUID(bad)
		assert.False(t, ok, bad)
	}
}
