package virtual_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/padmanager"
	"github.com/Alia5/padlink/platform/virtual"
)

type recordingHandler struct {
	connected    []int
	disconnected []int
}

func (h *recordingHandler) GamepadConnected(d *pad.Descriptor) {
	h.connected = append(h.connected, d.Index)
}
func (h *recordingHandler) GamepadDisconnected(index int) {
	h.disconnected = append(h.disconnected, index)
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name      string
		caps      virtual.Capabilities
		enumerate bool
		notify    bool
	}{
		{name: "both", caps: virtual.Capabilities{Enumerate: true, Notify: true}, enumerate: true, notify: true},
		{name: "enumerate only", caps: virtual.Capabilities{Enumerate: true}, enumerate: true},
		{name: "notify only", caps: virtual.Capabilities{Notify: true}, notify: true},
		{name: "none", caps: virtual.Capabilities{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := virtual.New(tt.caps).Platform()
			_, isEnum := p.(padmanager.Enumerator)
			_, isNotify := p.(padmanager.Notifier)
			assert.Equal(t, tt.enumerate, isEnum)
			assert.Equal(t, tt.notify, isNotify)
		})
	}
}

func TestAttachAllocatesLowestFreeIndex(t *testing.T) {
	b := virtual.New(virtual.Capabilities{Enumerate: true, Notify: true})
	assert.Equal(t, 0, b.Attach("a"))
	assert.Equal(t, 1, b.Attach("b"))
	assert.Equal(t, 2, b.Attach("c"))

	require.NoError(t, b.Detach(1))
	assert.Equal(t, 1, b.Attach("d"))

	err := b.Detach(7)
	assert.ErrorIs(t, err, virtual.ErrUnknownIndex)

	assert.Error(t, b.AttachDescriptor(&pad.Descriptor{Index: 0}))
	assert.Error(t, b.AttachDescriptor(&pad.Descriptor{Index: -1}))
	assert.NoError(t, b.AttachDescriptor(&pad.Descriptor{Index: 5, ID: "x"}))
	assert.Equal(t, 3, b.Attach("e"))
}

func TestEnumerateReturnsCopies(t *testing.T) {
	b := virtual.New(virtual.Capabilities{Enumerate: true})
	idx := b.Attach("pad")
	require.NoError(t, b.Press(idx, pad.StdButtonSouth, true))

	e := b.Platform().(padmanager.Enumerator)
	first, err := e.Gamepads()
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].Button(pad.StdButtonSouth).Pressed)

	first[0].Buttons[pad.StdButtonSouth].Pressed = false
	second, err := e.Gamepads()
	require.NoError(t, err)
	assert.NotSame(t, first[0], second[0])
	assert.True(t, second[0].Button(pad.StdButtonSouth).Pressed)

	assert.ErrorIs(t, b.Press(9, 0, true), virtual.ErrUnknownIndex)
	require.NoError(t, b.Press(idx, 30, true))
	third, _ := e.Gamepads()
	assert.Len(t, third[0].Buttons, 31)
}

func TestWatch(t *testing.T) {
	b := virtual.New(virtual.Capabilities{Notify: true})
	n := b.Platform().(padmanager.Notifier)

	h := &recordingHandler{}
	stop, err := n.Watch(h)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Watchers())

	i := b.Attach("pad")
	require.NoError(t, b.Detach(i))
	assert.Equal(t, []int{0}, h.connected)
	assert.Equal(t, []int{0}, h.disconnected)

	stop()
	stop()
	assert.Equal(t, 0, b.Watchers())
	b.Attach("pad")
	assert.Len(t, h.connected, 1)
}

func TestFailEnumerate(t *testing.T) {
	b := virtual.New(virtual.Capabilities{Enumerate: true, FailEnumerate: true})
	_, err := b.Platform().(padmanager.Enumerator).Gamepads()
	assert.Error(t, err)
}
