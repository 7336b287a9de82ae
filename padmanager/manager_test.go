package padmanager_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padlink/frame"
	th "github.com/Alia5/padlink/internal/testing"
	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/pad/xbox360"
	"github.com/Alia5/padlink/padmanager"
	"github.com/Alia5/padlink/platform/virtual"

	_ "github.com/Alia5/padlink/internal/registry" // Register all variants
)

// notifyOnly hands the manager's handler back to the test.
type notifyOnly struct {
	h       padmanager.Handler
	stopped int
	err     error
}

func (n *notifyOnly) Watch(h padmanager.Handler) (func(), error) {
	if n.err != nil {
		return nil, n.err
	}
	n.h = h
	return func() { n.stopped++ }, nil
}

// enumNotify exposes both capabilities with a descriptor list the test edits directly.
type enumNotify struct {
	notifyOnly
	descs []*pad.Descriptor
}

func (e *enumNotify) Gamepads() ([]*pad.Descriptor, error) {
	out := make([]*pad.Descriptor, 0, len(e.descs))
	for _, d := range e.descs {
		out = append(out, d.Clone())
	}
	return out, nil
}

type enumOnly struct {
	descs []*pad.Descriptor
	err   error
}

func (e *enumOnly) Gamepads() ([]*pad.Descriptor, error) {
	return e.descs, e.err
}

type reportRecorder struct {
	reports map[int][]byte
}

func (r *reportRecorder) Log(index int, _ string, report []byte) {
	r.reports[index] = report
}

func TestIdempotentConnect(t *testing.T) {
	n := &notifyOnly{}
	loop := frame.NewLoop()
	m := padmanager.New(n, loop)
	require.NotNil(t, n.h)
	assert.False(t, m.Monitoring())

	var seen []*padmanager.Gamepad
	m.OnConnected().Add(func(g *padmanager.Gamepad) { seen = append(seen, g) })

	d := th.StandardDescriptor(0, "Xbox 360 Controller")
	n.h.GamepadConnected(d)
	n.h.GamepadConnected(d.Clone())

	assert.Len(t, seen, 1)
	assert.Len(t, m.Gamepads(), 1)
	assert.True(t, m.Monitoring())
	assert.True(t, m.HasConnected())
}

func TestLateSubscriptionReplay(t *testing.T) {
	bus := virtual.New(virtual.Capabilities{Enumerate: true, Notify: true})
	bus.Attach("Xbox 360 Controller")
	bus.Attach("054c-05c4")
	bus.Attach("Unknown Device")

	loop := frame.NewLoop()
	m := padmanager.New(bus.Platform(), loop)
	require.True(t, m.Monitoring())

	var seen []int
	m.OnConnected().Add(func(g *padmanager.Gamepad) { seen = append(seen, g.Index()) })
	assert.Equal(t, []int{0, 1, 2}, seen)

	loop.Step()
	loop.Step()
	assert.Equal(t, []int{0, 1, 2}, seen, "ticks must not re-emit known gamepads")

	bus.Attach("Unknown Device")
	assert.Equal(t, []int{0, 1, 2, 3}, seen)

	require.NoError(t, bus.Detach(1))
	var late []int
	m.OnConnected().Add(func(g *padmanager.Gamepad) { late = append(late, g.Index()) })
	assert.Equal(t, []int{0, 2, 3}, late, "disconnected gamepads are not replayed")
}

func TestDisconnectPreservesSlot(t *testing.T) {
	bus := virtual.New(virtual.Capabilities{Enumerate: true, Notify: true})
	require.NoError(t, bus.AttachDescriptor(th.StandardDescriptor(2, "Xbox 360 Wireless Receiver")))

	m := padmanager.New(bus.Platform(), frame.NewLoop())

	var disconnected []*padmanager.Gamepad
	m.OnDisconnected().Add(func(g *padmanager.Gamepad) { disconnected = append(disconnected, g) })

	before, ok := m.Gamepad(2)
	require.True(t, ok)
	assert.Equal(t, pad.VariantXbox, before.Variant())

	require.NoError(t, bus.Detach(2))
	require.Len(t, disconnected, 1)
	assert.Same(t, before, disconnected[0])
	assert.False(t, before.Connected())
	assert.Len(t, m.Gamepads(), 1, "disconnected entries stay in the table")

	require.NoError(t, bus.AttachDescriptor(th.StandardDescriptor(2, "Unknown Device")))
	after, ok := m.Gamepad(2)
	require.True(t, ok)
	assert.Same(t, before, after)
	assert.True(t, after.Connected())
	assert.Equal(t, pad.VariantXbox, after.Variant(), "classification is not recomputed")
	assert.Equal(t, "Unknown Device", after.Descriptor().ID, "descriptor is replaced")
}

func TestDisconnectUnknownIndex(t *testing.T) {
	n := &notifyOnly{}
	m := padmanager.New(n, frame.NewLoop())
	called := false
	m.OnDisconnected().Add(func(*padmanager.Gamepad) { called = true })
	n.h.GamepadDisconnected(4)
	assert.False(t, called)
	assert.Empty(t, m.Gamepads())
}

func TestClassificationThroughManager(t *testing.T) {
	ids := []string{"Xbox 360 Wireless Receiver", "054c-0268", "054c-0ce6", "Unknown Device", "Xbox One Wireless"}
	p := &enumOnly{}
	for i, id := range ids {
		p.descs = append(p.descs, th.StandardDescriptor(i, id))
	}
	m := padmanager.New(p, frame.NewLoop())

	want := []pad.Variant{pad.VariantXbox, pad.VariantDualShock, pad.VariantGeneric, pad.VariantGeneric, pad.VariantXbox}
	got := make([]pad.Variant, 0, len(ids))
	for _, g := range m.Gamepads() {
		got = append(got, g.Variant())
	}
	assert.Equal(t, want, got)

	g, ok := m.Gamepad(4)
	require.True(t, ok)
	x, ok := g.Typed().(*xbox360.Xbox360)
	require.True(t, ok)
	assert.True(t, x.IsXboxOne())
}

func TestPollingIsolation(t *testing.T) {
	f := th.NewMockFactory(t, pad.VariantGeneric)
	p := &enumOnly{descs: []*pad.Descriptor{
		th.StandardDescriptor(0, "device A"),
		th.StandardDescriptor(1, "device B"),
	}}
	logger, logs := th.NewLogCapture(t)
	loop := frame.NewLoop()

	m := padmanager.New(p, loop, padmanager.WithLogger(logger), padmanager.WithFactory(pad.VariantGeneric, f.Factory()))
	require.True(t, m.Monitoring())

	a, b := f.Created[0], f.Created[1]
	require.NotNil(t, a)
	require.NotNil(t, b)
	a.Err = errors.New("read failed")
	b.Err = nil

	loop.Step()
	assert.Equal(t, 2, a.Updates)
	assert.Equal(t, 2, b.Updates, "B is refreshed on the tick A fails")
	assert.Equal(t, 1, loop.Pending(), "the next tick is still scheduled")

	loop.Step()
	loop.Step()
	assert.Equal(t, 4, b.Updates)
	assert.Equal(t, 1, logs.Count(slog.LevelWarn, "error updating gamepad"))
	assert.Equal(t, 1, logs.Count(slog.LevelWarn, "device A"))
	assert.Equal(t, 0, logs.Count(slog.LevelWarn, "device B"))
}

func TestPanickingUpdateIsContained(t *testing.T) {
	f := th.NewMockFactory(t, pad.VariantGeneric)
	p := &enumOnly{descs: []*pad.Descriptor{th.StandardDescriptor(0, "panicky"), th.StandardDescriptor(1, "fine")}}
	logger, logs := th.NewLogCapture(t)
	loop := frame.NewLoop()

	m := padmanager.New(p, loop, padmanager.WithLogger(logger), padmanager.WithFactory(pad.VariantGeneric, f.Factory()))
	f.Created[0].Panic = "boom"

	assert.NotPanics(t, func() {
		loop.Step()
		loop.Step()
	})
	assert.Equal(t, 3, f.Created[1].Updates)
	assert.Equal(t, 1, logs.Count(slog.LevelWarn, "panicky"))
	assert.True(t, m.Monitoring())
}

func TestLogSuppressionPerIndex(t *testing.T) {
	f := th.NewMockFactory(t, pad.VariantGeneric)
	p := &enumOnly{descs: []*pad.Descriptor{th.StandardDescriptor(0, "a"), th.StandardDescriptor(1, "b")}}
	logger, logs := th.NewLogCapture(t)
	loop := frame.NewLoop()

	padmanager.New(p, loop, padmanager.WithLogger(logger), padmanager.WithFactory(pad.VariantGeneric, f.Factory()))
	f.Created[0].Err = errors.New("fail")
	f.Created[1].Err = errors.New("fail")

	for range 5 {
		loop.Step()
	}
	assert.Len(t, logs.Records(slog.LevelWarn), 2, "one warning per failing device")
}

func TestDisposalCompleteness(t *testing.T) {
	bus := virtual.New(virtual.Capabilities{Enumerate: true, Notify: true})
	bus.Attach("Unknown Device")
	bus.Attach("Unknown Device")

	f := th.NewMockFactory(t, pad.VariantGeneric)
	loop := frame.NewLoop()
	m := padmanager.New(bus.Platform(), loop, padmanager.WithFactory(pad.VariantGeneric, f.Factory()))
	m.OnConnected().Add(func(*padmanager.Gamepad) {})
	m.OnDisconnected().Add(func(*padmanager.Gamepad) {})
	require.Equal(t, 1, bus.Watchers())

	m.Dispose()
	assert.Empty(t, m.Gamepads())
	assert.Equal(t, 0, m.OnConnected().Len())
	assert.Equal(t, 0, m.OnDisconnected().Len())
	assert.False(t, m.Monitoring())
	assert.False(t, m.HasConnected())
	assert.Equal(t, 0, bus.Watchers())
	assert.Equal(t, 1, f.Created[0].Disposed)
	assert.Equal(t, 1, f.Created[1].Disposed)

	assert.NotPanics(t, m.Dispose)

	loop.Step()
	assert.Empty(t, m.Gamepads(), "a tick queued before disposal must not repopulate the table")
	assert.Equal(t, 0, loop.Pending())
}

func TestDisposeWithoutPlatform(t *testing.T) {
	m := padmanager.New(nil, nil)
	assert.False(t, m.Monitoring())
	assert.NotPanics(t, func() {
		m.Dispose()
		m.Dispose()
	})
}

func TestStartupCorners(t *testing.T) {
	t.Run("no capabilities stays idle", func(t *testing.T) {
		loop := frame.NewLoop()
		m := padmanager.New(struct{}{}, loop)
		assert.False(t, m.Monitoring())
		assert.Equal(t, 0, loop.Pending())
	})

	t.Run("enumerate only polls for discovery", func(t *testing.T) {
		p := &enumOnly{}
		loop := frame.NewLoop()
		m := padmanager.New(p, loop)
		assert.True(t, m.Monitoring(), "polling discovers controllers without notifications")
		assert.False(t, m.HasConnected())

		var seen []int
		m.OnConnected().Add(func(g *padmanager.Gamepad) { seen = append(seen, g.Index()) })
		p.descs = []*pad.Descriptor{th.StandardDescriptor(3, "Unknown Device")}
		loop.Step()
		assert.Equal(t, []int{3}, seen)
	})

	t.Run("enumerate and notify with nothing attached waits", func(t *testing.T) {
		p := &enumNotify{}
		loop := frame.NewLoop()
		m := padmanager.New(p, loop)
		assert.False(t, m.Monitoring())
		assert.Equal(t, 0, loop.Pending())

		p.descs = []*pad.Descriptor{th.StandardDescriptor(0, "Unknown Device")}
		p.h.GamepadConnected(p.descs[0].Clone())
		assert.True(t, m.Monitoring())
		assert.Equal(t, 1, loop.Pending())
	})

	t.Run("enumerate and notify with attached pads polls", func(t *testing.T) {
		p := &enumNotify{descs: []*pad.Descriptor{th.StandardDescriptor(0, "Unknown Device")}}
		m := padmanager.New(p, frame.NewLoop())
		assert.True(t, m.Monitoring())
		assert.NotNil(t, p.h)
	})

	t.Run("watch failure falls back to polling", func(t *testing.T) {
		p := &enumNotify{notifyOnly: notifyOnly{err: errors.New("no inotify")}}
		logger, logs := th.NewLogCapture(t)
		m := padmanager.New(p, frame.NewLoop(), padmanager.WithLogger(logger))
		assert.True(t, m.Monitoring())
		assert.Equal(t, 1, logs.Count(slog.LevelWarn, "no inotify"))
	})
}

func TestPollingReconnectsFlaggedGamepad(t *testing.T) {
	p := &enumNotify{descs: []*pad.Descriptor{th.StandardDescriptor(0, "Unknown Device")}}
	loop := frame.NewLoop()
	m := padmanager.New(p, loop)

	connects := 0
	m.OnConnected().Add(func(*padmanager.Gamepad) { connects++ })
	require.Equal(t, 1, connects)

	p.h.GamepadDisconnected(0)
	g, _ := m.Gamepad(0)
	require.False(t, g.Connected())

	p.descs[0].Axes[0] = 0.5
	loop.Step()
	assert.True(t, g.Connected(), "a gamepad still enumerated is marked connected again")
	assert.Equal(t, 2, connects)
	assert.Equal(t, 0.5, g.Descriptor().Axis(0), "the fresh descriptor replaces the old one")
}

func TestStopMonitoring(t *testing.T) {
	p := &enumNotify{descs: []*pad.Descriptor{th.StandardDescriptor(0, "Unknown Device")}}
	f := th.NewMockFactory(t, pad.VariantGeneric)
	loop := frame.NewLoop()
	m := padmanager.New(p, loop, padmanager.WithFactory(pad.VariantGeneric, f.Factory()))
	require.Equal(t, 1, loop.Pending())

	m.StopMonitoring()
	loop.Step()
	assert.Equal(t, 2, f.Created[0].Updates, "the scheduled tick still runs once")
	assert.Equal(t, 0, loop.Pending())

	loop.Step()
	assert.Equal(t, 2, f.Created[0].Updates)
}

func TestRestartDoesNotDoubleLoop(t *testing.T) {
	p := &enumNotify{descs: []*pad.Descriptor{th.StandardDescriptor(0, "Unknown Device")}}
	f := th.NewMockFactory(t, pad.VariantGeneric)
	loop := frame.NewLoop()
	m := padmanager.New(p, loop, padmanager.WithFactory(pad.VariantGeneric, f.Factory()))

	m.StopMonitoring()
	p.h.GamepadConnected(th.StandardDescriptor(1, "Unknown Device"))
	require.True(t, m.Monitoring())
	assert.Equal(t, 2, loop.Pending())

	loop.Step()
	assert.Equal(t, 1, loop.Pending(), "the stale tick from the stopped loop is dropped")
}

func TestEnumerateErrorLoggedOnce(t *testing.T) {
	p := &enumOnly{err: errors.New("bus gone")}
	logger, logs := th.NewLogCapture(t)
	loop := frame.NewLoop()
	m := padmanager.New(p, loop, padmanager.WithLogger(logger))
	loop.Step()
	loop.Step()
	assert.True(t, m.Monitoring())
	assert.Equal(t, 1, logs.Count(slog.LevelWarn, "bus gone"))
}

func TestGamepadByVariant(t *testing.T) {
	p := &enumOnly{descs: []*pad.Descriptor{
		th.StandardDescriptor(5, "054c-05c4"),
		th.StandardDescriptor(1, "Unknown Device"),
		th.StandardDescriptor(3, "054c-09cc"),
	}}
	m := padmanager.New(p, frame.NewLoop())

	g, ok := m.GamepadByVariant(pad.VariantDualShock)
	require.True(t, ok)
	assert.Equal(t, 3, g.Index())

	_, ok = m.GamepadByVariant(pad.VariantXbox)
	assert.False(t, ok)

	indices := []int{}
	for _, g := range m.Gamepads() {
		indices = append(indices, g.Index())
	}
	assert.Equal(t, []int{1, 3, 5}, indices)
}

func TestReportLogger(t *testing.T) {
	d := th.StandardDescriptor(0, "Xbox 360 Controller")
	d.Buttons[pad.StdButtonSouth] = pad.Button{Pressed: true, Value: 1}
	p := &enumOnly{descs: []*pad.Descriptor{d, th.StandardDescriptor(1, "Unknown Device")}}
	rec := &reportRecorder{reports: map[int][]byte{}}

	padmanager.New(p, frame.NewLoop(), padmanager.WithReportLogger(rec))

	require.Contains(t, rec.reports, 0)
	assert.Len(t, rec.reports[0], 20)
	assert.Equal(t, byte(0x10), rec.reports[0][3])
	assert.NotContains(t, rec.reports, 1, "generic pads have no report")
}

func TestFallbackWithoutFactory(t *testing.T) {
	p := &enumOnly{descs: []*pad.Descriptor{th.StandardDescriptor(0, "Unknown Device")}}
	m := padmanager.New(p, frame.NewLoop(), padmanager.WithFactory(pad.VariantGeneric, func(string, int, *pad.Descriptor, bool) pad.Controller {
		return nil
	}))
	g, ok := m.Gamepad(0)
	require.True(t, ok)
	_, isBase := g.Typed().(*pad.Base)
	assert.True(t, isBase)
}
