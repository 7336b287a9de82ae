//go:build linux

package linuxjs

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/pad"
)

type recorder struct {
	connected    []int
	disconnected []int
}

func (r *recorder) GamepadConnected(d *pad.Descriptor) { r.connected = append(r.connected, d.Index) }
func (r *recorder) GamepadDisconnected(index int)      { r.disconnected = append(r.disconnected, index) }

// fakeDevice puts an open handle on index 0 of p without a reader goroutine.
func fakeDevice(t *testing.T, p *Platform, dead bool) *device {
	t.Helper()
	f, err := os.Open(os.DevNull)
	require.NoError(t, err)
	d := &device{index: 0, node: "js0", file: f, done: make(chan struct{})}
	if dead {
		close(d.done)
	}
	p.mu.Lock()
	p.devices[0] = d
	p.mu.Unlock()
	return d
}

func watched(t *testing.T, dir string) (*Platform, *frame.Loop, *watcher, *recorder) {
	t.Helper()
	loop := frame.NewLoop()
	p := New(loop, WithDevDir(dir), WithSysfs(fstest.MapFS{}))
	t.Cleanup(func() { _ = p.Close() })
	rec := &recorder{}
	w := &watcher{p: p, h: rec}
	p.mu.Lock()
	p.watchers[w] = struct{}{}
	p.mu.Unlock()
	return p, loop, w, rec
}

func TestRescanDropAnnouncesDisconnect(t *testing.T) {
	dir := t.TempDir()
	// still listed, but no longer a joystick once the reader died
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js0"), nil, 0o644))
	p, loop, w, rec := watched(t, dir)
	fakeDevice(t, p, true)

	got, err := p.Gamepads()
	require.NoError(t, err)
	assert.Empty(t, got)

	// the inotify delete arrives after the rescan already dropped the device
	w.handle(fsEvent{Mask: unix.IN_DELETE, Name: "js0"})
	loop.Step()

	assert.Equal(t, []int{0}, rec.disconnected)
	assert.Empty(t, rec.connected)
}

func TestDeleteEventAnnouncesDisconnect(t *testing.T) {
	p, loop, w, rec := watched(t, t.TempDir())
	fakeDevice(t, p, false)

	w.handle(fsEvent{Mask: unix.IN_DELETE, Name: "js0"})
	w.handle(fsEvent{Mask: unix.IN_DELETE, Name: "js0"})
	w.handle(fsEvent{Mask: unix.IN_DELETE, Name: "event3"})
	loop.Step()

	assert.Equal(t, []int{0}, rec.disconnected, "one disconnect per dropped device")
	p.mu.Lock()
	assert.Empty(t, p.devices)
	p.mu.Unlock()
}

func TestStoppedWatcherStaysQuiet(t *testing.T) {
	p, loop, w, rec := watched(t, t.TempDir())
	fakeDevice(t, p, false)

	w.stop()
	p.remove(0)
	loop.Step()

	assert.Empty(t, rec.disconnected)
	p.mu.Lock()
	assert.Empty(t, p.watchers)
	p.mu.Unlock()
}
