//go:build linux

package linuxjs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/padmanager"
)

const (
	iocRead = 2
	jsMagic = 'j'

	absCnt    = 0x40
	keyMapLen = 0x200
)

func ior(nr, size uintptr) uintptr {
	return iocRead<<30 | size<<16 | jsMagic<<8 | nr
}

var (
	jsiocgAxes    = ior(0x11, 1)
	jsiocgButtons = ior(0x12, 1)
	jsiocgAxMap   = ior(0x32, absCnt)
	jsiocgBtnMap  = ior(0x34, keyMapLen*2)
)

func jsiocgName(n int) uintptr { return ior(0x13, uintptr(n)) }

// Platform enumerates and watches /dev/input/js* nodes. It implements
// padmanager.Enumerator and padmanager.Notifier.
type Platform struct {
	config
	sched frame.Scheduler

	mu       sync.Mutex
	devices  map[int]*device
	skipped  map[string]struct{}
	watchers map[*watcher]struct{}
	closed   bool
}

// New creates a Platform. Notifications are posted through sched so they run
// on the goroutine driving the manager.
func New(sched frame.Scheduler, opts ...Option) *Platform {
	return &Platform{
		config:  newConfig(opts),
		sched:   sched,
		devices:  make(map[int]*device),
		skipped:  make(map[string]struct{}),
		watchers: make(map[*watcher]struct{}),
	}
}

// Gamepads rescans the device directory and returns a fresh descriptor for
// every open joystick, by ascending index.
func (p *Platform) Gamepads() ([]*pad.Descriptor, error) {
	if err := p.scan(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*pad.Descriptor, 0, len(p.devices))
	for _, d := range p.devices {
		out = append(out, d.descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (p *Platform) scan() error {
	entries, err := os.ReadDir(p.devDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.devDir, err)
	}

	seen := make(map[int]bool)
	for _, e := range entries {
		idx, err := nodeIndex(e.Name())
		if err != nil {
			continue
		}
		seen[idx] = true
		if _, _, err := p.ensure(e.Name(), 1); err != nil {
			p.skip(e.Name(), err)
		}
	}

	p.mu.Lock()
	var gone []int
	for idx, d := range p.devices {
		if !seen[idx] || d.dead() {
			d.close()
			delete(p.devices, idx)
			gone = append(gone, idx)
		}
	}
	p.mu.Unlock()
	p.disconnected(gone...)
	return nil
}

func (p *Platform) skip(node string, err error) {
	p.mu.Lock()
	_, seen := p.skipped[node]
	p.skipped[node] = struct{}{}
	p.mu.Unlock()
	if !seen {
		p.logger.Debug("skipping joystick node", "node", node, "error", err)
	}
}

// ensure opens node unless a live device already holds its index. created
// reports whether this call opened it.
func (p *Platform) ensure(node string, attempts int) (d *device, created bool, err error) {
	idx, err := nodeIndex(node)
	if err != nil {
		return nil, false, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, false, os.ErrClosed
	}
	if cur, ok := p.devices[idx]; ok && !cur.dead() {
		p.mu.Unlock()
		return cur, false, nil
	}
	p.mu.Unlock()

	d, err = p.openDevice(node, idx, attempts)
	if err != nil {
		return nil, false, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		d.close()
		return nil, false, os.ErrClosed
	}
	replaced := false
	if cur, ok := p.devices[idx]; ok {
		if !cur.dead() {
			p.mu.Unlock()
			d.close()
			return cur, false, nil
		}
		cur.close()
		replaced = true
	}
	p.devices[idx] = d
	delete(p.skipped, node)
	go d.read(p.logger)
	p.mu.Unlock()

	// The previous handle on this index died before anyone dropped it.
	if replaced {
		p.disconnected(idx)
	}
	return d, true, nil
}

// remove closes the device at idx, if one is open.
func (p *Platform) remove(idx int) {
	p.mu.Lock()
	d, ok := p.devices[idx]
	if ok {
		d.close()
		delete(p.devices, idx)
	}
	p.mu.Unlock()
	if ok {
		p.disconnected(idx)
	}
}

// disconnected tells every watcher about devices that left the table.
// Whichever path drops a device (rescan, inotify or reopen) announces it,
// exactly once.
func (p *Platform) disconnected(idxs ...int) {
	if len(idxs) == 0 {
		return
	}
	p.mu.Lock()
	ws := make([]*watcher, 0, len(p.watchers))
	for w := range p.watchers {
		ws = append(ws, w)
	}
	p.mu.Unlock()
	for _, w := range ws {
		for _, idx := range idxs {
			w.post(func() { w.h.GamepadDisconnected(idx) })
		}
	}
}

// Close releases every open device. Further enumeration returns no devices.
func (p *Platform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for idx, d := range p.devices {
		d.close()
		delete(p.devices, idx)
	}
	return nil
}

func (p *Platform) openDevice(node string, idx, attempts int) (*device, error) {
	f, err := openRetry(filepath.Join(p.devDir, node), attempts)
	if err != nil {
		return nil, err
	}
	l, name, err := queryLayout(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", node, err)
	}
	meta, err := readMetadata(p.sysfs, node)
	if err != nil {
		meta = metadata{Name: name}
	}
	return &device{
		index:  idx,
		node:   node,
		meta:   meta,
		layout: l,
		file:   f,
		st:     newState(l),
		done:   make(chan struct{}),
	}, nil
}

// openRetry retries permission errors, which udev produces while it is
// still fixing up a freshly created node.
func openRetry(path string, attempts int) (f *os.File, err error) {
	for i := 0; i < attempts; i++ {
		f, err = os.OpenFile(path, os.O_RDONLY, 0)
		if err == nil || !errors.Is(err, os.ErrPermission) {
			return f, err
		}
		if i < attempts-1 {
			time.Sleep(openBackoff)
		}
	}
	return nil, err
}

func queryLayout(f *os.File) (layout, string, error) {
	var (
		axes, buttons uint8
		axMap         [absCnt]uint8
		btnMap        [keyMapLen]uint16
		name          [128]byte
	)
	rc, err := f.SyscallConn()
	if err != nil {
		return layout{}, "", err
	}
	var ioErr error
	err = rc.Control(func(fd uintptr) {
		for _, q := range []struct {
			req uintptr
			ptr unsafe.Pointer
		}{
			{jsiocgAxes, unsafe.Pointer(&axes)},
			{jsiocgButtons, unsafe.Pointer(&buttons)},
			{jsiocgAxMap, unsafe.Pointer(&axMap[0])},
			{jsiocgBtnMap, unsafe.Pointer(&btnMap[0])},
			{jsiocgName(len(name)), unsafe.Pointer(&name[0])},
		} {
			if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, q.req, uintptr(q.ptr)); errno != 0 {
				ioErr = fmt.Errorf("ioctl %#x: %w", q.req, errno)
				return
			}
		}
	})
	if err != nil {
		return layout{}, "", err
	}
	if ioErr != nil {
		return layout{}, "", ioErr
	}

	if int(axes) > len(axMap) {
		axes = uint8(len(axMap))
	}
	l := layout{
		Axes:    append([]uint8(nil), axMap[:axes]...),
		Buttons: append([]uint16(nil), btnMap[:buttons]...),
	}
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return l, string(name[:n]), nil
}

type device struct {
	index  int
	node   string
	meta   metadata
	layout layout
	file   *os.File
	done   chan struct{}

	mu sync.Mutex
	st state
}

func (d *device) read(logger *slog.Logger) {
	defer close(d.done)
	buf := make([]byte, jsEventSize)
	for {
		if _, err := io.ReadFull(d.file, buf); err != nil {
			if !errors.Is(err, os.ErrClosed) {
				logger.Debug("joystick reader stopped", "node", d.node, "error", err)
			}
			return
		}
		e, _ := parseEvent(buf)
		d.mu.Lock()
		d.st.apply(e, time.Now())
		d.mu.Unlock()
	}
}

func (d *device) dead() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

func (d *device) close() { _ = d.file.Close() }

func (d *device) descriptor() *pad.Descriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return descriptor(d.index, d.meta.ID(), d.layout, d.st)
}

// Watch reports jsN nodes appearing and disappearing under the device
// directory. Callbacks are posted to the scheduler.
func (p *Platform) Watch(h padmanager.Handler) (func(), error) {
	if p.sched == nil {
		return nil, errors.New("linuxjs: watch requires a scheduler")
	}
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}
	if _, err := unix.InotifyAddWatch(fd, p.devDir, unix.IN_CREATE|unix.IN_ATTRIB|unix.IN_DELETE); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("inotify watch %s: %w", p.devDir, err)
	}

	w := &watcher{p: p, h: h, f: os.NewFile(uintptr(fd), "inotify")}
	p.mu.Lock()
	p.watchers[w] = struct{}{}
	p.mu.Unlock()
	go w.run()
	return w.stop, nil
}

type watcher struct {
	p       *Platform
	h       padmanager.Handler
	f       *os.File
	stopped atomic.Bool
}

func (w *watcher) stop() {
	if !w.stopped.CompareAndSwap(false, true) {
		return
	}
	w.p.mu.Lock()
	delete(w.p.watchers, w)
	w.p.mu.Unlock()
	if w.f != nil {
		_ = w.f.Close()
	}
}

func (w *watcher) run() {
	buf := make([]byte, 4096)
	for {
		n, err := w.f.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) {
				w.p.logger.Warn("joystick watcher stopped", "error", err)
			}
			return
		}
		for _, ev := range parseInotify(buf[:n]) {
			w.handle(ev)
		}
	}
}

func (w *watcher) handle(ev fsEvent) {
	idx, err := nodeIndex(ev.Name)
	if err != nil {
		return
	}
	switch {
	case ev.Mask&unix.IN_DELETE != 0:
		w.p.remove(idx)
	case ev.Mask&(unix.IN_CREATE|unix.IN_ATTRIB) != 0:
		go func() {
			d, created, err := w.p.ensure(ev.Name, openAttempts)
			if err != nil {
				w.p.skip(ev.Name, err)
				return
			}
			if created {
				w.post(func() { w.h.GamepadConnected(d.descriptor()) })
			}
		}()
	}
}

func (w *watcher) post(fn func()) {
	if w.stopped.Load() {
		return
	}
	w.p.sched.NextFrame(func() {
		if !w.stopped.Load() {
			fn()
		}
	})
}
