// Package padmanager tracks connected gamepads for a frame driven host.
//
// A Manager classifies raw platform descriptors into typed controllers,
// keeps them keyed by platform index and refreshes every connected
// controller once per frame. All methods, platform notifications and
// ticks must run on the goroutine that drives the Scheduler.
package padmanager

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/observable"
	"github.com/Alia5/padlink/pad"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for update failures. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithFactory overrides the registered factory for variant v.
func WithFactory(v pad.Variant, f pad.Factory) Option {
	return func(m *Manager) { m.factories[v] = f }
}

// WithReportLogger traces the report of every refreshed controller that
// implements pad.ReportBuilder.
func WithReportLogger(r ReportLogger) Option {
	return func(m *Manager) { m.reports = r }
}

type Manager struct {
	logger    *slog.Logger
	sched     frame.Scheduler
	factories map[pad.Variant]pad.Factory
	reports   ReportLogger

	enumerator Enumerator
	notifier   Notifier
	stopWatch  func()

	gamepads     map[int]*Gamepad
	monitoring   bool
	generation   uint64
	oneConnected bool
	disposed     bool

	loggedErrors    map[int]struct{}
	loggedEnumerate bool

	onConnected    *observable.Observable[*Gamepad]
	onDisconnected *observable.Observable[*Gamepad]
}

// New creates a Manager for platform p. p may implement Enumerator, Notifier,
// both or neither; with neither the manager stays idle.
func New(p any, sched frame.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		logger:         slog.Default(),
		sched:          sched,
		factories:      make(map[pad.Variant]pad.Factory),
		gamepads:       make(map[int]*Gamepad),
		loggedErrors:   make(map[int]struct{}),
		onDisconnected: observable.New[*Gamepad](nil),
	}
	m.onConnected = observable.New(func(o *observable.Observer[*Gamepad]) {
		for _, g := range m.Gamepads() {
			if g.connected {
				m.onConnected.NotifyObserver(o, g)
			}
		}
	})
	for _, opt := range opts {
		opt(m)
	}

	if e, ok := p.(Enumerator); ok {
		m.enumerator = e
	}
	if n, ok := p.(Notifier); ok {
		m.notifier = n
	}

	if m.enumerator != nil {
		m.syncGamepads()
		if len(m.gamepads) > 0 {
			m.startMonitoring()
		}
	}

	if m.notifier != nil {
		stop, err := m.notifier.Watch(handler{m})
		if err != nil {
			m.logger.Warn("gamepad notifications unavailable, falling back to polling", "error", err)
			m.notifier = nil
		} else {
			m.stopWatch = stop
		}
	}

	if m.notifier == nil && m.enumerator != nil {
		m.startMonitoring()
	}
	return m
}

// OnConnected returns the connect stream. New observers first receive every
// currently connected gamepad, then live connects.
func (m *Manager) OnConnected() *observable.Observable[*Gamepad] {
	return m.onConnected
}

// OnDisconnected returns the disconnect stream.
func (m *Manager) OnDisconnected() *observable.Observable[*Gamepad] {
	return m.onDisconnected
}

// Gamepads returns every known gamepad, connected or not, by ascending index.
func (m *Manager) Gamepads() []*Gamepad {
	out := make([]*Gamepad, 0, len(m.gamepads))
	for _, g := range m.gamepads {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// Gamepad returns the gamepad at index.
func (m *Manager) Gamepad(index int) (*Gamepad, bool) {
	g, ok := m.gamepads[index]
	return g, ok
}

// GamepadByVariant returns the lowest indexed gamepad of variant v, connected or not.
func (m *Manager) GamepadByVariant(v pad.Variant) (*Gamepad, bool) {
	for _, g := range m.Gamepads() {
		if g.Variant() == v {
			return g, true
		}
	}
	return nil, false
}

// HasConnected reports whether any gamepad was ever created by this manager.
func (m *Manager) HasConnected() bool { return m.oneConnected }

// Monitoring reports whether the polling loop is running.
func (m *Manager) Monitoring() bool { return m.monitoring }

// StopMonitoring stops the polling loop. An already scheduled tick still runs
// once and does not reschedule.
func (m *Manager) StopMonitoring() {
	m.monitoring = false
}

// Dispose releases every controller and subscription. It is safe to call
// more than once.
func (m *Manager) Dispose() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	for _, g := range m.gamepads {
		g.Dispose()
	}
	m.onConnected.Clear()
	m.onDisconnected.Clear()
	m.oneConnected = false
	m.StopMonitoring()
	m.gamepads = make(map[int]*Gamepad)
	m.disposed = true
}

func (m *Manager) startMonitoring() {
	if m.monitoring || m.disposed {
		return
	}
	m.monitoring = true
	m.generation++
	m.tick(m.generation)
}

func (m *Manager) tick(gen uint64) {
	if m.disposed || gen != m.generation {
		return
	}

	if m.enumerator != nil {
		m.syncGamepads()
	}

	for _, g := range m.Gamepads() {
		if !g.connected {
			continue
		}
		if err := m.update(g); err != nil {
			if _, seen := m.loggedErrors[g.Index()]; !seen {
				m.logger.Warn("error updating gamepad", "id", g.ID(), "index", g.Index(), "variant", g.Variant(), "error", err)
				m.loggedErrors[g.Index()] = struct{}{}
			}
			continue
		}
		if m.reports != nil {
			if rb, ok := g.Controller.(pad.ReportBuilder); ok {
				m.reports.Log(g.Index(), g.ID(), rb.BuildReport())
			}
		}
	}

	if m.monitoring && m.sched != nil {
		m.sched.NextFrame(func() { m.tick(gen) })
	}
}

func (m *Manager) update(g *Gamepad) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return g.Update()
}

// syncGamepads reconciles the table with a fresh enumeration. Platforms may
// hand out new descriptor objects every poll, so known entries always get
// the latest one.
func (m *Manager) syncGamepads() {
	descs, err := m.enumerator.Gamepads()
	if err != nil {
		if !m.loggedEnumerate {
			m.logger.Warn("failed to enumerate gamepads", "error", err)
			m.loggedEnumerate = true
		}
		return
	}
	for _, d := range descs {
		if d == nil {
			continue
		}
		g, ok := m.gamepads[d.Index]
		if !ok {
			g = m.addGamepad(d)
			m.onConnected.Notify(g)
			continue
		}
		g.SetDescriptor(d)
		if !g.connected {
			g.connected = true
			m.onConnected.Notify(g)
		}
	}
}

func (m *Manager) addGamepad(d *pad.Descriptor) *Gamepad {
	m.oneConnected = true

	c := pad.Classify(d.ID)
	f, ok := m.factories[c.Variant]
	if !ok {
		f = pad.Lookup(c.Variant)
	}
	var ctrl pad.Controller
	if f != nil {
		ctrl = f(d.ID, d.Index, d, c.XboxOne)
	}
	if ctrl == nil {
		ctrl = pad.NewBase(c.Variant, d.ID, d.Index, d)
	}

	g := &Gamepad{Controller: ctrl, connected: true}
	m.gamepads[d.Index] = g
	return g
}

func (m *Manager) connect(d *pad.Descriptor) {
	if m.disposed || d == nil {
		return
	}
	g, ok := m.gamepads[d.Index]
	switch {
	case ok && g.connected:
		return
	case ok:
		g.SetDescriptor(d)
		g.connected = true
	default:
		g = m.addGamepad(d)
	}
	m.onConnected.Notify(g)
	m.startMonitoring()
}

func (m *Manager) disconnect(index int) {
	if m.disposed {
		return
	}
	g, ok := m.gamepads[index]
	if !ok {
		return
	}
	g.connected = false
	m.onDisconnected.Notify(g)
	g.Dispose()
}

type handler struct{ m *Manager }

func (h handler) GamepadConnected(d *pad.Descriptor) { h.m.connect(d) }
func (h handler) GamepadDisconnected(index int)      { h.m.disconnect(index) }
