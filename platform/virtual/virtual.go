// Package virtual provides an in-memory gamepad platform with auto-assigned
// controller indices.
package virtual

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Alia5/padlink/pad"
	"github.com/Alia5/padlink/padmanager"
)

// ErrUnknownIndex is returned for operations on an index with no attached controller.
var ErrUnknownIndex = errors.New("no controller attached at index")

// Capabilities selects which platform features the virtual platform exposes.
type Capabilities struct {
	Enumerate bool `help:"Expose controller enumeration" default:"true"`
	Notify    bool `help:"Expose connect/disconnect notifications" default:"true"`
	// FailEnumerate makes every enumeration return an error.
	FailEnumerate bool `kong:"-"`
}

// Bus holds the attached virtual controllers.
type Bus struct {
	mu        sync.Mutex
	caps      Capabilities
	devices   map[int]*pad.Descriptor
	allocated map[int]bool
	handlers  map[int]padmanager.Handler
	nextWatch int
	now       func() time.Time
}

// New creates an empty Bus.
func New(caps Capabilities) *Bus {
	return &Bus{
		caps:      caps,
		devices:   make(map[int]*pad.Descriptor),
		allocated: make(map[int]bool),
		handlers:  make(map[int]padmanager.Handler),
		now:       time.Now,
	}
}

// Platform returns a value implementing exactly the enabled capabilities,
// suitable for padmanager.New.
func (b *Bus) Platform() any {
	switch {
	case b.caps.Enumerate && b.caps.Notify:
		return struct {
			enumerator
			notifier
		}{enumerator{b}, notifier{b}}
	case b.caps.Enumerate:
		return enumerator{b}
	case b.caps.Notify:
		return notifier{b}
	default:
		return struct{}{}
	}
}

// Attach connects a controller with the given id at the lowest free index,
// using the standard layout. Watchers are notified before Attach returns.
func (b *Bus) Attach(id string) int {
	b.mu.Lock()
	var index int
	for i := 0; ; i++ {
		if !b.allocated[i] {
			index = i
			b.allocated[i] = true
			break
		}
	}
	d := &pad.Descriptor{
		Index:     index,
		ID:        id,
		Mapping:   pad.MappingStandard,
		Axes:      make([]float64, 4),
		Buttons:   make([]pad.Button, 17),
		Timestamp: b.now(),
	}
	b.devices[index] = d
	handlers := b.handlerList()
	b.mu.Unlock()

	for _, h := range handlers {
		h.GamepadConnected(d.Clone())
	}
	return index
}

// AttachDescriptor connects a controller with an explicit descriptor. The
// index in d is used as is.
func (b *Bus) AttachDescriptor(d *pad.Descriptor) error {
	if d == nil {
		return errors.New("nil descriptor")
	}
	if d.Index < 0 {
		return fmt.Errorf("invalid index %d", d.Index)
	}
	b.mu.Lock()
	if b.allocated[d.Index] {
		b.mu.Unlock()
		return fmt.Errorf("index %d already allocated", d.Index)
	}
	b.allocated[d.Index] = true
	b.devices[d.Index] = d.Clone()
	handlers := b.handlerList()
	b.mu.Unlock()

	for _, h := range handlers {
		h.GamepadConnected(d.Clone())
	}
	return nil
}

// Detach disconnects the controller at index and frees the index.
func (b *Bus) Detach(index int) error {
	b.mu.Lock()
	if _, ok := b.devices[index]; !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownIndex, index)
	}
	delete(b.devices, index)
	delete(b.allocated, index)
	handlers := b.handlerList()
	b.mu.Unlock()

	for _, h := range handlers {
		h.GamepadDisconnected(index)
	}
	return nil
}

// Set edits the state of the controller at index.
func (b *Bus) Set(index int, edit func(d *pad.Descriptor)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[index]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownIndex, index)
	}
	edit(d)
	d.Timestamp = b.now()
	return nil
}

// Press sets the pressed state and value of button on the controller at index.
func (b *Bus) Press(index, button int, pressed bool) error {
	return b.Set(index, func(d *pad.Descriptor) {
		for len(d.Buttons) <= button {
			d.Buttons = append(d.Buttons, pad.Button{})
		}
		v := 0.0
		if pressed {
			v = 1
		}
		d.Buttons[button] = pad.Button{Pressed: pressed, Value: v}
	})
}

// Watchers returns the number of active watch subscriptions.
func (b *Bus) Watchers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

func (b *Bus) handlerList() []padmanager.Handler {
	out := make([]padmanager.Handler, 0, len(b.handlers))
	for i := 0; i < b.nextWatch; i++ {
		if h, ok := b.handlers[i]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (b *Bus) gamepads() ([]*pad.Descriptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.caps.FailEnumerate {
		return nil, errors.New("enumeration failed")
	}
	out := make([]*pad.Descriptor, 0, len(b.devices))
	for i := 0; len(out) < len(b.devices); i++ {
		if d, ok := b.devices[i]; ok {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (b *Bus) watch(h padmanager.Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextWatch
	b.nextWatch++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

type enumerator struct{ b *Bus }

func (e enumerator) Gamepads() ([]*pad.Descriptor, error) { return e.b.gamepads() }

type notifier struct{ b *Bus }

func (n notifier) Watch(h padmanager.Handler) (func(), error) { return n.b.watch(h) }
