package testing

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/Alia5/padlink/pad"
)

// StandardDescriptor returns a neutral descriptor in the standard layout
// (4 axes, 18 buttons).
func StandardDescriptor(index int, id string) *pad.Descriptor {
	return &pad.Descriptor{
		Index:   index,
		ID:      id,
		Mapping: pad.MappingStandard,
		Axes:    make([]float64, 4),
		Buttons: make([]pad.Button, 18),
	}
}

// MockController is a controller whose Update result is controlled by the test.
type MockController struct {
	*pad.Base
	Err      error
	Panic    any
	Updates  int
	Disposed int
}

func (m *MockController) Update() error {
	m.Updates++
	if m.Panic != nil {
		panic(m.Panic)
	}
	return m.Err
}

func (m *MockController) Dispose() { m.Disposed++ }

// MockFactory records every controller it creates so tests can reach them by index.
type MockFactory struct {
	Variant pad.Variant
	Created map[int]*MockController
}

func NewMockFactory(t *testing.T, v pad.Variant) *MockFactory {
	t.Helper()
	return &MockFactory{Variant: v, Created: make(map[int]*MockController)}
}

func (f *MockFactory) Factory() pad.Factory {
	return func(id string, index int, d *pad.Descriptor, _ bool) pad.Controller {
		c := &MockController{Base: pad.NewBase(f.Variant, id, index, d)}
		f.Created[index] = c
		return c
	}
}

// LogRecord is one captured log entry.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogCapture is a slog.Handler that keeps every record in memory. Loggers
// derived with With share the records but not each other's attributes.
type LogCapture struct {
	store *logStore
	attrs []slog.Attr
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLogCapture returns a logger writing into the returned capture.
func NewLogCapture(t *testing.T) (*slog.Logger, *LogCapture) {
	t.Helper()
	c := &LogCapture{store: &logStore{}}
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Level: r.Level, Message: r.Message, Attrs: map[string]string{}}
	for _, a := range c.attrs {
		rec.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.String()
		return true
	})
	c.store.mu.Lock()
	c.store.records = append(c.store.records, rec)
	c.store.mu.Unlock()
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogCapture{store: c.store, attrs: append(slices.Clip(c.attrs), attrs...)}
}

func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns the captured entries at level or above.
func (c *LogCapture) Records(level slog.Level) []LogRecord {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	var out []LogRecord
	for _, r := range c.store.records {
		if r.Level >= level {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of entries at level whose message or attributes contain s.
func (c *LogCapture) Count(level slog.Level, s string) int {
	n := 0
	for _, r := range c.Records(level) {
		if r.Level != level {
			continue
		}
		if strings.Contains(r.Message, s) {
			n++
			continue
		}
		for _, v := range r.Attrs {
			if strings.Contains(v, s) {
				n++
				break
			}
		}
	}
	return n
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
