// Package frame provides the "run once on the next frame" scheduling used to
// pace gamepad polling against a host loop.
package frame

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the frame interval used by Run when none is given (60 fps).
const DefaultInterval = time.Second / 60

// Scheduler runs a callback once on the next frame.
type Scheduler interface {
	NextFrame(fn func())
}

// Loop is a Scheduler driven by explicit Step calls from the host loop.
// NextFrame may be called from any goroutine; callbacks always run on the
// goroutine calling Step.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	frames  uint64
	stepMu  sync.Mutex
	stopped bool
}

// NewLoop returns an empty Loop.
func NewLoop() *Loop {
	return &Loop{}
}

// NextFrame queues fn for the next Step. Calls after Close are dropped.
func (l *Loop) NextFrame(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.queue = append(l.queue, fn)
}

// Step runs every callback queued before Step was called, in order.
// Callbacks queued while stepping run on the following Step.
func (l *Loop) Step() {
	l.stepMu.Lock()
	defer l.stepMu.Unlock()

	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.frames++
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Frames returns the number of completed or in-progress steps.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Close drops pending callbacks and rejects new ones.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.queue = nil
}

// Run steps l every interval until ctx is done. onFrame, if not nil, runs on
// the same goroutine after each step.
func (l *Loop) Run(ctx context.Context, interval time.Duration, onFrame func()) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Step()
			if onFrame != nil {
				onFrame()
			}
		}
	}
}
