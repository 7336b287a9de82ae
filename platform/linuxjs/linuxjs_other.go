//go:build !linux

package linuxjs

import (
	"github.com/Alia5/padlink/frame"
	"github.com/Alia5/padlink/pad"
)

// Platform is a stub on systems without /dev/input/js*. Enumeration always
// fails with ErrUnsupported.
type Platform struct {
	config
}

func New(_ frame.Scheduler, opts ...Option) *Platform {
	return &Platform{config: newConfig(opts)}
}

func (p *Platform) Gamepads() ([]*pad.Descriptor, error) {
	return nil, ErrUnsupported
}

func (p *Platform) Close() error { return nil }
