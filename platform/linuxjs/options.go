package linuxjs

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ErrUnsupported is returned on systems without the Linux joystick API.
var ErrUnsupported = errors.New("linux joystick API not available on this system")

const (
	defaultDevDir = "/dev/input"
	defaultSysDir = "/sys"

	openAttempts = 5
	openBackoff  = 200 * time.Millisecond
)

type config struct {
	logger *slog.Logger
	devDir string
	sysfs  fs.FS
}

// Option configures a Platform.
type Option func(*config)

// WithLogger sets the logger for device diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDevDir overrides the directory holding jsN nodes.
func WithDevDir(dir string) Option {
	return func(c *config) { c.devDir = dir }
}

// WithSysfs overrides the filesystem rooted at /sys used for metadata.
func WithSysfs(sysfs fs.FS) Option {
	return func(c *config) { c.sysfs = sysfs }
}

func newConfig(opts []Option) config {
	c := config{
		logger: slog.Default(),
		devDir: defaultDevDir,
		sysfs:  os.DirFS(defaultSysDir),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// fsEvent is one decoded struct inotify_event.
type fsEvent struct {
	Mask uint32
	Name string
}

const inotifyHeaderSize = 16

func parseInotify(buf []byte) []fsEvent {
	var out []fsEvent
	for off := 0; off+inotifyHeaderSize <= len(buf); {
		mask := binary.NativeEndian.Uint32(buf[off+4 : off+8])
		nameLen := int(binary.NativeEndian.Uint32(buf[off+12 : off+16]))
		start := off + inotifyHeaderSize
		end := start + nameLen
		if end > len(buf) {
			break
		}
		out = append(out, fsEvent{
			Mask: mask,
			Name: strings.TrimRight(string(buf[start:end]), "\x00"),
		})
		off = end
	}
	return out
}
