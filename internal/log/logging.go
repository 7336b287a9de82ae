// Package log provides helpers for creating a configured slog.Logger.
//
// When a log file path is not provided, logs are written to stdout for
// non-error levels and to stderr for errors. Per-frame controller reports
// are written by a ReportLogger at trace level or to a dedicated file.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace defines a custom slog level below Debug for per-frame output.
const LevelTrace slog.Level = -8

// Config is the logging section of the CLI.
type Config struct {
	Level      string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PADLINK_LOG_LEVEL"`
	File       string `help:"Also write logs to this file" env:"PADLINK_LOG_FILE"`
	Format     string `help:"Log line format" enum:"text,json" default:"text" env:"PADLINK_LOG_FORMAT"`
	ReportFile string `help:"Write per-frame controller reports to this file" env:"PADLINK_LOG_REPORT_FILE"`
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes only records whose level satisfies pass to h.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// SetupLogger builds a slog.Logger writing to the process stdout/stderr.
func SetupLogger(cfg Config) (*slog.Logger, []io.Closer, error) {
	return NewLogger(cfg, os.Stdout, os.Stderr)
}

// NewLogger builds a slog.Logger with console and optional file handlers.
// Without a log file, errors go to stderr and everything else to stdout.
func NewLogger(cfg Config, stdout, stderr io.Writer) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(cfg.Level)
	var handlers []slog.Handler

	if cfg.File == "" {
		handlers = append(handlers,
			LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: newHandler(cfg.Format, stdout, level)},
			LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: newHandler(cfg.Format, stderr, slog.LevelError)},
		)
		return slog.New(MultiHandler{hs: handlers}), nil, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handlers = append(handlers,
		newHandler(cfg.Format, stderr, level),
		newHandler(cfg.Format, f, level),
	)
	return slog.New(MultiHandler{hs: handlers}), []io.Closer{f}, nil
}

func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
