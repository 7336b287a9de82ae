package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// ReportLogger writes one line per controller report.
type ReportLogger interface {
	Log(index int, id string, report []byte)
}

type reportLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewReport creates a ReportLogger. If w is nil, the logger discards everything
// and Enabled reports false for it.
func NewReport(w io.Writer) ReportLogger {
	return &reportLogger{w: w, now: time.Now}
}

// Enabled reports whether r writes anywhere. Callers use it to skip building
// reports nobody will see.
func Enabled(r ReportLogger) bool {
	if r == nil {
		return false
	}
	if rl, ok := r.(*reportLogger); ok {
		return rl.w != nil
	}
	return true
}

// Log emits a single line with timestamp, controller and hex dump.
func (r *reportLogger) Log(index int, id string, report []byte) {
	if len(report) == 0 || r.w == nil {
		return
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range report {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s pad %d (%s) report: %d bytes, hex: %s\n",
		r.now().Format("2006/01/02 15:04:05.000"),
		index,
		id,
		len(report),
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
