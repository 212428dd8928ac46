// Package monitoring reports command failures and panics to an external
// error tracker.
package monitoring

import (
	"sync"
	"time"
)

// Reporter sends errors and panics to an error tracker.
type Reporter interface {
	CaptureError(err error, tags map[string]string)
	// RecoverPanic must be deferred directly. It reports a panic and
	// re-panics.
	RecoverPanic()
	Flush(timeout time.Duration) bool
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) CaptureError(error, map[string]string) {}
func (NopReporter) RecoverPanic()                         {}
func (NopReporter) Flush(time.Duration) bool              { return true }

var (
	mu      sync.RWMutex
	current Reporter = NopReporter{}
)

// SetReporter replaces the process wide reporter. A nil reporter restores
// the no-op one.
func SetReporter(r Reporter) {
	mu.Lock()
	defer mu.Unlock()
	if r == nil {
		r = NopReporter{}
	}
	current = r
}

// Current returns the process wide reporter.
func Current() Reporter {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureError reports err with optional tags. Nil errors are ignored.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	Current().CaptureError(err, tags)
}

// Flush waits up to timeout for buffered reports to be sent.
func Flush(timeout time.Duration) bool {
	return Current().Flush(timeout)
}
