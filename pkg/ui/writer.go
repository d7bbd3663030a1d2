package ui

import (
	"io"
	"sync"
	"sync/atomic"
)

// ConditionalWriter forwards writes to the underlying writer only while
// enabled. It is safe for concurrent use.
type ConditionalWriter struct {
	mu      sync.Mutex
	writer  io.Writer
	enabled atomic.Bool
}

// NewConditionalWriter creates a writer that only writes when enabled.
func NewConditionalWriter(writer io.Writer, enabled bool) *ConditionalWriter {
	w := &ConditionalWriter{writer: writer}
	w.enabled.Store(enabled)

	return w
}

// Write implements io.Writer. Disabled writes are discarded but reported as
// successful.
func (w *ConditionalWriter) Write(p []byte) (int, error) {
	if !w.enabled.Load() {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writer.Write(p)
}

// SetEnabled enables or disables writing.
func (w *ConditionalWriter) SetEnabled(enabled bool) {
	w.enabled.Store(enabled)
}
