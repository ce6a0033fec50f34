package eventlog

import (
	"bytes"
	"context"
	"sync"
)

// MemoryLog is an in-memory log for testing.
// Records are stored in their encoded form, so Load returns fresh copies and
// exercises the same decoder as the file log. Data is lost when the process exits.
type MemoryLog struct {
	mu     sync.RWMutex
	buf    []byte
	count  int
	closed bool
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append implements Log.
func (m *MemoryLog) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := Encode(stamp(rec))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistErr("append", BackendMemory, ErrLogClosed)
	}

	m.buf = append(m.buf, line...)
	m.count++
	return nil
}

// Load implements Log.
func (m *MemoryLog) Load(ctx context.Context) (Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistErr("load", BackendMemory, ErrLogClosed)
	}

	// Committed bytes are never modified, so the prefix is a stable snapshot
	// even if a later append reallocates buf.
	snapshot := m.buf[:len(m.buf):len(m.buf)]
	return newLineIterator(ctx, BackendMemory, bytes.NewReader(snapshot), nil), nil
}

// Len returns the number of records appended.
func (m *MemoryLog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Close implements Log.
func (m *MemoryLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.buf = nil
	return nil
}

var _ Log = (*MemoryLog)(nil)
