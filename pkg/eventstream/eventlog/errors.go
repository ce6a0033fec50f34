package eventlog

import (
	"errors"
	"fmt"
)

// Sentinel errors for log operations.
var (
	// ErrLogClosed indicates the log has been closed.
	ErrLogClosed = errors.New("event log closed")

	// ErrEmptyType indicates a record without an event type.
	ErrEmptyType = errors.New("record type is empty")

	// ErrTruncatedRecord indicates the final record is missing its newline terminator.
	ErrTruncatedRecord = errors.New("record not newline terminated")

	// ErrBlankRecord indicates an empty line where a record was expected.
	ErrBlankRecord = errors.New("blank record")

	// ErrUnknownBackend indicates a backend name Open does not recognize.
	ErrUnknownBackend = errors.New("unknown log backend")
)

// PersistenceError wraps an I/O failure against the backing store.
type PersistenceError struct {
	// Op is the operation that failed ("open", "append", "load", "close").
	Op string
	// Backend names the store ("file", "sqlite", "redis", "memory").
	Backend string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("event log %s (%s): %v", e.Op, e.Backend, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CorruptRecordError reports a record that could not be decoded during Load.
// Iteration stops at the first corrupt record.
type CorruptRecordError struct {
	// Position is the 1-based index of the record in append order.
	Position int
	// Offset is the byte offset of the record start, or -1 when the backend has no byte addressing.
	Offset int64
	// Err is the decode failure.
	Err error
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("corrupt record %d at offset %d: %v", e.Position, e.Offset, e.Err)
	}
	return fmt.Sprintf("corrupt record %d: %v", e.Position, e.Err)
}

// Unwrap returns the decode failure.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

func persistErr(op, backend string, err error) error {
	return &PersistenceError{Op: op, Backend: backend, Err: err}
}
