package eventlog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// FileLog persists records as newline-delimited JSON in a single file.
// It is suitable for single-process use; concurrent writers in other
// processes are not supported.
type FileLog struct {
	path string

	mu     sync.RWMutex
	f      *os.File
	size   int64 // committed length
	torn   int64 // bytes dropped from an unterminated tail at open
	closed bool
}

// OpenFileLog opens path for appending, creating the file if needed.
// A missing parent directory or permission problem is a *PersistenceError.
//
// A final line without a newline is the remains of an append that never
// returned, so it is truncated away before new records are written after it.
// TornTail reports when that happened.
func OpenFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, persistErr("open", BackendFile, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, persistErr("open", BackendFile, err)
	}

	size, err := committedSize(f, info.Size())
	if err == nil && size < info.Size() {
		err = f.Truncate(size)
		if err == nil {
			err = f.Sync()
		}
	}
	if err != nil {
		f.Close()
		return nil, persistErr("open", BackendFile, err)
	}

	return &FileLog{
		path: path,
		f:    f,
		size: size,
		torn: info.Size() - size,
	}, nil
}

// TornTail returns a *PersistenceError wrapping ErrTruncatedRecord when
// OpenFileLog dropped an unterminated final record, and nil otherwise.
func (l *FileLog) TornTail() error {
	if l.torn == 0 {
		return nil
	}
	return persistErr("open", BackendFile,
		fmt.Errorf("%s: dropped %d bytes of an interrupted append: %w", l.path, l.torn, ErrTruncatedRecord))
}

// committedSize returns the length of the file up to and including its last
// newline.
func committedSize(f *os.File, size int64) (int64, error) {
	buf := make([]byte, 4096)
	for end := size; end > 0; {
		start := max(end-int64(len(buf)), 0)
		chunk := buf[:end-start]
		if _, err := f.ReadAt(chunk, start); err != nil {
			return 0, err
		}
		if i := bytes.LastIndexByte(chunk, '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

// Append implements Log. The record is written with a single write call and
// fsynced before Append returns.
func (l *FileLog) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := Encode(stamp(rec))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return persistErr("append", BackendFile, ErrLogClosed)
	}

	n, err := l.f.Write(line)
	if err == nil && n != len(line) {
		err = io.ErrShortWrite
	}
	if err == nil {
		err = l.f.Sync()
	}
	if err != nil {
		// Drop whatever part of the record reached the file.
		if terr := l.f.Truncate(l.size); terr != nil {
			err = fmt.Errorf("%w (truncate after failed write: %v)", err, terr)
		}
		return persistErr("append", BackendFile, err)
	}

	l.size += int64(n)
	return nil
}

// Load implements Log.
func (l *FileLog) Load(ctx context.Context) (Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	closed, size := l.closed, l.size
	l.mu.RUnlock()

	if closed {
		return nil, persistErr("load", BackendFile, ErrLogClosed)
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, persistErr("load", BackendFile, err)
	}

	return newLineIterator(ctx, BackendFile, io.LimitReader(f, size), f), nil
}

// Close implements Log.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.f.Close(); err != nil {
		return persistErr("close", BackendFile, err)
	}
	return nil
}

// ReadFile opens the log at path read-only and returns an iterator over all of
// its records. Unlike OpenFileLog it never creates the file.
func ReadFile(ctx context.Context, path string) (Iterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, persistErr("load", BackendFile, err)
	}
	return newLineIterator(ctx, BackendFile, f, f), nil
}

var _ Log = (*FileLog)(nil)
