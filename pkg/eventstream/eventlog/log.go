package eventlog

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/randalmurphal/eventstream/pkg/eventstream/config"
)

// Backend names used in errors and configuration.
const (
	BackendFile   = config.BackendFile
	BackendMemory = config.BackendMemory
	BackendSQLite = config.BackendSQLite
	BackendRedis  = config.BackendRedis
)

// Log is an append-only, sequentially replayable event store.
// Implementations must be safe for concurrent use.
type Log interface {
	// Append persists one record atomically. It returns only after the record
	// is committed to the backing store. A zero Timestamp is set to the current
	// UTC time. I/O failures are returned as *PersistenceError.
	Append(ctx context.Context, rec Record) error

	// Load returns an iterator over every record committed before the call,
	// in append order. It does not modify the store. Failure to open the store
	// is returned as *PersistenceError.
	Load(ctx context.Context) (Iterator, error)

	// Close releases the backing store. Further calls fail with ErrLogClosed.
	Close() error
}

// Iterator is a lazy, finite, forward-only sequence of records.
//
//	for it.Next() {
//		rec := it.Record()
//	}
//	err := it.Err()
type Iterator interface {
	// Next advances to the next record. It returns false at the end of the
	// sequence or on the first error.
	Next() bool

	// Record returns the current record. Valid only after Next returned true.
	Record() Record

	// Err returns the error that stopped iteration, or nil at a clean end.
	Err() error

	// Close releases resources held by the iterator. Safe to call more than once.
	Close() error
}

// lineIterator reads newline-delimited records from a bounded reader.
type lineIterator struct {
	ctx     context.Context
	backend string
	r       *bufio.Reader
	closer  io.Closer

	pos    int
	offset int64
	cur    Record
	err    error
	done   bool
}

func newLineIterator(ctx context.Context, backend string, r io.Reader, closer io.Closer) *lineIterator {
	return &lineIterator{
		ctx:     ctx,
		backend: backend,
		r:       bufio.NewReader(r),
		closer:  closer,
	}
}

func (it *lineIterator) Next() bool {
	if it.done {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		return it.fail(err)
	}

	line, err := it.r.ReadBytes('\n')
	if len(line) == 0 && errors.Is(err, io.EOF) {
		it.done = true
		return false
	}

	start := it.offset
	it.offset += int64(len(line))
	it.pos++

	switch {
	case errors.Is(err, io.EOF):
		return it.fail(&CorruptRecordError{Position: it.pos, Offset: start, Err: ErrTruncatedRecord})
	case err != nil:
		return it.fail(persistErr("load", it.backend, err))
	}

	rec, err := Decode(line)
	if err != nil {
		return it.fail(&CorruptRecordError{Position: it.pos, Offset: start, Err: err})
	}
	it.cur = rec
	return true
}

func (it *lineIterator) fail(err error) bool {
	it.err = err
	it.done = true
	it.cur = Record{}
	return false
}

func (it *lineIterator) Record() Record {
	return it.cur
}

func (it *lineIterator) Err() error {
	return it.err
}

func (it *lineIterator) Close() error {
	it.done = true
	if it.closer == nil {
		return nil
	}
	c := it.closer
	it.closer = nil
	return c.Close()
}

// Collect drains an iterator into a slice and closes it.
// On error the records read before the failure are returned alongside it.
func Collect(it Iterator) ([]Record, error) {
	defer it.Close()

	var recs []Record
	for it.Next() {
		recs = append(recs, it.Record())
	}
	return recs, it.Err()
}
