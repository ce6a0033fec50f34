package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqlitePageSize bounds how many rows a SQLite iterator holds in memory.
const sqlitePageSize = 256

// SQLiteLog persists records to a SQLite database.
// It is suitable for single-process production use.
type SQLiteLog struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// OpenSQLiteLog opens or creates a SQLite event log.
// The path should be a file path (e.g., "./events.db") or ":memory:" for testing.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, persistErr("open", BackendSQLite, err)
	}

	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			payload TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, persistErr("open", BackendSQLite, err)
		}
	}

	return &SQLiteLog{db: db}, nil
}

// Append implements Log.
func (s *SQLiteLog) Append(ctx context.Context, rec Record) error {
	rec = stamp(rec)
	if rec.Type == "" {
		return ErrEmptyType
	}
	if rec.Payload == nil {
		rec.Payload = map[string]any{}
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistErr("append", BackendSQLite, ErrLogClosed)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (event_id, type, payload, timestamp)
		VALUES (?, ?, ?, ?)
	`, rec.ID, rec.Type, string(payload), rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return persistErr("append", BackendSQLite, err)
	}
	return nil
}

// Load implements Log.
func (s *SQLiteLog) Load(ctx context.Context) (Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, persistErr("load", BackendSQLite, ErrLogClosed)
	}

	var last int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&last); err != nil {
		return nil, persistErr("load", BackendSQLite, err)
	}

	return &sqliteIterator{ctx: ctx, log: s, last: last}, nil
}

// Close implements Log.
func (s *SQLiteLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return persistErr("close", BackendSQLite, err)
	}
	return nil
}

type sqliteRow struct {
	seq       int64
	id        string
	typ       string
	payload   string
	timestamp string
}

// sqliteIterator pages through rows up to the sequence snapshotted by Load.
// No connection is held between pages.
type sqliteIterator struct {
	ctx  context.Context
	log  *SQLiteLog
	last int64

	after int64
	page  []sqliteRow
	pos   int
	cur   Record
	err   error
	done  bool
}

func (it *sqliteIterator) Next() bool {
	if it.done {
		return false
	}

	if len(it.page) == 0 {
		if err := it.fetch(); err != nil {
			return it.fail(err)
		}
		if len(it.page) == 0 {
			it.done = true
			return false
		}
	}

	row := it.page[0]
	it.page = it.page[1:]
	it.after = row.seq
	it.pos++

	rec, err := row.record()
	if err != nil {
		return it.fail(&CorruptRecordError{Position: it.pos, Offset: -1, Err: err})
	}
	it.cur = rec
	return true
}

func (it *sqliteIterator) fetch() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}
	if it.after >= it.last {
		return nil
	}

	it.log.mu.RLock()
	defer it.log.mu.RUnlock()

	if it.log.closed {
		return persistErr("load", BackendSQLite, ErrLogClosed)
	}

	rows, err := it.log.db.QueryContext(it.ctx, `
		SELECT seq, event_id, type, payload, timestamp
		FROM events
		WHERE seq > ? AND seq <= ?
		ORDER BY seq
		LIMIT ?
	`, it.after, it.last, sqlitePageSize)
	if err != nil {
		return persistErr("load", BackendSQLite, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r sqliteRow
		if err := rows.Scan(&r.seq, &r.id, &r.typ, &r.payload, &r.timestamp); err != nil {
			return persistErr("load", BackendSQLite, err)
		}
		it.page = append(it.page, r)
	}
	if err := rows.Err(); err != nil {
		return persistErr("load", BackendSQLite, err)
	}
	return nil
}

func (r sqliteRow) record() (Record, error) {
	if r.typ == "" {
		return Record{}, ErrEmptyType
	}
	payload, err := decodePayload([]byte(r.payload))
	if err != nil {
		return Record{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, r.timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("decode timestamp: %w", err)
	}
	return Record{Type: r.typ, Payload: payload, Timestamp: ts, ID: r.id}, nil
}

func (it *sqliteIterator) fail(err error) bool {
	it.err = err
	it.done = true
	it.cur = Record{}
	return false
}

func (it *sqliteIterator) Record() Record {
	return it.cur
}

func (it *sqliteIterator) Err() error {
	return it.err
}

func (it *sqliteIterator) Close() error {
	it.done = true
	it.page = nil
	return nil
}

var _ Log = (*SQLiteLog)(nil)
