// Package eventlog provides the append-only event log behind eventstream.
//
// A Log stores records strictly in append order and replays them in the same
// order through a forward-only Iterator:
//
//	log, err := eventlog.OpenFileLog("events.log")
//	if err != nil {
//		return err
//	}
//	defer log.Close()
//
//	err = log.Append(ctx, eventlog.Record{Type: "heartbeat", Payload: map[string]any{"status": "ok"}})
//
//	it, err := log.Load(ctx)
//	if err != nil {
//		return err
//	}
//	defer it.Close()
//	for it.Next() {
//		rec := it.Record()
//		// ...
//	}
//	if err := it.Err(); err != nil {
//		// *CorruptRecordError or *PersistenceError
//	}
//
// # Record Format
//
// Every backend stores the same JSON encoding, one object per record:
//
//	{"type":"vulnerability","payload":{"id":1},"timestamp":"2024-05-01T10:00:00.123456789Z","id":"..."}
//
// The file backend writes one record per line ("\n" terminated, UTF-8) with no
// header, trailer, or checksum. The log is never rewritten in place. The only
// exception is a failed append, whose partial tail is truncated away before the
// error is returned.
//
// # Concurrency
//
// Append takes an exclusive lock and returns only after the record is flushed.
// Load takes the shared lock just long enough to snapshot the committed length;
// the returned Iterator reads up to that snapshot, so appends may continue while
// a replay is in progress and the replay never observes a torn record.
//
// # Corruption
//
// A record that cannot be decoded stops iteration with a *CorruptRecordError
// naming its position. Corrupt records are never skipped. Blank lines and a
// final line without its newline terminator count as corruption.
//
// # Backends
//
//   - FileLog: newline-delimited JSON file (the default)
//   - MemoryLog: in-process buffer for tests and ephemeral use
//   - SQLiteLog: pure Go SQLite database (modernc.org/sqlite)
//   - RedisLog: Redis list, one element per record
package eventlog
