package eventlog_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
)

func TestSQLiteLog_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "events.db")

	log1, err := eventlog.OpenSQLiteLog(dbPath)
	require.NoError(t, err)
	require.NoError(t, log1.Append(ctx, eventlog.Record{Type: "a", ID: "1"}))
	require.NoError(t, log1.Close())

	log2, err := eventlog.OpenSQLiteLog(dbPath)
	require.NoError(t, err)
	defer log2.Close()
	require.NoError(t, log2.Append(ctx, eventlog.Record{Type: "b", ID: "2"}))

	recs := loadAll(t, log2)
	assert.Equal(t, []string{"a", "b"}, types(recs))
	assert.Equal(t, "1", recs[0].ID)
}

func TestSQLiteLog_InvalidPath(t *testing.T) {
	_, err := eventlog.OpenSQLiteLog("/nonexistent/path/events.db")

	var perr *eventlog.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, eventlog.BackendSQLite, perr.Backend)
}

func TestSQLiteLog_Memory(t *testing.T) {
	log, err := eventlog.OpenSQLiteLog(":memory:")
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append(context.Background(), eventlog.Record{Type: "a"}))
	assert.Len(t, loadAll(t, log), 1)
}

func TestSQLiteLog_PagesLargeLogs(t *testing.T) {
	ctx := context.Background()
	log, err := eventlog.OpenSQLiteLog(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer log.Close()

	const n = 600
	for i := 0; i < n; i++ {
		require.NoError(t, log.Append(ctx, eventlog.Record{Type: "tick", Payload: map[string]any{"n": i}}))
	}

	recs := loadAll(t, log)
	require.Len(t, recs, n)
	assert.Equal(t, json.Number("599"), recs[n-1].Payload["n"])
}

func TestSQLiteLog_AppendDuringIteration(t *testing.T) {
	ctx := context.Background()
	log, err := eventlog.OpenSQLiteLog(":memory:")
	require.NoError(t, err)
	defer log.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, log.Append(ctx, eventlog.Record{Type: "orig"}))
	}

	it, err := log.Load(ctx)
	require.NoError(t, err)
	defer it.Close()

	seen := 0
	for it.Next() {
		seen++
		require.NoError(t, log.Append(ctx, eventlog.Record{Type: "echo"}))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 3, seen)
	assert.Len(t, loadAll(t, log), 6)
}

func TestSQLiteLog_CorruptRow(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "events.db")

	log, err := eventlog.OpenSQLiteLog(dbPath)
	require.NoError(t, err)
	defer log.Close()
	require.NoError(t, log.Append(ctx, eventlog.Record{Type: "good"}))

	// Write a bad row behind the log's back.
	raw, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO events (type, payload, timestamp) VALUES ('bad', '{oops', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	require.NoError(t, log.Append(ctx, eventlog.Record{Type: "after"}))

	it, err := log.Load(ctx)
	require.NoError(t, err)
	recs, err := eventlog.Collect(it)

	assert.Equal(t, []string{"good"}, types(recs))
	var cerr *eventlog.CorruptRecordError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 2, cerr.Position)
	assert.Equal(t, int64(-1), cerr.Offset)
}
