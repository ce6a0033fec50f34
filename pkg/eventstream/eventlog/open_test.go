package eventlog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventstream/pkg/eventstream/config"
	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend string
		path    string
		want    any
	}{
		{"file", config.BackendFile, filepath.Join(dir, "events.log"), &eventlog.FileLog{}},
		{"sqlite", config.BackendSQLite, filepath.Join(dir, "events.db"), &eventlog.SQLiteLog{}},
		{"memory", config.BackendMemory, "", &eventlog.MemoryLog{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			s.Backend = tt.backend
			s.Path = tt.path

			log, err := eventlog.Open(ctx, s)
			require.NoError(t, err)
			defer log.Close()
			assert.IsType(t, tt.want, log)
		})
	}

	t.Run("unknown backend", func(t *testing.T) {
		s := config.DefaultSettings()
		s.Backend = "kafka"

		_, err := eventlog.Open(ctx, s)
		assert.ErrorIs(t, err, eventlog.ErrUnknownBackend)
	})
}
