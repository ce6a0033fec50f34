package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventstream/pkg/eventstream/config"
)

// TestNew verifies Config creation from maps.
func TestNew(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"nil map", nil},
		{"empty map", map[string]any{}},
		{"with values", map[string]any{"key": "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.NotNil(t, cfg.Raw())
		})
	}
}

// TestString verifies string extraction with defaults.
func TestString(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal string
		want       string
	}{
		{"key exists", map[string]any{"backend": "sqlite"}, "backend", "file", "sqlite"},
		{"key missing", map[string]any{"other": "value"}, "backend", "file", "file"},
		{"empty string", map[string]any{"backend": ""}, "backend", "file", ""},
		{"wrong type int", map[string]any{"backend": 123}, "backend", "file", "file"},
		{"nil map", nil, "backend", "file", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).String(tt.key, tt.defaultVal))
		})
	}
}

// TestDuration verifies duration extraction with various input types.
func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want time.Duration
	}{
		{"string", "250ms", 250 * time.Millisecond},
		{"invalid string", "soon", time.Second},
		{"float seconds", 1.5, 1500 * time.Millisecond},
		{"int seconds", 2, 2 * time.Second},
		{"int64 seconds", int64(3), 3 * time.Second},
		{"duration", 5 * time.Millisecond, 5 * time.Millisecond},
		{"wrong type", true, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"backoff": tt.val})
			assert.Equal(t, tt.want, cfg.Duration("backoff", time.Second))
		})
	}

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, time.Second, config.New(nil).Duration("backoff", time.Second))
	})
}

// TestInt verifies integer extraction.
func TestInt(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want int
	}{
		{"int", 3, 3},
		{"int64", int64(4), 4},
		{"whole float", 5.0, 5},
		{"fractional float", 5.5, 1},
		{"string", "5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"n": tt.val})
			assert.Equal(t, tt.want, cfg.Int("n", 1))
		})
	}
}

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte("backend: sqlite\npath: /var/lib/events.db\nappend_attempts: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.String("backend", ""))
	assert.Equal(t, 3, cfg.Int("append_attempts", 0))

	_, err = config.FromYAML([]byte("backend: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"backend":"memory","append_attempts":2}`))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.String("backend", ""))
	assert.Equal(t, 2, cfg.Int("append_attempts", 0))

	_, err = config.FromJSON([]byte(`{`))
	assert.ErrorContains(t, err, "parse json")
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"yaml", "c.yaml", "backend: redis\n", ""},
		{"yml", "c.yml", "backend: redis\n", ""},
		{"json", "c.json", `{"backend":"redis"}`, ""},
		{"upper case extension", "c.YAML", "backend: redis\n", ""},
		{"unsupported", "c.toml", `backend = "redis"`, "unsupported config file extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := config.FromFile(path)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "redis", cfg.String("backend", ""))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
