// Package config loads eventstream settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Defaults (DefaultSettings)
//
//  2. A YAML or JSON file, flat keys:
//
//     backend: file
//     path: ./events.log
//     log_level: debug
//     append_attempts: 3
//     append_backoff: 200ms
//
//  3. EVENTSTREAM_* environment variables (EVENTSTREAM_BACKEND, EVENTSTREAM_PATH, ...)
//
// Config is the untyped layer underneath: a map with typed accessors that fall
// back to a default when a key is missing or has the wrong type.
//
//	cfg, err := config.FromFile("eventstream.yaml")
//	backend := cfg.String("backend", "file")
//	backoff := cfg.Duration("append_backoff", 100*time.Millisecond)
package config
