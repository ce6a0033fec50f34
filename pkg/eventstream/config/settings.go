package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names accepted in Settings.Backend.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Logger implementations accepted in Settings.Logger.
const (
	LoggerSlog = "slog"
	LoggerZap  = "zap"
)

// EnvPrefix prefixes every environment variable read by LoadSettings.
const EnvPrefix = "EVENTSTREAM_"

// Settings is the typed configuration for an eventstream process.
type Settings struct {
	// Backend selects the event log implementation.
	Backend string `env:"BACKEND"`
	// Path is the log file (file backend) or database file (sqlite backend).
	Path string `env:"PATH"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	RedisKey      string `env:"REDIS_KEY"`

	// Logger selects the reporter implementation: "slog" or "zap".
	Logger string `env:"LOGGER"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"LOG_FORMAT"`

	// MetricsAddr serves Prometheus metrics when non-empty (e.g. ":9090").
	MetricsAddr string `env:"METRICS_ADDR"`

	// AppendAttempts is the total number of append attempts for persistent sends.
	AppendAttempts int `env:"APPEND_ATTEMPTS"`
	// AppendBackoff is the initial delay between append attempts.
	AppendBackoff time.Duration `env:"APPEND_BACKOFF"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Backend:        BackendFile,
		Path:           "events.log",
		RedisAddr:      "localhost:6379",
		RedisKey:       "eventstream:log",
		Logger:         LoggerSlog,
		LogLevel:       "info",
		LogFormat:      "text",
		AppendAttempts: 1,
		AppendBackoff:  100 * time.Millisecond,
	}
}

// LoadSettings builds Settings from defaults, the optional file at path, and
// EVENTSTREAM_* environment variables, in that order of precedence.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	if path != "" {
		cfg, err := FromFile(path)
		if err != nil {
			return Settings{}, err
		}
		if err := checkKeys(cfg); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", path, err)
		}
		s = s.Merge(cfg)
	}

	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Merge returns a copy of s with every key present in cfg applied.
func (s Settings) Merge(cfg Config) Settings {
	s.Backend = cfg.String("backend", s.Backend)
	s.Path = cfg.String("path", s.Path)
	s.RedisAddr = cfg.String("redis_addr", s.RedisAddr)
	s.RedisPassword = cfg.String("redis_password", s.RedisPassword)
	s.RedisDB = cfg.Int("redis_db", s.RedisDB)
	s.RedisKey = cfg.String("redis_key", s.RedisKey)
	s.Logger = cfg.String("logger", s.Logger)
	s.LogLevel = cfg.String("log_level", s.LogLevel)
	s.LogFormat = cfg.String("log_format", s.LogFormat)
	s.MetricsAddr = cfg.String("metrics_addr", s.MetricsAddr)
	s.AppendAttempts = cfg.Int("append_attempts", s.AppendAttempts)
	s.AppendBackoff = cfg.Duration("append_backoff", s.AppendBackoff)
	return s
}

// settingKeys are the file keys Merge reads.
var settingKeys = []string{
	"backend", "path",
	"redis_addr", "redis_password", "redis_db", "redis_key",
	"logger", "log_level", "log_format",
	"metrics_addr",
	"append_attempts", "append_backoff",
}

// checkKeys rejects file keys Merge would silently ignore, such as typos.
func checkKeys(cfg Config) error {
	var unknown []string
	for _, key := range slices.Sorted(maps.Keys(cfg.Raw())) {
		if !slices.Contains(settingKeys, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Validate reports every invalid setting, joined.
func (s Settings) Validate() error {
	var errs []error

	switch s.Backend {
	case BackendFile, BackendSQLite:
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("backend %s requires a path", s.Backend))
		}
	case BackendRedis:
		if s.RedisAddr == "" {
			errs = append(errs, errors.New("backend redis requires redis_addr"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", s.Backend))
	}

	switch s.Logger {
	case LoggerSlog, LoggerZap:
	default:
		errs = append(errs, fmt.Errorf("unknown logger %q", s.Logger))
	}

	if _, err := s.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", s.LogFormat))
	}

	if s.AppendAttempts < 1 {
		errs = append(errs, fmt.Errorf("append_attempts must be at least 1, got %d", s.AppendAttempts))
	}
	if s.AppendBackoff < 0 {
		errs = append(errs, fmt.Errorf("append_backoff must not be negative, got %s", s.AppendBackoff))
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (s Settings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return level, nil
}
