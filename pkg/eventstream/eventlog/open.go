package eventlog

import (
	"context"
	"fmt"

	"github.com/randalmurphal/eventstream/pkg/eventstream/config"
)

// Open creates the log selected by s.Backend.
func Open(ctx context.Context, s config.Settings) (Log, error) {
	switch s.Backend {
	case BackendFile:
		return OpenFileLog(s.Path)
	case BackendSQLite:
		return OpenSQLiteLog(s.Path)
	case BackendMemory:
		return NewMemoryLog(), nil
	case BackendRedis:
		return NewRedisLog(ctx, RedisOptions{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Key:      s.RedisKey,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
}
