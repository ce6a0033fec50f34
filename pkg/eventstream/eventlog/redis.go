package eventlog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/randalmurphal/eventstream/pkg/eventstream/retry"
)

// redisPageSize bounds how many list elements a Redis iterator fetches at once.
const redisPageSize = 256

// RedisOptions configures a RedisLog.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Key is the list holding the log. Default: "eventstream:log".
	Key string
}

// RedisLog persists records to a Redis list, one encoded record per element.
// Durability follows the server's persistence settings (AOF with
// appendfsync always gives the same guarantee as the file log).
type RedisLog struct {
	client *redis.Client
	key    string

	mu     sync.RWMutex
	closed bool
}

// NewRedisLog connects to Redis and verifies the connection.
func NewRedisLog(ctx context.Context, opts RedisOptions) (*RedisLog, error) {
	if opts.Key == "" {
		opts.Key = "eventstream:log"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, persistErr("open", BackendRedis, err)
	}

	return &RedisLog{client: client, key: opts.Key}, nil
}

// Append implements Log.
func (r *RedisLog) Append(ctx context.Context, rec Record) error {
	line, err := Encode(stamp(rec))
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return persistErr("append", BackendRedis, ErrLogClosed)
	}

	if err := r.client.RPush(ctx, r.key, line).Err(); err != nil {
		return redisErr("append", err)
	}
	return nil
}

// Load implements Log.
func (r *RedisLog) Load(ctx context.Context) (Iterator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistErr("load", BackendRedis, ErrLogClosed)
	}

	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return nil, redisErr("load", err)
	}

	return &redisIterator{ctx: ctx, log: r, total: n}, nil
}

// Close implements Log.
func (r *RedisLog) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return persistErr("close", BackendRedis, err)
	}
	return nil
}

// Error replies a server sends while it is briefly unavailable, such as
// during startup loading or a failover. The same command may succeed later.
var redisBusyReplies = []string{"LOADING ", "BUSY ", "TRYAGAIN ", "MASTERDOWN ", "CLUSTERDOWN "}

// redisErr wraps a command failure and marks it for retry.Do. Network errors
// are left for retry.Categorize to classify.
func redisErr(op string, err error) error {
	switch {
	case errors.Is(err, redis.ErrClosed):
		err = retry.Permanent(err)
	case isBusyReply(err):
		err = retry.Transient(err)
	}
	return persistErr(op, BackendRedis, err)
}

func isBusyReply(err error) bool {
	var rerr redis.Error
	if !errors.As(err, &rerr) {
		return false
	}
	msg := rerr.Error()
	for _, prefix := range redisBusyReplies {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// redisIterator reads list elements [0, total) page by page.
type redisIterator struct {
	ctx   context.Context
	log   *RedisLog
	total int64

	next int64
	page []string
	pos  int
	cur  Record
	err  error
	done bool
}

func (it *redisIterator) Next() bool {
	if it.done {
		return false
	}

	if len(it.page) == 0 {
		if it.next >= it.total {
			it.done = true
			return false
		}
		if err := it.fetch(); err != nil {
			return it.fail(err)
		}
		if len(it.page) == 0 {
			it.done = true
			return false
		}
	}

	line := it.page[0]
	it.page = it.page[1:]
	it.pos++

	rec, err := Decode([]byte(line))
	if err != nil {
		return it.fail(&CorruptRecordError{Position: it.pos, Offset: -1, Err: err})
	}
	it.cur = rec
	return true
}

func (it *redisIterator) fetch() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}

	stop := min(it.next+redisPageSize, it.total) - 1
	page, err := it.log.client.LRange(it.ctx, it.log.key, it.next, stop).Result()
	if err != nil {
		return redisErr("load", err)
	}
	it.next = stop + 1
	it.page = page
	return nil
}

func (it *redisIterator) fail(err error) bool {
	it.err = err
	it.done = true
	it.cur = Record{}
	return false
}

func (it *redisIterator) Record() Record {
	return it.cur
}

func (it *redisIterator) Err() error {
	return it.err
}

func (it *redisIterator) Close() error {
	it.done = true
	it.page = nil
	return nil
}

var _ Log = (*RedisLog)(nil)
