package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
	"github.com/randalmurphal/eventstream/pkg/eventstream/retry"
)

// config holds the collaborators shared by Dispatcher, PersistentProducer,
// and Replayer. Each component reads only the fields it needs.
type config struct {
	reporter observability.Reporter
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	clock    func() time.Time
	newID    func() string
	retry    retry.RetryConfig
}

func defaultConfig() config {
	return config{
		reporter: observability.NewSlogReporter(nil),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		clock:    time.Now,
		newID:    func() string { return uuid.New().String() },
		retry:    retry.NoRetry,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Dispatcher, PersistentProducer, or Replayer.
// Options a component does not use are ignored.
type Option func(*config)

// WithReporter sets where absorbed failures are reported.
// Default: slog.Default() via observability.SlogReporter.
func WithReporter(r observability.Reporter) Option {
	return func(c *config) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing sets the span manager. Default: no-op.
func WithTracing(s observability.SpanManager) Option {
	return func(c *config) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithClock sets the time source for persisted timestamps. Default: time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator sets how persisted events get their id. Default: random UUID.
func WithIDGenerator(newID func() string) Option {
	return func(c *config) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithAppendRetry retries transient append failures. Default: retry.NoRetry.
//
// Example:
//
//	p := eventstream.NewPersistentProducer(d, log,
//	    eventstream.WithAppendRetry(retry.NewRetryConfig(retry.WithMaxAttempts(5))))
func WithAppendRetry(cfg retry.RetryConfig) Option {
	return func(c *config) {
		c.retry = cfg
	}
}
