package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/randalmurphal/eventstream/pkg/eventstream"
	"github.com/randalmurphal/eventstream/pkg/eventstream/config"
	"github.com/randalmurphal/eventstream/pkg/eventstream/eventlog"
	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
	"github.com/randalmurphal/eventstream/pkg/eventstream/retry"
)

// app holds the collaborators every subcommand shares.
type app struct {
	settings config.Settings
	reporter observability.Reporter
	metrics  observability.MetricsRecorder
	log      eventlog.Log

	server  *metricsServer
	closers []func() error
}

func newApp(ctx context.Context, s config.Settings, stderr io.Writer) (*app, error) {
	a := &app{settings: s, metrics: observability.NoopMetrics{}}

	reporter, flush, err := newReporter(s, stderr)
	if err != nil {
		return nil, err
	}
	a.reporter = reporter
	a.closers = append(a.closers, flush)

	if s.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := observability.NewPromMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		srv, err := serveMetrics(s.MetricsAddr, reg)
		if err != nil {
			return nil, err
		}
		a.metrics = m
		a.server = srv
		a.closers = append(a.closers, srv.Stop)
	}

	log, err := eventlog.Open(ctx, s)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.log = log
	a.closers = append(a.closers, log.Close)

	if fl, ok := log.(*eventlog.FileLog); ok {
		if err := fl.TornTail(); err != nil {
			a.reporter.PersistenceFailed(ctx, "open", err)
		}
	}

	return a, nil
}

// options returns the component options derived from settings.
func (a *app) options() []eventstream.Option {
	opts := []eventstream.Option{
		eventstream.WithReporter(a.reporter),
		eventstream.WithMetrics(a.metrics),
	}
	if a.settings.AppendAttempts > 1 {
		opts = append(opts, eventstream.WithAppendRetry(retry.NewRetryConfig(
			retry.WithMaxAttempts(a.settings.AppendAttempts),
			retry.WithInitialBackoff(a.settings.AppendBackoff),
		)))
	}
	return opts
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// newReporter builds the configured reporter. The returned func flushes it.
func newReporter(s config.Settings, w io.Writer) (observability.Reporter, func() error, error) {
	switch s.Logger {
	case config.LoggerZap:
		logger, err := newZapLogger(s, w)
		if err != nil {
			return nil, nil, err
		}
		// Sync on a terminal reports EINVAL on some platforms; nothing to do about it.
		return observability.NewZapReporter(logger), func() error { _ = logger.Sync(); return nil }, nil

	default:
		level, err := s.SlogLevel()
		if err != nil {
			return nil, nil, err
		}
		opts := &slog.HandlerOptions{Level: level}
		var h slog.Handler = slog.NewTextHandler(w, opts)
		if strings.EqualFold(s.LogFormat, "json") {
			h = slog.NewJSONHandler(w, opts)
		}
		return observability.NewSlogReporter(slog.New(h)), func() error { return nil }, nil
	}
}

func newZapLogger(s config.Settings, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder = zapcore.NewConsoleEncoder(encCfg)
	if strings.EqualFold(s.LogFormat, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core), nil
}
