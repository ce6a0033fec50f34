package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/eventstream/pkg/eventstream/observability"
)

// metricsServer exposes /metrics for the lifetime of one command.
type metricsServer struct {
	addr   string
	cancel context.CancelFunc
	group  *errgroup.Group
}

// serveMetrics binds addr and serves the registry in the background.
// Bind errors are returned immediately.
func serveMetrics(addr string, reg *prometheus.Registry) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.PromHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return &metricsServer{addr: ln.Addr().String(), cancel: cancel, group: g}, nil
}

// Addr returns the bound address.
func (m *metricsServer) Addr() string {
	return m.addr
}

// Stop shuts the server down and waits for it to exit.
func (m *metricsServer) Stop() error {
	m.cancel()
	return m.group.Wait()
}
