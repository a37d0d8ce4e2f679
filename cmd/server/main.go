package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/pipeline-hello/internal/config"
	applog "github.com/janisto/pipeline-hello/internal/platform/logging"
	"github.com/janisto/pipeline-hello/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(context.Background(), "config load failed", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogFatal(context.Background(), "invalid log level", err)
	}

	srv := server.New(cfg, Version)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		applog.LogFatal(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applog.LogInfo(ctx, "server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("version", Version),
		zap.Bool("testing", cfg.Testing),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)
	if err := serve(ctx, srv, ln, cfg.Timeouts.Shutdown); err != nil {
		applog.LogError(context.Background(), "server error", err)
		os.Exit(1)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// serve runs srv on ln until ctx is done, then shuts down within timeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-listenErr
}
