package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/asyncresource/internal/config"
	"github.com/aretw0/asyncresource/internal/demo"
	"github.com/aretw0/asyncresource/pkg/adapters/file"
	"github.com/aretw0/asyncresource/pkg/adapters/memory"
	redisadapter "github.com/aretw0/asyncresource/pkg/adapters/redis"
	"github.com/aretw0/asyncresource/pkg/observability"
	"github.com/aretw0/asyncresource/pkg/persistence/middleware"
	"github.com/aretw0/asyncresource/pkg/ports"
	"github.com/aretw0/asyncresource/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app is the wiring shared by every command: a users directory, a session
// manager over the configured snapshot store, and metrics.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	directory *demo.Directory // nil when an external backend is configured
	manager   *session.Manager[demo.Users]
	host      *session.Host[demo.Users]
	closers   []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := observability.NewMetrics(a.registry)
	if err != nil {
		return nil, err
	}
	hooks := observability.Combine(observability.LogHooks(logger), metrics.Hooks())

	baseURL := cfg.Demo.BackendURL
	if baseURL == "" {
		baseURL, err = a.startDirectory()
		if err != nil {
			return nil, err
		}
	}
	client := demo.NewClient(baseURL, &http.Client{Timeout: 10 * time.Second}).WithPageSize(cfg.Demo.PageSize)

	store, opts, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts = append(opts, session.WithLogger(logger))

	a.manager = session.NewManager(store, demo.Builder(client, logger, hooks), opts...)
	a.host = session.NewHost(a.manager)
	return a, nil
}

// startDirectory serves an in-process user directory on a loopback port.
func (a *app) startDirectory() (string, error) {
	a.directory = demo.NewDirectory(a.cfg.Demo.Users,
		demo.WithLatency(a.cfg.Demo.Latency),
		demo.WithDirectoryLogger(a.logger),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start user directory: %w", err)
	}
	srv := &http.Server{Handler: a.directory.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("user directory stopped", "err", err)
		}
	}()
	a.closers = append(a.closers, func() { _ = srv.Close() })

	baseURL := "http://" + ln.Addr().String()
	a.logger.Debug("user directory listening", "url", baseURL, "users", a.cfg.Demo.Users)
	return baseURL, nil
}

// openStore picks the snapshot backend and wraps it with the configured
// redaction and encryption middlewares.
func (a *app) openStore(ctx context.Context) (ports.SnapshotStore, []session.Option, error) {
	store, opts, err := a.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}

	var mws []middleware.Middleware
	if len(a.cfg.Store.RedactKeys) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(a.cfg.Store.RedactKeys))
	}
	key, err := a.cfg.Store.Key()
	if err != nil {
		return nil, nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), opts, nil
}

// openBackend picks Redis when an address is configured, then a directory, then memory.
func (a *app) openBackend(ctx context.Context) (ports.SnapshotStore, []session.Option, error) {
	if !a.cfg.Redis.Enabled() {
		if dir := a.cfg.Store.Dir; dir != "" {
			a.logger.Info("using file snapshot store", "dir", dir)
			return file.New(dir), nil, nil
		}
		a.logger.Info("using in-memory snapshot store")
		return memory.NewStore(), nil, nil
	}

	rc := a.cfg.Redis
	store := redisadapter.New(rc.Addr, rc.Password, rc.DB,
		redisadapter.WithPrefix(rc.Prefix+"snapshot:"),
		redisadapter.WithTTL(rc.TTL),
	)
	if err := store.Client().Ping(ctx).Err(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", rc.Addr, err)
	}
	a.closers = append(a.closers, func() { _ = store.Close() })
	a.logger.Info("using redis snapshot store", "addr", rc.Addr, "prefix", rc.Prefix)

	locker := redisadapter.NewLocker(store.Client(), rc.Prefix)
	return store, []session.Option{session.WithLocker(locker), session.WithLockTTL(rc.LockTTL)}, nil
}

// Close settles in-flight actions, then releases resources in reverse order.
func (a *app) Close() {
	if a.manager != nil {
		a.manager.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
