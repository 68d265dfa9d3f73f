// Package app wires configuration, logging, storage and the store into
// one object shared by every command.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/nikbrunner/netmark/internal/config"
	"github.com/nikbrunner/netmark/internal/httpserver"
	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/metrics"
	"github.com/nikbrunner/netmark/internal/scheduler"
	"github.com/nikbrunner/netmark/internal/storage"
	"github.com/nikbrunner/netmark/internal/store"
	"github.com/nikbrunner/netmark/internal/version"
)

const shutdownTimeout = 5 * time.Second

// App holds the long-lived dependencies.
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Backend  storage.Backend
	Store    *store.Store
	Metrics  *metrics.Recorder
	Registry *prometheus.Registry
}

// Params overrides parts of the wiring, mostly for tests.
type Params struct {
	Logger  logger.Logger
	Backend storage.Backend
	Clock   func() time.Time
}

// New opens the configured backend and loads the store.
func New(ctx context.Context, cfg *config.Config, p Params) (*App, error) {
	log := p.Logger
	if log == nil {
		var err error
		log, err = logger.New(cfg.Log.Level, cfg.Log.Pretty)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
	}

	backend := p.Backend
	if backend == nil {
		var err error
		backend, err = storage.Open(ctx, cfg.StorageBackend())
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
		}
	}
	log.Debug("storage opened",
		logger.String("driver", cfg.Storage.Driver),
		logger.String("path", cfg.Storage.Path))

	registry := prometheus.NewRegistry()
	rec := metrics.NewRecorder(registry)

	st, err := store.Open(ctx, store.Params{
		Backend:             backend,
		Key:                 cfg.Storage.Key,
		Logger:              log.With(logger.String("component", "store")),
		Clock:               p.Clock,
		Retention:           cfg.Trash.Retention,
		Metrics:             rec,
		SearchIncludesTrash: cfg.Trash.SearchIncludesTrash,
	})
	if err != nil {
		return nil, multierr.Append(err, backend.Close())
	}

	return &App{
		Config:   cfg,
		Logger:   log,
		Backend:  backend,
		Store:    st,
		Metrics:  rec,
		Registry: registry,
	}, nil
}

// NewSweeper creates the trash sweeper on sched.
func (a *App) NewSweeper(sched scheduler.Scheduler) *scheduler.TrashSweeper {
	return scheduler.NewTrashSweeper(
		a.Store,
		sched,
		a.Logger.With(logger.String("component", "sweeper")),
		a.Config.Trash.SweepInterval,
		a.Metrics,
	)
}

// Watch runs the trash sweeper, and the metrics server when configured,
// until ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	a.Logger.Info(version.String())

	sched := scheduler.NewCronScheduler()
	sweeper := a.NewSweeper(sched)
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start trash sweeper: %w", err)
	}
	sched.Start()
	a.Logger.Info("trash sweeper started",
		logger.Duration("interval", a.Config.Trash.SweepInterval),
		logger.Duration("retention", a.Store.Retention()))

	var server *httpserver.Server
	errCh := make(chan error, 1)
	if a.Config.Metrics.Addr != "" {
		server = httpserver.New(a.Config.Metrics.Addr, a.Registry, a.bookmarkStats, a.Logger)
		go func() {
			if err := server.Start(); err != nil {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down")
	case runErr = <-errCh:
	}

	sweeper.Stop()
	sched.Stop()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		runErr = multierr.Append(runErr, server.Stop(shutdownCtx))
	}
	return runErr
}

func (a *App) bookmarkStats() (live, trash int) {
	for _, b := range a.Store.Snapshot().Bookmarks {
		if b.InTrash() {
			trash++
		} else {
			live++
		}
	}
	return live, trash
}

// Close releases the backend and flushes the logger.
func (a *App) Close() error {
	return multierr.Append(a.Backend.Close(), a.Logger.Sync())
}
