// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/archive"
	"github.com/interautonomy/content-sync/internal/config"
	"github.com/interautonomy/content-sync/internal/metrics"
	"github.com/interautonomy/content-sync/internal/ops"
	"github.com/interautonomy/content-sync/internal/store"
)

// App holds all the shared, long-lived services for the application.
// It is initialized once at startup and passed to the commands that need it.
type App struct {
	logger  *zap.Logger
	cfg     config.Config
	store   store.Store
	archive *archive.Archive
	ops     *ops.Server
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the loaded configuration.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetStore provides access to the content store.
func (a *App) GetStore() store.Store {
	return a.store
}

// GetArchive returns the page archive, or nil when snapshots are disabled.
func (a *App) GetArchive() *archive.Archive {
	return a.archive
}

// NewApp creates and initializes a new App from the configuration. It is the
// central point for service initialization and fails fast if any critical
// service cannot be built. Config validation has already run, so provider
// switches only see known values.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("initializing application services")
	metrics.Init()

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Provider {
	case "postgres":
		logger.Info("connecting to PostgreSQL")
		st, err = store.NewPostgresStore(ctx, store.PostgresConfig{
			DSN:             cfg.Store.DSN,
			MaxConns:        cfg.Store.MaxConns,
			MinConns:        cfg.Store.MinConns,
			MaxConnLifetime: cfg.Store.MaxConnLifetime(),
		})
		if err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
	case "memory":
		logger.Info("using in-memory store, data will not persist")
		st = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}

	var arc *archive.Archive
	if cfg.Archive.Enabled {
		arc, err = archive.New(cfg.Archive.Dir)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("initialize archive: %w", err)
		}
		logger.Info("page archive enabled", zap.String("dir", cfg.Archive.Dir))
	}

	a := &App{logger: logger, cfg: cfg, store: st, archive: arc}

	if cfg.Ops.Enabled {
		a.ops = ops.NewServer(cfg.Ops.Port, logger)
		go func() {
			if err := a.ops.Start(); err != nil {
				logger.Error("ops server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("application services initialized")
	return a, nil
}

// Close gracefully shuts down all services in the App container. It is
// called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	if a.ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.ops.Shutdown(ctx); err != nil {
			a.logger.Warn("error shutting down ops server", zap.Error(err))
		}
	}
	a.store.Close()
	if err := a.logger.Sync(); err != nil {
		// Best effort; stderr sync failures are routine on some platforms.
		a.logger.Warn("error syncing logger on shutdown", zap.Error(err))
	}
}
