// Package app wires the SIF pipeline to the dashboard server and manages
// the application lifecycle.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/tlaw6500/cropsif/internal/controllers/restserver"
	"github.com/tlaw6500/cropsif/internal/log"
	"github.com/tlaw6500/cropsif/internal/observability"
	"github.com/tlaw6500/cropsif/internal/sif"
	"github.com/tlaw6500/cropsif/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	// Pipeline: raw rasters -> scaled/masked grids -> cached -> counted
	loader := sif.NewLoader(cfg.Dataset, a.logger)
	cached := sif.NewCachingLoader(observability.InstrumentLoader(loader, metrics))
	cached.OnLookup = func(hit bool) {
		result := "miss"
		if hit {
			result = "hit"
		}
		metrics.CacheLookups.WithLabelValues(result).Inc()
	}
	aggregator := sif.NewAggregator(cached, a.logger)

	var restConfig config.RESTServerData
	if cfg.RESTServer != nil {
		restConfig = *cfg.RESTServer
	}

	restServer, err := restserver.NewController(ctx, &wg, a.configProvider, restConfig, aggregator, metrics, a.logger)
	if err != nil {
		return err
	}
	if err := restServer.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
