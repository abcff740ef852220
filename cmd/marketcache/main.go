// Command marketcache serves market prices, currency rates, item icons and
// name suggestions from the document cache.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-market-cache/internal/config"
	"github.com/goliatone/go-market-cache/internal/httpapi"
	"github.com/goliatone/go-market-cache/internal/logging"
	"github.com/goliatone/go-market-cache/pkg/di"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("MARKETCACHE_CONFIG"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "marketcache: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	container, err := di.NewContainer(*cfg, di.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close container", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A SQLite index starts empty on every boot, so it always needs its schema.
	if cfg.Database.AutoMigrate || cfg.Database.Driver == config.DriverSQLite {
		if err := container.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if cfg.Log.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := httpapi.NewEngine(container.Handler(), logger.Named("http"))

	srv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			zap.String("addr", srv.Addr),
			zap.String("cache_backend", cfg.Cache.Backend),
			zap.String("database_driver", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
