package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"controle/internal/backend"
	"controle/internal/cli"
	apphttp "controle/internal/http"
	applog "controle/internal/log"
	"controle/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	factory := backend.NewFactory(logger.Logger)

	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid store configuration", applog.FieldError, err)
		os.Exit(1)
	}
	store, err := factory.CreateStore(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger store", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	publisher, closePublisher, err := factory.CreatePublisher(cfg)
	if err != nil {
		logger.Error("Failed to initialize event publisher", applog.FieldError, err, "events_backend", cfg.EventsBackend)
		cli.Cleanup(logger, store.Cleanup)
		os.Exit(1)
	}
	defer cli.Cleanup(logger, store.Cleanup, closePublisher)

	svc := services.NewLedgerService(store.Store, publisher)
	loc := cfg.ResolvedLocale()

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Locale:             loc,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting controle server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events_backend", cfg.EventsBackend,
			"locale", loc.Tag.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		cli.Cleanup(logger, store.Cleanup, closePublisher)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
