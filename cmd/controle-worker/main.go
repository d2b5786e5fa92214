package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"controle/internal/backend"
	"controle/internal/cache"
	"controle/internal/cli"
	"controle/internal/config"
	applog "controle/internal/log"
	"controle/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting controle-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	factory := backend.NewFactory(logger.Logger)

	mirrorCfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror configuration", applog.FieldError, err)
		os.Exit(1)
	}
	mirror, err := factory.CreateStore(ctx, mirrorCfg)
	if err != nil {
		logger.Error("Failed to initialize mirror store", applog.FieldError, err, "backend", cfg.MirrorBackend)
		os.Exit(1)
	}

	consumer, closeConsumer, err := factory.CreateConsumer(cfg)
	if err != nil {
		logger.Error("Failed to initialize event consumer", applog.FieldError, err, "events_backend", cfg.EventsBackend)
		cli.Cleanup(logger, mirror.Cleanup)
		os.Exit(1)
	}

	mirrorWorker := worker.NewMirrorWorker(mirror.Store)
	janitor := cache.NewJanitor(10*time.Minute, mirrorWorker.Seen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming entry messages",
			"events_backend", cfg.EventsBackend,
			"mirror_backend", cfg.MirrorBackend)
		return consumer.Consume(gctx, mirrorWorker.Handle)
	})
	g.Go(func() error {
		return janitor.Run(gctx)
	})

	err = g.Wait()
	cli.Cleanup(logger, mirror.Cleanup, closeConsumer)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
