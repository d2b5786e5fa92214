// Package cli holds the bootstrap shared by cmd/controle, cmd/controle-worker
// and cmd/controle-report.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"controle/internal/config"
	applog "controle/internal/log"
)

// SetupLogger builds the text logger for level and installs it as the
// default. Unknown levels fall back to info.
func SetupLogger(level string, component string) *applog.Logger {
	return setupLogger(os.Stdout, level, component)
}

func setupLogger(w io.Writer, level string, component string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{Level: lvl, Component: component, Output: w})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is not an
// error; a malformed one is logged.
func LoadEnvFile(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

// LoadConfig loads configuration and runs validate on it.
func LoadConfig(validate ...func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, v := range validate {
		if err := v(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration or exits the process.
func LoadAndValidateConfig(logger *applog.Logger, validate ...func(*config.Config) error) *config.Config {
	cfg, err := LoadConfig(validate...)
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	}()
	return ctx, stop
}

// Cleanup runs fns in reverse order and reports every failure.
func Cleanup(logger *applog.Logger, fns ...func() error) {
	for i := len(fns) - 1; i >= 0; i-- {
		if fns[i] == nil {
			continue
		}
		if err := fns[i](); err != nil {
			logger.Error("Cleanup failed", applog.FieldError, fmt.Errorf("step %d: %w", i, err))
		}
	}
}
