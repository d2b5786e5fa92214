package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"controle/internal/backend"
	"controle/internal/cli"
	"controle/internal/core"
	"controle/internal/ledger"
	"controle/internal/locale"
	applog "controle/internal/log"
	"controle/internal/render"
	"controle/internal/services"
)

type options struct {
	period core.Period
	format string
	outDir string
	chart  string
}

func parseFlags(args []string, today core.Date, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("controle-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	year := fs.Int("year", today.Year(), "report year")
	month := fs.Int("month", today.Month(), "report month, 0 for the whole year")
	format := fs.String("format", "", "export format: xlsx, docx, pdf or all (empty prints only the text report)")
	outDir := fs.String("out", ".", "directory for exported files")
	chart := fs.String("chart", "", "write the monthly bar chart PNG to this file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{
		period: core.Period{Year: *year, Month: *month},
		format: strings.ToLower(strings.TrimSpace(*format)),
		outDir: *outDir,
		chart:  *chart,
	}
	if err := opts.period.Validate(); err != nil {
		return options{}, fmt.Errorf("invalid period %s: %w", opts.period, err)
	}
	if opts.format != "" && opts.format != "all" {
		if _, err := render.ParseFormat(opts.format); err != nil {
			return options{}, err
		}
	}
	return opts, nil
}

// run prints the text report for opts and writes the requested files. It
// returns the paths it wrote.
func run(ctx context.Context, store ledger.Store, loc locale.Locale, opts options, stdout io.Writer) ([]string, error) {
	svc := services.NewLedgerService(store, nil)
	rep, err := svc.Report(ctx, opts.period)
	if err != nil {
		return nil, err
	}
	if err := render.Text(stdout, rep, loc); err != nil {
		return nil, fmt.Errorf("render text report: %w", err)
	}

	var files map[render.Format][]byte
	switch opts.format {
	case "":
	case "all":
		files, err = render.Bundle(rep, loc)
		if err != nil {
			return nil, err
		}
	default:
		f, _ := render.ParseFormat(opts.format)
		data, err := render.Export(f, rep, loc)
		if err != nil {
			return nil, err
		}
		files = map[render.Format][]byte{f: data}
	}

	var written []string
	if len(files) > 0 {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	for _, f := range render.Formats {
		data, ok := files[f]
		if !ok {
			continue
		}
		path := filepath.Join(opts.outDir, f.FileName(rep.Period))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	if opts.chart != "" {
		out, err := os.Create(opts.chart)
		if err != nil {
			return written, fmt.Errorf("create chart file: %w", err)
		}
		if err := render.Chart(out, rep.Monthly, loc); err != nil {
			_ = out.Close()
			return written, fmt.Errorf("render chart: %w", err)
		}
		if err := out.Close(); err != nil {
			return written, fmt.Errorf("close chart file: %w", err)
		}
		written = append(written, opts.chart)
	}
	return written, nil
}

func main() {
	cli.LoadEnvFile()

	lvl, _ := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger := applog.New(applog.Config{Level: lvl, Component: applog.ComponentReport, Output: os.Stderr})
	applog.SetDefault(logger)

	cfg, err := cli.LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	loc := cfg.ResolvedLocale()

	opts, err := parseFlags(os.Args[1:], locale.Today(), os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "controle-report:", err)
		}
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid store configuration", applog.FieldError, err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger.Logger).CreateStore(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger store", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer cli.Cleanup(logger, store.Cleanup)

	written, err := run(ctx, store.Store, loc, opts, os.Stdout)
	for _, path := range written {
		logger.Info("Wrote file", "path", path)
	}
	if err != nil {
		logger.Error("Report failed", applog.FieldError, err)
		cli.Cleanup(logger, store.Cleanup)
		os.Exit(1)
	}
}
