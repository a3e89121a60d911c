package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"reportetl/internal/config"
	"reportetl/internal/docstore"
	"reportetl/internal/logging"
	"reportetl/internal/metrics"
	"reportetl/internal/metrics/datadog"
	"reportetl/internal/metrics/prompush"
	"reportetl/internal/parser"
	"reportetl/internal/pipeline"
	"reportetl/internal/storage"

	// register every store and sink; the config selects which one is used.
	_ "reportetl/internal/docstore/all"
	_ "reportetl/internal/storage/all"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// main loads the run config, wires the collaborators and executes one run.
func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, time.Now))
}

func run(ctx context.Context, args []string, stderr io.Writer, now func() time.Time) int {
	fs := flag.NewFlagSet("reportetl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		refDateFlg        string
		validate          bool
		verbose           bool
	)
	fs.StringVar(&cfgPath, "config", "configs/reportetl.yaml", "run config path (.json, .yaml or .yml)")
	fs.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (none, prometheus, datadog); overrides config")
	fs.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL; overrides config")
	fs.StringVar(&refDateFlg, "reference-date", "", "report day to process as YYYY-MM-DD (default: today)")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	if metricsBackendFlg != "" {
		cfg.Metrics.Backend = metricsBackendFlg
	}
	if pushGatewayURLFlg != "" {
		cfg.Metrics.PushgatewayURL = pushGatewayURLFlg
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	var refDate time.Time
	if refDateFlg != "" {
		if refDate, err = time.Parse(time.DateOnly, refDateFlg); err != nil {
			fmt.Fprintf(stderr, "config: invalid -reference-date %q: want YYYY-MM-DD\n", refDateFlg)
			return exitConfig
		}
	}

	issues := config.ValidateRun(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", cfgPath)
		return exitConfig
	}
	sinkCfg, err := cfg.Sink.Storage()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	if validate {
		fmt.Fprintf(stderr, "configuration is valid: %s\n", cfgPath)
		return exitOK
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		ErrorFile: cfg.Log.ErrorFile,
	})
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	defer closeLog()

	flush := setupMetrics(cfg, logger)
	defer flush()

	storeCfg := cfg.Source.DocStore()
	out := pipeline.Run(ctx, pipeline.Config{
		Job:             cfg.Job,
		Folder:          cfg.Source.Folder,
		File:            cfg.Source.File,
		Marker:          cfg.Source.Marker,
		DownloadDir:     cfg.Source.DownloadDir,
		KeepDownload:    cfg.Source.KeepDownload,
		ReferenceDate:   refDate,
		Parser:          parser.Options{Sheet: cfg.Source.Sheet},
		SinkKind:        sinkCfg.Kind,
		Table:           sinkCfg.Table,
		AutoCreateTable: cfg.Sink.AutoCreateTable,
	}, pipeline.Deps{
		OpenStore: func(ctx context.Context) (docstore.Store, error) {
			return docstore.New(ctx, storeCfg)
		},
		OpenSink: func(ctx context.Context) (storage.Repository, error) {
			return storage.New(ctx, sinkCfg)
		},
		Logger: logger,
		Now:    now,
	})
	return out.ExitCode()
}

// setupMetrics installs the configured backend and returns the function
// that flushes it at exit. Failures fall back to the nop backend.
func setupMetrics(cfg config.Run, logger *zap.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "prometheus", "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: cfg.Metrics.DatadogAddr})
	case "", "none":
		logger.Debug("metrics: disabled")
		return func() {}
	default:
		logger.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", cfg.Metrics.Backend))
		return func() {}
	}
	if err != nil {
		logger.Warn("metrics: init failed; using nop", zap.String("backend", cfg.Metrics.Backend), zap.Error(err))
		return func() {}
	}
	logger.Debug("metrics: enabled", zap.String("backend", cfg.Metrics.Backend))
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics: flush failed", zap.Error(err))
		}
	}
}
