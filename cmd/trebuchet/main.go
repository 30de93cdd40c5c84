// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// trebuchet computes the calibration total of a text document: every line
// contributes the two-digit number formed by its first and last digit, where
// digits are literal ('0'-'9') or spelled out ("one"-"nine").
//
// Usage:
//
//	trebuchet [flags] [document]
//	trebuchet -config trebuchet.yaml
//	trebuchet -mode digits -report report.json data/test.txt
//
// Exit codes:
//   - 0: Calibration succeeded (total printed on stdout)
//   - 1: Configuration or I/O failure
//   - 2: Usage error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/trebuchet/internal/config"
	xglog "github.com/ManuGH/trebuchet/internal/log"
	"github.com/ManuGH/trebuchet/internal/normalize"
	"github.com/ManuGH/trebuchet/internal/version"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const helpFooter = `
Environment:
  TREBUCHET_INPUT, TREBUCHET_MODE, TREBUCHET_WORKERS, TREBUCHET_REPORT,
  TREBUCHET_METRICS_FILE, TREBUCHET_WATCH, LOG_LEVEL, LOG_SERVICE,
  TREBUCHET_TELEMETRY_{ENABLED,EXPORTER,ENDPOINT,SAMPLING_RATE}
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath  string
	mode        string
	workers     int
	report      string
	metricsFile string
	logLevel    string
	watch       bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*flag.FlagSet, flags, error) {
	var f flags
	fs := flag.NewFlagSet("trebuchet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&f.mode, "mode", "", "calibration mode: words or digits")
	fs.IntVar(&f.workers, "workers", 0, "number of concurrent workers (1 = sequential)")
	fs.StringVar(&f.report, "report", "", "write a JSON report to this path")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	fs.BoolVar(&f.watch, "watch", false, "recalibrate whenever the document changes")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: trebuchet [flags] [document]")
		fs.PrintDefaults()
		fmt.Fprint(stderr, helpFooter)
	}

	if err := fs.Parse(args); err != nil {
		return fs, f, err
	}
	if fs.NArg() > 1 {
		return fs, f, fmt.Errorf("expected at most one document, got %d", fs.NArg())
	}
	return fs, f, nil
}

// applyFlags overrides cfg with the flags set explicitly on the command line.
func applyFlags(cfg *config.AppConfig, fs *flag.FlagSet, f flags) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "mode":
			cfg.Mode = normalize.Token(f.mode)
		case "workers":
			cfg.Workers = f.workers
		case "report":
			cfg.ReportPath = f.report
		case "metrics-file":
			cfg.MetricsFile = f.metricsFile
		case "log-level":
			cfg.LogLevel = normalize.Token(f.logLevel)
		case "watch":
			cfg.Watch = f.watch
		}
	})
	if fs.NArg() == 1 {
		cfg.Input = fs.Arg(0)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if f.showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	// Safe defaults until the configuration is loaded.
	xglog.Reconfigure(xglog.Config{
		Output:  stderr,
		Level:   f.logLevel,
		Service: "trebuchet",
		Version: version.Version,
	})
	logger := xglog.WithComponent("cli")

	cfg, err := config.NewLoader(f.configPath, version.Version).Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", f.configPath).
			Msg("failed to load configuration")
		return exitFail
	}
	applyFlags(&cfg, fs, f)

	if strings.TrimSpace(cfg.Input) == "" {
		fmt.Fprintln(stderr, "Error: no document given (argument, -config input or TREBUCHET_INPUT)")
		fs.Usage()
		return exitUsage
	}

	if err := config.Validate(cfg); err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.invalid").
			Msg("invalid configuration")
		return exitFail
	}

	xglog.Reconfigure(xglog.Config{
		Output:  stderr,
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("cli")

	app, err := newApp(ctx, cfg, stdout)
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "startup.failed").
			Msg("failed to start")
		return exitFail
	}
	defer app.Close(context.WithoutCancel(ctx))

	if err := app.Run(ctx); err != nil {
		return exitFail
	}
	return exitOK
}
