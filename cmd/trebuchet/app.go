// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/trebuchet/internal/calibrate"
	"github.com/ManuGH/trebuchet/internal/config"
	"github.com/ManuGH/trebuchet/internal/document"
	xglog "github.com/ManuGH/trebuchet/internal/log"
	"github.com/ManuGH/trebuchet/internal/metrics"
	"github.com/ManuGH/trebuchet/internal/report"
	"github.com/ManuGH/trebuchet/internal/telemetry"
	"github.com/ManuGH/trebuchet/internal/watch"
)

// app wires one configured calibration pipeline.
type app struct {
	cfg       config.AppConfig
	summer    *document.Summer
	telemetry *telemetry.Provider
	stdout    io.Writer
	logger    zerolog.Logger
}

func calibratorFor(mode string) calibrate.Calibrator {
	if mode == config.ModeDigits {
		return calibrate.New(nil)
	}
	return calibrate.New(calibrate.EnglishWords())
}

func newApp(ctx context.Context, cfg config.AppConfig, stdout io.Writer) (*app, error) {
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "trebuchet",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	cal := calibratorFor(cfg.Mode)
	summer := document.NewSummer(cal, document.Options{
		Workers:   cfg.Workers,
		KeepLines: cfg.ReportPath != "",
		Mode:      cfg.Mode,
	})

	logger := xglog.WithComponent("cli")
	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str(xglog.FieldPath, cfg.Input).
		Str(xglog.FieldMode, cfg.Mode).
		Int(xglog.FieldWorkers, cfg.Workers).
		Strs("words", cal.Words().Words()).
		Bool("watch", cfg.Watch).
		Msg("starting calibration")

	return &app{
		cfg:       cfg,
		summer:    summer,
		telemetry: tp,
		stdout:    stdout,
		logger:    logger,
	}, nil
}

// Run calibrates the document once and, in watch mode, again after every change.
// All runs of one process share a correlation ID.
func (a *app) Run(ctx context.Context) error {
	ctx = xglog.ContextWithCorrelationID(ctx, uuid.NewString())
	if err := a.calibrateOnce(ctx); err != nil {
		return err
	}
	if !a.cfg.Watch {
		return nil
	}

	w := watch.New(a.cfg.Input, watch.DefaultDebounce, a.calibrateOnce)
	if err := w.Run(ctx); err != nil {
		a.logger.Error().Err(err).Str(xglog.FieldEvent, "watch.failed").Msg("document watcher failed")
		return err
	}
	return nil
}

// calibrateOnce performs one run: sum, print, then write the optional artefacts.
func (a *app) calibrateOnce(ctx context.Context) error {
	runID := uuid.NewString()
	ctx = xglog.ContextWithRunID(ctx, runID)
	logger := xglog.WithContext(ctx, a.logger)

	res, err := a.summer.SumFile(ctx, a.cfg.Input)
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "calibration.failed").
			Str(xglog.FieldPath, a.cfg.Input).
			Msg("calibration failed")
		a.writeMetrics(logger)
		return err
	}

	logger.Info().
		Str(xglog.FieldEvent, "calibration.done").
		Int(xglog.FieldLines, res.Count).
		Int(xglog.FieldBlank, res.Blank).
		Int(xglog.FieldTotal, res.Total).
		Msg("calibrated result")
	fmt.Fprintln(a.stdout, res.Total)

	if a.cfg.ReportPath != "" {
		rep := report.New(runID, a.cfg.Input, a.cfg.Mode, a.cfg.Version, res, time.Now())
		if err := report.Write(logger.WithContext(ctx), a.cfg.ReportPath, rep); err != nil {
			logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "report.write_failed").
				Str(xglog.FieldReportPath, a.cfg.ReportPath).
				Msg("failed to write report")
			return err
		}
		logger.Debug().
			Str(xglog.FieldEvent, "report.written").
			Str(xglog.FieldReportPath, a.cfg.ReportPath).
			Msg("report written")
	}

	a.writeMetrics(logger)
	return nil
}

// writeMetrics is best-effort: a missing textfile never fails the run.
func (a *app) writeMetrics(logger zerolog.Logger) {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "metrics.write_failed").
			Str(xglog.FieldPath, a.cfg.MetricsFile).
			Msg("failed to write metrics textfile")
	}
}

// Close flushes telemetry.
func (a *app) Close(ctx context.Context) {
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Str(xglog.FieldEvent, "telemetry.shutdown_failed").Msg("telemetry shutdown failed")
	}
}
