// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/trebuchet/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.RegularFile("input", cfg.Input)
	v.OneOf("mode", cfg.Mode, []string{ModeWords, ModeDigits})
	v.Range("workers", cfg.Workers, 1, maxWorkers)

	v.OutputFile("report", cfg.ReportPath)
	v.OutputFile("metricsFile", cfg.MetricsFile)

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", "must be one of trace, debug, info, warn, error", cfg.LogLevel)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{ExporterGRPC, ExporterHTTP})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
