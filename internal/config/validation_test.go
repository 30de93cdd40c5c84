// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ManuGH/trebuchet/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) AppConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := Defaults()
	cfg.Input = writeFile(t, dir, "calibration.txt", "1abc2\n")
	cfg.ReportPath = filepath.Join(dir, "report.json")
	return cfg
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(validConfig(t)))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"missing input", func(c *AppConfig) { c.Input = "" }, "input"},
		{"input is directory", func(c *AppConfig) { c.Input = filepath.Dir(c.Input) }, "input"},
		{"unknown mode", func(c *AppConfig) { c.Mode = "roman" }, "mode"},
		{"zero workers", func(c *AppConfig) { c.Workers = 0 }, "workers"},
		{"too many workers", func(c *AppConfig) { c.Workers = 65 }, "workers"},
		{"report parent missing", func(c *AppConfig) { c.ReportPath = filepath.Join(c.ReportPath, "x", "y.json") }, "report"},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "chatty" }, "logLevel"},
		{"bad exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, "telemetry.exporter"},
		{"bad sampling", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}, "telemetry.samplingRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve validate.ValidationError
			require.True(t, errors.As(err, &ve))
			fields := make([]string, 0, len(ve.Errors()))
			for _, e := range ve.Errors() {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_TelemetryIgnoredWhenDisabled(t *testing.T) {
	cfg := validConfig(t)
	cfg.Telemetry.Exporter = "zipkin"
	assert.NoError(t, Validate(cfg))
}
