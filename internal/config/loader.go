// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/trebuchet/internal/normalize"
)

// Environment keys.
const (
	EnvInput             = "TREBUCHET_INPUT"
	EnvMode              = "TREBUCHET_MODE"
	EnvWorkers           = "TREBUCHET_WORKERS"
	EnvReport            = "TREBUCHET_REPORT"
	EnvMetricsFile       = "TREBUCHET_METRICS_FILE"
	EnvWatch             = "TREBUCHET_WATCH"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogService        = "LOG_SERVICE"
	EnvTelemetryEnabled  = "TREBUCHET_TELEMETRY_ENABLED"
	EnvTelemetryExporter = "TREBUCHET_TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint = "TREBUCHET_TELEMETRY_ENDPOINT"
	EnvTelemetrySampling = "TREBUCHET_TELEMETRY_SAMPLING_RATE"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Mode:     ModeWords,
		Workers:  defaultWorkers,
		LogLevel: "info",
		Telemetry: TelemetryConfig{
			Exporter:     ExporterGRPC,
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The result is not validated; callers apply flag overrides and then call Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg, filepath.Dir(l.configPath))
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// LoadFileConfig loads a YAML config file without applying defaults or env overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}

// mergeFileConfig applies set file values onto cfg. Relative paths are resolved
// against the directory holding the configuration file.
func mergeFileConfig(cfg *AppConfig, f *FileConfig, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	if f.Input != "" {
		cfg.Input = resolve(f.Input)
	}
	if f.Mode != "" {
		cfg.Mode = normalize.Token(f.Mode)
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.Report != "" {
		cfg.ReportPath = resolve(f.Report)
	}
	if f.MetricsFile != "" {
		cfg.MetricsFile = resolve(f.MetricsFile)
	}
	if f.Watch != nil {
		cfg.Watch = *f.Watch
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.LogService != "" {
		cfg.LogService = f.LogService
	}
	if t := f.Telemetry; t != nil {
		if t.Enabled != nil {
			cfg.Telemetry.Enabled = *t.Enabled
		}
		if t.Exporter != "" {
			cfg.Telemetry.Exporter = t.Exporter
		}
		if t.Endpoint != "" {
			cfg.Telemetry.Endpoint = t.Endpoint
		}
		if t.SamplingRate != nil {
			cfg.Telemetry.SamplingRate = *t.SamplingRate
		}
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Input = l.envString(EnvInput, cfg.Input)
	cfg.Mode = normalize.Token(l.envString(EnvMode, cfg.Mode))
	cfg.Workers = l.envInt(EnvWorkers, cfg.Workers)
	cfg.ReportPath = l.envString(EnvReport, cfg.ReportPath)
	cfg.MetricsFile = l.envString(EnvMetricsFile, cfg.MetricsFile)
	cfg.Watch = l.envBool(EnvWatch, cfg.Watch)
	cfg.LogLevel = normalize.Token(l.envString(EnvLogLevel, cfg.LogLevel))
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)
}
