// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// Calibration modes.
const (
	// ModeWords recognises literal digits and spelled-out words.
	ModeWords = "words"
	// ModeDigits recognises literal digits only.
	ModeDigits = "digits"
)

// Telemetry exporters.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

const (
	defaultWorkers = 1
	maxWorkers     = 64
)

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Input       string
	Mode        string
	Workers     int
	ReportPath  string
	MetricsFile string
	Watch       bool

	LogLevel   string
	LogService string

	Telemetry TelemetryConfig

	Version string
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML configuration file. Pointer fields distinguish
// "unset" from zero values so that defaults survive partial files.
type FileConfig struct {
	Input       string               `yaml:"input,omitempty"`
	Mode        string               `yaml:"mode,omitempty"`
	Workers     *int                 `yaml:"workers,omitempty"`
	Report      string               `yaml:"report,omitempty"`
	MetricsFile string               `yaml:"metricsFile,omitempty"`
	Watch       *bool                `yaml:"watch,omitempty"`
	LogLevel    string               `yaml:"logLevel,omitempty"`
	LogService  string               `yaml:"logService,omitempty"`
	Telemetry   *TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// TelemetryFileConfig is the YAML shape of TelemetryConfig.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
