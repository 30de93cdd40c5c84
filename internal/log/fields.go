// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService       = "service"
	FieldVersion       = "version"
	FieldRunID         = "run_id"
	FieldCorrelationID = "correlation_id"
	FieldTraceID       = "trace_id"
	FieldSpanID        = "span_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldMode      = "mode"
	FieldWorkers   = "workers"

	// Calibration fields
	FieldLine  = "line"
	FieldValue = "value"
	FieldTotal = "total"
	FieldLines = "lines"
	FieldBlank = "blank"

	// Path fields
	FieldPath       = "path"
	FieldReportPath = "report_path"
)
