// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Document attributes
	DocumentInputKey   = "document.input"
	DocumentModeKey    = "document.mode"
	DocumentWorkersKey = "document.workers"
	DocumentLinesKey   = "document.lines"
	DocumentBlankKey   = "document.blank"
	DocumentTotalKey   = "document.total"

	// Chunk attributes
	ChunkIndexKey = "chunk.index"
	ChunkStartKey = "chunk.start_line"
	ChunkLinesKey = "chunk.lines"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// DocumentAttributes creates span attributes describing a summation request.
func DocumentAttributes(input, mode string, workers int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if input != "" {
		attrs = append(attrs, attribute.String(DocumentInputKey, input))
	}
	if mode != "" {
		attrs = append(attrs, attribute.String(DocumentModeKey, mode))
	}
	return append(attrs, attribute.Int(DocumentWorkersKey, workers))
}

// ResultAttributes creates span attributes describing a summation result.
func ResultAttributes(lines, blank, total int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(DocumentLinesKey, lines),
		attribute.Int(DocumentBlankKey, blank),
		attribute.Int(DocumentTotalKey, total),
	}
}

// ChunkAttributes creates span attributes for one parallel chunk.
func ChunkAttributes(index, startLine, lines int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ChunkIndexKey, index),
		attribute.Int(ChunkStartKey, startLine),
		attribute.Int(ChunkLinesKey, lines),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
