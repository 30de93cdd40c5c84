// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func TestContextWithRunID(t *testing.T) {
	tests := []struct {
		name  string
		ctx   context.Context
		runID string
		want  string
	}{
		{
			name:  "nil context",
			ctx:   nil,
			runID: "run-123",
			want:  "run-123",
		},
		{
			name:  "background context",
			ctx:   context.Background(),
			runID: "run-456",
			want:  "run-456",
		},
		{
			name:  "empty run ID",
			ctx:   context.Background(),
			runID: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRunID(tt.ctx, tt.runID)
			if got := RunIDFromContext(ctx); got != tt.want {
				t.Errorf("RunIDFromContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDsFromNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	if got := RunIDFromContext(nil); got != "" {
		t.Errorf("expected empty run ID, got %q", got)
	}
	//nolint:staticcheck
	if got := CorrelationIDFromContext(nil); got != "" {
		t.Errorf("expected empty correlation ID, got %q", got)
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestWithContext_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := ContextWithRunID(context.Background(), "run-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	l := WithContext(ctx, logger)
	l.Info().Msg("hello")

	entry := decodeLine(t, &buf)
	if entry[FieldRunID] != "run-1" {
		t.Errorf("run_id = %v", entry[FieldRunID])
	}
	if entry[FieldCorrelationID] != "corr-1" {
		t.Errorf("correlation_id = %v", entry[FieldCorrelationID])
	}
	if entry[FieldTraceID] != traceID.String() {
		t.Errorf("trace_id = %v", entry[FieldTraceID])
	}
	if entry[FieldSpanID] != spanID.String() {
		t.Errorf("span_id = %v", entry[FieldSpanID])
	}
}

func TestWithContext_NoFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	l := WithContext(context.Background(), logger)
	l.Info().Msg("plain")

	entry := decodeLine(t, &buf)
	if _, ok := entry[FieldRunID]; ok {
		t.Error("unexpected run_id field")
	}
	if _, ok := entry[FieldTraceID]; ok {
		t.Error("unexpected trace_id field")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := zerolog.New(&buf)
	ctx := custom.WithContext(context.Background())

	l := FromContext(ctx)
	l.Info().Msg("from ctx")
	if buf.Len() == 0 {
		t.Fatal("expected logger from context to be used")
	}

	if FromContext(context.Background()) == nil {
		t.Fatal("expected base logger fallback")
	}
	//nolint:staticcheck
	if FromContext(nil) == nil {
		t.Fatal("expected base logger for nil context")
	}
}
