// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package document

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/trebuchet/internal/calibrate"
	xglog "github.com/ManuGH/trebuchet/internal/log"
	"github.com/ManuGH/trebuchet/internal/metrics"
	"github.com/ManuGH/trebuchet/internal/telemetry"
)

const tracerName = "github.com/ManuGH/trebuchet/internal/document"

// Options tunes a Summer.
type Options struct {
	// Workers > 1 calibrates contiguous chunks of lines concurrently.
	Workers int
	// KeepLines retains every line's value in Result.Values.
	KeepLines bool
	// Mode labels metrics and spans ("words" or "digits").
	Mode string
}

// LineValue is the calibration value of one line.
type LineValue struct {
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Value int    `json:"value"`
	Blank bool   `json:"blank,omitempty"`
}

// Result is the outcome of summing a document.
type Result struct {
	Total  int         `json:"total"`
	Count  int         `json:"lines"`
	Blank  int         `json:"blank"`
	Values []LineValue `json:"values,omitempty"`
}

func (r *Result) add(v LineValue, keep bool) {
	r.Total += v.Value
	r.Count++
	if v.Blank {
		r.Blank++
	}
	if keep {
		r.Values = append(r.Values, v)
	}
}

func (r *Result) merge(o Result) {
	r.Total += o.Total
	r.Count += o.Count
	r.Blank += o.Blank
	r.Values = append(r.Values, o.Values...)
}

// LineCalibrator extracts the first and last digit of a line.
// calibrate.Calibrator is the production implementation.
type LineCalibrator interface {
	Digits(line string) (first, last int, ok bool)
}

var _ LineCalibrator = calibrate.Calibrator{}

// Summer calibrates documents line by line and accumulates the total.
type Summer struct {
	cal    LineCalibrator
	opts   Options
	logger zerolog.Logger
}

// NewSummer returns a Summer using cal.
func NewSummer(cal LineCalibrator, opts Options) *Summer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Summer{
		cal:    cal,
		opts:   opts,
		logger: xglog.WithComponent("document"),
	}
}

// SumFile opens path and sums it. Failing to open or read the document is fatal.
func (s *Summer) SumFile(ctx context.Context, path string) (Result, error) {
	logger := xglog.WithContext(ctx, s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "document.parse").
		Str(xglog.FieldPath, path).
		Msg("parsing file")

	doc, err := Open(path)
	if err != nil {
		metrics.RecordRun(s.opts.Mode, 0, 0, err)
		return Result{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Debug().Err(cerr).Msg("close document")
		}
	}()

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "document.sum_file",
		trace.WithAttributes(telemetry.DocumentAttributes(doc.Path(), s.opts.Mode, s.opts.Workers)...))
	defer span.End()

	res, err := s.Sum(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, fmt.Errorf("sum %s: %w", doc.Path(), err)
	}
	return res, nil
}

// Sum calibrates every line of r in document order and returns the total.
// Lines without digits contribute zero. Only reading failures and context
// cancellation are returned as errors.
func (s *Summer) Sum(ctx context.Context, r io.Reader) (Result, error) {
	start := time.Now()
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "document.sum",
		trace.WithAttributes(telemetry.DocumentAttributes("", s.opts.Mode, s.opts.Workers)...))
	defer span.End()

	var (
		res Result
		err error
	)
	if s.opts.Workers > 1 {
		res, err = s.sumParallel(ctx, r)
	} else {
		res, err = s.sumSequential(ctx, r)
	}

	metrics.RecordRun(s.opts.Mode, res.Total, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	metrics.RecordLines(s.opts.Mode, res.Count, res.Blank)
	span.SetAttributes(telemetry.ResultAttributes(res.Count, res.Blank, res.Total)...)

	logger := xglog.WithContext(ctx, s.logger)
	logger.Debug().
		Str(xglog.FieldEvent, "document.sum_done").
		Int(xglog.FieldLines, res.Count).
		Int(xglog.FieldBlank, res.Blank).
		Int(xglog.FieldTotal, res.Total).
		Dur("duration", time.Since(start)).
		Msg("document calibrated")
	return res, nil
}

func (s *Summer) sumSequential(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	err := ForLines(r, func(n int, line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.add(s.calibrateLine(ctx, n, line), s.opts.KeepLines)
		return nil
	})
	return res, err
}

// sumParallel splits the document into one contiguous chunk per worker. Chunk
// results are merged in document order, so the total and the kept values match
// the sequential run exactly.
func (s *Summer) sumParallel(ctx context.Context, r io.Reader) (Result, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return Result{}, err
	}

	workers := s.opts.Workers
	if workers > len(lines) {
		workers = len(lines)
	}
	if workers <= 1 {
		var res Result
		for i, line := range lines {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			res.add(s.calibrateLine(ctx, i+1, line), s.opts.KeepLines)
		}
		return res, nil
	}

	size := (len(lines) + workers - 1) / workers
	parts := make([]Result, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * size
		if lo >= len(lines) {
			break
		}
		hi := min(lo+size, len(lines))
		idx := w
		g.Go(func() error {
			cctx, span := telemetry.Tracer(tracerName).Start(gctx, "document.chunk",
				trace.WithAttributes(telemetry.ChunkAttributes(idx, lo+1, hi-lo)...))
			defer span.End()

			var part Result
			for i := lo; i < hi; i++ {
				if err := cctx.Err(); err != nil {
					return err
				}
				part.add(s.calibrateLine(cctx, i+1, lines[i]), s.opts.KeepLines)
			}
			parts[idx] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	for _, p := range parts {
		res.merge(p)
	}
	return res, nil
}

// calibrateLine never fails: a panicking or out-of-range calibration degrades
// the line to zero so the rest of the document is still processed.
func (s *Summer) calibrateLine(ctx context.Context, n int, line string) (lv LineValue) {
	lv = LineValue{Line: n, Text: line}
	logger := xglog.WithContext(ctx, s.logger)
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordLineFailure()
			logger.Warn().
				Str(xglog.FieldEvent, "document.line_failed").
				Int(xglog.FieldLine, n).
				Interface("panic", r).
				Msg("line calibration failed, counting as zero")
			lv = LineValue{Line: n, Text: line, Blank: true}
		}
	}()

	first, last, ok := s.cal.Digits(line)
	if !ok {
		lv.Blank = true
		return lv
	}
	v := first*10 + last
	if v < 0 || v > 99 {
		metrics.RecordLineFailure()
		logger.Warn().
			Str(xglog.FieldEvent, "document.value_out_of_range").
			Int(xglog.FieldLine, n).
			Int(xglog.FieldValue, v).
			Msg("calibration value out of range, counting as zero")
		return lv
	}
	lv.Value = v
	return lv
}
