// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for calibration runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trebuchet_lines_processed_total",
		Help: "Total number of document lines calibrated",
	}, []string{"mode"}) // mode=words|digits

	linesWithoutDigits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trebuchet_lines_without_digits_total",
		Help: "Lines that contained no digit and contributed zero",
	}, []string{"mode"})

	lineFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trebuchet_line_failures_total",
		Help: "Lines whose calibration failed and degraded to zero",
	})

	calibratedTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trebuchet_calibrated_total",
		Help: "Calibrated total of the last successful run",
	}, []string{"mode"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trebuchet_runs_total",
		Help: "Calibration runs by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trebuchet_run_duration_seconds",
		Help:    "Duration of calibration runs",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	})
)

// RecordLines adds the line counters of a finished document.
func RecordLines(mode string, lines, blank int) {
	linesProcessed.WithLabelValues(mode).Add(float64(lines))
	linesWithoutDigits.WithLabelValues(mode).Add(float64(blank))
}

// RecordLineFailure counts a line whose calibration degraded to zero.
func RecordLineFailure() {
	lineFailures.Inc()
}

// RecordRun records the outcome of one calibration run.
// The total gauge only moves on success.
func RecordRun(mode string, total int, d time.Duration, err error) {
	runDuration.Observe(d.Seconds())
	if err != nil {
		runsTotal.WithLabelValues("failure").Inc()
		return
	}
	runsTotal.WithLabelValues("success").Inc()
	calibratedTotal.WithLabelValues(mode).Set(float64(total))
}
