// SPDX-License-Identifier: MIT

// Package report persists calibration results.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/trebuchet/internal/document"
	xglog "github.com/ManuGH/trebuchet/internal/log"
)

// Report is the JSON document written after a run.
type Report struct {
	RunID       string               `json:"run_id"`
	Input       string               `json:"input"`
	Mode        string               `json:"mode"`
	Version     string               `json:"version,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Total       int                  `json:"total"`
	Lines       int                  `json:"lines"`
	Blank       int                  `json:"blank"`
	Values      []document.LineValue `json:"values"`
}

// New builds a report from a summation result.
func New(runID, input, mode, version string, res document.Result, now time.Time) Report {
	values := res.Values
	if values == nil {
		values = []document.LineValue{}
	}
	return Report{
		RunID:       runID,
		Input:       input,
		Mode:        mode,
		Version:     version,
		GeneratedAt: now.UTC(),
		Total:       res.Total,
		Lines:       res.Count,
		Blank:       res.Blank,
		Values:      values,
	}
}

// Write stores rep at path with full durability guarantees using renameio:
// readers either see the previous report or the complete new one.
func Write(ctx context.Context, path string, rep Report) error {
	logger := xglog.FromContext(ctx)

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending report file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending report file")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace report file: %w", err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(data []byte) (Report, error) {
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return rep, nil
}
