// SPDX-License-Identifier: MIT

// Package watch re-runs a calibration whenever its input document changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/trebuchet/internal/log"
)

// DefaultDebounce coalesces bursts of editor writes into one run.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc performs one calibration run.
type RunFunc func(ctx context.Context) error

// Watcher watches a single file and invokes a RunFunc after it changes.
type Watcher struct {
	path     string
	run      RunFunc
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex // guards the debounce timer
	runMu   sync.Mutex // serialises runs
	pending sync.WaitGroup
}

// New creates a watcher for path. A non-positive debounce uses DefaultDebounce.
func New(path string, debounce time.Duration, run RunFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		run:      run,
		debounce: debounce,
		logger:   xglog.WithComponent("watch"),
	}
}

// Run blocks until ctx is cancelled. The parent directory is watched rather than
// the file itself so that editors replacing the file by rename keep triggering.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch document directory: %w", err)
	}

	w.logger.Info().
		Str(xglog.FieldEvent, "watch.started").
		Str(xglog.FieldPath, w.path).
		Msg("watching document for changes")

	var debounceTimer *time.Timer
	defer func() {
		w.mu.Lock()
		if debounceTimer != nil && debounceTimer.Stop() {
			w.pending.Done()
		}
		w.mu.Unlock()
		w.pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(xglog.FieldEvent, "watch.stopped").Msg("document watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug().
				Str(xglog.FieldEvent, "watch.file_changed").
				Str("op", event.Op.String()).
				Msg("document changed")

			w.mu.Lock()
			if debounceTimer != nil && debounceTimer.Stop() {
				w.pending.Done()
			}
			w.pending.Add(1)
			debounceTimer = time.AfterFunc(w.debounce, func() {
				defer w.pending.Done()
				if ctx.Err() != nil {
					return
				}
				w.trigger(ctx)
			})
			w.mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "watch.error").
				Msg("document watcher error")
		}
	}
}

// trigger serialises runs; a failing run is logged and the watcher keeps going.
func (w *Watcher) trigger(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if err := w.run(ctx); err != nil {
		w.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "watch.run_failed").
			Msg("calibration run after change failed")
	}
}
