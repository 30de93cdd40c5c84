// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package document reads calibration documents and sums their calibration values.
package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ManuGH/trebuchet/internal/normalize"
)

// maxLineBytes bounds a single line; longer lines fail the document.
const maxLineBytes = 1 << 20

// ErrLineTooLong is returned when a line exceeds maxLineBytes.
var ErrLineTooLong = errors.New("line too long")

// Document is an opened calibration document.
type Document struct {
	path string
	file *os.File
	r    io.Reader
}

// Open opens the document at path for reading.
func Open(path string) (*Document, error) {
	path = filepath.Clean(path)
	// #nosec G304 -- the document path is provided by the operator via CLI/ENV/config
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return &Document{path: path, file: f, r: NewReader(f)}, nil
}

// Path returns the cleaned path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// Read reads decoded UTF-8 text.
func (d *Document) Read(p []byte) (int, error) {
	return d.r.Read(p)
}

// Close closes the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// NewReader returns a reader that yields UTF-8 text. A UTF-8 byte order mark is
// dropped and UTF-16 input with a byte order mark is transcoded.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ForLines calls fn for every line of r in order, with 1-based line numbers.
// Lines are normalized before fn sees them. Iteration stops at the first error
// returned by fn.
func ForLines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	n := 0
	for sc.Scan() {
		n++
		if err := fn(n, normalize.Line(sc.Text())); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("read line %d: %w", n+1, ErrLineTooLong)
		}
		return fmt.Errorf("read document: %w", err)
	}
	return nil
}

// ReadLines collects all lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	err := ForLines(r, func(_ int, line string) error {
		lines = append(lines, line)
		return nil
	})
	return lines, err
}
