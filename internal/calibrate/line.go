// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package calibrate extracts calibration values from lines of text.
//
// A calibration value is formed from the first and last digit of a line. Digits are
// literal characters '0'-'9' or, when a word table is configured, spelled-out words
// such as "seven". Words may overlap ("eightwo" holds both 8 and 2), so both scans
// run read-only against the unmodified line and never consume characters.
package calibrate

// Calibrator computes calibration values. The zero value only recognises literal digits.
type Calibrator struct {
	words *Table
}

// New returns a Calibrator that also recognises the words of table.
// A nil table restricts the calibrator to literal digits.
func New(table *Table) Calibrator {
	return Calibrator{words: table}
}

// Words returns the word table used by the calibrator (may be nil).
func (c Calibrator) Words() *Table {
	return c.words
}

// digitAt returns the digit starting at position i of line, if any.
// Literal digits take precedence over words; both cannot start at the same byte.
func (c Calibrator) digitAt(line string, i int) (int, bool) {
	if ch := line[i]; ch >= '0' && ch <= '9' {
		return int(ch - '0'), true
	}
	return c.words.MatchAt(line, i)
}

// Digits returns the first and last digit of line.
// ok is false when the line holds no digit at all.
func (c Calibrator) Digits(line string) (first, last int, ok bool) {
	start := -1
	for i := 0; i < len(line); i++ {
		if d, found := c.digitAt(line, i); found {
			first, start = d, i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	for i := len(line) - 1; i >= start; i-- {
		if d, found := c.digitAt(line, i); found {
			last = d
			break
		}
	}
	return first, last, true
}

// Value returns the calibration value of line: first*10 + last, or 0 without digits.
func (c Calibrator) Value(line string) int {
	first, last, ok := c.Digits(line)
	if !ok {
		return 0
	}
	return first*10 + last
}
