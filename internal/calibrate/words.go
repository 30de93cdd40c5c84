// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package calibrate

import (
	"sort"
	"strings"
)

// Word is a spelled-out digit and the value it stands for.
type Word struct {
	Text  string
	Value int
}

// Table maps spelled-out digit words to their values.
// A Table is immutable after construction and safe for concurrent use.
// A nil or empty Table matches nothing (literal digits only).
type Table struct {
	words []Word
}

var english = NewTable(
	Word{"one", 1},
	Word{"two", 2},
	Word{"three", 3},
	Word{"four", 4},
	Word{"five", 5},
	Word{"six", 6},
	Word{"seven", 7},
	Word{"eight", 8},
	Word{"nine", 9},
)

// EnglishWords returns the shared table for "one" through "nine".
func EnglishWords() *Table {
	return english
}

// NewTable builds a table from the given words. Empty words are ignored.
func NewTable(words ...Word) *Table {
	t := &Table{words: make([]Word, 0, len(words))}
	for _, w := range words {
		if w.Text == "" {
			continue
		}
		t.words = append(t.words, w)
	}
	return t
}

// MatchAt reports whether line[i:] begins with a word of the table and returns its value.
func (t *Table) MatchAt(line string, i int) (int, bool) {
	if t == nil || i < 0 || i >= len(line) {
		return 0, false
	}
	rest := line[i:]
	for _, w := range t.words {
		if strings.HasPrefix(rest, w.Text) {
			return w.Value, true
		}
	}
	return 0, false
}

// Len returns the number of words in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.words)
}

// Words returns the table's words sorted by value.
func (t *Table) Words() []string {
	if t == nil {
		return nil
	}
	sorted := make([]Word, len(t.words))
	copy(sorted, t.words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	out := make([]string, len(sorted))
	for i, w := range sorted {
		out[i] = w.Text
	}
	return out
}
