// SPDX-License-Identifier: MIT

package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/trebuchet/internal/document"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	now := time.Date(2023, 12, 1, 6, 0, 0, 0, time.UTC)

	res := document.Result{
		Total: 106,
		Count: 3,
		Blank: 1,
		Values: []document.LineValue{
			{Line: 1, Text: "abc7def", Value: 77},
			{Line: 2, Text: "nothing", Blank: true},
			{Line: 3, Text: "two1nine", Value: 29},
		},
	}
	rep := New("run-1", "data/test.txt", "words", "dev", res, now)
	require.NoError(t, Write(context.Background(), path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := Read(data)
	require.NoError(t, err)

	if diff := cmp.Diff(rep, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	rep := New("run-2", "in.txt", "digits", "", document.Result{Total: 142, Count: 4}, time.Now())
	require.NoError(t, Write(context.Background(), path, rep))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, 142, got.Total)
	assert.NotNil(t, got.Values)
	assert.Empty(t, got.Values)
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	err := Write(context.Background(), path, Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create pending report file")
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read([]byte("{"))
	assert.Error(t, err)
}
