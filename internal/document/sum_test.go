// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package document

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/ManuGH/trebuchet/internal/calibrate"
	xglog "github.com/ManuGH/trebuchet/internal/log"
	"github.com/ManuGH/trebuchet/internal/testutil"
)

const wordsDocument = "1abc2\npqr3stu8vwx\na1b2c3d4e5f\ntreb7uchet\ntwo1nine\neightwothree\n"

const digitsDocument = "1abc2\npqr3stu8vwx\na1b2c3d4e5f\ntreb7uchet\n"

const longWordsDocument = `two1nine
eightwothree
abcone2threexyz
xtwone3four
4nineeightseven2
zoneight234
7pqrstsixteen
`

func TestSum_Words(t *testing.T) {
	s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{Mode: "words"})

	res, err := s.Sum(context.Background(), strings.NewReader(wordsDocument))
	require.NoError(t, err)
	assert.Equal(t, 254, res.Total)
	assert.Equal(t, 6, res.Count)
	assert.Zero(t, res.Blank)
	assert.Nil(t, res.Values)
}

func TestSum_DigitsOnly(t *testing.T) {
	s := NewSummer(calibrate.New(nil), Options{Mode: "digits"})

	res, err := s.Sum(context.Background(), strings.NewReader(digitsDocument))
	require.NoError(t, err)
	assert.Equal(t, 142, res.Total)
}

func TestSum_LongerWordsDocument(t *testing.T) {
	s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{})

	res, err := s.Sum(context.Background(), strings.NewReader(longWordsDocument))
	require.NoError(t, err)
	assert.Equal(t, 29+83+13+24+42+14+76, res.Total)
}

func TestSum_KeepLinesAndBlank(t *testing.T) {
	s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{KeepLines: true})

	res, err := s.Sum(context.Background(), strings.NewReader("abc7def\n\nnothing\ntwo1nine\n"))
	require.NoError(t, err)

	want := Result{
		Total: 77 + 29,
		Count: 4,
		Blank: 2,
		Values: []LineValue{
			{Line: 1, Text: "abc7def", Value: 77},
			{Line: 2, Text: "", Blank: true},
			{Line: 3, Text: "nothing", Blank: true},
			{Line: 4, Text: "two1nine", Value: 29},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Sum() mismatch (-want +got):\n%s", diff)
	}
}

func TestSum_EmptyDocument(t *testing.T) {
	s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{Workers: 4})

	res, err := s.Sum(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestSum_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var b strings.Builder
	for i := 0; i < 997; i++ {
		fmt.Fprintf(&b, "line%dtwo%sxeightwo\n", i%10, strings.Repeat("z", i%7))
	}
	doc := b.String()
	cal := calibrate.New(calibrate.EnglishWords())

	seq, err := NewSummer(cal, Options{KeepLines: true}).Sum(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 64, 2000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			par, err := NewSummer(cal, Options{Workers: workers, KeepLines: true}).
				Sum(context.Background(), strings.NewReader(doc))
			require.NoError(t, err)
			if diff := cmp.Diff(seq, par); diff != "" {
				t.Errorf("parallel result differs (-seq +par):\n%s", diff)
			}
		})
	}
}

func TestSum_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{Workers: workers})
		_, err := s.Sum(ctx, strings.NewReader(wordsDocument))
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestSum_OutOfRangeValueDegradesToZero(t *testing.T) {
	table := calibrate.NewTable(calibrate.Word{Text: "dozen", Value: 12})
	s := NewSummer(calibrate.New(table), Options{KeepLines: true})

	res, err := s.Sum(context.Background(), strings.NewReader("dozen\n3x4\n"))
	require.NoError(t, err)
	assert.Equal(t, 34, res.Total)
	assert.Equal(t, 2, res.Count)
	assert.Zero(t, res.Values[0].Value)
}

// flakyCalibrator panics on one line and defers to the English table otherwise.
type flakyCalibrator struct {
	calibrate.Calibrator
	bad string
}

func (f flakyCalibrator) Digits(line string) (int, int, bool) {
	if line == f.bad {
		panic("calibrator failure on " + line)
	}
	return f.Calibrator.Digits(line)
}

func TestSum_PanickingLineDegradesToZero(t *testing.T) {
	cal := flakyCalibrator{Calibrator: calibrate.New(calibrate.EnglishWords()), bad: "boom"}

	want := []LineValue{
		{Line: 1, Text: "1abc2", Value: 12},
		{Line: 2, Text: "boom", Blank: true},
		{Line: 3, Text: "seven", Value: 77},
	}
	for _, workers := range []int{1, 3} {
		s := NewSummer(cal, Options{Workers: workers, KeepLines: true})
		res, err := s.Sum(context.Background(), strings.NewReader("1abc2\nboom\nseven\n"))
		require.NoError(t, err, "workers=%d", workers)
		assert.Equal(t, 89, res.Total, "workers=%d", workers)
		assert.Equal(t, 3, res.Count, "workers=%d", workers)
		assert.Equal(t, 1, res.Blank, "workers=%d", workers)
		if diff := cmp.Diff(want, res.Values); diff != "" {
			t.Errorf("workers=%d values mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestSum_LineFailureLogsCarryRunID(t *testing.T) {
	var buf bytes.Buffer
	xglog.Reconfigure(xglog.Config{Output: &buf, Level: "debug"})
	t.Cleanup(func() { xglog.Reconfigure(xglog.Config{}) })

	table := calibrate.NewTable(calibrate.Word{Text: "dozen", Value: 12})
	s := NewSummer(calibrate.New(table), Options{})
	ctx := xglog.ContextWithRunID(context.Background(), "run-42")

	_, err := s.Sum(ctx, strings.NewReader("dozen\n"))
	require.NoError(t, err)

	var found bool
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry[xglog.FieldEvent] != "document.value_out_of_range" {
			continue
		}
		found = true
		assert.Equal(t, "run-42", entry[xglog.FieldRunID])
		assert.EqualValues(t, 1, entry[xglog.FieldLine])
	}
	assert.True(t, found, "out-of-range warning not logged:\n%s", buf.String())
}

func TestSum_CombiningMarkKeepsWordVisible(t *testing.T) {
	line := "seven\u0307"
	cal := calibrate.New(calibrate.EnglishWords())
	require.Equal(t, 77, cal.Value(line))

	s := NewSummer(cal, Options{})
	res, err := s.Sum(context.Background(), strings.NewReader(line+"\n"))
	require.NoError(t, err)
	assert.Equal(t, cal.Value(line), res.Total)
}

func TestSumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(wordsDocument, "\n", "\r\n")), 0o600))

	s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{Mode: "words"})
	res, err := s.SumFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 254, res.Total)

	_, err = s.SumFile(context.Background(), filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSum_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	s := NewSummer(calibrate.New(calibrate.EnglishWords()), Options{Workers: 3, Mode: "words"})
	_, err := s.Sum(context.Background(), strings.NewReader(wordsDocument))
	require.NoError(t, err)

	names := map[string]int{}
	for _, span := range recorder.Ended() {
		names[span.Name()]++
	}
	assert.Equal(t, 1, names["document.sum"])
	assert.Equal(t, 3, names["document.chunk"])
}

func TestSumFile_Fixtures(t *testing.T) {
	tests := []struct {
		fixture string
		table   *calibrate.Table
		want    int
	}{
		{"example-digits.txt", nil, 142},
		{"example-words.txt", calibrate.EnglishWords(), 281},
		{"example-mixed.txt", calibrate.EnglishWords(), 254},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			s := NewSummer(calibrate.New(tt.table), Options{})
			res, err := s.SumFile(context.Background(), testutil.FixturePath(t, tt.fixture))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
		})
	}
}
