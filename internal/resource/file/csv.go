// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/tabular"
)

// csvSource reads a delimited file with a header row into a table.
// Cell values are inferred as int, float or string; empty cells
// become nil.
type csvSource struct {
	id           string
	path         string
	sep          rune
	decimalComma bool
}

func (s *csvSource) ID() string { return s.id }

func (s *csvSource) GetTable(ctx context.Context, _ map[string]any) (*tabular.Table, error) {
	f, r, cols, err := s.openReader()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := tabular.New(cols...)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", s.id, err)
		}
		if err := t.AppendRow(s.inferRow(rec)...); err != nil {
			return nil, fmt.Errorf("resource %s: %w", s.id, err)
		}
	}
	return t, nil
}

func (s *csvSource) GetTableChunked(_ context.Context, _ map[string]any, chunkSize int) (*resource.TableStream, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("resource %s: chunk size must be >= 1, got %d", s.id, chunkSize)
	}
	f, r, cols, err := s.openReader()
	if err != nil {
		return nil, err
	}

	next := func() (*tabular.Table, error) {
		t := tabular.New(cols...)
		for t.NumRows() < chunkSize {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", s.id, err)
			}
			if err := t.AppendRow(s.inferRow(rec)...); err != nil {
				return nil, fmt.Errorf("resource %s: %w", s.id, err)
			}
		}
		if t.NumRows() == 0 {
			return nil, io.EOF
		}
		return t, nil
	}
	return resource.NewTableStream(next, f.Close), nil
}

func (s *csvSource) GetRaw(_ context.Context, _ map[string]any) ([]byte, error) {
	return nil, resource.Unsupported(s.id, "get_raw", "get_table")
}

func (s *csvSource) GetRawChunked(_ context.Context, _ map[string]any) (io.ReadCloser, error) {
	return nil, resource.Unsupported(s.id, "get_raw_chunked", "get_table_chunked")
}

func (s *csvSource) openReader() (*os.File, *csv.Reader, []string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	r := csv.NewReader(f)
	r.Comma = s.sep
	r.ReuseRecord = true

	header, err := r.Read()
	if err == io.EOF {
		f.Close()
		return nil, nil, nil, fmt.Errorf("resource %s: %s has no header row", s.id, s.path)
	}
	if err != nil {
		f.Close()
		return nil, nil, nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	cols := make([]string, len(header))
	copy(cols, header)
	return f, r, cols, nil
}

func (s *csvSource) inferRow(rec []string) []any {
	row := make([]any, len(rec))
	for i, cell := range rec {
		row[i] = s.inferValue(cell)
	}
	return row
}

func (s *csvSource) inferValue(cell string) any {
	if cell == "" {
		return nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	fcell := cell
	if s.decimalComma {
		// Non-numeric text keeps its comma via the fallback below
		fcell = strings.Replace(cell, ",", ".", 1)
	}
	if f, err := strconv.ParseFloat(fcell, 64); err == nil {
		return f
	}
	return cell
}

// csvSink writes a table as a delimited file with a header row.
type csvSink struct {
	id           string
	path         string
	sep          rune
	decimalComma bool
}

func (s *csvSink) ID() string { return s.id }

func (s *csvSink) PutTable(_ context.Context, t *tabular.Table, _ map[string]any) error {
	if t == nil {
		return fmt.Errorf("resource %s: refusing to write a nil table", s.id)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("resource %s: %w", s.id, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = s.sep
	if err := w.Write(t.Columns()); err != nil {
		return fmt.Errorf("resource %s: %w", s.id, err)
	}
	rec := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			rec[j] = s.formatValue(v)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("resource %s: row %d: %w", s.id, i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("resource %s: %w", s.id, err)
	}
	return f.Close()
}

func (s *csvSink) PutRaw(_ context.Context, _ []byte, _ map[string]any) error {
	return resource.Unsupported(s.id, "put_raw", "put_table")
}

func (s *csvSink) formatValue(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case float64:
		out := strconv.FormatFloat(x, 'g', -1, 64)
		if s.decimalComma {
			out = strings.Replace(out, ".", ",", 1)
		}
		return out
	case float32:
		return s.formatValue(float64(x))
	default:
		return fmt.Sprint(v)
	}
}
