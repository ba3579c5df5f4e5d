// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package dbms

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/tabular"
)

// source runs a configured query and shapes the rows into a table.
type source struct {
	id    string
	db    *sql.DB
	query string
	style placeholderStyle
}

func (s *source) ID() string { return s.id }

func (s *source) GetTable(ctx context.Context, params map[string]any) (*tabular.Table, error) {
	rows, cols, err := s.run(ctx, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := tabular.New(cols...)
	for rows.Next() {
		row, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", s.id, err)
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("resource %s: %w", s.id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	return t, nil
}

func (s *source) GetTableChunked(ctx context.Context, params map[string]any, chunkSize int) (*resource.TableStream, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("resource %s: chunk size must be >= 1, got %d", s.id, chunkSize)
	}
	rows, cols, err := s.run(ctx, params)
	if err != nil {
		return nil, err
	}

	next := func() (*tabular.Table, error) {
		t := tabular.New(cols...)
		for t.NumRows() < chunkSize && rows.Next() {
			row, err := scanRow(rows, len(cols))
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", s.id, err)
			}
			if err := t.AppendRow(row...); err != nil {
				return nil, fmt.Errorf("resource %s: %w", s.id, err)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("resource %s: %w", s.id, err)
		}
		if t.NumRows() == 0 {
			return nil, io.EOF
		}
		return t, nil
	}
	return resource.NewTableStream(next, rows.Close), nil
}

func (s *source) GetRaw(ctx context.Context, params map[string]any) ([]byte, error) {
	return nil, resource.Unsupported(s.id, "get_raw", "get_table")
}

func (s *source) GetRawChunked(ctx context.Context, params map[string]any) (io.ReadCloser, error) {
	return nil, resource.Unsupported(s.id, "get_raw_chunked", "get_table_chunked")
}

func (s *source) run(ctx context.Context, params map[string]any) (*sql.Rows, []string, error) {
	query, args, err := bindNamed(s.query, params, s.style)
	if err != nil {
		return nil, nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("resource %s: query failed: %w", s.id, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	return rows, cols, nil
}

// scanRow reads the current row into generic values. Byte slices
// become strings so table values stay comparable and JSON-friendly.
func scanRow(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}
