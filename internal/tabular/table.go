// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package tabular provides the small column-ordered table type passed
// between data resources and user model code, together with the helpers
// model code is expected to use on it: deterministic column ordering,
// summary statistics for train reports, and normalization of prediction
// results into plainly serializable structures.
package tabular

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Table is an ordered-column, row-major data table.
// Column order is significant and preserved through fetch, store and
// serialization round trips.
type Table struct {
	columns []string
	rows    [][]any
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols}
}

// FromRows creates a table from a column list and row-major values.
// Every row must have exactly one value per column.
func FromRows(columns []string, rows [][]any) (*Table, error) {
	t := New(columns...)
	for i, row := range rows {
		if err := t.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

// FromRecords creates a table from name-keyed records. When no explicit
// column order is given, the union of record keys is used in sorted order.
func FromRecords(records []map[string]any, columns ...string) *Table {
	if len(columns) == 0 {
		seen := make(map[string]bool)
		for _, rec := range records {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}

	t := New(columns...)
	for _, rec := range records {
		row := make([]any, len(t.columns))
		for i, col := range t.columns {
			row[i] = rec[col]
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// AppendRow adds one row. The value count must match the column count.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("expected %d values, got %d", len(t.columns), len(values))
	}
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Row returns a copy of row i. An out-of-range index panics, the same
// contract as indexing the underlying slice.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]any, error) {
	idx := -1
	for i, col := range t.columns {
		if col == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("no such column %q", name)
	}

	values := make([]any, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Records returns the table in record orientation: one name-keyed map
// per row, in row order.
func (t *Table) Records() []map[string]any {
	records := make([]map[string]any, len(t.rows))
	for i, row := range t.rows {
		rec := make(map[string]any, len(t.columns))
		for j, col := range t.columns {
			rec[col] = row[j]
		}
		records[i] = rec
	}
	return records
}

// orderCalls counts OrderColumns invocations process-wide. The lifecycle
// layer compares snapshots of this counter around train/test/predict calls
// to emit its column-ordering advisory.
var orderCalls atomic.Int64

// OrderColumns returns a new table with columns rearranged into sorted
// order, so that feature alignment does not depend on the order a backend
// happened to deliver columns in. Training and inference code should both
// route their feature tables through this function.
func OrderColumns(t *Table) *Table {
	orderCalls.Add(1)

	sorted := t.Columns()
	sort.Strings(sorted)

	index := make(map[string]int, len(t.columns))
	for i, col := range t.columns {
		index[col] = i
	}

	out := New(sorted...)
	for _, row := range t.rows {
		projected := make([]any, len(sorted))
		for j, col := range sorted {
			projected[j] = row[index[col]]
		}
		out.rows = append(out.rows, projected)
	}
	return out
}

// OrderColumnsCalls returns the number of OrderColumns invocations so far.
func OrderColumnsCalls() int64 {
	return orderCalls.Load()
}
