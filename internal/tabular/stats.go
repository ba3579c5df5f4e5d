// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package tabular

import (
	"math"
	"time"
)

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summary is the bounded-size description of a table stored in train
// reports instead of the table itself.
type Summary struct {
	NRows       int                    `json:"nrows"`
	NCols       int                    `json:"ncols"`
	ColNames    []string               `json:"colnames"`
	DTypes      []string               `json:"dtypes"`
	Description map[string]ColumnStats `json:"description"`
}

// Describe summarizes the table: shape, column names and types, and
// descriptive statistics for every numeric column. Non-numeric values in
// a numeric column are skipped rather than failing the summary.
func (t *Table) Describe() *Summary {
	s := &Summary{
		NRows:       t.NumRows(),
		NCols:       t.NumCols(),
		ColNames:    t.Columns(),
		DTypes:      t.DTypes(),
		Description: make(map[string]ColumnStats),
	}

	for i, col := range t.columns {
		var values []float64
		for _, row := range t.rows {
			if f, ok := asFloat(row[i]); ok {
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			continue
		}
		s.Description[col] = describeValues(values)
	}

	return s
}

// DTypes reports one type label per column: "int", "float", "bool",
// "string", "time", "null" for all-nil columns, or "mixed".
func (t *Table) DTypes() []string {
	dtypes := make([]string, len(t.columns))
	for i := range t.columns {
		dtypes[i] = t.columnType(i)
	}
	return dtypes
}

func (t *Table) columnType(idx int) string {
	current := ""
	for _, row := range t.rows {
		kind := valueKind(row[idx])
		if kind == "null" {
			continue
		}
		if current == "" {
			current = kind
			continue
		}
		if current != kind {
			// int and float mix to float, everything else is mixed.
			if (current == "int" && kind == "float") || (current == "float" && kind == "int") {
				current = "float"
				continue
			}
			return "mixed"
		}
	}
	if current == "" {
		return "null"
	}
	return current
}

func valueKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case string:
		return "string"
	case time.Time:
		return "time"
	default:
		return "mixed"
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func describeValues(values []float64) ColumnStats {
	stats := ColumnStats{
		Count: len(values),
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - stats.Mean
			sq += d * d
		}
		// Sample standard deviation, matching the usual describe() output.
		stats.Std = math.Sqrt(sq / float64(len(values)-1))
	}

	return stats
}
