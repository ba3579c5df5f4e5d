// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package dbms

import (
	"reflect"
	"strings"
	"testing"
)

func TestBindNamed(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		params    map[string]any
		style     placeholderStyle
		wantQuery string
		wantArgs  []any
		wantErr   string
	}{
		{
			name:      "no parameters",
			query:     "select 1",
			style:     styleQuestion,
			wantQuery: "select 1",
		},
		{
			name:      "single question mark",
			query:     "select * from t where a = :a",
			params:    map[string]any{"a": 7},
			style:     styleQuestion,
			wantQuery: "select * from t where a = ?",
			wantArgs:  []any{7},
		},
		{
			name:      "dollar numbering in occurrence order",
			query:     "select * from t where a = :a and b = :b",
			params:    map[string]any{"a": 1, "b": "x"},
			style:     styleDollar,
			wantQuery: "select * from t where a = $1 and b = $2",
			wantArgs:  []any{1, "x"},
		},
		{
			name:      "repeated name binds twice",
			query:     "select * from t where a = :a or b = :a",
			params:    map[string]any{"a": 3},
			style:     styleDollar,
			wantQuery: "select * from t where a = $1 or b = $2",
			wantArgs:  []any{3, 3},
		},
		{
			name:      "postgres cast left alone",
			query:     "select x::int from t where a = :a",
			params:    map[string]any{"a": 1},
			style:     styleDollar,
			wantQuery: "select x::int from t where a = $1",
			wantArgs:  []any{1},
		},
		{
			name:      "bare colon left alone",
			query:     "select 'a:b' from t",
			style:     styleQuestion,
			wantQuery: "select 'a:b' from t",
		},
		{
			name:    "missing parameter",
			query:   "select * from t where a = :missing",
			params:  map[string]any{"a": 1},
			style:   styleQuestion,
			wantErr: ":missing",
		},
		{
			name:      "unused params allowed",
			query:     "select * from t where a = :a",
			params:    map[string]any{"a": 1, "extra": 2},
			style:     styleQuestion,
			wantQuery: "select * from t where a = ?",
			wantArgs:  []any{1},
		},
		{
			name:      "underscore and digits in names",
			query:     "select * from t where a = :min_n2",
			params:    map[string]any{"min_n2": 5},
			style:     styleQuestion,
			wantQuery: "select * from t where a = ?",
			wantArgs:  []any{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotQuery, gotArgs, err := bindNamed(tt.query, tt.params, tt.style)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("bindNamed() = %q, want error containing %q", gotQuery, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q should contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("bindNamed() error: %v", err)
			}
			if gotQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", gotQuery, tt.wantQuery)
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"petals", `"petals"`},
		{"main.petals", `"main"."petals"`},
		{`odd"name`, `"odd""name"`},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.in); got != tt.want {
			t.Errorf("quoteIdent(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
