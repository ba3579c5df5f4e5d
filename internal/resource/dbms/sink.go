// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package dbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/tabular"
)

// sink inserts tables into a target table. With the truncate option
// the target is emptied first, inside the same transaction.
type sink struct {
	id       string
	db       *sql.DB
	table    string
	style    placeholderStyle
	truncate bool
}

func (s *sink) ID() string { return s.id }

func (s *sink) PutTable(ctx context.Context, t *tabular.Table, _ map[string]any) error {
	if t == nil || t.NumCols() == 0 {
		return fmt.Errorf("resource %s: refusing to write an empty table", s.id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("resource %s: begin: %w", s.id, err)
	}
	defer tx.Rollback()

	if s.truncate {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(s.table)); err != nil {
			return fmt.Errorf("resource %s: truncate: %w", s.id, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.insertStatement(t.Columns()))
	if err != nil {
		return fmt.Errorf("resource %s: prepare: %w", s.id, err)
	}
	defer stmt.Close()

	for i := 0; i < t.NumRows(); i++ {
		if _, err := stmt.ExecContext(ctx, t.Row(i)...); err != nil {
			return fmt.Errorf("resource %s: row %d: %w", s.id, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("resource %s: commit: %w", s.id, err)
	}
	logging.Debug().
		Str("sink", s.id).
		Str("table", s.table).
		Int("rows", t.NumRows()).
		Msg("Table written")
	return nil
}

func (s *sink) PutRaw(ctx context.Context, _ []byte, _ map[string]any) error {
	return resource.Unsupported(s.id, "put_raw", "put_table")
}

func (s *sink) insertStatement(cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		if s.style == styleDollar {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}
