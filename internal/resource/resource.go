// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"context"
	"io"

	"github.com/tomtom215/gantry/internal/tabular"
)

// Source reads data from a backing system. Implementations return
// Unsupported errors for operations their backend has no sensible
// mapping for, naming the supported alternative.
type Source interface {
	// ID returns the configured resource name.
	ID() string

	// GetTable fetches the whole resource as a table. Params are
	// backend-specific, e.g. query placeholders for dbms sources.
	GetTable(ctx context.Context, params map[string]any) (*tabular.Table, error)

	// GetRaw fetches the whole resource as bytes.
	GetRaw(ctx context.Context, params map[string]any) ([]byte, error)

	// GetTableChunked fetches the resource in chunks of at most
	// chunkSize rows. The caller must drain or Close the stream.
	GetTableChunked(ctx context.Context, params map[string]any, chunkSize int) (*TableStream, error)

	// GetRawChunked opens the resource for streaming reads. The
	// caller must Close the reader.
	GetRawChunked(ctx context.Context, params map[string]any) (io.ReadCloser, error)
}

// Sink writes data to a backing system.
type Sink interface {
	// ID returns the configured resource name.
	ID() string

	// PutTable writes a table to the resource.
	PutTable(ctx context.Context, table *tabular.Table, params map[string]any) error

	// PutRaw writes bytes to the resource.
	PutRaw(ctx context.Context, data []byte, params map[string]any) error
}

// TableStream iterates over a chunked fetch in the manner of sql.Rows:
//
//	stream, err := src.GetTableChunked(ctx, nil, 1000)
//	...
//	defer stream.Close()
//	for stream.Next() {
//	    chunk := stream.Table()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
type TableStream struct {
	next    func() (*tabular.Table, error)
	closeFn func() error

	cur    *tabular.Table
	err    error
	closed bool
}

// NewTableStream builds a TableStream from a next function, which
// returns io.EOF when the stream is exhausted, and an optional close
// function.
func NewTableStream(next func() (*tabular.Table, error), closeFn func() error) *TableStream {
	return &TableStream{next: next, closeFn: closeFn}
}

// Next advances to the next chunk. It returns false at the end of the
// stream or on error, after which Err distinguishes the two.
func (s *TableStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	t, err := s.next()
	if err == io.EOF {
		s.cur = nil
		s.close()
		return false
	}
	if err != nil {
		s.err = err
		s.cur = nil
		s.close()
		return false
	}
	s.cur = t
	return true
}

// Table returns the current chunk. Only valid after a true Next.
func (s *TableStream) Table() *tabular.Table {
	return s.cur
}

// Err returns the first error encountered while iterating.
func (s *TableStream) Err() error {
	return s.err
}

// Close releases the underlying reader. Safe to call more than once.
func (s *TableStream) Close() error {
	return s.close()
}

func (s *TableStream) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}
