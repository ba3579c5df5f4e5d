// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/tabular"
)

// rawSource reads a file as bytes. It backs both text_file and
// binary_file, which differ only in intent.
type rawSource struct {
	id   string
	path string
	typ  string
}

func (s *rawSource) ID() string { return s.id }

func (s *rawSource) GetRaw(_ context.Context, _ map[string]any) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	return data, nil
}

func (s *rawSource) GetRawChunked(_ context.Context, _ map[string]any) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", s.id, err)
	}
	return f, nil
}

func (s *rawSource) GetTable(_ context.Context, _ map[string]any) (*tabular.Table, error) {
	return nil, resource.Unsupported(s.id, "get_table", "get_raw")
}

func (s *rawSource) GetTableChunked(_ context.Context, _ map[string]any, _ int) (*resource.TableStream, error) {
	return nil, resource.Unsupported(s.id, "get_table_chunked", "get_raw_chunked")
}

// rawSink writes bytes to a file.
type rawSink struct {
	id   string
	path string
	typ  string
}

func (s *rawSink) ID() string { return s.id }

func (s *rawSink) PutRaw(_ context.Context, data []byte, _ map[string]any) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("resource %s: %w", s.id, err)
	}
	return nil
}

func (s *rawSink) PutTable(_ context.Context, _ *tabular.Table, _ map[string]any) error {
	return resource.Unsupported(s.id, "put_table", "put_raw")
}
