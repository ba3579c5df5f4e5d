// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"bytes"
	"context"
	"io"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/tabular"
)

// fakeSource counts calls so cache behavior is observable.
type fakeSource struct {
	id         string
	table      *tabular.Table
	raw        []byte
	err        error
	tableCalls int
	rawCalls   int
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) GetTable(_ context.Context, _ map[string]any) (*tabular.Table, error) {
	f.tableCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeSource) GetRaw(_ context.Context, _ map[string]any) ([]byte, error) {
	f.rawCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func (f *fakeSource) GetTableChunked(_ context.Context, _ map[string]any, _ int) (*TableStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	done := false
	return NewTableStream(func() (*tabular.Table, error) {
		if done {
			return nil, io.EOF
		}
		done = true
		return f.table, nil
	}, nil), nil
}

func (f *fakeSource) GetRawChunked(_ context.Context, _ map[string]any) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.raw)), nil
}

// fakeSink records what was written to it.
type fakeSink struct {
	id     string
	tables []*tabular.Table
	raws   [][]byte
}

func (f *fakeSink) ID() string { return f.id }

func (f *fakeSink) PutTable(_ context.Context, t *tabular.Table, _ map[string]any) error {
	f.tables = append(f.tables, t)
	return nil
}

func (f *fakeSink) PutRaw(_ context.Context, data []byte, _ map[string]any) error {
	f.raws = append(f.raws, data)
	return nil
}

// fakeProvider serves the listed capabilities and records every
// construction for assertions.
type fakeProvider struct {
	name      string
	serves    []string
	created   []string
	lastConn  config.Connection
	sourceErr error
}

func (p *fakeProvider) Name() string     { return p.name }
func (p *fakeProvider) Serves() []string { return p.serves }

func (p *fakeProvider) NewSource(name string, _ config.Resource, conn config.Connection) (Source, error) {
	if p.sourceErr != nil {
		return nil, p.sourceErr
	}
	p.created = append(p.created, name)
	p.lastConn = conn
	return &fakeSource{id: name, table: tabular.New("a")}, nil
}

func (p *fakeProvider) NewSink(name string, _ config.Resource, conn config.Connection) (Sink, error) {
	p.created = append(p.created, name)
	p.lastConn = conn
	return &fakeSink{id: name}, nil
}
