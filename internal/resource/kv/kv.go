// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package kv provides key-value resources backed by BadgerDB. Values
// are raw bytes addressed by a configured key, overridable per call
// with params["key"].
package kv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/tabular"
)

func init() {
	resource.RegisterBuiltin(&provider{dbs: make(map[string]*badger.DB)})
}

// provider creates kv sources and sinks. Badger locks its directory,
// so databases are shared per path across all resources using them.
type provider struct {
	mu  sync.Mutex
	dbs map[string]*badger.DB
}

func (p *provider) Name() string { return "kv" }

func (p *provider) Serves() []string {
	return []string{"kv", "kv.badger"}
}

func (p *provider) NewSource(name string, res config.Resource, conn config.Connection) (resource.Source, error) {
	db, err := p.open(res, conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &source{id: name, db: db, key: res.Key}, nil
}

func (p *provider) NewSink(name string, res config.Resource, conn config.Connection) (resource.Sink, error) {
	db, err := p.open(res, conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	ttl := time.Duration(0)
	if secs, ok := res.Options["ttl_seconds"].(int); ok && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	return &sink{id: name, db: db, key: res.Key, ttl: ttl}, nil
}

func (p *provider) open(res config.Resource, conn config.Connection) (*badger.DB, error) {
	path := conn.Path
	if path == "" {
		path = res.Path
	}
	if path == "" {
		return nil, fmt.Errorf("kv resources need a path on the resource or its connection: %w", resource.ErrConfig)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if db, ok := p.dbs[path]; ok {
		return db, nil
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	p.dbs[path] = db
	logging.Debug().Str("path", path).Msg("Badger store opened")
	return db, nil
}

// resolveKey picks the per-call key from params, falling back to the
// configured one.
func resolveKey(id, configured string, params map[string]any) (string, error) {
	if params != nil {
		if k, ok := params["key"]; ok {
			s, ok := k.(string)
			if !ok || s == "" {
				return "", fmt.Errorf("resource %s: params key must be a non-empty string, got %v", id, k)
			}
			return s, nil
		}
	}
	if configured == "" {
		return "", fmt.Errorf("resource %s: no key configured and none passed in params: %w", id, resource.ErrConfig)
	}
	return configured, nil
}

type source struct {
	id  string
	db  *badger.DB
	key string
}

func (s *source) ID() string { return s.id }

func (s *source) GetRaw(_ context.Context, params map[string]any) ([]byte, error) {
	key, err := resolveKey(s.id, s.key, params)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resource %s: key %s: %w", s.id, key, err)
	}
	return value, nil
}

func (s *source) GetRawChunked(ctx context.Context, params map[string]any) (io.ReadCloser, error) {
	data, err := s.GetRaw(ctx, params)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *source) GetTable(_ context.Context, _ map[string]any) (*tabular.Table, error) {
	return nil, resource.Unsupported(s.id, "get_table", "get_raw")
}

func (s *source) GetTableChunked(_ context.Context, _ map[string]any, _ int) (*resource.TableStream, error) {
	return nil, resource.Unsupported(s.id, "get_table_chunked", "get_raw_chunked")
}

type sink struct {
	id  string
	db  *badger.DB
	key string
	ttl time.Duration
}

func (s *sink) ID() string { return s.id }

func (s *sink) PutRaw(_ context.Context, data []byte, params map[string]any) error {
	key, err := resolveKey(s.id, s.key, params)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("resource %s: key %s: %w", s.id, key, err)
	}
	return nil
}

func (s *sink) PutTable(_ context.Context, _ *tabular.Table, _ map[string]any) error {
	return resource.Unsupported(s.id, "put_table", "put_raw")
}
