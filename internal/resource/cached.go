// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/gantry/internal/cache"
	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/metrics"
	"github.com/tomtom215/gantry/internal/tabular"
)

// CachedSource wraps a Source with a per-resource cache keyed on the
// operation and its parameters. The expires setting controls it:
// 0 disables caching entirely, -1 caches forever and a positive value
// is a TTL in seconds. Chunked fetches bypass the cache by nature, so
// they are rejected while caching is enabled.
type CachedSource struct {
	src     Source
	expires int
	cache   *cache.Cache
}

// NewCachedSource wraps src according to the resource configuration.
func NewCachedSource(src Source, res config.Resource) *CachedSource {
	c := &CachedSource{src: src, expires: res.Expires}
	if res.Expires != 0 {
		capacity := res.CacheSize
		if capacity <= 0 {
			capacity = cache.DefaultCapacity
		}
		var ttl time.Duration
		if res.Expires > 0 {
			ttl = time.Duration(res.Expires) * time.Second
		}
		c.cache = cache.New(capacity, ttl)
	}
	return c
}

// Unwrap returns the underlying Source.
func (c *CachedSource) Unwrap() Source { return c.src }

func (c *CachedSource) ID() string { return c.src.ID() }

func (c *CachedSource) GetTable(ctx context.Context, params map[string]any) (*tabular.Table, error) {
	key := cache.Key("get_table", params)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			metrics.RecordCacheHit(c.ID())
			return v.(*tabular.Table), nil
		}
		metrics.RecordCacheMiss(c.ID())
	}

	start := time.Now()
	t, err := c.src.GetTable(ctx, params)
	metrics.RecordResourceOperation(c.ID(), "get_table", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Put(key, t)
		metrics.SetCacheEntries(c.ID(), c.cache.Len())
	}
	return t, nil
}

func (c *CachedSource) GetRaw(ctx context.Context, params map[string]any) ([]byte, error) {
	key := cache.Key("get_raw", params)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			metrics.RecordCacheHit(c.ID())
			return v.([]byte), nil
		}
		metrics.RecordCacheMiss(c.ID())
	}

	start := time.Now()
	data, err := c.src.GetRaw(ctx, params)
	metrics.RecordResourceOperation(c.ID(), "get_raw", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Put(key, data)
		metrics.SetCacheEntries(c.ID(), c.cache.Len())
	}
	return data, nil
}

func (c *CachedSource) GetTableChunked(ctx context.Context, params map[string]any, chunkSize int) (*TableStream, error) {
	if c.expires != 0 {
		return nil, fmt.Errorf("resource %s: %w (set expires: 0 to stream)", c.ID(), ErrStreamingWithCache)
	}
	start := time.Now()
	stream, err := c.src.GetTableChunked(ctx, params, chunkSize)
	metrics.RecordResourceOperation(c.ID(), "get_table_chunked", time.Since(start), err)
	return stream, err
}

func (c *CachedSource) GetRawChunked(ctx context.Context, params map[string]any) (io.ReadCloser, error) {
	if c.expires != 0 {
		return nil, fmt.Errorf("resource %s: %w (set expires: 0 to stream)", c.ID(), ErrStreamingWithCache)
	}
	start := time.Now()
	rc, err := c.src.GetRawChunked(ctx, params)
	metrics.RecordResourceOperation(c.ID(), "get_raw_chunked", time.Since(start), err)
	return rc, err
}

// CacheStats reports hit/miss counters and the current entry count.
// All zeros when caching is disabled.
func (c *CachedSource) CacheStats() (hits, misses int64, size int) {
	if c.cache == nil {
		return 0, 0, 0
	}
	return c.cache.Stats()
}

// ClearCache drops all cached entries and resets the counters.
func (c *CachedSource) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
		metrics.SetCacheEntries(c.ID(), 0)
	}
}

// measuredSink wraps a Sink with operation metrics.
type measuredSink struct {
	sink Sink
}

func (m measuredSink) ID() string { return m.sink.ID() }

func (m measuredSink) PutTable(ctx context.Context, table *tabular.Table, params map[string]any) error {
	start := time.Now()
	err := m.sink.PutTable(ctx, table, params)
	metrics.RecordResourceOperation(m.ID(), "put_table", time.Since(start), err)
	return err
}

func (m measuredSink) PutRaw(ctx context.Context, data []byte, params map[string]any) error {
	start := time.Now()
	err := m.sink.PutRaw(ctx, data, params)
	metrics.RecordResourceOperation(m.ID(), "put_raw", time.Since(start), err)
	return err
}
