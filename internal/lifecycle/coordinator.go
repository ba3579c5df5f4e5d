// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/store"
)

// CallOption adjusts a single Train, Retest or Predict call.
type CallOption func(*callOptions)

type callOptions struct {
	cache   bool
	test    bool
	persist bool
}

func applyCallOptions(opts []CallOption) callOptions {
	o := callOptions{cache: true, test: true, persist: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithoutCache keeps whatever this call resolves (modules, resources,
// stores, artifacts) out of the coordinator caches. Entries already
// cached are still used; clear them first to force a full fresh
// resolution.
func WithoutCache() CallOption {
	return func(o *callOptions) { o.cache = false }
}

// SkipTest trains without the test phase. Meant for debugging model
// code; the stored metadata gets empty metrics.
func SkipTest() CallOption {
	return func(o *callOptions) { o.test = false }
}

// SkipPersist keeps the result of a train or retest out of the model
// store. Meant for debugging model code.
func SkipPersist() CallOption {
	return func(o *callOptions) { o.persist = false }
}

// Coordinator drives training, retesting and prediction for the
// configured model. Resolved modules, resource sets, model stores and
// loaded artifacts are cached per model name and version; concurrent
// misses on one key may both build, with the last writer's result
// kept.
type Coordinator struct {
	cfg     *config.Config
	factory *resource.Factory

	mu         sync.Mutex
	stores     map[string]*store.Store
	models     map[string]*loadedModel
	resources  map[string]*resourceSet
	makerCache map[string]Maker
	predCache  map[string]Predictor
}

type loadedModel struct {
	payload *store.Payload
	meta    *store.Metadata
}

type resourceSet struct {
	sources map[string]resource.Source
	sinks   map[string]resource.Sink
}

// NewCoordinator builds a coordinator over a validated configuration.
func NewCoordinator(cfg *config.Config) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		factory: resource.NewFactory(cfg),
	}
	c.initCaches()
	return c
}

func (c *Coordinator) initCaches() {
	c.stores = make(map[string]*store.Store)
	c.models = make(map[string]*loadedModel)
	c.resources = make(map[string]*resourceSet)
	c.makerCache = make(map[string]Maker)
	c.predCache = make(map[string]Predictor)
}

// ClearCaches drops every cached module, resource set, store and
// loaded artifact as one unit. Used to pick up changed configuration
// or a retrained artifact without restarting the process.
func (c *Coordinator) ClearCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initCaches()
	logging.Info().Msg("Coordinator caches cleared")
}

// Config returns the configuration the coordinator runs on.
func (c *Coordinator) Config() *config.Config { return c.cfg }

// ListModels reports every artifact in the configured model store.
func (c *Coordinator) ListModels() (map[string]*store.ModelInfo, error) {
	return c.modelStore(true).ListModels()
}

// Warm resolves the predictor, the trained artifact and the predict
// resources into the caches so the first prediction pays no resolution
// cost. Serve mode calls it at startup to fail fast when no trained
// artifact exists.
func (c *Coordinator) Warm() error {
	if _, _, err := c.resourceSet(true, TagPredict); err != nil {
		return err
	}
	if _, err := c.predictor(true); err != nil {
		return err
	}
	if _, _, err := c.loadModel(true); err != nil {
		return err
	}
	return nil
}

func (c *Coordinator) modelKey() string {
	return c.cfg.Model.Name + "_" + c.cfg.Model.Version
}

func (c *Coordinator) maker(cache bool) (Maker, error) {
	key := c.modelKey()
	c.mu.Lock()
	mk, ok := c.makerCache[key]
	c.mu.Unlock()
	if ok {
		return mk, nil
	}

	mk, err := makerFor(c.cfg.Model.Module)
	if err != nil {
		return nil, err
	}
	if cache {
		c.mu.Lock()
		c.makerCache[key] = mk
		c.mu.Unlock()
	}
	return mk, nil
}

func (c *Coordinator) predictor(cache bool) (Predictor, error) {
	key := c.modelKey()
	c.mu.Lock()
	p, ok := c.predCache[key]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	p, err := predictorFor(c.cfg.Model.Module)
	if err != nil {
		return nil, err
	}
	if cache {
		c.mu.Lock()
		c.predCache[key] = p
		c.mu.Unlock()
	}
	return p, nil
}

func (c *Coordinator) modelStore(cache bool) *store.Store {
	key := c.modelKey()
	c.mu.Lock()
	st, ok := c.stores[key]
	c.mu.Unlock()
	if ok {
		return st
	}

	st = store.New(c.cfg.ModelStore.Location)
	if cache {
		c.mu.Lock()
		c.stores[key] = st
		c.mu.Unlock()
	}
	return st
}

// loadModel returns the stored artifact for the configured model,
// from cache when possible.
func (c *Coordinator) loadModel(cache bool) (*store.Payload, *store.Metadata, error) {
	key := c.modelKey()
	c.mu.Lock()
	m, ok := c.models[key]
	c.mu.Unlock()
	if ok {
		return m.payload, m.meta, nil
	}

	logging.Info().
		Str("model", c.cfg.Model.Name).
		Str("version", c.cfg.Model.Version).
		Msg("Loading model artifact")
	payload, meta, err := c.modelStore(cache).Load(c.cfg.Model.Name, c.cfg.Model.Version)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().
		Str("model", meta.Name).
		Str("version", meta.Version).
		Str("created", meta.Created).
		Msg("Model artifact loaded")

	if cache {
		c.mu.Lock()
		c.models[key] = &loadedModel{payload: payload, meta: meta}
		c.mu.Unlock()
	}
	return payload, meta, nil
}

// resourceSet builds the tag-filtered sources and sinks, from cache
// when possible. The cache key uses the sorted tag list so call-site
// tag order cannot split one logical set across entries.
func (c *Coordinator) resourceSet(cache bool, tags ...string) (map[string]resource.Source, map[string]resource.Sink, error) {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	key := c.modelKey() + ":" + strings.Join(sorted, ",")
	c.mu.Lock()
	rs, ok := c.resources[key]
	c.mu.Unlock()
	if ok {
		return rs.sources, rs.sinks, nil
	}

	sources, sinks, err := c.factory.CreateSourcesAndSinks(tags...)
	if err != nil {
		return nil, nil, fmt.Errorf("building resources for tags %v: %w", tags, err)
	}
	logging.Info().
		Strs("tags", tags).
		Int("sources", len(sources)).
		Int("sinks", len(sinks)).
		Msg("Resources initialized")

	if cache {
		c.mu.Lock()
		c.resources[key] = &resourceSet{sources: sources, sinks: sinks}
		c.mu.Unlock()
	}
	return sources, sinks, nil
}
