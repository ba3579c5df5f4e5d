// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"fmt"
	"sort"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
)

// Factory creates the sources and sinks a process needs from the
// configuration. The capability registry is rebuilt on every create
// call, so plugins registered after Factory construction still take
// effect.
type Factory struct {
	cfg *config.Config
}

// NewFactory returns a Factory over the given configuration.
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// CreateSources builds every configured source whose tags match the
// given process tags. Creation is fail-fast: the first unresolvable
// resource aborts the whole call.
func (f *Factory) CreateSources(tags ...string) (map[string]Source, error) {
	reg, err := buildRegistry(f.cfg.Plugins)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]Source)
	for _, name := range sortedNames(f.cfg.Sources) {
		res := f.cfg.Sources[name]
		if !MatchTags(res.Tags, tags) {
			continue
		}
		p, conn, err := resolveRef(f.cfg, reg, "sources", name, res.Type)
		if err != nil {
			return nil, err
		}
		src, err := p.NewSource(name, res, conn)
		if err != nil {
			return nil, fmt.Errorf("sources.%s: %w", name, err)
		}
		sources[name] = NewCachedSource(src, res)
		logging.Debug().
			Str("source", name).
			Str("type", res.Type).
			Str("provider", p.Name()).
			Int("expires", res.Expires).
			Msg("Source created")
	}
	return sources, nil
}

// CreateSinks builds every configured sink whose tags match the given
// process tags.
func (f *Factory) CreateSinks(tags ...string) (map[string]Sink, error) {
	reg, err := buildRegistry(f.cfg.Plugins)
	if err != nil {
		return nil, err
	}

	sinks := make(map[string]Sink)
	for _, name := range sortedNames(f.cfg.Sinks) {
		res := f.cfg.Sinks[name]
		if !MatchTags(res.Tags, tags) {
			continue
		}
		p, conn, err := resolveRef(f.cfg, reg, "sinks", name, res.Type)
		if err != nil {
			return nil, err
		}
		sink, err := p.NewSink(name, res, conn)
		if err != nil {
			return nil, fmt.Errorf("sinks.%s: %w", name, err)
		}
		sinks[name] = measuredSink{sink: sink}
		logging.Debug().
			Str("sink", name).
			Str("type", res.Type).
			Str("provider", p.Name()).
			Msg("Sink created")
	}
	return sinks, nil
}

// CreateSourcesAndSinks builds both maps in one call.
func (f *Factory) CreateSourcesAndSinks(tags ...string) (map[string]Source, map[string]Sink, error) {
	sources, err := f.CreateSources(tags...)
	if err != nil {
		return nil, nil, err
	}
	sinks, err := f.CreateSinks(tags...)
	if err != nil {
		return nil, nil, err
	}
	return sources, sinks, nil
}

func sortedNames(m map[string]config.Resource) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
