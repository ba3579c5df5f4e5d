// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
)

// Provider constructs sources and sinks for the capabilities it
// serves. Serves lists capability keys such as "csv" or "dbms.duckdb".
type Provider interface {
	Name() string
	Serves() []string
	NewSource(name string, res config.Resource, conn config.Connection) (Source, error)
	NewSink(name string, res config.Resource, conn config.Connection) (Sink, error)
}

var (
	registryMu sync.RWMutex
	builtins   = make(map[string]Provider)
	plugins    = make(map[string]Provider)
)

// RegisterBuiltin registers a built-in provider under its name. It is
// meant to be called from provider package init functions, activated
// by blank imports, and panics on a duplicate or nil provider the way
// sql.Register does.
func RegisterBuiltin(p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if p == nil {
		panic("resource: RegisterBuiltin provider is nil")
	}
	if _, dup := builtins[p.Name()]; dup {
		panic("resource: RegisterBuiltin called twice for provider " + p.Name())
	}
	builtins[p.Name()] = p
}

// RegisterPlugin registers an operator-supplied provider under its
// name. Plugins are inert until the configuration's plugins list
// activates them.
func RegisterPlugin(p Provider) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if p == nil {
		return fmt.Errorf("nil plugin provider: %w", ErrConfig)
	}
	if p.Name() == "" {
		return fmt.Errorf("plugin provider with empty name: %w", ErrConfig)
	}
	if _, dup := plugins[p.Name()]; dup {
		return fmt.Errorf("plugin %q already registered: %w", p.Name(), ErrConfig)
	}
	plugins[p.Name()] = p
	return nil
}

// resetRegistry clears all registrations. Test use only.
func resetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	builtins = make(map[string]Provider)
	plugins = make(map[string]Provider)
}

// buildRegistry assembles the capability key to provider mapping for
// one resolution pass. Builtins come first in stable name order, then
// the activated plugins in configuration order, so a plugin serving an
// already-claimed capability shadows it. Shadowing is legal but loud.
func buildRegistry(activePlugins []string) (map[string]Provider, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg := make(map[string]Provider)

	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		addProvider(reg, builtins[name], "builtin")
	}

	for _, name := range activePlugins {
		p, ok := plugins[name]
		if !ok {
			return nil, fmt.Errorf("plugins list names %q but no such plugin is registered: %w", name, ErrConfig)
		}
		addProvider(reg, p, "plugin")
	}

	return reg, nil
}

func addProvider(reg map[string]Provider, p Provider, kind string) {
	serves := p.Serves()
	if len(serves) == 0 {
		logging.Warn().
			Str("provider", p.Name()).
			Msgf("Skipping %s provider with empty capability list", kind)
		return
	}
	for _, key := range serves {
		if prev, ok := reg[key]; ok {
			logging.Warn().
				Str("provider", p.Name()).
				Str("capability", key).
				Str("shadows", prev.Name()).
				Msg("Provider shadows an already registered capability")
		}
		reg[key] = p
	}
}
