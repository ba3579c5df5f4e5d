// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/store"
)

// Maker is the training side of a model module. It produces a fresh
// artifact from the train-tagged resources and measures artifacts
// against the test-tagged ones.
type Maker interface {
	// CreateTrainedModel trains a new artifact. previous carries the
	// currently stored artifact when one exists and nil on the first
	// run, so modules can warm-start or ignore it.
	CreateTrainedModel(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, previous *store.Payload) (*store.Payload, error)

	// TestTrainedModel measures an artifact and returns its metrics.
	// The metrics must be JSON-representable.
	TestTrainedModel(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, payload *store.Payload) (map[string]any, error)
}

// Predictor is the serving side of a model module. args carries the
// caller-supplied prediction arguments, never nil.
type Predictor interface {
	Predict(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, payload *store.Payload, args map[string]any) (any, error)
}

var (
	modulesMu  sync.RWMutex
	makers     = make(map[string][]Maker)
	predictors = make(map[string][]Predictor)
)

// RegisterMaker announces a module's maker, usually from the module
// package's init function. Each module must end up with exactly one
// registered maker; any other count fails at resolution time, not
// here, so the error can report what was found.
func RegisterMaker(module string, m Maker) {
	if m == nil {
		panic("lifecycle: RegisterMaker with nil maker")
	}
	modulesMu.Lock()
	defer modulesMu.Unlock()
	makers[module] = append(makers[module], m)
}

// RegisterPredictor announces a module's predictor. The same
// exactly-one rule as RegisterMaker applies.
func RegisterPredictor(module string, p Predictor) {
	if p == nil {
		panic("lifecycle: RegisterPredictor with nil predictor")
	}
	modulesMu.Lock()
	defer modulesMu.Unlock()
	predictors[module] = append(predictors[module], p)
}

func makerFor(module string) (Maker, error) {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	found := makers[module]
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: model module %q must register exactly one maker, found %d", ErrModelResolution, module, len(found))
	}
	return found[0], nil
}

func predictorFor(module string) (Predictor, error) {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	found := predictors[module]
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: model module %q must register exactly one predictor, found %d", ErrModelResolution, module, len(found))
	}
	return found[0], nil
}

// resetModules empties the module registry. Test support.
func resetModules() {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	makers = make(map[string][]Maker)
	predictors = make(map[string][]Predictor)
}
