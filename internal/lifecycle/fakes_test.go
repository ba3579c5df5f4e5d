// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/store"
)

// fakeMaker counts calls and hands control to optional hooks.
type fakeMaker struct {
	createCalls int
	testCalls   int
	previous    *store.Payload

	createFn func(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, previous *store.Payload) (*store.Payload, error)
	testFn   func() (map[string]any, error)
}

func (f *fakeMaker) CreateTrainedModel(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, previous *store.Payload) (*store.Payload, error) {
	f.createCalls++
	f.previous = previous
	if f.createFn != nil {
		return f.createFn(ctx, model, sources, sinks, previous)
	}
	return &store.Payload{Bytes: []byte("trained"), Format: "gob"}, nil
}

func (f *fakeMaker) TestTrainedModel(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, payload *store.Payload) (map[string]any, error) {
	f.testCalls++
	if f.testFn != nil {
		return f.testFn()
	}
	return map[string]any{"accuracy": 0.9}, nil
}

// fakePredictor records what it was called with.
type fakePredictor struct {
	calls    int
	lastArgs map[string]any
	payload  *store.Payload

	predictFn func(payload *store.Payload, args map[string]any) (any, error)
}

func (f *fakePredictor) Predict(ctx context.Context, model config.Model, sources map[string]resource.Source, sinks map[string]resource.Sink, payload *store.Payload, args map[string]any) (any, error) {
	f.calls++
	f.payload = payload
	f.lastArgs = args
	if f.predictFn != nil {
		return f.predictFn(payload, args)
	}
	return map[string]any{"ok": true}, nil
}

// newTestCoordinator wires a coordinator over an isolated model store
// and registers the given module implementations. Module names must
// be unique per test because the module registry is process wide.
func newTestCoordinator(t *testing.T, module string, mk Maker, pr Predictor) (*Coordinator, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ModelStore.Location = filepath.Join(t.TempDir(), "model-store")
	cfg.Model.Name = "iris"
	cfg.Model.Version = "1.0.0"
	cfg.Model.Module = module
	cfg.Model.OrderColumnsWarning = config.OrderWarnNever
	if mk != nil {
		RegisterMaker(module, mk)
	}
	if pr != nil {
		RegisterPredictor(module, pr)
	}
	return NewCoordinator(cfg), cfg
}
