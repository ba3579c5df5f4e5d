// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/resource"
	"github.com/tomtom215/gantry/internal/store"
	"github.com/tomtom215/gantry/internal/tabular"
)

func TestPredictNormalizesOutput(t *testing.T) {
	pr := &fakePredictor{
		predictFn: func(_ *store.Payload, _ map[string]any) (any, error) {
			tbl := tabular.New("species")
			if err := tbl.AppendRow("setosa"); err != nil {
				return nil, err
			}
			return map[string]any{"prediction": tbl}, nil
		},
	}
	c, _ := newTestCoordinator(t, "t-predict", &fakeMaker{}, pr)
	ctx := context.Background()

	if _, err := c.Train(ctx); err != nil {
		t.Fatalf("Train: %v", err)
	}
	out, err := c.Predict(ctx, map[string]any{"sepal": 1.5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("output is %T, want map", out)
	}
	records, ok := m["prediction"].([]any)
	if !ok {
		t.Fatalf("prediction is %T, want row records", m["prediction"])
	}
	if len(records) != 1 {
		t.Fatalf("records = %v, want one row", records)
	}
	row, ok := records[0].(map[string]any)
	if !ok || row["species"] != "setosa" {
		t.Errorf("row = %v", records[0])
	}
	if pr.lastArgs["sepal"] != 1.5 {
		t.Errorf("args = %v, want the caller's arguments", pr.lastArgs)
	}
	if string(pr.payload.Bytes) != "trained" {
		t.Errorf("predictor payload = %q, want the stored artifact", pr.payload.Bytes)
	}
}

func TestPredictNilArgs(t *testing.T) {
	pr := &fakePredictor{}
	c, _ := newTestCoordinator(t, "t-predict-nilargs", &fakeMaker{}, pr)
	ctx := context.Background()

	if _, err := c.Train(ctx); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if _, err := c.Predict(ctx, nil); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pr.lastArgs == nil {
		t.Error("predictor must never see nil args")
	}
}

func TestPredictMissingArtifact(t *testing.T) {
	c, _ := newTestCoordinator(t, "t-predict-missing", &fakeMaker{}, &fakePredictor{})
	_, err := c.Predict(context.Background(), nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRetestUpdatesStoredMetrics(t *testing.T) {
	mk := &fakeMaker{}
	c, cfg := newTestCoordinator(t, "t-retest", mk, nil)
	ctx := context.Background()

	if _, err := c.Train(ctx); err != nil {
		t.Fatalf("Train: %v", err)
	}

	mk.testFn = func() (map[string]any, error) {
		return map[string]any{"accuracy": 0.95}, nil
	}
	got, err := c.Retest(ctx)
	if err != nil {
		t.Fatalf("Retest: %v", err)
	}
	if got["accuracy"] != 0.95 {
		t.Errorf("metrics = %v, want accuracy 0.95", got)
	}

	payload, meta, err := store.New(cfg.ModelStore.Location).Load("iris", "1.0.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Metrics["accuracy"] != 0.95 {
		t.Errorf("stored metrics = %v, want the retest result", meta.Metrics)
	}
	if string(payload.Bytes) != "trained" {
		t.Error("retest must never rewrite the payload")
	}
}

func TestRetestMissingArtifact(t *testing.T) {
	c, _ := newTestCoordinator(t, "t-retest-missing", &fakeMaker{}, nil)
	_, err := c.Retest(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClearCachesPicksUpRetrainedArtifact(t *testing.T) {
	mk := &fakeMaker{}
	pr := &fakePredictor{
		predictFn: func(payload *store.Payload, _ map[string]any) (any, error) {
			return string(payload.Bytes), nil
		},
	}
	c, _ := newTestCoordinator(t, "t-clear", mk, pr)
	ctx := context.Background()

	if _, err := c.Train(ctx); err != nil {
		t.Fatalf("Train: %v", err)
	}
	out, err := c.Predict(ctx, nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out != "trained" {
		t.Fatalf("first prediction = %v", out)
	}

	mk.createFn = func(_ context.Context, _ config.Model, _ map[string]resource.Source, _ map[string]resource.Sink, _ *store.Payload) (*store.Payload, error) {
		return &store.Payload{Bytes: []byte("retrained"), Format: "gob"}, nil
	}
	if _, err := c.Train(ctx); err != nil {
		t.Fatalf("retrain: %v", err)
	}

	// The loaded-artifact cache still serves the old model
	out, err = c.Predict(ctx, nil)
	if err != nil {
		t.Fatalf("Predict after retrain: %v", err)
	}
	if out != "trained" {
		t.Errorf("prediction after retrain = %v, want the cached artifact", out)
	}

	c.ClearCaches()
	out, err = c.Predict(ctx, nil)
	if err != nil {
		t.Fatalf("Predict after ClearCaches: %v", err)
	}
	if out != "retrained" {
		t.Errorf("prediction after ClearCaches = %v, want the new artifact", out)
	}
}

func TestPredictCacheOptOut(t *testing.T) {
	pr := &fakePredictor{
		predictFn: func(payload *store.Payload, _ map[string]any) (any, error) {
			return string(payload.Bytes), nil
		},
	}
	c, cfg := newTestCoordinator(t, "t-nocache", &fakeMaker{}, pr)
	ctx := context.Background()

	if _, err := c.Train(ctx); err != nil {
		t.Fatalf("Train: %v", err)
	}
	out, err := c.Predict(ctx, nil, WithoutCache())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out != "trained" {
		t.Fatalf("first prediction = %v", out)
	}

	// Swap the stored artifact behind the coordinator's back
	st := store.New(cfg.ModelStore.Location)
	if _, err := st.Dump(&store.Payload{Bytes: []byte("swapped"), Format: "gob"}, cfg, nil, false); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	out, err = c.Predict(ctx, nil, WithoutCache())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out != "swapped" {
		t.Errorf("uncached prediction = %v, want a fresh load", out)
	}
}
