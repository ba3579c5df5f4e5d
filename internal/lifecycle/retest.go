// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/metrics"
	"github.com/tomtom215/gantry/internal/tabular"
)

// Retest measures the stored artifact against the test-tagged
// resources and persists the fresh metrics into its metadata unless
// skipped. Unlike Train, a missing artifact is an error. Returns the
// test metrics.
func (c *Coordinator) Retest(ctx context.Context, opts ...CallOption) (map[string]any, error) {
	o := applyCallOptions(opts)
	start := time.Now()

	testMetrics, err := c.retest(ctx, o)
	metrics.RecordRetest(time.Since(start), err)
	return testMetrics, err
}

func (c *Coordinator) retest(ctx context.Context, o callOptions) (map[string]any, error) {
	logging.Debug().Msg("Retesting existing trained model")
	sources, sinks, err := c.resourceSet(o.cache, TagTest)
	if err != nil {
		return nil, err
	}
	mk, err := c.maker(o.cache)
	if err != nil {
		return nil, err
	}
	payload, meta, err := c.loadModel(o.cache)
	if err != nil {
		return nil, err
	}

	before := tabular.OrderColumnsCalls()
	testMetrics, err := mk.TestTrainedModel(ctx, c.cfg.Model, sources, sinks, payload)
	if err != nil {
		return nil, fmt.Errorf("retesting model %s: %w", c.cfg.Model.Name, err)
	}
	c.warnUnorderedPhase(meta.ColumnsOrdered, before, "retesting code")

	if o.persist {
		if _, err := c.modelStore(o.cache).UpdateMetrics(c.cfg.Model.Name, c.cfg.Model.Version, testMetrics); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Str("model", c.cfg.Model.Name).
		Str("version", c.cfg.Model.Version).
		Interface("metrics", testMetrics).
		Msg("Retested existing model")
	return testMetrics, nil
}
