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

// Predict applies the stored artifact to caller-supplied arguments
// through the predict-tagged resources. The result comes back
// normalized into plain maps, slices and scalars safe for JSON
// encoding. A missing artifact is an error.
func (c *Coordinator) Predict(ctx context.Context, args map[string]any, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)
	start := time.Now()

	out, err := c.predict(ctx, args, o)
	metrics.RecordPrediction(time.Since(start), err)
	return out, err
}

func (c *Coordinator) predict(ctx context.Context, args map[string]any, o callOptions) (any, error) {
	logging.Debug().Msg("Applying model for prediction")
	sources, sinks, err := c.resourceSet(o.cache, TagPredict)
	if err != nil {
		return nil, err
	}
	pr, err := c.predictor(o.cache)
	if err != nil {
		return nil, err
	}
	payload, meta, err := c.loadModel(o.cache)
	if err != nil {
		return nil, err
	}

	if args == nil {
		args = map[string]any{}
	}
	before := tabular.OrderColumnsCalls()
	out, err := pr.Predict(ctx, c.cfg.Model, sources, sinks, payload, args)
	if err != nil {
		return nil, fmt.Errorf("prediction with model %s: %w", c.cfg.Model.Name, err)
	}
	c.warnUnorderedPhase(meta.ColumnsOrdered, before, "prediction code")

	return tabular.Normalize(out), nil
}
