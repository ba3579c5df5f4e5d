// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/metrics"
	"github.com/tomtom215/gantry/internal/store"
	"github.com/tomtom215/gantry/internal/tabular"
)

// Lifecycle phase tags resources declare to scope themselves to
// training, testing or prediction.
const (
	TagTrain   = "train"
	TagTest    = "test"
	TagPredict = "predict"
)

// orderColumnsHint closes every column-order advisory.
const orderColumnsHint = "To adjust this warning, set the model's " +
	"order_columns_warning to always, test_and_predict or never."

// Train runs the configured model's maker against the train-tagged
// resources, tests the result unless skipped, and persists artifact
// and metrics in the model store unless skipped. A previous artifact
// is passed to the maker when one exists; its absence is not an
// error. Returns the test metrics.
func (c *Coordinator) Train(ctx context.Context, opts ...CallOption) (map[string]any, error) {
	o := applyCallOptions(opts)
	start := time.Now()

	testMetrics, err := c.train(ctx, o)
	metrics.RecordTrain(time.Since(start), err)
	return testMetrics, err
}

func (c *Coordinator) train(ctx context.Context, o callOptions) (map[string]any, error) {
	logging.Debug().Msg("Creating trained model")
	mk, err := c.maker(o.cache)
	if err != nil {
		return nil, err
	}

	previous, err := c.previousPayload(o.cache)
	if err != nil {
		return nil, err
	}

	sources, sinks, err := c.resourceSet(o.cache, TagTrain)
	if err != nil {
		return nil, err
	}

	if err := beginTrainReport(); err != nil {
		return nil, err
	}
	defer endTrainReport()

	callsBefore := tabular.OrderColumnsCalls()
	payload, err := mk.CreateTrainedModel(ctx, c.cfg.Model, sources, sinks, previous)
	if err != nil {
		return nil, fmt.Errorf("training model %s: %w", c.cfg.Model.Name, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("model module %q returned no artifact from training", c.cfg.Model.Module)
	}
	ordered := tabular.OrderColumnsCalls() > callsBefore
	if !ordered && c.cfg.Model.OrderColumnsWarning == config.OrderWarnAlways {
		logging.Warn().Msg("Training code does not call tabular.OrderColumns. " + orderColumnsHint)
	}

	testMetrics := map[string]any{}
	if o.test {
		logging.Debug().Msg("Testing trained model")
		testSources, testSinks, err := c.resourceSet(o.cache, TagTest)
		if err != nil {
			return nil, err
		}
		before := tabular.OrderColumnsCalls()
		testMetrics, err = mk.TestTrainedModel(ctx, c.cfg.Model, testSources, testSinks, payload)
		if err != nil {
			return nil, fmt.Errorf("testing model %s: %w", c.cfg.Model.Name, err)
		}
		c.warnUnorderedPhase(ordered, before, "testing code")
	}

	report := endTrainReport()

	if o.persist {
		st := c.modelStore(o.cache)
		for key, value := range report {
			st.AddToTrainReport(key, value)
		}
		if _, reported := report["algorithm"]; !reported {
			st.AddToTrainReport("algorithm",
				fmt.Sprintf("%s artifact, %d bytes", payload.Format, len(payload.Bytes)))
		}
		if _, err := st.Dump(payload, c.cfg, testMetrics, ordered); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Str("model", c.cfg.Model.Name).
		Str("version", c.cfg.Model.Version).
		Bool("persisted", o.persist).
		Interface("metrics", testMetrics).
		Msg("Created trained model")
	return testMetrics, nil
}

// previousPayload fetches the stored artifact for warm-starting a
// training run. Not finding one is a legitimate first-run state and a
// corrupt artifact only costs the warm start; every other failure
// propagates.
func (c *Coordinator) previousPayload(cache bool) (*store.Payload, error) {
	logging.Debug().Msg("Trying to load previous model")
	payload, _, err := c.loadModel(cache)
	if err == nil {
		return payload, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		logging.Info().Msg("No previous model to load")
		return nil, nil
	}
	if errors.Is(err, store.ErrCorrupt) {
		logging.Warn().Err(err).Msg("Previous model artifact unreadable, training without it")
		return nil, nil
	}
	return nil, err
}

// warnUnorderedPhase logs the column-order advisory when an artifact
// trained on ordered columns reaches a phase whose code did not order
// columns. Inconsistent ordering silently misaligns features between
// training and inference, which is why this is worth a warning even
// though it cannot be enforced.
func (c *Coordinator) warnUnorderedPhase(trainedOrdered bool, callsBefore int64, phase string) {
	if c.cfg.Model.OrderColumnsWarning == config.OrderWarnNever {
		return
	}
	if trainedOrdered && tabular.OrderColumnsCalls() == callsBefore {
		logging.Warn().Msgf(
			"Model has been trained on ordered columns, but %s does not call tabular.OrderColumns. %s",
			phase, orderColumnsHint)
	}
}
