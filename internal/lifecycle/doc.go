// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package lifecycle drives the train, retest and predict runs of the
// configured model.
//
// Model code plugs in as a module: a package registers exactly one
// Maker and exactly one Predictor under its module name, usually from
// init, and the configuration's model.module field selects it. The
// Coordinator resolves the module, builds tag-filtered resource sets,
// loads and stores artifacts, and caches all of these per model name
// and version until ClearCaches.
package lifecycle
