// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package metrics defines the Prometheus collectors for Gantry and
// small helpers for recording them. Collectors are registered with
// the default registry via promauto at package load.
package metrics
