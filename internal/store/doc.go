// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package store persists trained model artifacts on disk. Every model
// version is a payload file next to a JSON metadata file; overwriting
// a version first rotates the old pair into a previous/ subdirectory
// with a timestamp suffix, so the last good artifact survives a bad
// training run.
package store
