// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package store

import "errors"

var (
	// ErrNotFound means the artifact's payload or metadata file is
	// absent. Callers typically train from scratch on this.
	ErrNotFound = errors.New("model artifact not found")

	// ErrCorrupt means an artifact is present but its metadata does
	// not parse. Distinct from ErrNotFound so a first training run is
	// never confused with a damaged store.
	ErrCorrupt = errors.New("model artifact corrupt")
)
