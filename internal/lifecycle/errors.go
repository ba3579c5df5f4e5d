// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import "errors"

// ErrModelResolution means the configured model module did not resolve
// to exactly one maker or predictor. The wrapped message reports how
// many were actually registered.
var ErrModelResolution = errors.New("model module resolution failed")
