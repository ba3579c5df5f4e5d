// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package config loads and validates Gantry configuration from YAML
// files and environment variables using koanf. Configuration layering
// is defaults -> main file -> include files -> environment, with the
// environment always winning. Validation is fail-fast: a Config that
// survives Load is safe to hand to the rest of the system.
package config
