// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package logging provides centralized zerolog-based structured logging for Gantry.
//
// All packages log through the process-wide logger configured here. Output is
// structured JSON for production and human-readable console format for
// development. The package also carries an slog adapter so that libraries
// which expect a *slog.Logger (the suture supervisor via sutureslog) write
// through zerolog as well.
//
// # Quick Start
//
//	import "github.com/tomtom215/gantry/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("model", name).Msg("training started")
//	logging.Error().Err(err).Msg("training failed")
//
// # Conventions
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Prefer structured fields over string formatting:
//
//	logging.Info().Str("resource", id).Int("rows", n).Msg("fetched")  // Correct
//	logging.Info().Msgf("fetched %d rows for %s", n, id)              // Avoid
package logging
