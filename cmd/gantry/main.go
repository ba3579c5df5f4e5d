// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package main is the entry point for the gantry command line tool.
//
// Gantry manages the lifecycle of machine learning models: training,
// re-testing, persisting trained artifacts and serving predictions over
// HTTP. Model code plugs in as registered modules; data access goes
// through configured sources and sinks so model code never touches
// files, databases or key-value stores directly.
//
// # Commands
//
//	gantry train    train the configured model, test it and store the artifact
//	gantry retest   re-run the test phase against the stored artifact
//	gantry predict  run one prediction from the command line
//	gantry serve    serve predictions over HTTP under a supervision tree
//	gantry models   list stored model artifacts as JSON
//	gantry version  print version information
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (GANTRY_*)
//   - Include files listed under include: (later files win)
//   - The main YAML file (--config, GANTRY_CFG, or ./gantry.yml)
//   - Built-in defaults
//
// # Serve Mode
//
// The serve command loads the stored artifact, warms the coordinator
// caches and runs the HTTP server under a suture supervision tree. A
// config-watch service clears the coordinator caches when the config
// file changes, so a retrained artifact is picked up without a restart.
//
// # Signal Handling
//
// Serve mode shuts down gracefully on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the config file watch
package main

import (
	"github.com/tomtom215/gantry/internal/logging"

	// Built-in resource providers register themselves at init time.
	_ "github.com/tomtom215/gantry/internal/resource/dbms"
	_ "github.com/tomtom215/gantry/internal/resource/file"
	_ "github.com/tomtom215/gantry/internal/resource/kv"
)

// version is set at build time:
//
//	go build -ldflags "-X main.version=1.2.3" ./cmd/gantry
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Fatal().Err(err).Msg("Command failed")
	}
}
